package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/hudsonargollo/agend4i-sub002/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrBookingOverlap is returned when an insert would overlap an active
// booking for the same staff member, whether caught by the in-transaction
// recheck or by the bookings_no_overlap exclusion constraint.
var ErrBookingOverlap = errors.New("booking overlaps an existing booking")

// Statuses excluded from conflict checks. Mirrors models.Booking.BlocksSlot.
const activeStatusFilter = `status NOT IN ('cancelled', 'no_show')`

type BookingRepository interface {
	// CreateIfAvailable atomically re-checks availability for the
	// booking's (staff, interval) and inserts it. Exactly one of N
	// concurrent calls for overlapping intervals succeeds; the rest get
	// ErrBookingOverlap.
	CreateIfAvailable(ctx context.Context, booking *models.Booking) error
	CountOverlapping(ctx context.Context, tenantID, staffID uuid.UUID, start, end time.Time) (int64, error)
	ListForStaffBetween(ctx context.Context, tenantID, staffID uuid.UUID, from, to time.Time) ([]*models.Booking, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Booking, error)
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Booking, error)
	UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) error
	// ExpireStalePending cancels pending bookings created before the
	// cutoff so abandoned checkouts release their slots.
	ExpireStalePending(ctx context.Context, cutoff time.Time) (int64, error)
	// CompletePastConfirmed marks confirmed bookings whose end time
	// passed the cutoff as completed.
	CompletePastConfirmed(ctx context.Context, cutoff time.Time) (int64, error)
}

type bookingRepo struct {
	db DB
}

func NewBookingRepo(db DB) BookingRepository {
	return &bookingRepo{db: db}
}

const overlapQuery = `
		SELECT COUNT(1)
		FROM bookings
		WHERE tenant_id = $1 AND staff_id = $2
		  AND ` + activeStatusFilter + `
		  AND tstzrange(start_time, end_time, '[)') && tstzrange($3, $4, '[)')
	`

func (r *bookingRepo) CreateIfAvailable(ctx context.Context, booking *models.Booking) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var overlapping int64
	err = tx.QueryRow(ctx, overlapQuery, booking.TenantID, booking.StaffID,
		booking.StartTime, booking.EndTime).Scan(&overlapping)
	if err != nil {
		return err
	}
	if overlapping > 0 {
		return ErrBookingOverlap
	}

	insert := `
		INSERT INTO bookings (id, tenant_id, staff_id, service_id, customer_id, start_time, end_time, status, total_price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`
	_, err = tx.Exec(ctx, insert, booking.ID, booking.TenantID, booking.StaffID, booking.ServiceID,
		booking.CustomerID, booking.StartTime, booking.EndTime, booking.Status, booking.TotalPrice)
	if err != nil {
		return mapConstraintViolation(err)
	}

	return tx.Commit(ctx)
}

// mapConstraintViolation translates the bookings_no_overlap exclusion
// constraint (and any unique-slot index) into ErrBookingOverlap so the
// last-line database guard and the recheck surface the same failure.
func mapConstraintViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23P01" || pgErr.Code == "23505" {
			return ErrBookingOverlap
		}
	}
	return err
}

func (r *bookingRepo) CountOverlapping(ctx context.Context, tenantID, staffID uuid.UUID, start, end time.Time) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, overlapQuery, tenantID, staffID, start, end).Scan(&count)
	return count, err
}

const bookingColumns = `id, tenant_id, staff_id, service_id, customer_id, start_time, end_time, status, total_price, created_at, updated_at`

func scanBooking(row interface{ Scan(dest ...any) error }) (*models.Booking, error) {
	booking := &models.Booking{}
	err := row.Scan(&booking.ID, &booking.TenantID, &booking.StaffID, &booking.ServiceID, &booking.CustomerID,
		&booking.StartTime, &booking.EndTime, &booking.Status, &booking.TotalPrice, &booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return booking, nil
}

func (r *bookingRepo) ListForStaffBetween(ctx context.Context, tenantID, staffID uuid.UUID, from, to time.Time) ([]*models.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE tenant_id = $1 AND staff_id = $2
		  AND ` + activeStatusFilter + `
		  AND tstzrange(start_time, end_time, '[)') && tstzrange($3, $4, '[)')
		ORDER BY start_time
	`
	rows, err := r.db.Query(ctx, query, tenantID, staffID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}

func (r *bookingRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE tenant_id = $1 AND id = $2
	`
	return scanBooking(r.db.QueryRow(ctx, query, tenantID, id))
}

func (r *bookingRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE tenant_id = $1
		ORDER BY start_time DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}

func (r *bookingRepo) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) error {
	query := `
		UPDATE bookings
		SET status = $1, updated_at = NOW()
		WHERE tenant_id = $2 AND id = $3
	`
	_, err := r.db.Exec(ctx, query, status, tenantID, id)
	return err
}

func (r *bookingRepo) ExpireStalePending(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		UPDATE bookings
		SET status = 'cancelled', updated_at = NOW()
		WHERE status = 'pending' AND created_at < $1
	`
	tag, err := r.db.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *bookingRepo) CompletePastConfirmed(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		UPDATE bookings
		SET status = 'completed', updated_at = NOW()
		WHERE status = 'confirmed' AND end_time < $1
	`
	tag, err := r.db.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
