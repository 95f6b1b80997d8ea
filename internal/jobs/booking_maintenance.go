package jobs

import (
	"context"
	"time"

	"github.com/hudsonargollo/agend4i-sub002/internal/repositories"

	"go.uber.org/zap"
)

// Maintenance windows. A pending booking holds its slot for one hour;
// confirmed bookings roll to completed shortly after they end.
const (
	PendingBookingTTL     = 1 * time.Hour
	CompletionGracePeriod = 15 * time.Minute
)

// BookingMaintenance sweeps booking statuses that only time moves:
// stale pending bookings get cancelled and past confirmed ones get
// completed. Both sweeps run across all tenants.
type BookingMaintenance struct {
	bookings repositories.BookingRepository
	logger   *zap.Logger
}

func NewBookingMaintenance(bookings repositories.BookingRepository, logger *zap.Logger) *BookingMaintenance {
	return &BookingMaintenance{bookings: bookings, logger: logger}
}

// ExpireStalePending cancels pending bookings older than
// PendingBookingTTL, releasing their slots for new admissions.
func (m *BookingMaintenance) ExpireStalePending(ctx context.Context) error {
	cutoff := time.Now().Add(-PendingBookingTTL)
	n, err := m.bookings.ExpireStalePending(ctx, cutoff)
	if err != nil {
		m.logger.Error("stale pending sweep failed", zap.Error(err))
		return err
	}
	if n > 0 {
		m.logger.Info("stale pending bookings cancelled", zap.Int64("count", n))
	}
	return nil
}

// CompletePastConfirmed marks confirmed bookings whose end time passed
// the grace window as completed.
func (m *BookingMaintenance) CompletePastConfirmed(ctx context.Context) error {
	cutoff := time.Now().Add(-CompletionGracePeriod)
	n, err := m.bookings.CompletePastConfirmed(ctx, cutoff)
	if err != nil {
		m.logger.Error("completion sweep failed", zap.Error(err))
		return err
	}
	if n > 0 {
		m.logger.Info("past confirmed bookings completed", zap.Int64("count", n))
	}
	return nil
}
