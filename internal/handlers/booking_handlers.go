package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/hudsonargollo/agend4i-sub002/internal/common"
	"github.com/hudsonargollo/agend4i-sub002/internal/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// BookingHandlers serves the public booking page API and the admin
// booking views.
type BookingHandlers struct {
	bookings     services.BookingService
	availability services.AvailabilityService
	tenants      services.TenantService
	logger       *zap.Logger
}

func NewBookingHandlers(
	bookings services.BookingService,
	availability services.AvailabilityService,
	tenants services.TenantService,
	logger *zap.Logger,
) *BookingHandlers {
	return &BookingHandlers{bookings: bookings, availability: availability, tenants: tenants, logger: logger}
}

type createBookingRequest struct {
	StaffID       string    `json:"staff_id"`
	ServiceID     string    `json:"service_id"`
	CustomerName  string    `json:"customer_name"`
	CustomerPhone string    `json:"customer_phone"`
	StartTime     time.Time `json:"start_time"`
}

type bookingConflictResponse struct {
	Code        string              `json:"code"`
	Message     string              `json:"message"`
	Conflict    services.TimeSlot   `json:"conflict"`
	Suggestions []services.TimeSlot `json:"suggestions"`
}

// CreateBooking handles POST /v1/public/:slug/bookings.
func (h *BookingHandlers) CreateBooking(c echo.Context) error {
	tenant, err := h.tenants.ResolveSlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return common.SendNotFoundError(c, "tenant")
		}
		return common.SendServerError(c, "Failed to resolve tenant")
	}

	var req createBookingRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "Invalid request body")
	}

	staffID, err := common.ValidateUUID(req.StaffID, "staff_id")
	if err != nil {
		return common.SendValidationError(c, err.Error())
	}
	serviceID, err := common.ValidateUUID(req.ServiceID, "service_id")
	if err != nil {
		return common.SendValidationError(c, err.Error())
	}

	booking, err := h.bookings.AttemptBooking(c.Request().Context(), services.BookingRequest{
		Tenant:        tenant,
		StaffID:       staffID,
		ServiceID:     serviceID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		StartTime:     req.StartTime,
	})
	if err != nil {
		var conflict *services.SlotConflictError
		switch {
		case errors.As(err, &conflict):
			return c.JSON(http.StatusConflict, bookingConflictResponse{
				Code:        "slot_unavailable",
				Message:     "The requested time is no longer available",
				Conflict:    conflict.Conflict,
				Suggestions: conflict.Suggestions,
			})
		case errors.Is(err, services.ErrSlotUnavailable):
			return common.SendError(c, http.StatusConflict, "slot_unavailable", "The requested time is no longer available")
		case errors.Is(err, services.ErrResourceLocked):
			return common.SendError(c, http.StatusLocked, "resource_locked", "The slot is being booked right now, try again")
		case errors.Is(err, services.ErrValidation):
			return common.SendValidationError(c, err.Error())
		default:
			h.logger.Error("booking attempt failed", zap.Error(err))
			return common.SendServerError(c, "Failed to create booking")
		}
	}

	return c.JSON(http.StatusCreated, booking)
}

// GetAvailability handles GET /v1/public/:slug/availability.
func (h *BookingHandlers) GetAvailability(c echo.Context) error {
	tenant, err := h.tenants.ResolveSlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return common.SendNotFoundError(c, "tenant")
		}
		return common.SendServerError(c, "Failed to resolve tenant")
	}

	staffID, err := common.ValidateUUID(c.QueryParam("staff_id"), "staff_id")
	if err != nil {
		return common.SendValidationError(c, err.Error())
	}

	day, err := time.Parse("2006-01-02", c.QueryParam("date"))
	if err != nil {
		return common.SendValidationError(c, "date must be in YYYY-MM-DD format")
	}
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	busy, err := h.availability.BusySlots(c.Request().Context(), tenant.ID, staffID, from, to)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			return common.SendValidationError(c, err.Error())
		}
		h.logger.Error("availability lookup failed", zap.Error(err))
		return common.SendServerError(c, "Failed to load availability")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"date": c.QueryParam("date"),
		"busy": busy,
	})
}

// ListBookings handles GET /v1/bookings (admin).
func (h *BookingHandlers) ListBookings(c echo.Context) error {
	tenantID, ok := common.GetTenantIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing tenant context")
	}

	limit, offset := parsePagination(c)
	bookings, err := h.bookings.List(c.Request().Context(), tenantID, limit, offset)
	if err != nil {
		h.logger.Error("booking list failed", zap.Error(err))
		return common.SendServerError(c, "Failed to list bookings")
	}
	return c.JSON(http.StatusOK, bookings)
}

type updateBookingStatusRequest struct {
	Status string `json:"status"`
}

// UpdateBookingStatus handles PUT /v1/bookings/:id/status (admin).
func (h *BookingHandlers) UpdateBookingStatus(c echo.Context) error {
	tenantID, ok := common.GetTenantIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing tenant context")
	}

	bookingID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, err.Error())
	}

	var req updateBookingStatusRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "Invalid request body")
	}

	if err := h.bookings.ChangeStatus(c.Request().Context(), tenantID, bookingID, req.Status); err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			return common.SendNotFoundError(c, "booking")
		case errors.Is(err, services.ErrValidation):
			return common.SendValidationError(c, err.Error())
		default:
			h.logger.Error("booking status update failed", zap.Error(err))
			return common.SendServerError(c, "Failed to update booking")
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"status": req.Status})
}

func parsePagination(c echo.Context) (int, int) {
	limit := 50
	offset := 0
	if v := c.QueryParam("limit"); v != "" {
		if n, err := parsePositive(v); err == nil {
			limit = n
		}
	}
	if v := c.QueryParam("offset"); v != "" {
		if n, err := parsePositive(v); err == nil {
			offset = n
		}
	}
	return limit, offset
}
