package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/cueside/club-bookings/internal/conflict"
	"github.com/cueside/club-bookings/internal/domain"
	"github.com/cueside/club-bookings/internal/http/response"
	"github.com/cueside/club-bookings/internal/pricing"
	"github.com/cueside/club-bookings/internal/repo/postgres"
	"github.com/cueside/club-bookings/internal/schedule"
	"github.com/cueside/club-bookings/pkg/events"
)

// PaymentProvider is the slice of the payments client the handlers need.
type PaymentProvider interface {
	Enabled() bool
	CreateBillIntent(bookingID int64, total float64, playerEmail string) (string, error)
}

type Handlers struct {
	bookings postgres.BookingRepo
	tables   postgres.TableRepo
	idem     postgres.IdempotencyRepo
	bus      events.Publisher
	pricer   *pricing.Engine
	detector *conflict.Detector
	payments PaymentProvider
}

func New(
	bookings postgres.BookingRepo,
	tables postgres.TableRepo,
	idem postgres.IdempotencyRepo,
	bus events.Publisher,
	pricer *pricing.Engine,
	detector *conflict.Detector,
	payments PaymentProvider,
) *Handlers {
	return &Handlers{
		bookings: bookings,
		tables:   tables,
		idem:     idem,
		bus:      bus,
		pricer:   pricer,
		detector: detector,
		payments: payments,
	}
}

func parsePagination(r *http.Request) (limit, offset int) {
	limit = 20
	offset = 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}

// parseStartAt normalizes the boundary timestamp once; the core packages
// never see raw strings.
func parseStartAt(raw string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// validateSession enforces the form-level domain rules the pricing core
// deliberately has no opinion on: duration bounds, same-day sessions,
// business hours.
func validateSession(start time.Time, durationHours float64) (code, msg string) {
	if durationHours < domain.MinBookingHours || durationHours > domain.MaxBookingHours {
		return response.CodeInvalidInput, "Duration must be between 0.5 and 8 hours"
	}

	end := start.Add(time.Duration(durationHours * float64(time.Hour)))
	if end.Day() != start.Day() {
		return response.CodeOutsideHours, "Sessions must end the same day"
	}

	hours := schedule.BusinessHours(start)
	open := schedule.At(start, hours.Open)
	closeAt := schedule.At(start, hours.Close)
	if start.Before(open) || end.After(closeAt) {
		return response.CodeOutsideHours, "Session is outside business hours (" + hours.Open + " - " + hours.Close + ")"
	}

	return "", ""
}
