package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cueside/club-bookings/internal/conflict"
	"github.com/cueside/club-bookings/internal/domain"
	"github.com/cueside/club-bookings/internal/http/middleware"
	"github.com/cueside/club-bookings/internal/http/response"
	"github.com/cueside/club-bookings/internal/pricing"
	"github.com/cueside/club-bookings/internal/repo/postgres"
	"github.com/cueside/club-bookings/pkg/events"
	"github.com/cueside/club-bookings/pkg/logger"
)

type bookingCreateRes struct {
	Booking  *domain.Booking   `json:"booking"`
	Estimate pricing.Breakdown `json:"estimate"`
	Warnings []domain.Booking  `json:"warnings,omitempty"`
}

// CreateBooking validates a booking request, runs it through the
// conflict detector and the pricing engine, persists it and announces
// it on the bus. A soft (pending-only) conflict can be forced through
// with force=true; a hard conflict is always a 409.
func (h *Handlers) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req domain.BookingCreateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	start, ok := parseStartAt(req.StartAt)
	if !ok {
		response.BadRequest(w, "start_at must be RFC3339")
		return
	}
	membership, ok := domain.ParseMembershipType(req.Membership)
	if !ok {
		response.BadRequest(w, "Unknown membership type")
		return
	}
	if code, msg := validateSession(start, req.DurationHours); code != "" {
		response.WriteError(w, http.StatusBadRequest, msg, code)
		return
	}
	if start.Before(time.Now()) {
		response.WriteError(w, http.StatusBadRequest, "Cannot book a table in the past", response.CodePastDateTime)
		return
	}

	table, err := h.tables.GetByID(r.Context(), req.TableID)
	if err != nil {
		response.InternalError(w, "Failed to look up table")
		return
	}
	if table == nil || !table.Active {
		response.NotFound(w, "Table not found")
		return
	}

	// Idempotent retry: same key returns the original booking.
	idempotencyKey := r.Header.Get("Idempotency-Key")
	if idempotencyKey != "" {
		existingID, err := h.idem.CheckOrCreate(r.Context(), idempotencyKey, 0)
		if err != nil {
			response.InternalError(w, "Idempotency check failed")
			return
		}
		if existingID > 0 {
			existing, err := h.bookings.GetByID(r.Context(), existingID)
			if err != nil || existing == nil {
				response.InternalError(w, "Failed to retrieve existing booking")
				return
			}
			estimate := h.pricer.Estimate(existing.StartAt, existing.DurationHours, existing.HourlyRate, existing.Membership)
			response.WriteJSON(w, http.StatusOK, bookingCreateRes{Booking: existing, Estimate: estimate})
			return
		}
	}

	existing, err := h.bookings.ListForTableOnDay(r.Context(), req.TableID, start)
	if err != nil {
		response.InternalError(w, "Failed to check availability")
		return
	}

	candidate := conflict.Candidate{TableID: req.TableID, StartAt: start, DurationHours: req.DurationHours}
	res := h.detector.Detect(candidate, existing)
	if res.HasConflict() && !(req.Force && res.CanForce) {
		response.WriteJSON(w, http.StatusConflict, res)
		return
	}

	estimate := h.pricer.Estimate(start, req.DurationHours, table.HourlyRate, membership)

	booking, err := h.bookings.Create(r.Context(), &domain.Booking{
		TableID:       req.TableID,
		PlayerName:    req.PlayerName,
		PlayerEmail:   req.PlayerEmail,
		PlayerPhone:   req.PlayerPhone,
		StartAt:       start,
		DurationHours: req.DurationHours,
		HourlyRate:    table.HourlyRate,
		Membership:    membership,
		Notes:         req.Notes,
	})
	if err != nil {
		response.InternalError(w, "Failed to create booking")
		return
	}

	if idempotencyKey != "" {
		if _, err := h.idem.CheckOrCreate(r.Context(), idempotencyKey, booking.ID); err != nil {
			logger.ErrorContext(r.Context(), "Failed to store idempotency record", "error", err, "booking_id", booking.ID)
		}
	}

	event := events.BookingCreatedEvent{
		BookingID:     booking.ID,
		TableID:       table.ID,
		TableName:     table.Name,
		PlayerName:    booking.PlayerName,
		PlayerEmail:   booking.PlayerEmail,
		StartAt:       booking.StartAt,
		DurationHours: booking.DurationHours,
		EstimatedCost: estimate.Total,
		Forced:        req.Force && res.HasConflict(),
		CreatedAt:     booking.CreatedAt,
	}
	if err := h.bus.Publish(r.Context(), events.BookingCreated, event); err != nil {
		logger.ErrorContext(r.Context(), "Failed to publish booking created event", "error", err, "booking_id", booking.ID)
	}

	response.WriteJSON(w, http.StatusCreated, bookingCreateRes{
		Booking:  booking,
		Estimate: estimate,
		Warnings: res.Conflicts,
	})
}

// CheckAvailability runs the conflict detector for a proposed interval
// without touching any state. Safe to call repeatedly.
func (h *Handlers) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	var req domain.AvailabilityReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	start, ok := parseStartAt(req.StartAt)
	if !ok {
		response.BadRequest(w, "start_at must be RFC3339")
		return
	}
	if code, msg := validateSession(start, req.DurationHours); code != "" {
		response.WriteError(w, http.StatusBadRequest, msg, code)
		return
	}

	existing, err := h.bookings.ListForTableOnDay(r.Context(), req.TableID, start)
	if err != nil {
		response.InternalError(w, "Failed to check availability")
		return
	}

	res := h.detector.Detect(conflict.Candidate{
		TableID:       req.TableID,
		StartAt:       start,
		DurationHours: req.DurationHours,
	}, existing)

	response.WriteJSON(w, http.StatusOK, res)
}

// GetBooking returns a booking either by manage token (player access)
// or directly for staff.
func (h *Handlers) GetBooking(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid booking ID")
		return
	}

	if token := r.URL.Query().Get("manage_token"); token != "" {
		booking, err := h.bookings.GetByIDWithToken(r.Context(), id, token)
		if err != nil {
			response.InternalError(w, "Failed to retrieve booking")
			return
		}
		if booking == nil {
			response.NotFound(w, "Booking not found")
			return
		}
		response.WriteJSON(w, http.StatusOK, booking)
		return
	}

	if middleware.Claims(r) == nil {
		response.Unauthorized(w, "Staff token or manage_token required")
		return
	}

	booking, err := h.bookings.GetByID(r.Context(), id)
	if err != nil {
		response.InternalError(w, "Failed to retrieve booking")
		return
	}
	if booking == nil {
		response.NotFound(w, "Booking not found")
		return
	}
	response.WriteJSON(w, http.StatusOK, booking)
}

// ListBookings is the staff desk view, newest sessions first.
func (h *Handlers) ListBookings(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	var statusPtr *domain.BookingStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		st, ok := domain.ParseBookingStatus(raw)
		if !ok {
			response.BadRequest(w, "Invalid status parameter")
			return
		}
		statusPtr = &st
	}

	bookings, err := h.bookings.List(r.Context(), limit, offset, statusPtr)
	if err != nil {
		response.InternalError(w, "Failed to retrieve bookings")
		return
	}
	response.WriteJSON(w, http.StatusOK, bookings)
}

// UpdateBooking applies a staff patch. A time change re-runs conflict
// detection against the rest of the table's day.
func (h *Handlers) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid booking ID")
		return
	}

	var patch domain.BookingPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	existing, err := h.bookings.GetByID(r.Context(), id)
	if err != nil {
		response.InternalError(w, "Failed to retrieve booking")
		return
	}
	if existing == nil {
		response.NotFound(w, "Booking not found")
		return
	}
	if existing.Status == domain.BookingCancelled {
		response.WriteError(w, http.StatusConflict, "Booking is cancelled", response.CodeCancelled)
		return
	}

	upd := postgres.BookingUpdate{Notes: patch.Notes}

	start := existing.StartAt
	hours := existing.DurationHours
	timeChanged := false
	if patch.StartAt != nil {
		t, ok := parseStartAt(*patch.StartAt)
		if !ok {
			response.BadRequest(w, "start_at must be RFC3339")
			return
		}
		start = t
		upd.StartAt = &t
		timeChanged = true
	}
	if patch.DurationHours != nil {
		hours = *patch.DurationHours
		upd.DurationHours = patch.DurationHours
		timeChanged = true
	}
	if patch.Status != nil {
		st, ok := domain.ParseBookingStatus(*patch.Status)
		if !ok {
			response.BadRequest(w, "Invalid status")
			return
		}
		upd.Status = &st
	}

	if timeChanged {
		if code, msg := validateSession(start, hours); code != "" {
			response.WriteError(w, http.StatusBadRequest, msg, code)
			return
		}
		others, err := h.bookings.ListForTableOnDay(r.Context(), existing.TableID, start)
		if err != nil {
			response.InternalError(w, "Failed to check availability")
			return
		}
		// The booking being moved must not conflict with itself.
		peers := others[:0]
		for _, b := range others {
			if b.ID != existing.ID {
				peers = append(peers, b)
			}
		}
		res := h.detector.Detect(conflict.Candidate{
			TableID:       existing.TableID,
			StartAt:       start,
			DurationHours: hours,
		}, peers)
		if res.HasConflict() {
			response.WriteJSON(w, http.StatusConflict, res)
			return
		}
	}

	updated, err := h.bookings.Update(r.Context(), id, upd)
	if err != nil {
		response.InternalError(w, "Failed to update booking")
		return
	}
	if updated == nil {
		response.NotFound(w, "Booking not found")
		return
	}

	event := events.BookingUpdatedEvent{
		BookingID:   updated.ID,
		PlayerEmail: updated.PlayerEmail,
		Changes:     changedFields(existing, updated),
		UpdatedAt:   updated.UpdatedAt,
	}
	if err := h.bus.Publish(r.Context(), events.BookingUpdated, event); err != nil {
		logger.ErrorContext(r.Context(), "Failed to publish booking updated event", "error", err, "booking_id", updated.ID)
	}

	response.WriteJSON(w, http.StatusOK, updated)
}

// CancelBooking releases the slot, by manage token for players or
// directly for staff.
func (h *Handlers) CancelBooking(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid booking ID")
		return
	}

	booking, err := h.bookings.GetByID(r.Context(), id)
	if err != nil {
		response.InternalError(w, "Failed to retrieve booking")
		return
	}
	if booking == nil {
		response.NotFound(w, "Booking not found")
		return
	}

	var cancelled bool
	if token := r.URL.Query().Get("manage_token"); token != "" {
		cancelled, err = h.bookings.CancelWithToken(r.Context(), id, token)
	} else if middleware.Claims(r) != nil {
		cancelled, err = h.bookings.Cancel(r.Context(), id)
	} else {
		response.Unauthorized(w, "Staff token or manage_token required")
		return
	}
	if err != nil {
		response.InternalError(w, "Failed to cancel booking")
		return
	}
	if !cancelled {
		response.WriteError(w, http.StatusConflict, "Booking cannot be cancelled", response.CodeCancelled)
		return
	}

	event := events.BookingCancelledEvent{
		BookingID:   booking.ID,
		TableID:     booking.TableID,
		PlayerEmail: booking.PlayerEmail,
		StartAt:     booking.StartAt,
		CancelledAt: time.Now(),
	}
	if err := h.bus.Publish(r.Context(), events.BookingCancelled, event); err != nil {
		logger.ErrorContext(r.Context(), "Failed to publish booking cancelled event", "error", err, "booking_id", booking.ID)
	}

	w.WriteHeader(http.StatusNoContent)
}

// FinalizeBooking closes out a session: final bill from the pricing
// engine, stored total, optional payment intent, receipt event.
func (h *Handlers) FinalizeBooking(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid booking ID")
		return
	}

	var req domain.FinalizeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}
	if req.AdditionalCharges < 0 {
		response.BadRequest(w, "additional_charges cannot be negative")
		return
	}

	booking, err := h.bookings.GetByID(r.Context(), id)
	if err != nil {
		response.InternalError(w, "Failed to retrieve booking")
		return
	}
	if booking == nil {
		response.NotFound(w, "Booking not found")
		return
	}
	if booking.Status == domain.BookingCancelled || booking.Status == domain.BookingCompleted {
		response.WriteError(w, http.StatusConflict, "Booking already closed", response.CodeCancelled)
		return
	}

	var bill pricing.Breakdown
	if req.EndAt != "" {
		end, ok := parseStartAt(req.EndAt)
		if !ok {
			response.BadRequest(w, "end_at must be RFC3339")
			return
		}
		if !end.After(booking.StartAt) {
			response.BadRequest(w, "end_at must be after the session start")
			return
		}
		bill = h.pricer.Finalize(booking.StartAt, end, booking.HourlyRate, booking.Membership, req.AdditionalCharges)
	} else {
		bill = h.pricer.Finalize(booking.StartAt, booking.EndAt(), booking.HourlyRate, booking.Membership, req.AdditionalCharges)
	}

	updated, err := h.bookings.Finalize(r.Context(), id, req.AdditionalCharges, bill.Total)
	if err != nil {
		response.InternalError(w, "Failed to finalize booking")
		return
	}
	if updated == nil {
		response.WriteError(w, http.StatusConflict, "Booking already closed", response.CodeCancelled)
		return
	}

	var intentID string
	if req.CollectPayment && h.payments.Enabled() {
		intentID, err = h.payments.CreateBillIntent(updated.ID, bill.Total, updated.PlayerEmail)
		if err != nil {
			logger.ErrorContext(r.Context(), "Failed to create payment intent", "error", err, "booking_id", updated.ID)
		}
	}

	event := events.BillFinalizedEvent{
		BookingID:       updated.ID,
		PlayerName:      updated.PlayerName,
		PlayerEmail:     updated.PlayerEmail,
		BilledHours:     bill.BilledHours,
		Subtotal:        bill.Subtotal,
		Tax:             bill.Tax,
		Total:           bill.Total,
		PaymentIntentID: intentID,
		FinalizedAt:     time.Now(),
	}
	if err := h.bus.Publish(r.Context(), events.BillFinalized, event); err != nil {
		logger.ErrorContext(r.Context(), "Failed to publish bill finalized event", "error", err, "booking_id", updated.ID)
	}

	response.WriteJSON(w, http.StatusOK, map[string]any{
		"booking":           updated,
		"bill":              bill,
		"payment_intent_id": intentID,
	})
}

// CurrentCost prices a running session against the engine clock, for
// the live session display.
func (h *Handlers) CurrentCost(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid booking ID")
		return
	}

	booking, err := h.bookings.GetByID(r.Context(), id)
	if err != nil {
		response.InternalError(w, "Failed to retrieve booking")
		return
	}
	if booking == nil {
		response.NotFound(w, "Booking not found")
		return
	}

	response.WriteJSON(w, http.StatusOK, h.pricer.Current(booking.StartAt, booking.HourlyRate, booking.Membership))
}

func changedFields(before, after *domain.Booking) []string {
	var changes []string
	if !before.StartAt.Equal(after.StartAt) {
		changes = append(changes, "start_at")
	}
	if before.DurationHours != after.DurationHours {
		changes = append(changes, "duration_hours")
	}
	if before.Notes != after.Notes {
		changes = append(changes, "notes")
	}
	if before.Status != after.Status {
		changes = append(changes, "status")
	}
	return changes
}
