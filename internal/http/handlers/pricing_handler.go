package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/cueside/club-bookings/internal/domain"
	"github.com/cueside/club-bookings/internal/http/response"
)

type estimateReq struct {
	TableID       int64   `json:"table_id,omitempty"`
	HourlyRate    float64 `json:"hourly_rate,omitempty"`
	StartAt       string  `json:"start_at"`
	DurationHours float64 `json:"duration_hours"`
	Membership    string  `json:"membership"`
}

// EstimateCost quotes a session before anything is booked. The rate
// comes from the table when table_id is given, otherwise from the
// request itself.
func (h *Handlers) EstimateCost(w http.ResponseWriter, r *http.Request) {
	var req estimateReq
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

	rate := req.HourlyRate
	if req.TableID > 0 {
		table, err := h.tables.GetByID(r.Context(), req.TableID)
		if err != nil {
			response.InternalError(w, "Failed to look up table")
			return
		}
		if table == nil {
			response.NotFound(w, "Table not found")
			return
		}
		rate = table.HourlyRate
	}
	if rate <= 0 {
		response.BadRequest(w, "hourly_rate must be positive")
		return
	}

	response.WriteJSON(w, http.StatusOK, h.pricer.Estimate(start, req.DurationHours, rate, membership))
}
