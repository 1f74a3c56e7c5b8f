package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cueside/club-bookings/internal/http/response"
	"github.com/cueside/club-bookings/internal/schedule"
)

func (h *Handlers) ListTables(w http.ResponseWriter, r *http.Request) {
	tables, err := h.tables.ListActive(r.Context())
	if err != nil {
		response.InternalError(w, "Failed to retrieve tables")
		return
	}
	response.WriteJSON(w, http.StatusOK, tables)
}

type tableSlot struct {
	schedule.Slot
	Available bool `json:"available"`
}

type tableSlotsRes struct {
	TableID int64          `json:"table_id"`
	Date    string         `json:"date"`
	Hours   schedule.Hours `json:"business_hours"`
	Slots   []tableSlot    `json:"slots"`
}

// TableSlots renders a table's day as bookable windows, each flagged
// free or taken against the active bookings.
func (h *Handlers) TableSlots(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid table ID")
		return
	}

	rawDate := r.URL.Query().Get("date")
	day, err := time.Parse(schedule.DateFormat, rawDate)
	if err != nil {
		response.BadRequest(w, "date must be YYYY-MM-DD")
		return
	}

	table, err := h.tables.GetByID(r.Context(), id)
	if err != nil {
		response.InternalError(w, "Failed to look up table")
		return
	}
	if table == nil || !table.Active {
		response.NotFound(w, "Table not found")
		return
	}

	bookings, err := h.bookings.ListForTableOnDay(r.Context(), id, day)
	if err != nil {
		response.InternalError(w, "Failed to retrieve bookings")
		return
	}

	hours := schedule.BusinessHours(day)
	res := tableSlotsRes{
		TableID: id,
		Date:    rawDate,
		Hours:   hours,
		Slots:   []tableSlot{},
	}

	for s := range schedule.Slots(day, h.detector.SuggestionStep, hours.Open, hours.Close) {
		free := true
		for _, b := range bookings {
			if b.Status.Occupies() && schedule.Overlaps(s.Start, s.End, b.StartAt, b.EndAt()) {
				free = false
				break
			}
		}
		res.Slots = append(res.Slots, tableSlot{Slot: s, Available: free})
	}

	response.WriteJSON(w, http.StatusOK, res)
}
