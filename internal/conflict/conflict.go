// Package conflict decides bookability: whether a candidate session
// collides with existing bookings on the same table, how hard the
// collision is, and which nearby slots are still free. The detector is
// stateless and side-effect free; callers feed it booking data, it never
// fetches any.
package conflict

import (
	"time"

	"github.com/cueside/club-bookings/internal/domain"
	"github.com/cueside/club-bookings/internal/schedule"
)

type Severity string

const (
	SeverityNone    Severity = ""
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Candidate is a proposed booking interval on a table.
type Candidate struct {
	TableID       int64     `json:"table_id"`
	StartAt       time.Time `json:"start_at"`
	DurationHours float64   `json:"duration_hours"`
}

func (c Candidate) EndAt() time.Time {
	return c.StartAt.Add(time.Duration(c.DurationHours * float64(time.Hour)))
}

// Result reports the overlapping bookings for the candidate's table, free
// alternatives within business hours, and whether the caller may force
// the booking through anyway.
type Result struct {
	Conflicts   []domain.Booking `json:"conflicts"`
	Suggestions []schedule.Slot  `json:"suggestions"`
	Severity    Severity         `json:"severity"`
	CanForce    bool             `json:"can_force"`
}

func (r Result) HasConflict() bool { return len(r.Conflicts) > 0 }

// Detector holds the scan parameters for alternative-slot suggestions.
type Detector struct {
	// Step between candidate starts when scanning for free slots.
	SuggestionStep time.Duration
	// Upper bound on returned suggestions.
	MaxSuggestions int
}

func NewDetector() *Detector {
	return &Detector{
		SuggestionStep: 30 * time.Minute,
		MaxSuggestions: 3,
	}
}

// overlapping returns the bookings on the candidate's table whose
// half-open interval intersects [start, end). Only cancelled bookings
// do not occupy the table.
func overlapping(tableID int64, start, end time.Time, existing []domain.Booking) []domain.Booking {
	var hits []domain.Booking
	for _, b := range existing {
		if b.TableID != tableID || !b.Status.Occupies() {
			continue
		}
		if schedule.Overlaps(start, end, b.StartAt, b.EndAt()) {
			hits = append(hits, b)
		}
	}
	return hits
}

// Detect checks the candidate against the existing bookings and, when it
// collides, scans forward for free alternatives. Any non-pending overlap
// is a hard conflict; overlaps that are only pending can be forced
// through by staff.
func (d *Detector) Detect(c Candidate, existing []domain.Booking) Result {
	hits := overlapping(c.TableID, c.StartAt, c.EndAt(), existing)
	if len(hits) == 0 {
		return Result{Conflicts: []domain.Booking{}, Suggestions: []schedule.Slot{}, CanForce: true}
	}

	severity := SeverityWarning
	for _, b := range hits {
		if b.Status != domain.BookingPending {
			severity = SeverityError
			break
		}
	}

	return Result{
		Conflicts:   hits,
		Suggestions: d.Suggest(c, existing),
		Severity:    severity,
		CanForce:    severity == SeverityWarning,
	}
}

// Suggest scans forward from the candidate's requested start, in fixed
// steps, for windows of the requested duration that are conflict-free and
// end by closing time. The scan is bounded by the day's close, so it
// always terminates even on a fully booked table.
func (d *Detector) Suggest(c Candidate, existing []domain.Booking) []schedule.Slot {
	suggestions := []schedule.Slot{}
	if d.MaxSuggestions <= 0 || d.SuggestionStep <= 0 || c.DurationHours <= 0 {
		return suggestions
	}

	hours := schedule.BusinessHours(c.StartAt)
	closeAt := schedule.At(c.StartAt, hours.Close)
	if closeAt.IsZero() {
		return suggestions
	}

	dur := time.Duration(c.DurationHours * float64(time.Hour))
	for start := c.StartAt.Add(d.SuggestionStep); !start.Add(dur).After(closeAt); start = start.Add(d.SuggestionStep) {
		end := start.Add(dur)
		if len(overlapping(c.TableID, start, end, existing)) > 0 {
			continue
		}
		suggestions = append(suggestions, schedule.Slot{
			Start: start,
			End:   end,
			Label: schedule.FormatClock(start) + " - " + schedule.FormatClock(end),
		})
		if len(suggestions) == d.MaxSuggestions {
			break
		}
	}
	return suggestions
}
