// Package schedule holds the pure date/time helpers shared by the pricing
// engine and the conflict detector: interval overlap, business hours,
// slot generation and duration formatting. Functions here never panic on
// bad input; they degrade to sentinel values so display code stays simple.
package schedule

import (
	"fmt"
	"iter"
	"time"
)

const (
	// Sentinel returned by formatters when handed a zero time.
	InvalidDate = "Invalid Date"
	// Sentinel returned by BusinessHours for a zero date.
	Unknown = "Unknown"

	ClockFormat = "15:04"
	DateFormat  = "2006-01-02"
)

// Overlaps reports whether the half-open intervals [start1, end1) and
// [start2, end2) intersect. Touching endpoints (end1 == start2) do not
// count as overlap. Zero times are treated as invalid input and yield false.
func Overlaps(start1, end1, start2, end2 time.Time) bool {
	if start1.IsZero() || end1.IsZero() || start2.IsZero() || end2.IsZero() {
		return false
	}
	return start1.Before(end2) && start2.Before(end1)
}

// FormatDuration renders a duration as "Xh Ym", dropping the zero
// component. A zero duration renders as "0m". Negative durations are
// caller error and render with negative components.
func FormatDuration(d time.Duration) string {
	h := int(d / time.Hour)
	m := int(d/time.Minute) - h*60
	switch {
	case h != 0 && m != 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case h != 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dm", m)
	}
}

// FormatHours renders a decimal hour count as "Xh Ym".
// FormatHours(1.5) == "1h 30m", FormatHours(0.75) == "45m".
func FormatHours(hours float64) string {
	return FormatDuration(time.Duration(hours * float64(time.Hour)))
}

// FormatClock renders the wall-clock part of a timestamp as "HH:MM",
// or InvalidDate for a zero time.
func FormatClock(t time.Time) string {
	if t.IsZero() {
		return InvalidDate
	}
	return t.Format(ClockFormat)
}

// Hours is a club opening window, both ends as "HH:MM" strings.
type Hours struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

// BusinessHours returns the club schedule for the given date. Three fixed
// schedules apply: weekdays, Saturday and Sunday. A zero date yields the
// Unknown sentinel for both ends.
func BusinessHours(date time.Time) Hours {
	if date.IsZero() {
		return Hours{Open: Unknown, Close: Unknown}
	}
	switch date.Weekday() {
	case time.Saturday:
		return Hours{Open: "09:00", Close: "23:00"}
	case time.Sunday:
		return Hours{Open: "11:00", Close: "21:00"}
	default:
		return Hours{Open: "10:00", Close: "23:00"}
	}
}

// Slot is one bookable window on a table's calendar.
type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Label string    `json:"label"`
}

// At anchors an "HH:MM" clock string onto the calendar date of day,
// in day's location. The clock string is assumed well-formed; a malformed
// one yields the zero time.
func At(day time.Time, clock string) time.Time {
	t, err := time.Parse(ClockFormat, clock)
	if err != nil {
		return time.Time{}
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location())
}

// Slots yields slot descriptors for date at the given cadence, from open
// (inclusive) up to but excluding close. The sequence is finite and can be
// ranged over any number of times. Clock strings are assumed well-formed
// "HH:MM"; a non-positive interval yields an empty sequence.
func Slots(date time.Time, interval time.Duration, open, close string) iter.Seq[Slot] {
	return func(yield func(Slot) bool) {
		if interval <= 0 {
			return
		}
		start := At(date, open)
		end := At(date, close)
		if start.IsZero() || end.IsZero() {
			return
		}
		for t := start; t.Before(end); t = t.Add(interval) {
			s := Slot{
				Start: t,
				End:   t.Add(interval),
				Label: t.Format(ClockFormat) + " - " + t.Add(interval).Format(ClockFormat),
			}
			if !yield(s) {
				return
			}
		}
	}
}
