package conflict

import (
	"testing"
	"time"

	"github.com/cueside/club-bookings/internal/domain"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02 15:04", value)
	if err != nil {
		t.Fatalf("bad test time %q: %v", value, err)
	}
	return ts
}

func booking(t *testing.T, id, tableID int64, start string, hours float64, status domain.BookingStatus) domain.Booking {
	t.Helper()
	return domain.Booking{
		ID:            id,
		TableID:       tableID,
		StartAt:       mustTime(t, start),
		DurationHours: hours,
		Status:        status,
	}
}

func TestDetectOverlap(t *testing.T) {
	// Existing 14:00-16:00 confirmed; candidate 15:00-17:00 on the same
	// table collides and cannot be forced.
	existing := []domain.Booking{
		booking(t, 1, 1, "2025-03-10 14:00", 2, domain.BookingConfirmed),
	}
	d := NewDetector()
	res := d.Detect(Candidate{TableID: 1, StartAt: mustTime(t, "2025-03-10 15:00"), DurationHours: 2}, existing)

	if !res.HasConflict() || len(res.Conflicts) != 1 {
		t.Fatalf("expected one conflict, got %+v", res)
	}
	if res.Conflicts[0].ID != 1 {
		t.Errorf("conflicting booking ID = %d, want 1", res.Conflicts[0].ID)
	}
	if res.Severity != SeverityError || res.CanForce {
		t.Errorf("confirmed overlap should be a hard conflict, got severity=%q canForce=%v", res.Severity, res.CanForce)
	}
}

func TestDetectTouchingBoundaryIsFree(t *testing.T) {
	// Existing 14:00-16:00; candidate 16:00-17:00 touches but does not
	// overlap.
	existing := []domain.Booking{
		booking(t, 1, 1, "2025-03-10 14:00", 2, domain.BookingConfirmed),
	}
	d := NewDetector()
	res := d.Detect(Candidate{TableID: 1, StartAt: mustTime(t, "2025-03-10 16:00"), DurationHours: 1}, existing)

	if res.HasConflict() {
		t.Fatalf("touching boundary reported as conflict: %+v", res)
	}
	if !res.CanForce || res.Severity != SeverityNone {
		t.Errorf("clear result should be forceable with no severity, got %+v", res)
	}
}

func TestDetectIgnoresOtherTablesAndCancelled(t *testing.T) {
	existing := []domain.Booking{
		booking(t, 1, 2, "2025-03-10 14:00", 2, domain.BookingConfirmed), // other table
		booking(t, 2, 1, "2025-03-10 14:00", 2, domain.BookingCancelled), // released
	}
	d := NewDetector()
	res := d.Detect(Candidate{TableID: 1, StartAt: mustTime(t, "2025-03-10 14:30"), DurationHours: 1}, existing)

	if res.HasConflict() {
		t.Fatalf("cancelled and foreign bookings should not conflict: %+v", res)
	}
}

func TestDetectNoShowStillOccupiesTable(t *testing.T) {
	// A no-show keeps its slot until staff cancel it; overlapping one is
	// a hard conflict like any other non-pending booking.
	existing := []domain.Booking{
		booking(t, 1, 1, "2025-03-10 14:00", 2, domain.BookingNoShow),
	}
	d := NewDetector()
	res := d.Detect(Candidate{TableID: 1, StartAt: mustTime(t, "2025-03-10 14:00"), DurationHours: 2}, existing)

	if !res.HasConflict() || len(res.Conflicts) != 1 {
		t.Fatalf("no-show booking should still conflict, got %+v", res)
	}
	if res.Severity != SeverityError || res.CanForce {
		t.Errorf("no-show overlap should be a hard conflict, got severity=%q canForce=%v", res.Severity, res.CanForce)
	}
}

func TestDetectPendingOverlapIsWarning(t *testing.T) {
	existing := []domain.Booking{
		booking(t, 1, 1, "2025-03-10 14:00", 2, domain.BookingPending),
	}
	d := NewDetector()
	res := d.Detect(Candidate{TableID: 1, StartAt: mustTime(t, "2025-03-10 15:00"), DurationHours: 1}, existing)

	if res.Severity != SeverityWarning || !res.CanForce {
		t.Errorf("pending overlap should be forceable warning, got %+v", res)
	}
}

func TestSuggestSkipsBusyWindows(t *testing.T) {
	// Monday, close 23:00. Table busy 14:00-16:00 and 16:30-17:30; a 1h
	// candidate at 14:00 should be pointed past the busy stretch.
	existing := []domain.Booking{
		booking(t, 1, 1, "2025-03-10 14:00", 2, domain.BookingConfirmed),
		booking(t, 2, 1, "2025-03-10 16:30", 1, domain.BookingConfirmed),
	}
	d := NewDetector()
	res := d.Detect(Candidate{TableID: 1, StartAt: mustTime(t, "2025-03-10 14:00"), DurationHours: 1}, existing)

	if !res.HasConflict() {
		t.Fatal("expected conflict")
	}
	if len(res.Suggestions) != d.MaxSuggestions {
		t.Fatalf("got %d suggestions, want %d", len(res.Suggestions), d.MaxSuggestions)
	}
	first := res.Suggestions[0]
	if got := first.Start.Format("15:04"); got != "17:30" {
		t.Errorf("first free slot starts %s, want 17:30", got)
	}
	for _, s := range res.Suggestions {
		if len(overlapping(1, s.Start, s.End, existing)) > 0 {
			t.Errorf("suggestion %s overlaps an existing booking", s.Label)
		}
	}
}

func TestSuggestBoundedByClose(t *testing.T) {
	// Sunday closes at 21:00; a 2h candidate at 20:00 has no room left
	// today, and the scan must still terminate.
	existing := []domain.Booking{
		booking(t, 1, 1, "2025-03-16 20:00", 1, domain.BookingConfirmed),
	}
	d := NewDetector()
	res := d.Detect(Candidate{TableID: 1, StartAt: mustTime(t, "2025-03-16 20:00"), DurationHours: 2}, existing)

	if !res.HasConflict() {
		t.Fatal("expected conflict")
	}
	if len(res.Suggestions) != 0 {
		t.Errorf("no slot fits before close, got %+v", res.Suggestions)
	}
}

func TestDetectIdempotent(t *testing.T) {
	existing := []domain.Booking{
		booking(t, 1, 1, "2025-03-10 14:00", 2, domain.BookingConfirmed),
	}
	d := NewDetector()
	c := Candidate{TableID: 1, StartAt: mustTime(t, "2025-03-10 15:00"), DurationHours: 2}

	first := d.Detect(c, existing)
	second := d.Detect(c, existing)
	if len(first.Conflicts) != len(second.Conflicts) || first.Severity != second.Severity {
		t.Errorf("repeated detection diverged: %+v vs %+v", first, second)
	}
}
