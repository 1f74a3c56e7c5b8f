package schedule

import (
	"testing"
	"time"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02 15:04", value)
	if err != nil {
		t.Fatalf("bad test time %q: %v", value, err)
	}
	return ts
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd string
		want                       bool
	}{
		{"partial overlap", "2025-03-10 14:00", "2025-03-10 16:00", "2025-03-10 15:00", "2025-03-10 17:00", true},
		{"identical intervals", "2025-03-10 14:00", "2025-03-10 16:00", "2025-03-10 14:00", "2025-03-10 16:00", true},
		{"contained interval", "2025-03-10 14:00", "2025-03-10 18:00", "2025-03-10 15:00", "2025-03-10 16:00", true},
		{"touching endpoints", "2025-03-10 14:00", "2025-03-10 16:00", "2025-03-10 16:00", "2025-03-10 17:00", false},
		{"touching reversed", "2025-03-10 16:00", "2025-03-10 17:00", "2025-03-10 14:00", "2025-03-10 16:00", false},
		{"disjoint", "2025-03-10 09:00", "2025-03-10 10:00", "2025-03-10 14:00", "2025-03-10 16:00", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Overlaps(mustTime(t, tc.aStart), mustTime(t, tc.aEnd), mustTime(t, tc.bStart), mustTime(t, tc.bEnd))
			if got != tc.want {
				t.Errorf("Overlaps = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestOverlapsZeroTime(t *testing.T) {
	a := mustTime(t, "2025-03-10 14:00")
	b := mustTime(t, "2025-03-10 16:00")
	if Overlaps(time.Time{}, b, a, b) {
		t.Error("zero start should not overlap")
	}
	if Overlaps(a, b, a, time.Time{}) {
		t.Error("zero end should not overlap")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0m"},
		{45 * time.Minute, "45m"},
		{time.Hour, "1h"},
		{90 * time.Minute, "1h 30m"},
		{2*time.Hour + 15*time.Minute, "2h 15m"},
		{8 * time.Hour, "8h"},
	}
	for _, tc := range tests {
		if got := FormatDuration(tc.d); got != tc.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}

func TestFormatHours(t *testing.T) {
	tests := []struct {
		hours float64
		want  string
	}{
		{0, "0m"},
		{0.5, "30m"},
		{0.75, "45m"},
		{1, "1h"},
		{1.5, "1h 30m"},
		{2.25, "2h 15m"},
	}
	for _, tc := range tests {
		if got := FormatHours(tc.hours); got != tc.want {
			t.Errorf("FormatHours(%v) = %q, want %q", tc.hours, got, tc.want)
		}
	}
}

func TestFormatClock(t *testing.T) {
	if got := FormatClock(time.Time{}); got != InvalidDate {
		t.Errorf("FormatClock(zero) = %q, want %q", got, InvalidDate)
	}
	if got := FormatClock(mustTime(t, "2025-03-10 18:05")); got != "18:05" {
		t.Errorf("FormatClock = %q, want 18:05", got)
	}
}

func TestBusinessHours(t *testing.T) {
	tests := []struct {
		name string
		date string
		want Hours
	}{
		{"monday", "2025-03-10 00:00", Hours{Open: "10:00", Close: "23:00"}},
		{"friday", "2025-03-14 00:00", Hours{Open: "10:00", Close: "23:00"}},
		{"saturday", "2025-03-15 00:00", Hours{Open: "09:00", Close: "23:00"}},
		{"sunday", "2025-03-16 00:00", Hours{Open: "11:00", Close: "21:00"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := BusinessHours(mustTime(t, tc.date)); got != tc.want {
				t.Errorf("BusinessHours = %+v, want %+v", got, tc.want)
			}
		})
	}

	if got := BusinessHours(time.Time{}); got.Open != Unknown || got.Close != Unknown {
		t.Errorf("BusinessHours(zero) = %+v, want Unknown sentinels", got)
	}
}

func TestSlots(t *testing.T) {
	day := mustTime(t, "2025-03-10 00:00")

	var slots []Slot
	for s := range Slots(day, 30*time.Minute, "10:00", "12:00") {
		slots = append(slots, s)
	}
	if len(slots) != 4 {
		t.Fatalf("got %d slots, want 4", len(slots))
	}
	if got := slots[0].Label; got != "10:00 - 10:30" {
		t.Errorf("first label = %q", got)
	}
	if got := slots[3].Start.Format("15:04"); got != "11:30" {
		t.Errorf("last start = %q, want 11:30", got)
	}
	// Close is exclusive: no slot starting at 12:00.
	for _, s := range slots {
		if !s.Start.Before(At(day, "12:00")) {
			t.Errorf("slot %v starts at or after close", s.Start)
		}
	}
}

func TestSlotsRestartable(t *testing.T) {
	day := mustTime(t, "2025-03-15 00:00")
	seq := Slots(day, time.Hour, "09:00", "13:00")

	count := func() int {
		n := 0
		for range seq {
			n++
		}
		return n
	}
	if first, second := count(), count(); first != second || first != 4 {
		t.Errorf("sequence not restartable: first=%d second=%d", first, second)
	}
}

func TestSlotsEarlyBreak(t *testing.T) {
	day := mustTime(t, "2025-03-10 00:00")
	n := 0
	for range Slots(day, 15*time.Minute, "10:00", "23:00") {
		n++
		if n == 2 {
			break
		}
	}
	if n != 2 {
		t.Errorf("broke after %d slots, want 2", n)
	}
}

func TestSlotsBadInterval(t *testing.T) {
	day := mustTime(t, "2025-03-10 00:00")
	for range Slots(day, 0, "10:00", "12:00") {
		t.Fatal("zero interval should yield nothing")
	}
}
