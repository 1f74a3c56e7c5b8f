// Package pricing computes itemized session costs: billed duration
// rounding, peak and weekend multipliers, membership discounts and tax.
// Every function is pure; the only ambient input, the wall clock used for
// in-progress sessions, is injected through Engine.
package pricing

import (
	"math"
	"time"

	"github.com/cueside/club-bookings/internal/domain"
)

const (
	// Durations are billed in 15-minute steps, rounded up.
	RoundUpInterval = 15 * time.Minute
	// Sessions are billed at no less than half an hour.
	MinimumDuration = 30 * time.Minute

	// Peak window [18:00, 22:00), by wall-clock hour.
	PeakStartHour = 18
	PeakEndHour   = 22

	PeakMultiplier    = 1.5
	WeekendMultiplier = 1.2
	TaxRate           = 0.10
)

// Breakdown is the itemized result of a cost calculation. Receipt display
// relies on every intermediate being present, so nothing is collapsed.
type Breakdown struct {
	StartAt time.Time `json:"start_at"`
	EndAt   time.Time `json:"end_at"`

	ActualHours float64 `json:"actual_hours"`
	BilledHours float64 `json:"billed_hours"`
	HourlyRate  float64 `json:"hourly_rate"`

	BasePrice      float64 `json:"base_price"`
	TimeMultiplier float64 `json:"time_multiplier"`
	IsPeak         bool    `json:"is_peak"`
	IsWeekend      bool    `json:"is_weekend"`

	Membership         domain.MembershipType `json:"membership"`
	MembershipRate     float64               `json:"membership_rate"`
	MembershipDiscount float64               `json:"membership_discount"`

	AdditionalCharges float64 `json:"additional_charges"`
	Subtotal          float64 `json:"subtotal"`
	Tax               float64 `json:"tax"`
	Total             float64 `json:"total"`
}

// BilledHours rounds a raw session duration up to the nearest 15-minute
// increment and floors the result at the 30-minute minimum. The result is
// always a multiple of 0.25 and at least 0.5.
func BilledHours(actual time.Duration) float64 {
	if actual < MinimumDuration {
		actual = MinimumDuration
	}
	intervals := math.Ceil(float64(actual) / float64(RoundUpInterval))
	return intervals * RoundUpInterval.Hours()
}

// inPeakWindow reports whether a wall-clock hour falls inside [18, 22).
func inPeakWindow(hour int) bool {
	return hour >= PeakStartHour && hour < PeakEndHour
}

// isPeak mirrors the club's original three-way peak test: the session is
// peak-priced if it starts inside the window, ends inside the window, or
// spans the whole window. Hours are compared as integers, so a 17:30 start
// that runs to 19:00 is peak by its end hour.
func isPeak(start, end time.Time) bool {
	if inPeakWindow(start.Hour()) || inPeakWindow(end.Hour()) {
		return true
	}
	return start.Hour() < PeakStartHour && end.Hour() >= PeakEndHour
}

func isWeekend(start time.Time) bool {
	wd := start.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// compute is the single costing path shared by estimates, in-progress
// costs and final bills. Duration rounding happens on the raw duration,
// before any multiplier touches the price. Additional charges join the
// subtotal after the discount and are never multiplier- or
// discount-adjusted; tax applies once, on the combined subtotal.
func compute(start, end time.Time, hourlyRate float64, membership domain.MembershipType, additionalCharges float64) Breakdown {
	actual := end.Sub(start)
	billed := BilledHours(actual)

	basePrice := billed * hourlyRate

	multiplier := 1.0
	peak := isPeak(start, end)
	weekend := isWeekend(start)
	if peak {
		multiplier *= PeakMultiplier
	}
	if weekend {
		multiplier *= WeekendMultiplier
	}

	adjusted := basePrice * multiplier
	rate := membership.DiscountRate()
	discount := adjusted * rate

	subtotal := adjusted - discount + additionalCharges
	tax := subtotal * TaxRate

	return Breakdown{
		StartAt:            start,
		EndAt:              end,
		ActualHours:        actual.Hours(),
		BilledHours:        billed,
		HourlyRate:         hourlyRate,
		BasePrice:          basePrice,
		TimeMultiplier:     multiplier,
		IsPeak:             peak,
		IsWeekend:          weekend,
		Membership:         membership,
		MembershipRate:     rate,
		MembershipDiscount: discount,
		AdditionalCharges:  additionalCharges,
		Subtotal:           subtotal,
		Tax:                tax,
		Total:              subtotal + tax,
	}
}

// Estimate prices a planned session of the given length. No additional
// charges apply to estimates.
func Estimate(start time.Time, durationHours, hourlyRate float64, membership domain.MembershipType) Breakdown {
	end := start.Add(time.Duration(durationHours * float64(time.Hour)))
	return compute(start, end, hourlyRate, membership, 0)
}

// Finalize prices a completed session, folding out-of-band charges
// (food, equipment) into the bill.
func Finalize(start, end time.Time, hourlyRate float64, membership domain.MembershipType, additionalCharges float64) Breakdown {
	return compute(start, end, hourlyRate, membership, additionalCharges)
}

// Engine wraps the pure calculations with an injectable clock so that
// in-progress session costs are testable.
type Engine struct {
	now func() time.Time
}

func NewEngine(now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{now: now}
}

// Current prices an in-progress session using the engine clock as the
// provisional end. The method is identical to Finalize with end == now
// and no additional charges.
func (e *Engine) Current(start time.Time, hourlyRate float64, membership domain.MembershipType) Breakdown {
	return compute(start, e.now(), hourlyRate, membership, 0)
}

func (e *Engine) Estimate(start time.Time, durationHours, hourlyRate float64, membership domain.MembershipType) Breakdown {
	return Estimate(start, durationHours, hourlyRate, membership)
}

func (e *Engine) Finalize(start, end time.Time, hourlyRate float64, membership domain.MembershipType, additionalCharges float64) Breakdown {
	return Finalize(start, end, hourlyRate, membership, additionalCharges)
}
