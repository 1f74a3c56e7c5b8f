package domain

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
	BookingNoShow    BookingStatus = "no_show"
)

func ParseBookingStatus(s string) (BookingStatus, bool) {
	switch BookingStatus(s) {
	case BookingPending, BookingConfirmed, BookingCancelled, BookingCompleted, BookingNoShow:
		return BookingStatus(s), true
	default:
		return "", false
	}
}

// Occupies reports whether the booking still holds its table slot.
// Only cancellation releases the slot; a no-show keeps it blocked until
// staff cancel it explicitly.
func (s BookingStatus) Occupies() bool {
	return s != BookingCancelled
}

type MembershipType string

const (
	MembershipNone     MembershipType = "none"
	MembershipBasic    MembershipType = "basic"
	MembershipStandard MembershipType = "standard"
	MembershipPremium  MembershipType = "premium"
)

func ParseMembershipType(s string) (MembershipType, bool) {
	switch MembershipType(s) {
	case MembershipBasic, MembershipStandard, MembershipPremium:
		return MembershipType(s), true
	case MembershipNone, "":
		return MembershipNone, true
	default:
		return "", false
	}
}

// DiscountRate returns the fractional discount for the tier. Unknown tiers
// get no discount rather than an error.
func (m MembershipType) DiscountRate() float64 {
	switch m {
	case MembershipBasic:
		return 0.05
	case MembershipStandard:
		return 0.10
	case MembershipPremium:
		return 0.15
	default:
		return 0
	}
}

const (
	MinBookingHours = 0.5
	MaxBookingHours = 8.0
)

type Booking struct {
	ID          int64         `json:"id"`
	ManageToken string        `json:"manage_token"`
	Status      BookingStatus `json:"status"`

	TableID int64 `json:"table_id"`

	PlayerName  string `json:"player_name"`
	PlayerEmail string `json:"player_email"`
	PlayerPhone string `json:"player_phone"`

	StartAt       time.Time      `json:"start_at"`
	DurationHours float64        `json:"duration_hours"`
	HourlyRate    float64        `json:"hourly_rate"`
	Membership    MembershipType `json:"membership"`
	Notes         string         `json:"notes"`

	AdditionalCharges float64  `json:"additional_charges"`
	FinalTotal        *float64 `json:"final_total,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EndAt is the scheduled end of the session.
func (b *Booking) EndAt() time.Time {
	return b.StartAt.Add(time.Duration(b.DurationHours * float64(time.Hour)))
}

type BookingCreateReq struct {
	TableID       int64   `json:"table_id"`
	PlayerName    string  `json:"player_name"`
	PlayerEmail   string  `json:"player_email"`
	PlayerPhone   string  `json:"player_phone"`
	StartAt       string  `json:"start_at"` // RFC3339
	DurationHours float64 `json:"duration_hours"`
	Membership    string  `json:"membership"`
	Notes         string  `json:"notes"`
	Force         bool    `json:"force"`
}

type BookingPatch struct {
	StartAt       *string  `json:"start_at,omitempty"`
	DurationHours *float64 `json:"duration_hours,omitempty"`
	Notes         *string  `json:"notes,omitempty"`
	Status        *string  `json:"status,omitempty"`
}

type AvailabilityReq struct {
	TableID       int64   `json:"table_id"`
	StartAt       string  `json:"start_at"` // RFC3339
	DurationHours float64 `json:"duration_hours"`
}

type FinalizeReq struct {
	EndAt             string  `json:"end_at,omitempty"` // RFC3339; empty means "now"
	AdditionalCharges float64 `json:"additional_charges"`
	CollectPayment    bool    `json:"collect_payment"`
}
