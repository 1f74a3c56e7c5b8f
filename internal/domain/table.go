package domain

import "time"

type TableType string

const (
	TableSnooker   TableType = "snooker"
	TablePool      TableType = "pool"
	TableBilliards TableType = "billiards"
)

func ParseTableType(s string) (TableType, bool) {
	switch TableType(s) {
	case TableSnooker, TablePool, TableBilliards:
		return TableType(s), true
	default:
		return "", false
	}
}

type Table struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Type       TableType `json:"type"`
	HourlyRate float64   `json:"hourly_rate"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
