package mailer

import (
	"github.com/cueside/club-bookings/pkg/logger"
)

// DevMailer logs mail instead of sending it.
type DevMailer struct{}

func NewDevMailer() *DevMailer {
	return &DevMailer{}
}

func (d *DevMailer) SendBookingConfirmation(toEmail, toName, tableName, startAt, duration, manageToken string) error {
	logger.Info("[DEV MAIL] Booking confirmation",
		"to", toEmail,
		"name", toName,
		"table", tableName,
		"start_at", startAt,
		"duration", duration,
		"manage_token", manageToken,
	)
	return nil
}

func (d *DevMailer) SendReceipt(toEmail, toName, tableName, billedDuration, subtotal, tax, total string) error {
	logger.Info("[DEV MAIL] Receipt",
		"to", toEmail,
		"name", toName,
		"table", tableName,
		"billed", billedDuration,
		"subtotal", subtotal,
		"tax", tax,
		"total", total,
	)
	return nil
}
