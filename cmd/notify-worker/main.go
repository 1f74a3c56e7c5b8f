package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/cueside/club-bookings/internal/platform/mailer"
	"github.com/cueside/club-bookings/internal/schedule"
	"github.com/cueside/club-bookings/pkg/config"
	"github.com/cueside/club-bookings/pkg/events"
	"github.com/cueside/club-bookings/pkg/logger"
)

// The notify worker turns booking events into player email: a
// confirmation when a table is booked, a receipt when the bill closes.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	bus, err := events.NewNATSEventBus(cfg.NATS.URL)
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer bus.Close()

	mail := buildMailer(cfg)

	if err := bus.QueueSubscribe(events.BookingCreated, "notify", func(msg *events.Message) {
		var ev events.BookingCreatedEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			logger.Error("Bad booking.created payload", "error", err)
			return
		}
		if ev.PlayerEmail == "" {
			return
		}
		err := mail.SendBookingConfirmation(
			ev.PlayerEmail,
			ev.PlayerName,
			ev.TableName,
			ev.StartAt.Format("Mon Jan 2 15:04"),
			schedule.FormatHours(ev.DurationHours),
			"", // manage token travels only in the booking response, never on the bus
		)
		if err != nil {
			logger.Error("Failed to send booking confirmation", "error", err, "booking_id", ev.BookingID)
		}
	}); err != nil {
		logger.Error("Failed to subscribe to booking.created", "error", err)
		os.Exit(1)
	}

	if err := bus.QueueSubscribe(events.BillFinalized, "notify", func(msg *events.Message) {
		var ev events.BillFinalizedEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			logger.Error("Bad bill.finalized payload", "error", err)
			return
		}
		if ev.PlayerEmail == "" {
			return
		}
		err := mail.SendReceipt(
			ev.PlayerEmail,
			ev.PlayerName,
			fmt.Sprintf("booking #%d", ev.BookingID),
			schedule.FormatHours(ev.BilledHours),
			money(ev.Subtotal),
			money(ev.Tax),
			money(ev.Total),
		)
		if err != nil {
			logger.Error("Failed to send receipt", "error", err, "booking_id", ev.BookingID)
		}
	}); err != nil {
		logger.Error("Failed to subscribe to bill.finalized", "error", err)
		os.Exit(1)
	}

	logger.Info("Notify worker running")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logger.Info("Notify worker shutting down")
}

func buildMailer(cfg *config.Config) mailer.Service {
	if cfg.Email.DevMode {
		return mailer.NewDevMailer()
	}
	if cfg.Email.MailerSendKey != "" {
		return mailer.NewMailerSend(cfg.Email.MailerSendKey, "CueClub", cfg.Email.SMTPFrom)
	}
	return mailer.NewSMTPMailer(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPFrom,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPass,
		cfg.Email.SMTPUseTLS,
	)
}

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}
