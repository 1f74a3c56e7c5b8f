package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/cueside/club-bookings/pkg/logger"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type Subscriber interface {
	Subscribe(subject string, handler func(msg *Message)) error
	QueueSubscribe(subject, queue string, handler func(msg *Message)) error
	Close() error
}

type EventBus interface {
	Publisher
	Subscriber
}

type Message struct {
	Subject   string
	Data      []byte
	Timestamp time.Time
}

type NATSEventBus struct {
	conn *nats.Conn
}

func NewNATSEventBus(url string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSEventBus{conn: conn}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "data", string(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSEventBus) Subscribe(subject string, handler func(msg *Message)) error {
	_, err := n.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
		})
	})
	return err
}

func (n *NATSEventBus) QueueSubscribe(subject, queue string, handler func(msg *Message)) error {
	_, err := n.conn.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
		})
	})
	return err
}

func (n *NATSEventBus) Close() error {
	n.conn.Close()
	return nil
}

// Subjects
const (
	BookingCreated   = "booking.created"
	BookingUpdated   = "booking.updated"
	BookingCancelled = "booking.cancelled"
	BillFinalized    = "bill.finalized"
)

type BookingCreatedEvent struct {
	BookingID     int64     `json:"booking_id"`
	TableID       int64     `json:"table_id"`
	TableName     string    `json:"table_name"`
	PlayerName    string    `json:"player_name"`
	PlayerEmail   string    `json:"player_email"`
	StartAt       time.Time `json:"start_at"`
	DurationHours float64   `json:"duration_hours"`
	EstimatedCost float64   `json:"estimated_cost"`
	Forced        bool      `json:"forced"`
	CreatedAt     time.Time `json:"created_at"`
}

type BookingUpdatedEvent struct {
	BookingID   int64     `json:"booking_id"`
	PlayerEmail string    `json:"player_email"`
	Changes     []string  `json:"changes"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type BookingCancelledEvent struct {
	BookingID   int64     `json:"booking_id"`
	TableID     int64     `json:"table_id"`
	PlayerEmail string    `json:"player_email"`
	StartAt     time.Time `json:"start_at"`
	CancelledAt time.Time `json:"cancelled_at"`
}

type BillFinalizedEvent struct {
	BookingID       int64     `json:"booking_id"`
	PlayerName      string    `json:"player_name"`
	PlayerEmail     string    `json:"player_email"`
	BilledHours     float64   `json:"billed_hours"`
	Subtotal        float64   `json:"subtotal"`
	Tax             float64   `json:"tax"`
	Total           float64   `json:"total"`
	PaymentIntentID string    `json:"payment_intent_id,omitempty"`
	FinalizedAt     time.Time `json:"finalized_at"`
}
