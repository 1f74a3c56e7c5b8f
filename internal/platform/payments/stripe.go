// Package payments creates Stripe payment intents for finalized bills.
// The club can run without Stripe configured; Enabled gates every call.
package payments

import (
	"fmt"
	"math"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

type StripeClient struct {
	api     *client.API
	enabled bool
}

func NewStripeClient(secretKey string) *StripeClient {
	c := &StripeClient{enabled: secretKey != ""}
	if c.enabled {
		c.api = &client.API{}
		c.api.Init(secretKey, nil)
	}
	return c
}

func (c *StripeClient) Enabled() bool { return c.enabled }

// CreateBillIntent opens a payment intent for a finalized bill total.
// Amounts are converted to minor units (cents), rounded half up.
func (c *StripeClient) CreateBillIntent(bookingID int64, total float64, playerEmail string) (string, error) {
	if !c.enabled {
		return "", fmt.Errorf("stripe not configured")
	}

	amount := int64(math.Round(total * 100))
	if amount <= 0 {
		return "", fmt.Errorf("invalid bill amount: %v", total)
	}

	params := &stripe.PaymentIntentParams{
		Amount:       stripe.Int64(amount),
		Currency:     stripe.String(string(stripe.CurrencyUSD)),
		ReceiptEmail: stripe.String(playerEmail),
	}
	params.AddMetadata("booking_id", fmt.Sprintf("%d", bookingID))

	pi, err := c.api.PaymentIntents.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create payment intent: %w", err)
	}
	return pi.ID, nil
}
