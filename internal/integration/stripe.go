// Package integration wraps the third-party services the CRM talks
// to: Stripe for payments, Zoom for meeting links, SendGrid and Twilio
// for outbound notifications and an LLM for program generation.  Every
// adapter is constructed from optional credentials and reports Enabled
// so callers can degrade instead of crash.
package integration

import (
	"errors"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/paymentintent"
	"github.com/stripe/stripe-go/v78/webhook"
)

// ErrDisabled is returned when an adapter is called without
// credentials configured.
var ErrDisabled = errors.New("integration not configured")

// StripeClient creates PaymentIntents and verifies webhook signatures.
type StripeClient struct {
	secretKey     string
	webhookSecret string
}

// NewStripeClient returns a StripeClient.  Empty keys leave the client
// disabled.
func NewStripeClient(secretKey, webhookSecret string) *StripeClient {
	if secretKey != "" {
		stripe.Key = secretKey
	}
	return &StripeClient{secretKey: secretKey, webhookSecret: webhookSecret}
}

// Enabled reports whether payment operations can be performed.
func (s *StripeClient) Enabled() bool { return s.secretKey != "" }

// CreateIntent raises a PaymentIntent for the given amount.  The
// idempotency key makes client retries safe.
func (s *StripeClient) CreateIntent(amountCents int64, currency, description, idempotencyKey string) (*stripe.PaymentIntent, error) {
	if !s.Enabled() {
		return nil, ErrDisabled
	}
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(currency),
	}
	if description != "" {
		params.Description = stripe.String(description)
	}
	params.SetIdempotencyKey(idempotencyKey)
	return paymentintent.New(params)
}

// ParseWebhook verifies the Stripe-Signature header and returns the
// decoded event.
func (s *StripeClient) ParseWebhook(payload []byte, sigHeader string) (stripe.Event, error) {
	if s.webhookSecret == "" {
		return stripe.Event{}, ErrDisabled
	}
	return webhook.ConstructEvent(payload, sigHeader, s.webhookSecret)
}
