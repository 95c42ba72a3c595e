package model

import "time"

// Payment statuses mirror the lifecycle of a Stripe PaymentIntent as
// far as this application tracks it.
const (
    PaymentPending   = "pending"
    PaymentSucceeded = "succeeded"
    PaymentFailed    = "failed"
)

// Payment records a charge raised against a client through Stripe.
// Rows live in the `payments` table; StripeIntentID correlates webhook
// events back to the local record.
type Payment struct {
    ID             uint64    // payments.id
    TrainerID      uint64    // payments.trainer_id
    ClientID       uint64    // payments.client_id
    AmountCents    int64     // payments.amount_cents
    Currency       string    // payments.currency (ISO 4217, lowercase)
    Status         string    // payments.status
    StripeIntentID string    // payments.stripe_intent_id
    Description    *string   // payments.description (nullable)
    CreatedAt      time.Time // payments.created_at
    UpdatedAt      time.Time // payments.updated_at
}
