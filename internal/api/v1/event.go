package v1

import (
	"fmt"
	"time"
)

// Event types forwarded by the payment provider that this pipeline processes.
// This allow-list is the single source of truth for "which event types matter":
// the webhook receiver consults it before publishing, and the enricher derives
// the paid flag from it. Any other type is filtered at the edge and never
// reaches the queue.
const (
	TypePaymentIntentCreated   = "payment_intent.created"
	TypePaymentIntentSucceeded = "payment_intent.succeeded"
)

var processableTypes = map[string]struct{}{
	TypePaymentIntentCreated:   {},
	TypePaymentIntentSucceeded: {},
}

// Processable reports whether an event type is on the processing allow-list.
func Processable(eventType string) bool {
	_, ok := processableTypes[eventType]
	return ok
}

// Event is the queued envelope for one provider webhook delivery.
// The receiver projects the verified provider event into this shape; everything
// downstream (dedup, gate, enrichment) works off the envelope alone.
type Event struct {
	// ID is the provider-assigned event identifier, unique per logical occurrence.
	ID string `json:"id"`

	// Type is the provider event type (see the allow-list above).
	Type string `json:"type"`

	// IdempotencyKey identifies one logical occurrence across redeliveries.
	// It may be absent; keyless events are dropped by the batch deduplicator.
	IdempotencyKey string `json:"idempotency_key,omitempty"`

	// PaymentIntentID references the payment intent carried in the event
	// payload. It is the handle the enricher uses to fetch checkout detail.
	PaymentIntentID string `json:"payment_intent_id"`

	// CreatedAt is the provider-side event timestamp.
	CreatedAt time.Time `json:"created_at"`
}

// Validate ensures the envelope carries everything the pipeline needs.
// A missing idempotency key is NOT a validation error: those events are
// dropped later, with the drop counted, rather than rejected here.
func (e *Event) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("id is required")
	}

	if e.Type == "" {
		return fmt.Errorf("type is required")
	}

	if e.PaymentIntentID == "" {
		return fmt.Errorf("payment_intent_id is required")
	}

	if e.CreatedAt.IsZero() {
		return fmt.Errorf("created_at is required")
	}

	return nil
}
