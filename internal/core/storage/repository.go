package storage

import (
	"context"
	"errors"

	v1 "github.com/checkout-lab/checkout-pipeline/internal/api/v1"
)

// ErrNotFound is returned when no payment record exists for the given identity.
var ErrNotFound = errors.New("payment record not found")

// IdempotencyLedger records which idempotency keys have already been admitted
// for processing. Entries are key-only, written exactly once, never updated and
// never deleted by this pipeline.
type IdempotencyLedger interface {
	// TryAdmit atomically records key as admitted. It is a single conditional
	// insert-if-absent: admitted=false means a record already existed and the
	// caller must treat the event as a duplicate, not as an error. Two
	// concurrent calls with the same key observe exactly one admitted=true
	// between them, even across process instances.
	TryAdmit(ctx context.Context, key string) (admitted bool, err error)
}

// ListFilter narrows a payment listing. Nil fields mean "no constraint".
type ListFilter struct {
	Viewed *bool
	Paid   *bool
}

// PaymentStore persists enriched payment records keyed by
// (payment_intent_id, transaction_date).
type PaymentStore interface {
	// Upsert writes the record, blindly overwriting any prior row with the
	// same key. No read-modify-write: the enriched content for an admitted
	// event is deterministic given the same provider data, so replacing all
	// fields is safe. The store performs no deduplication of its own.
	Upsert(ctx context.Context, record *v1.PaymentRecord) error

	// MarkViewed flips the viewed flag for every row of a payment intent
	// without disturbing the financial fields. Returns ErrNotFound when the
	// intent has no rows.
	MarkViewed(ctx context.Context, paymentIntentID string) error

	// ListPayments returns records matching the filter, newest first.
	ListPayments(ctx context.Context, filter ListFilter, limit int) ([]*v1.PaymentRecord, error)
}
