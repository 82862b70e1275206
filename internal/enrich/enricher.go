package enrich

import (
	"context"
	"fmt"
	"time"

	v1 "github.com/checkout-lab/checkout-pipeline/internal/api/v1"
)

const defaultOpTimeout = 10 * time.Second

// Enricher turns an admitted event into a normalized PaymentRecord by querying
// the payment provider for line-item detail.
type Enricher struct {
	provider  Provider
	opTimeout time.Duration
}

// NewEnricher creates an enricher around an injected provider client.
func NewEnricher(provider Provider, opTimeout time.Duration) *Enricher {
	if provider == nil {
		panic("enrich: provider must not be nil")
	}
	if opTimeout <= 0 {
		opTimeout = defaultOpTimeout
	}
	return &Enricher{provider: provider, opTimeout: opTimeout}
}

// Enrich fetches the checkout session owning the event's payment intent and
// projects it into a PaymentRecord. Paid derives from the event type: true
// only for the terminal-success type. Viewed always initializes false.
func (e *Enricher) Enrich(ctx context.Context, evt *v1.Event) (*v1.PaymentRecord, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.opTimeout)
	defer cancel()

	detail, err := e.provider.CheckoutForPaymentIntent(callCtx, evt.PaymentIntentID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch checkout detail for %s: %w", evt.PaymentIntentID, err)
	}

	transactionDate := detail.TransactionDate
	if transactionDate.IsZero() {
		transactionDate = evt.CreatedAt
	}

	return &v1.PaymentRecord{
		PaymentIntentID: evt.PaymentIntentID,
		TransactionDate: transactionDate.UTC(),
		Item:            detail.Item,
		Subtotal:        detail.Subtotal,
		Tax:             detail.Tax,
		Total:           detail.Total,
		Discount:        detail.Discount,
		Quantity:        detail.Quantity,
		Requestor:       detail.Requestor,
		Viewed:          false,
		Paid:            evt.Type == v1.TypePaymentIntentSucceeded,
	}, nil
}
