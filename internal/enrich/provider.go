package enrich

import (
	"context"
	"errors"
	"time"
)

// ErrNoCheckoutSession is returned when the provider has no checkout session
// for a payment intent. The caller treats it like any other provider failure:
// the event fails individually and the transport redelivers it.
var ErrNoCheckoutSession = errors.New("no checkout session for payment intent")

// CheckoutDetail is the provider-side view of one checkout: the owning session
// plus its first line item. Amounts are minor currency units as returned by
// the provider, unconverted.
type CheckoutDetail struct {
	PaymentIntentID string
	TransactionDate time.Time
	Item            string
	Subtotal        int64
	Tax             int64
	Total           int64
	Discount        int64
	Quantity        int64
	Requestor       string
}

// Provider fetches checkout detail from the payment provider.
// The provider API is external and rate-limited; errors are retryable via
// transport redelivery.
type Provider interface {
	CheckoutForPaymentIntent(ctx context.Context, paymentIntentID string) (*CheckoutDetail, error)
}
