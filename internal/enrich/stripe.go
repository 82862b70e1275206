package enrich

import (
	"context"
	"fmt"
	"time"

	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// StripeProvider implements Provider against the Stripe API.
type StripeProvider struct {
	client *client.API
}

// NewStripeProvider builds a Stripe client for the given secret key.
// Construct once per process and inject; never rebuild per invocation.
func NewStripeProvider(apiKey string) *StripeProvider {
	sc := &client.API{}
	sc.Init(apiKey, nil)
	return &StripeProvider{client: sc}
}

// CheckoutForPaymentIntent lists the checkout sessions owning the payment
// intent, expanding line items in the same round trip, and maps the first
// session. Only the first line item is used when multiple exist; multi-line
// orders stay out of scope until that becomes a deliberate feature decision.
func (p *StripeProvider) CheckoutForPaymentIntent(ctx context.Context, paymentIntentID string) (*CheckoutDetail, error) {
	params := &stripe.CheckoutSessionListParams{
		PaymentIntent: stripe.String(paymentIntentID),
	}
	params.Context = ctx
	params.AddExpand("data.line_items")

	iter := p.client.CheckoutSessions.List(params)
	for iter.Next() {
		return fromSession(paymentIntentID, iter.CheckoutSession())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to list checkout sessions: %w", err)
	}

	return nil, fmt.Errorf("%w: %s", ErrNoCheckoutSession, paymentIntentID)
}

func fromSession(paymentIntentID string, session *stripe.CheckoutSession) (*CheckoutDetail, error) {
	detail := &CheckoutDetail{
		PaymentIntentID: paymentIntentID,
		TransactionDate: time.Unix(session.Created, 0).UTC(),
		Subtotal:        session.AmountSubtotal,
		Total:           session.AmountTotal,
	}

	if session.TotalDetails != nil {
		detail.Tax = session.TotalDetails.AmountTax
		detail.Discount = session.TotalDetails.AmountDiscount
	}

	if session.CustomerDetails != nil {
		detail.Requestor = session.CustomerDetails.Name
	}

	if session.LineItems != nil && len(session.LineItems.Data) > 0 {
		item := session.LineItems.Data[0]
		detail.Item = item.Description
		detail.Quantity = item.Quantity
	}

	return detail, nil
}
