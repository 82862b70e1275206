package checkout

import (
	"context"
	"fmt"
	"strings"

	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// StripeSessions implements SessionCreator against the Stripe API.
type StripeSessions struct {
	client     *client.API
	successURL string
}

// NewStripeSessions builds a Stripe client for the given secret key.
// Construct once per process and inject; never rebuild per invocation.
func NewStripeSessions(apiKey, successURL string) *StripeSessions {
	sc := &client.API{}
	sc.Init(apiKey, nil)
	return &StripeSessions{client: sc, successURL: successURL}
}

// CreateSession opens a payment-mode checkout session for the single line
// item described by the form. Quantity is customer-adjustable on the hosted
// page up to MaxQuantity.
func (p *StripeSessions) CreateSession(ctx context.Context, form *Form) (string, error) {
	item := &stripe.CheckoutSessionLineItemParams{
		PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
			Currency:   stripe.String(strings.ToLower(form.Currency)),
			UnitAmount: stripe.Int64(form.Price),
			ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
				Name:        stripe.String(form.Name),
				Description: stripe.String(form.Description),
			},
		},
		Quantity: stripe.Int64(form.Quantity),
		AdjustableQuantity: &stripe.CheckoutSessionLineItemAdjustableQuantityParams{
			Enabled: stripe.Bool(true),
			Maximum: stripe.Int64(form.MaxQuantity),
		},
	}
	if len(form.Images) > 0 {
		item.PriceData.ProductData.Images = stripe.StringSlice(form.Images)
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(p.successURL),
		LineItems:  []*stripe.CheckoutSessionLineItemParams{item},
	}
	params.Context = ctx

	session, err := p.client.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}
	return session.URL, nil
}
