package checkout

import "context"

// SessionCreator opens a hosted checkout session for one validated line item
// and returns the URL the customer should be redirected to.
// The provider API is external; errors surface to the customer as a 500 and
// the session is simply retried by resubmitting the form.
type SessionCreator interface {
	CreateSession(ctx context.Context, form *Form) (redirectURL string, err error)
}
