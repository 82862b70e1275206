package checkout

import (
	"github.com/gin-gonic/gin"
)

// Service is the checkout-redirect endpoint: it validates a line-item form,
// opens a hosted checkout session with the payment provider, and redirects
// the customer there. The resulting payment flows back into the pipeline via
// the webhook receiver.
type Service struct {
	sessions SessionCreator
}

// NewService creates the checkout service around an injected session creator.
func NewService(sessions SessionCreator) *Service {
	if sessions == nil {
		panic("checkout: session creator must not be nil")
	}
	return &Service{sessions: sessions}
}

// RegisterRoutes registers the checkout-redirect route.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.POST("/v1/checkout", s.CheckoutHandler)
}
