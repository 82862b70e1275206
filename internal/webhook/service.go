package webhook

import (
	"github.com/checkout-lab/checkout-pipeline/internal/transport"
	"github.com/gin-gonic/gin"
)

// Service is the webhook receiver: it verifies provider signatures, filters
// event types against the allow-list, and publishes envelopes onto the queue.
type Service struct {
	queue            transport.Queue
	webhookSecret    string
	maxBodySizeBytes int
}

// NewService creates the receiver around an injected queue.
func NewService(queue transport.Queue, webhookSecret string, maxBodySizeMB int) *Service {
	if queue == nil {
		panic("webhook: queue must not be nil")
	}
	if webhookSecret == "" {
		panic("webhook: webhook secret must not be empty")
	}
	if maxBodySizeMB <= 0 {
		maxBodySizeMB = 1 // default to 1MB
	}
	return &Service{
		queue:            queue,
		webhookSecret:    webhookSecret,
		maxBodySizeBytes: maxBodySizeMB * 1024 * 1024,
	}
}

// RegisterRoutes registers the webhook receiver routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.POST("/v1/webhooks/stripe", s.WebhookHandler)
}
