package webhook

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	v1 "github.com/checkout-lab/checkout-pipeline/internal/api/v1"
	httperr "github.com/checkout-lab/checkout-pipeline/internal/core/errors"
	"github.com/gin-gonic/gin"
	stripe "github.com/stripe/stripe-go/v76"
	stripewebhook "github.com/stripe/stripe-go/v76/webhook"
)

const (
	msgReadBodyFailed   = "Failed to read request body"
	msgMissingSignature = "Missing Stripe-Signature header"
	msgBadSignature     = "Webhook signature verification failed"
	msgBadPayload       = "Event payload missing payment intent"
	msgPublishFailed    = "Failed to publish event"
)

// webhookError carries the structured HTTP error shape from a helper back to
// the handler. Helpers return this instead of writing to gin.Context directly.
type webhookError struct {
	statusCode int
	errorType  string
	message    string
}

func (e *webhookError) Error() string {
	return e.message
}

// WebhookHandler handles HTTP POST requests from the payment provider.
// Events that fail signature verification never reach the queue; event types
// outside the allow-list are acknowledged but not forwarded, so the consumer
// only ever sees processable types.
func (s *Service) WebhookHandler(c *gin.Context) {
	payload, err := s.readPayload(c)
	if err != nil {
		writeError(c, err)
		return
	}

	event, err := s.verifyEvent(c, payload)
	if err != nil {
		writeError(c, err)
		return
	}

	if !v1.Processable(string(event.Type)) {
		slog.Debug("[Webhook] Ignoring event type outside allow-list",
			"event_id", event.ID,
			"event_type", event.Type)
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	evt, err := envelopeFromStripeEvent(event)
	if err != nil {
		writeError(c, err)
		return
	}

	slog.Info("[Webhook] Received event",
		"event_id", evt.ID,
		"event_type", evt.Type,
		"payment_intent_id", evt.PaymentIntentID,
		"payload_size", len(payload))

	if err := s.publishEvent(c, evt); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "queued"})
}

// readPayload reads the raw request body with a size cap. The raw bytes are
// needed verbatim for signature verification.
func (s *Service) readPayload(c *gin.Context) ([]byte, *webhookError) {
	maxBytes := int64(s.maxBodySizeBytes)
	limitedBody := io.LimitReader(c.Request.Body, maxBytes+1) // +1 to detect oversized requests

	payload, err := io.ReadAll(limitedBody)
	if err != nil {
		slog.Error("[Webhook] Failed to read request body", "error", err)
		return nil, &webhookError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgReadBodyFailed,
		}
	}

	if int64(len(payload)) > maxBytes {
		slog.Warn("[Webhook] Request body exceeds maximum size", "size", len(payload), "max", maxBytes)
		return nil, &webhookError{
			statusCode: http.StatusRequestEntityTooLarge,
			errorType:  httperr.HttpInvalidJsonError,
			message:    "Request body exceeds maximum allowed size",
		}
	}

	return payload, nil
}

// verifyEvent checks the provider signature over the raw payload.
func (s *Service) verifyEvent(c *gin.Context, payload []byte) (*stripe.Event, *webhookError) {
	signature := c.GetHeader("Stripe-Signature")
	if signature == "" {
		slog.Warn("[Webhook] Missing Stripe-Signature header")
		return nil, &webhookError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpInvalidSignatureError,
			message:    msgMissingSignature,
		}
	}

	event, err := stripewebhook.ConstructEvent(payload, signature, s.webhookSecret)
	if err != nil {
		slog.Warn("[Webhook] Signature verification failed", "error", err)
		return nil, &webhookError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpInvalidSignatureError,
			message:    msgBadSignature,
		}
	}

	return &event, nil
}

// envelopeFromStripeEvent projects the verified provider event into the queue
// envelope.
func envelopeFromStripeEvent(event *stripe.Event) (*v1.Event, *webhookError) {
	evt := &v1.Event{
		ID:        event.ID,
		Type:      string(event.Type),
		CreatedAt: time.Unix(event.Created, 0).UTC(),
	}
	if event.Request != nil {
		evt.IdempotencyKey = event.Request.IdempotencyKey
	}

	paymentIntentID, _ := event.Data.Object["id"].(string)
	if paymentIntentID == "" {
		slog.Warn("[Webhook] Event payload missing payment intent id",
			"event_id", event.ID,
			"event_type", event.Type)
		return nil, &webhookError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpInvalidJsonError,
			message:    msgBadPayload,
		}
	}
	evt.PaymentIntentID = paymentIntentID

	return evt, nil
}

// publishEvent puts the envelope on the queue.
func (s *Service) publishEvent(c *gin.Context, evt *v1.Event) *webhookError {
	body, err := json.Marshal(evt)
	if err != nil {
		slog.Error("[Webhook] Failed to marshal envelope", "event_id", evt.ID, "error", err)
		return &webhookError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    fmt.Sprintf("%s: %s", msgPublishFailed, evt.ID),
		}
	}

	if err := s.queue.Publish(c.Request.Context(), body); err != nil {
		slog.Error("[Webhook] Failed to publish event", "event_id", evt.ID, "error", err)
		return &webhookError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgPublishFailed,
		}
	}

	return nil
}

// writeError serializes a webhookError as the JSON HTTP response.
func writeError(c *gin.Context, err *webhookError) {
	c.JSON(err.statusCode, httperr.ErrorResponse{
		ErrorType: err.errorType,
		Message:   err.message,
	})
}
