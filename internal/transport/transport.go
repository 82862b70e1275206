// Package transport abstracts the at-least-once message queue between the
// webhook receiver and the batch consumer. The queue delivers batches of
// opaque messages; a message is removed only when the consumer deletes it,
// and redelivered otherwise. Dead-letter redrive after repeated failures is
// queue configuration, not consumer logic.
package transport

import (
	"context"
	"time"
)

// Message is one queued delivery. ReceiptHandle identifies this particular
// delivery for deletion; redeliveries of the same message carry new handles.
type Message struct {
	ID            string
	Body          []byte
	ReceiptHandle string
}

// Queue is the at-least-once transport contract.
type Queue interface {
	// Publish enqueues one opaque message body.
	Publish(ctx context.Context, body []byte) error

	// Receive returns up to maxMessages pending messages, long-polling for at
	// most waitTime. Received messages stay on the queue until deleted.
	Receive(ctx context.Context, maxMessages int, waitTime time.Duration) ([]Message, error)

	// Delete removes the delivery identified by receiptHandle, acknowledging
	// that its message has been fully processed.
	Delete(ctx context.Context, receiptHandle string) error
}
