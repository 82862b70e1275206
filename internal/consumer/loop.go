package consumer

import (
	"context"
	"log/slog"
	"time"

	"github.com/checkout-lab/checkout-pipeline/internal/transport"
)

const receiveBackoff = 5 * time.Second

// Loop polls the queue and feeds delivered batches into the Consumer.
// It deletes only acknowledged messages; failed ones stay on the queue for
// redelivery and, after the queue's configured attempt budget, dead-letter
// redrive.
type Loop struct {
	queue       transport.Queue
	consumer    *Consumer
	maxMessages int
	waitTime    time.Duration
}

// NewLoop creates a poll loop over the given queue.
func NewLoop(queue transport.Queue, consumer *Consumer, maxMessages int, waitTime time.Duration) *Loop {
	return &Loop{
		queue:       queue,
		consumer:    consumer,
		maxMessages: maxMessages,
		waitTime:    waitTime,
	}
}

// Start polls until the context is cancelled.
func (l *Loop) Start(ctx context.Context) error {
	slog.Info("[Consumer] Starting poll loop",
		"max_messages", l.maxMessages,
		"wait_time", l.waitTime)

	for {
		select {
		case <-ctx.Done():
			slog.Info("[Consumer] Stopping (context cancelled)")
			return nil
		default:
		}

		msgs, err := l.queue.Receive(ctx, l.maxMessages, l.waitTime)
		if err != nil {
			if ctx.Err() != nil {
				slog.Info("[Consumer] Stopping (context cancelled)")
				return nil
			}
			slog.Error("[Consumer] Receive failed", "error", err)
			select {
			case <-time.After(receiveBackoff):
			case <-ctx.Done():
				return nil
			}
			continue
		}

		if len(msgs) == 0 {
			continue
		}

		result := l.consumer.ProcessBatch(ctx, msgs)

		for _, msg := range result.Acked {
			if err := l.queue.Delete(ctx, msg.ReceiptHandle); err != nil {
				// The message will be redelivered; the ledger makes the
				// replay harmless.
				slog.Error("[Consumer] Failed to delete message",
					"message_id", msg.ID,
					"error", err)
			}
		}

		slog.Info("[Consumer] Batch complete",
			"received", len(msgs),
			"committed", result.Committed,
			"duplicates", result.Duplicates,
			"dropped", result.Dropped,
			"failed", len(result.Failed))
	}
}
