package consumer

import (
	"context"
	"log/slog"

	v1 "github.com/checkout-lab/checkout-pipeline/internal/api/v1"
	"golang.org/x/sync/errgroup"
)

// gateOutcome is the per-event result of consulting the idempotency ledger.
type gateOutcome int

const (
	// gateAdmitted means the ledger recorded this key for the first time.
	gateAdmitted gateOutcome = iota
	// gateDuplicate means the key was already admitted. Normal skip, not an
	// error.
	gateDuplicate
	// gateFailed means the ledger call itself failed. The event must NOT be
	// treated as admitted; it fails individually and the transport redelivers.
	gateFailed
)

// admitBatch consults the ledger once per deduplicated event, concurrently.
// Each call is a single atomic insert-if-absent, so two batches racing on the
// same key see exactly one admission between them. A ledger failure for one
// event never aborts its siblings.
func (c *Consumer) admitBatch(ctx context.Context, events []*v1.Event) []gateOutcome {
	outcomes := make([]gateOutcome, len(events))

	var g errgroup.Group
	g.SetLimit(c.workers)
	for i, evt := range events {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(ctx, c.opTimeout)
			defer cancel()

			admitted, err := c.ledger.TryAdmit(callCtx, evt.IdempotencyKey)
			switch {
			case err != nil:
				outcomes[i] = gateFailed
				slog.Error("[Gate] Ledger admission failed",
					"event_id", evt.ID,
					"idempotency_key", evt.IdempotencyKey,
					"stage", "gate",
					"error", err)
			case !admitted:
				outcomes[i] = gateDuplicate
				slog.Info("[Gate] Duplicate event skipped",
					"event_id", evt.ID,
					"idempotency_key", evt.IdempotencyKey)
			default:
				outcomes[i] = gateAdmitted
			}
			return nil
		})
	}
	g.Wait()

	return outcomes
}
