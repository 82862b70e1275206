package consumer

import (
	"log/slog"

	v1 "github.com/checkout-lab/checkout-pipeline/internal/api/v1"
)

// DedupResult is the outcome of collapsing one delivered batch.
type DedupResult struct {
	// Events holds at most one event per distinct idempotency key, in the
	// order keys were first seen.
	Events []*v1.Event

	// Duplicates counts collapsed redeliveries: for k events sharing a key,
	// k-1 land here.
	Duplicates int

	// MissingKey counts dropped keyless events. These are real data loss
	// within the batch and must stay observable, never silent.
	MissingKey int
}

// Deduplicate collapses duplicate events within one delivered batch before any
// ledger interaction. Pure in-memory folding, no I/O. Queue transports can
// redeliver the same logical event multiple times in a single batch; folding
// here avoids redundant provider calls before the ledger is even consulted.
func Deduplicate(events []*v1.Event) DedupResult {
	var result DedupResult
	seen := make(map[string]struct{}, len(events))

	for _, evt := range events {
		if evt.IdempotencyKey == "" {
			result.MissingKey++
			slog.Warn("[Dedup] Dropping event without idempotency key",
				"event_id", evt.ID,
				"event_type", evt.Type)
			continue
		}

		if _, ok := seen[evt.IdempotencyKey]; ok {
			result.Duplicates++
			continue
		}

		seen[evt.IdempotencyKey] = struct{}{}
		result.Events = append(result.Events, evt)
	}

	if result.Duplicates > 0 || result.MissingKey > 0 {
		slog.Warn("[Dedup] Batch contained duplicate or keyless events",
			"input", len(events),
			"unique", len(result.Events),
			"duplicates", result.Duplicates,
			"missing_key", result.MissingKey)
	}

	return result
}
