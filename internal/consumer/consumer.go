package consumer

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	v1 "github.com/checkout-lab/checkout-pipeline/internal/api/v1"
	"github.com/checkout-lab/checkout-pipeline/internal/core/storage"
	"github.com/checkout-lab/checkout-pipeline/internal/enrich"
	"github.com/checkout-lab/checkout-pipeline/internal/transport"
	"golang.org/x/sync/errgroup"
)

const (
	defaultWorkerCount = 10
	defaultOpTimeout   = 10 * time.Second
)

// Consumer orchestrates one delivered batch: deduplicate, gate against the
// idempotency ledger, enrich admitted events via the provider, upsert into the
// payment store, and report per-message outcomes back to the transport.
//
// It owns no worker loop of its own; invocation cadence and parallel-invocation
// concurrency belong to the transport (see Loop). Within one invocation the
// per-event ledger, provider and store calls are independent and fan out, and
// everything joins before the batch outcome is reported.
type Consumer struct {
	ledger    storage.IdempotencyLedger
	enricher  *enrich.Enricher
	store     storage.PaymentStore
	workers   int
	opTimeout time.Duration
}

// New creates a batch consumer. All collaborators are constructed once per
// process and injected.
func New(ledger storage.IdempotencyLedger, enricher *enrich.Enricher, store storage.PaymentStore, workers int, opTimeout time.Duration) *Consumer {
	if ledger == nil {
		panic("consumer: ledger must not be nil")
	}
	if enricher == nil {
		panic("consumer: enricher must not be nil")
	}
	if store == nil {
		panic("consumer: store must not be nil")
	}
	if workers <= 0 {
		workers = defaultWorkerCount
	}
	if opTimeout <= 0 {
		opTimeout = defaultOpTimeout
	}
	return &Consumer{
		ledger:    ledger,
		enricher:  enricher,
		store:     store,
		workers:   workers,
		opTimeout: opTimeout,
	}
}

// BatchResult reports per-message outcomes for one delivered batch.
type BatchResult struct {
	// Acked messages are fully handled (committed, duplicate, or dropped as
	// unprocessable) and must be deleted from the queue.
	Acked []transport.Message

	// Failed messages hit a transient error in one stage and must stay on the
	// queue for redelivery; after enough failed attempts the queue dead-letters
	// them without this consumer's involvement.
	Failed []transport.Message

	// Counters for observability.
	Dropped    int // malformed or keyless, acked without processing
	Duplicates int // collapsed in-batch plus ledger-rejected redeliveries
	Committed  int // enriched and upserted
}

// ProcessBatch runs the pipeline over one delivered batch. Any per-event
// failure is caught, logged with the event identity and failing stage, and
// never aborts sibling events.
func (c *Consumer) ProcessBatch(ctx context.Context, msgs []transport.Message) BatchResult {
	var result BatchResult

	// Parse message bodies into event envelopes. An unparseable or invalid
	// body can never succeed on retry, so it is dropped with a warning and
	// acknowledged.
	events := make([]*v1.Event, 0, len(msgs))
	groups := make(map[string][]transport.Message, len(msgs))
	for _, msg := range msgs {
		var evt v1.Event
		if err := json.Unmarshal(msg.Body, &evt); err != nil {
			slog.Warn("[Consumer] Dropping malformed message",
				"message_id", msg.ID,
				"error", err)
			result.Dropped++
			result.Acked = append(result.Acked, msg)
			continue
		}
		if err := evt.Validate(); err != nil {
			slog.Warn("[Consumer] Dropping invalid event",
				"message_id", msg.ID,
				"event_id", evt.ID,
				"error", err)
			result.Dropped++
			result.Acked = append(result.Acked, msg)
			continue
		}

		if evt.IdempotencyKey == "" {
			// The deduplicator logs and counts the drop; acknowledge here so
			// the transport does not retry what a retry cannot fix.
			result.Acked = append(result.Acked, msg)
		} else {
			groups[evt.IdempotencyKey] = append(groups[evt.IdempotencyKey], msg)
		}
		events = append(events, &evt)
	}

	dedup := Deduplicate(events)
	result.Dropped += dedup.MissingKey
	result.Duplicates += dedup.Duplicates

	if len(dedup.Events) == 0 {
		return result
	}

	outcomes := c.admitBatch(ctx, dedup.Events)

	var admitted []*v1.Event
	for i, evt := range dedup.Events {
		switch outcomes[i] {
		case gateAdmitted:
			admitted = append(admitted, evt)
		case gateDuplicate:
			result.Duplicates++
			result.Acked = append(result.Acked, groups[evt.IdempotencyKey]...)
		case gateFailed:
			result.Failed = append(result.Failed, groups[evt.IdempotencyKey]...)
		}
	}

	records, enrichErrs := c.enrichBatch(ctx, admitted)
	storeErrs := c.storeBatch(ctx, admitted, records, enrichErrs)

	for i, evt := range admitted {
		// Admission is never rolled back: even when enrichment or the store
		// write failed, the ledger record for this key stands.
		if enrichErrs[i] != nil || storeErrs[i] != nil {
			result.Failed = append(result.Failed, groups[evt.IdempotencyKey]...)
			continue
		}
		result.Committed++
		result.Acked = append(result.Acked, groups[evt.IdempotencyKey]...)
	}

	return result
}

// enrichBatch fetches provider detail for every admitted event concurrently.
// One provider call failing fails only that event.
func (c *Consumer) enrichBatch(ctx context.Context, events []*v1.Event) ([]*v1.PaymentRecord, []error) {
	records := make([]*v1.PaymentRecord, len(events))
	errs := make([]error, len(events))

	var g errgroup.Group
	g.SetLimit(c.workers)
	for i, evt := range events {
		g.Go(func() error {
			record, err := c.enricher.Enrich(ctx, evt)
			if err != nil {
				errs[i] = err
				slog.Error("[Consumer] Enrichment failed",
					"event_id", evt.ID,
					"payment_intent_id", evt.PaymentIntentID,
					"stage", "enrich",
					"error", err)
				return nil
			}
			records[i] = record
			return nil
		})
	}
	g.Wait()

	return records, errs
}

// storeBatch upserts every enriched record concurrently. Events that already
// failed enrichment are skipped.
func (c *Consumer) storeBatch(ctx context.Context, events []*v1.Event, records []*v1.PaymentRecord, enrichErrs []error) []error {
	errs := make([]error, len(events))

	var g errgroup.Group
	g.SetLimit(c.workers)
	for i, evt := range events {
		if enrichErrs[i] != nil {
			continue
		}
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(ctx, c.opTimeout)
			defer cancel()

			if err := c.store.Upsert(callCtx, records[i]); err != nil {
				errs[i] = err
				slog.Error("[Consumer] Store upsert failed",
					"event_id", evt.ID,
					"payment_intent_id", evt.PaymentIntentID,
					"stage", "store",
					"error", err)
			}
			return nil
		})
	}
	g.Wait()

	return errs
}
