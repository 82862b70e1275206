package consumer

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	v1 "github.com/checkout-lab/checkout-pipeline/internal/api/v1"
	"github.com/checkout-lab/checkout-pipeline/internal/transport"
	"github.com/stretchr/testify/require"
)

func publishEvent(t *testing.T, queue *transport.MemoryQueue, evt *v1.Event) {
	t.Helper()

	body, err := json.Marshal(evt)
	require.NoError(t, err)
	require.NoError(t, queue.Publish(context.Background(), body))
}

func TestLoop_DrainsQueue(t *testing.T) {
	f := newFixture(t)
	f.provider.add("pi_1", 100)
	f.provider.add("pi_2", 200)

	queue := transport.NewMemoryQueue()
	publishEvent(t, queue, pipelineEvent("e1", v1.TypePaymentIntentSucceeded, "k1", "pi_1"))
	publishEvent(t, queue, pipelineEvent("e2", v1.TypePaymentIntentCreated, "k2", "pi_2"))

	loop := NewLoop(queue, f.consumer, 10, 0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Start(ctx) }()

	require.Eventually(t, func() bool {
		return f.store.Len() == 2 && queue.Len() == 0
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	require.Equal(t, 2, f.ledger.Len())
}

func TestLoop_FailedMessageIsRedelivered(t *testing.T) {
	f := newFixture(t)
	// No detail registered for pi_down: enrichment fails on the first attempt.

	queue := transport.NewMemoryQueue()
	publishEvent(t, queue, pipelineEvent("e1", v1.TypePaymentIntentSucceeded, "k1", "pi_down"))

	loop := NewLoop(queue, f.consumer, 10, 0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Start(ctx) }()

	// First delivery admits the key and fails enrichment, leaving the message
	// on the queue. The redelivery then hits the standing admission and is
	// acknowledged as a duplicate.
	require.Eventually(t, func() bool {
		return queue.Len() == 0
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	require.Equal(t, 1, f.provider.callsFor("pi_down"))
	require.Zero(t, f.store.Len())
	require.True(t, f.ledger.Contains("k1"))
}
