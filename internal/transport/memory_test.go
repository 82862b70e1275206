package transport

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryQueue_PublishReceiveDelete(t *testing.T) {
	q := NewMemoryQueue()
	ctx := context.Background()

	require.NoError(t, q.Publish(ctx, []byte(`{"id":"evt_1"}`)))
	require.NoError(t, q.Publish(ctx, []byte(`{"id":"evt_2"}`)))
	require.Equal(t, 2, q.Len())

	msgs, err := q.Receive(ctx, 10, time.Second)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	require.JSONEq(t, `{"id":"evt_1"}`, string(msgs[0].Body))

	for _, msg := range msgs {
		require.NoError(t, q.Delete(ctx, msg.ReceiptHandle))
	}
	require.Zero(t, q.Len())
}

func TestMemoryQueue_UndeletedMessageIsRedelivered(t *testing.T) {
	q := NewMemoryQueue()
	ctx := context.Background()

	require.NoError(t, q.Publish(ctx, []byte("payload")))

	first, err := q.Receive(ctx, 10, time.Second)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Not deleted, so the next receive delivers it again with a fresh handle.
	second, err := q.Receive(ctx, 10, time.Second)
	require.NoError(t, err)
	require.Len(t, second, 1)
	require.Equal(t, first[0].ID, second[0].ID)
	require.NotEqual(t, first[0].ReceiptHandle, second[0].ReceiptHandle)

	require.Equal(t, 2, q.Receives(first[0].ID))

	// Either handle deletes the message.
	require.NoError(t, q.Delete(ctx, first[0].ReceiptHandle))
	require.Zero(t, q.Len())

	redelivered, err := q.Receive(ctx, 10, time.Second)
	require.NoError(t, err)
	require.Empty(t, redelivered)
}

func TestMemoryQueue_ReceiveHonorsMaxMessages(t *testing.T) {
	q := NewMemoryQueue()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, q.Publish(ctx, []byte("payload")))
	}

	msgs, err := q.Receive(ctx, 2, time.Second)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	require.Equal(t, 5, q.Len())
}

func TestMemoryQueue_DeleteUnknownHandleIsNoop(t *testing.T) {
	q := NewMemoryQueue()
	require.NoError(t, q.Delete(context.Background(), "unknown-handle"))
}
