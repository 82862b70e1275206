package transport

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryMessage struct {
	id       string
	body     []byte
	receives int
}

// MemoryQueue is an in-memory Queue with at-least-once semantics.
// Useful for testing and development: received messages stay enqueued until
// deleted, so an unacknowledged message is redelivered on the next Receive
// with a fresh receipt handle.
type MemoryQueue struct {
	mu       sync.Mutex
	pending  []*memoryMessage
	inflight map[string]*memoryMessage // receipt handle -> message
}

// NewMemoryQueue creates an empty in-memory queue.
func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{inflight: make(map[string]*memoryMessage)}
}

func (q *MemoryQueue) Publish(ctx context.Context, body []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	copied := make([]byte, len(body))
	copy(copied, body)
	q.pending = append(q.pending, &memoryMessage{id: uuid.NewString(), body: copied})
	return nil
}

func (q *MemoryQueue) Receive(ctx context.Context, maxMessages int, waitTime time.Duration) ([]Message, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if maxMessages <= 0 {
		maxMessages = sqsMaxBatchSize
	}

	var out []Message
	for _, m := range q.pending {
		if len(out) >= maxMessages {
			break
		}
		m.receives++
		handle := uuid.NewString()
		q.inflight[handle] = m
		out = append(out, Message{ID: m.id, Body: m.body, ReceiptHandle: handle})
	}
	return out, nil
}

func (q *MemoryQueue) Delete(ctx context.Context, receiptHandle string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	m, ok := q.inflight[receiptHandle]
	if !ok {
		return nil
	}
	delete(q.inflight, receiptHandle)

	for i, pending := range q.pending {
		if pending == m {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			break
		}
	}
	return nil
}

// Len returns the number of messages still on the queue.
func (q *MemoryQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Receives returns how many times the message with the given ID has been
// delivered so far.
func (q *MemoryQueue) Receives(id string) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, m := range q.pending {
		if m.id == id {
			return m.receives
		}
	}
	for _, m := range q.inflight {
		if m.id == id {
			return m.receives
		}
	}
	return 0
}
