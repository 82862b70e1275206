package storage

import (
	"context"
	"sort"
	"sync"

	v1 "github.com/checkout-lab/checkout-pipeline/internal/api/v1"
)

// MemoryLedger is an in-memory IdempotencyLedger.
// Useful for testing and development. The mutex gives the same insert-if-absent
// atomicity the postgres adapter gets from its conditional insert.
type MemoryLedger struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

// NewMemoryLedger creates an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{keys: make(map[string]struct{})}
}

func (l *MemoryLedger) TryAdmit(ctx context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.keys[key]; exists {
		return false, nil
	}
	l.keys[key] = struct{}{}
	return true, nil
}

// Len returns the number of admitted keys.
func (l *MemoryLedger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.keys)
}

// Contains reports whether key has been admitted.
func (l *MemoryLedger) Contains(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.keys[key]
	return ok
}

type paymentKey struct {
	paymentIntentID string
	transactionDate int64
}

// MemoryStore is an in-memory PaymentStore keyed by
// (payment_intent_id, transaction_date).
type MemoryStore struct {
	mu      sync.RWMutex
	records map[paymentKey]*v1.PaymentRecord
	upserts int
}

// NewMemoryStore creates an empty in-memory payment store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[paymentKey]*v1.PaymentRecord)}
}

func (s *MemoryStore) Upsert(ctx context.Context, record *v1.PaymentRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Store a copy to prevent external modification
	copy := *record
	s.records[keyOf(record)] = &copy
	s.upserts++
	return nil
}

func (s *MemoryStore) MarkViewed(ctx context.Context, paymentIntentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	marked := false
	for key, record := range s.records {
		if key.paymentIntentID == paymentIntentID {
			record.Viewed = true
			marked = true
		}
	}
	if !marked {
		return ErrNotFound
	}
	return nil
}

func (s *MemoryStore) ListPayments(ctx context.Context, filter ListFilter, limit int) ([]*v1.PaymentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*v1.PaymentRecord
	for _, record := range s.records {
		if filter.Viewed != nil && record.Viewed != *filter.Viewed {
			continue
		}
		if filter.Paid != nil && record.Paid != *filter.Paid {
			continue
		}
		copy := *record
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].TransactionDate.After(result[j].TransactionDate)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Get returns a copy of the record for the given identity, or nil.
func (s *MemoryStore) Get(paymentIntentID string, transactionDate int64) *v1.PaymentRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[paymentKey{paymentIntentID, transactionDate}]
	if !ok {
		return nil
	}
	copy := *record
	return &copy
}

// Upserts returns how many writes the store has accepted, duplicates included.
func (s *MemoryStore) Upserts() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.upserts
}

// Len returns the number of distinct stored rows.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func keyOf(record *v1.PaymentRecord) paymentKey {
	return paymentKey{record.PaymentIntentID, record.TransactionDate.UnixNano()}
}
