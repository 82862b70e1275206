package query

import (
	"context"
	"fmt"

	v1 "github.com/checkout-lab/checkout-pipeline/internal/api/v1"
	"github.com/checkout-lab/checkout-pipeline/internal/core/storage"
)

const (
	defaultListLimit = 10
	maxListLimit     = 100
)

// Service is the read-side API over the payment store.
type Service struct {
	store storage.PaymentStore
}

// NewService creates the query service around an injected store.
func NewService(store storage.PaymentStore) *Service {
	if store == nil {
		panic("query: store must not be nil")
	}
	return &Service{store: store}
}

// filterFromName maps a query-string filter name onto a store filter.
// The two supported groupings mirror the store's secondary indexes.
func filterFromName(name string) (storage.ListFilter, error) {
	boolPtr := func(b bool) *bool { return &b }

	switch name {
	case "":
		return storage.ListFilter{}, nil
	case "paid":
		return storage.ListFilter{Paid: boolPtr(true)}, nil
	case "unpaid":
		return storage.ListFilter{Paid: boolPtr(false)}, nil
	case "viewed":
		return storage.ListFilter{Viewed: boolPtr(true)}, nil
	case "unviewed":
		return storage.ListFilter{Viewed: boolPtr(false)}, nil
	default:
		return storage.ListFilter{}, fmt.Errorf("unknown filter %q", name)
	}
}

// ListPayments returns the most recent payments matching the named filter.
func (s *Service) ListPayments(ctx context.Context, filterName string, limit int) ([]*v1.PaymentRecord, error) {
	filter, err := filterFromName(filterName)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	return s.store.ListPayments(ctx, filter, limit)
}

// MarkViewed flips the viewed flag for a payment intent without touching the
// financial fields.
func (s *Service) MarkViewed(ctx context.Context, paymentIntentID string) error {
	return s.store.MarkViewed(ctx, paymentIntentID)
}
