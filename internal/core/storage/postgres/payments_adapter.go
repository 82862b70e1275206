package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	v1 "github.com/checkout-lab/checkout-pipeline/internal/api/v1"
	"github.com/checkout-lab/checkout-pipeline/internal/core/storage"
)

// PaymentsAdapter implements storage.PaymentStore for PostgreSQL.
type PaymentsAdapter struct {
	stmtUpsert     *sql.Stmt
	stmtMarkViewed *sql.Stmt
	stmtList       *sql.Stmt
}

// NewPaymentsAdapter prepares the payment statements against the shared
// connection.
func NewPaymentsAdapter(db *sql.DB) (*PaymentsAdapter, error) {
	stmtUpsert, err := db.Prepare(queryUpsertPayment)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare upsertPayment statement: %w", err)
	}

	stmtMarkViewed, err := db.Prepare(queryMarkViewed)
	if err != nil {
		stmtUpsert.Close()
		return nil, fmt.Errorf("failed to prepare markViewed statement: %w", err)
	}

	stmtList, err := db.Prepare(queryListPayments)
	if err != nil {
		stmtUpsert.Close()
		stmtMarkViewed.Close()
		return nil, fmt.Errorf("failed to prepare listPayments statement: %w", err)
	}

	slog.Info("[Postgres] Payments adapter initialized")
	return &PaymentsAdapter{
		stmtUpsert:     stmtUpsert,
		stmtMarkViewed: stmtMarkViewed,
		stmtList:       stmtList,
	}, nil
}

// Upsert writes the record keyed by (payment_intent_id, transaction_date),
// replacing every field of any prior row. Writing the same content twice
// leaves the row identical to writing it once.
func (a *PaymentsAdapter) Upsert(ctx context.Context, record *v1.PaymentRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("invalid payment record: %w", err)
	}

	_, err := a.stmtUpsert.ExecContext(ctx,
		record.PaymentIntentID,
		record.TransactionDate,
		record.Item,
		record.Subtotal,
		record.Tax,
		record.Total,
		record.Discount,
		record.Quantity,
		nullableString(record.Requestor),
		record.Viewed,
		record.Paid,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert payment: %w", err)
	}

	slog.Debug("[Postgres] Upserted payment",
		"payment_intent_id", record.PaymentIntentID,
		"transaction_date", record.TransactionDate,
		"paid", record.Paid)
	return nil
}

// MarkViewed flips the viewed flag for every row of the payment intent.
func (a *PaymentsAdapter) MarkViewed(ctx context.Context, paymentIntentID string) error {
	result, err := a.stmtMarkViewed.ExecContext(ctx, paymentIntentID)
	if err != nil {
		return fmt.Errorf("failed to mark payment viewed: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListPayments returns records matching the filter, newest first.
func (a *PaymentsAdapter) ListPayments(ctx context.Context, filter storage.ListFilter, limit int) ([]*v1.PaymentRecord, error) {
	rows, err := a.stmtList.QueryContext(ctx,
		nullableBool(filter.Viewed),
		nullableBool(filter.Paid),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	var records []*v1.PaymentRecord
	for rows.Next() {
		record, err := scanPaymentRow(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payments: %w", err)
	}

	return records, nil
}

// Close closes all prepared statements.
func (a *PaymentsAdapter) Close() error {
	var firstErr error

	if err := a.stmtUpsert.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to close upsertPayment statement: %w", err)
	}
	if err := a.stmtMarkViewed.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to close markViewed statement: %w", err)
	}
	if err := a.stmtList.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to close listPayments statement: %w", err)
	}

	return firstErr
}
