package postgres

import (
	"database/sql"
	"fmt"

	v1 "github.com/checkout-lab/checkout-pipeline/internal/api/v1"
)

type scanner interface {
	Scan(dest ...interface{}) error
}

// scanPaymentRow scans a database row into a PaymentRecord.
// Compatible with both sql.Row (single) and sql.Rows (multiple).
func scanPaymentRow(row scanner) (*v1.PaymentRecord, error) {
	var record v1.PaymentRecord
	var requestor sql.NullString

	err := row.Scan(
		&record.PaymentIntentID,
		&record.TransactionDate,
		&record.Item,
		&record.Subtotal,
		&record.Tax,
		&record.Total,
		&record.Discount,
		&record.Quantity,
		&requestor,
		&record.Viewed,
		&record.Paid,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan payment row: %w", err)
	}

	if requestor.Valid {
		record.Requestor = requestor.String
	}

	return &record, nil
}

// nullableString maps an empty string to SQL NULL.
func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// nullableBool maps a nil pointer to SQL NULL.
func nullableBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}
