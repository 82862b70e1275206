package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// LedgerAdapter implements storage.IdempotencyLedger for PostgreSQL.
type LedgerAdapter struct {
	stmtTryAdmit *sql.Stmt
}

// NewLedgerAdapter prepares the ledger statement against the shared connection.
func NewLedgerAdapter(db *sql.DB) (*LedgerAdapter, error) {
	stmt, err := db.Prepare(queryTryAdmit)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare tryAdmit statement: %w", err)
	}

	slog.Info("[Postgres] Ledger adapter initialized")
	return &LedgerAdapter{stmtTryAdmit: stmt}, nil
}

// TryAdmit atomically records key as admitted.
// The conditional insert returns the new row's admitted_at on success and no
// rows when the key already existed; "already exists" is a normal duplicate
// outcome, never an error.
func (a *LedgerAdapter) TryAdmit(ctx context.Context, key string) (bool, error) {
	var admittedAt time.Time
	err := a.stmtTryAdmit.QueryRowContext(ctx, key).Scan(&admittedAt)

	if err == sql.ErrNoRows {
		slog.Debug("[Postgres] Idempotency key already admitted", "idempotency_key", key)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to admit idempotency key: %w", err)
	}

	slog.Debug("[Postgres] Admitted idempotency key",
		"idempotency_key", key,
		"admitted_at", admittedAt)
	return true, nil
}

// Close closes the prepared statement.
func (a *LedgerAdapter) Close() error {
	if err := a.stmtTryAdmit.Close(); err != nil {
		return fmt.Errorf("failed to close tryAdmit statement: %w", err)
	}
	return nil
}
