package postgres

// SQL queries for the idempotency ledger and the payment record store

const (
	// queryTryAdmit is the single atomic insert-if-absent the whole pipeline
	// leans on. ON CONFLICT DO NOTHING returns no rows (sql.ErrNoRows) when
	// the key was already admitted, so two concurrent batches carrying the
	// same key see exactly one admission between them.
	queryTryAdmit = `
		INSERT INTO idempotency_keys (idempotency_key)
		VALUES ($1)
		ON CONFLICT (idempotency_key) DO NOTHING
		RETURNING admitted_at
	`

	// queryUpsertPayment blindly overwrites every field for the composite key
	// (payment_intent_id, transaction_date). Safe because enriched content for
	// an admitted event is deterministic given the same provider data.
	queryUpsertPayment = `
		INSERT INTO payments (
			payment_intent_id, transaction_date, item,
			subtotal, tax, total, discount, quantity,
			requestor, viewed, paid, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now())
		ON CONFLICT (payment_intent_id, transaction_date) DO UPDATE SET
			item = EXCLUDED.item,
			subtotal = EXCLUDED.subtotal,
			tax = EXCLUDED.tax,
			total = EXCLUDED.total,
			discount = EXCLUDED.discount,
			quantity = EXCLUDED.quantity,
			requestor = EXCLUDED.requestor,
			viewed = EXCLUDED.viewed,
			paid = EXCLUDED.paid,
			updated_at = now()
	`

	// queryMarkViewed is the read-path mutation: it touches only the viewed
	// flag, never the financial fields.
	queryMarkViewed = `
		UPDATE payments
		SET viewed = TRUE, updated_at = now()
		WHERE payment_intent_id = $1
	`

	// queryListPayments serves the query API. NULL filter arguments mean
	// "no constraint"; the (viewed, transaction_date) and
	// (paid, transaction_date) indexes back the two groupings.
	queryListPayments = `
		SELECT
			payment_intent_id, transaction_date, item,
			subtotal, tax, total, discount, quantity,
			requestor, viewed, paid
		FROM payments
		WHERE ($1::boolean IS NULL OR viewed = $1)
		  AND ($2::boolean IS NULL OR paid = $2)
		ORDER BY transaction_date DESC
		LIMIT $3
	`
)
