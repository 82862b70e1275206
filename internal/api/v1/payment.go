package v1

import (
	"fmt"
	"time"
)

// PaymentRecord is the enriched, queryable projection of one admitted event.
// Rows are keyed by (PaymentIntentID, TransactionDate) so a retried enrichment
// of the same event overwrites rather than duplicates.
type PaymentRecord struct {
	// PaymentIntentID is the partition identity of the record.
	PaymentIntentID string `json:"payment_intent_id"`

	// TransactionDate is the sort component of the record key.
	TransactionDate time.Time `json:"transaction_date"`

	// Item is the description of the first line item of the checkout session.
	Item string `json:"item"`

	// Amounts are provider minor currency units, passed through unconverted.
	Subtotal int64 `json:"subtotal"`
	Tax      int64 `json:"tax"`
	Total    int64 `json:"total"`
	Discount int64 `json:"discount"`

	Quantity int64 `json:"quantity"`

	// Requestor is the display name of the paying customer, when known.
	Requestor string `json:"requestor,omitempty"`

	// Viewed is set later by the read path; it always initializes false
	// and must be settable without disturbing the financial fields.
	Viewed bool `json:"viewed"`

	// Paid is true only when the source event reflects terminal success.
	Paid bool `json:"paid"`
}

// Validate checks the invariants the store relies on.
func (r *PaymentRecord) Validate() error {
	if r.PaymentIntentID == "" {
		return fmt.Errorf("payment_intent_id is required")
	}

	if r.TransactionDate.IsZero() {
		return fmt.Errorf("transaction_date is required")
	}

	if r.Quantity < 0 {
		return fmt.Errorf("quantity must be >= 0")
	}

	return nil
}
