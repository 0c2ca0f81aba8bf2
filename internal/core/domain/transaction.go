package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransactionStatus represents the lifecycle state of a transaction.
// processing and refunded are declared states with no transition into or
// out of them in the settlement path; they are reserved for future flows.
type TransactionStatus string

const (
	TransactionStatusPending    TransactionStatus = "pending"
	TransactionStatusProcessing TransactionStatus = "processing"
	TransactionStatusCompleted  TransactionStatus = "completed"
	TransactionStatusFailed     TransactionStatus = "failed"
	TransactionStatusRefunded   TransactionStatus = "refunded"
)

// Transaction represents a checkout record in the ledger.
// Signature is the HMAC over the creation-time fields
// merchantID|referenceID|amount|currency|customerEmail, computed once with
// the merchant secret at creation; it authenticates origin, not status.
type Transaction struct {
	ID            uuid.UUID         `json:"id"`
	MerchantID    uuid.UUID         `json:"merchant_id"`
	ReferenceID   string            `json:"reference_id"` // UUIDv4, immutable, globally unique
	Amount        float64           `json:"amount"`
	Currency      string            `json:"currency"`
	CustomerEmail string            `json:"customer_email"`
	Status        TransactionStatus `json:"status"`
	Signature     string            `json:"-"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// IsTerminal returns true once settlement resolved the transaction.
func (t *Transaction) IsTerminal() bool {
	return t.Status == TransactionStatusCompleted || t.Status == TransactionStatusFailed
}
