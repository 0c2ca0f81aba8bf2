package domain

import (
	"time"

	"github.com/google/uuid"
)

// WebhookEvent names the transaction events delivered to merchants.
type WebhookEvent string

const (
	EventTransactionCompleted  WebhookEvent = "transaction.completed"
	EventTransactionFailed     WebhookEvent = "transaction.failed"
	EventTransactionProcessing WebhookEvent = "transaction.processing"
)

// WebhookStatus represents the outcome of a single delivery attempt.
type WebhookStatus string

const (
	WebhookStatusDelivered WebhookStatus = "DELIVERED"
	WebhookStatusFailed    WebhookStatus = "FAILED"
)

// WebhookDeliveryLog records one webhook delivery attempt. Delivery is
// single-shot: there is no retry scheduling, the log exists for
// observability only.
type WebhookDeliveryLog struct {
	ID            uuid.UUID     `json:"id"`
	TransactionID uuid.UUID     `json:"transaction_id"`
	MerchantID    uuid.UUID     `json:"merchant_id"`
	WebhookURL    string        `json:"webhook_url"`
	Event         WebhookEvent  `json:"event"`
	Payload       string        `json:"payload"` // JSON string
	HTTPStatus    *int          `json:"http_status"`
	Status        WebhookStatus `json:"status"`
	LastError     *string       `json:"last_error"`
	CreatedAt     time.Time     `json:"created_at"`
}
