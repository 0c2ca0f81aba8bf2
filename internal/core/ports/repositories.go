package ports

import (
	"context"
	"time"

	"paytrust-gateway/internal/core/domain"

	"github.com/google/uuid"
)

// UserRepository defines persistence operations for dashboard users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByVerificationToken(ctx context.Context, token string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

// MerchantRepository defines persistence operations for merchants.
type MerchantRepository interface {
	Create(ctx context.Context, merchant *domain.Merchant) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Merchant, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Merchant, error)
	GetByAPIKey(ctx context.Context, apiKey string) (*domain.Merchant, error)
	Update(ctx context.Context, merchant *domain.Merchant) error
}

// TransactionRepository defines persistence operations for transactions.
type TransactionRepository interface {
	Create(ctx context.Context, transaction *domain.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	// UpdateStatusIfPending atomically moves a transaction out of pending.
	// Returns false when the transaction was not in pending at write time.
	UpdateStatusIfPending(ctx context.Context, id uuid.UUID, status domain.TransactionStatus) (bool, error)
	List(ctx context.Context, params TransactionListParams) ([]domain.Transaction, int64, error)
	GetSummary(ctx context.Context, merchantID uuid.UUID) (*TransactionSummary, error)
}

// TransactionListParams holds filter + pagination for listing transactions.
// Range bounds are inclusive.
type TransactionListParams struct {
	MerchantID uuid.UUID
	Status     *domain.TransactionStatus
	From       *time.Time
	To         *time.Time
	MinAmount  *float64
	MaxAmount  *float64
	Limit      int
	Skip       int
}

// TransactionSummary holds aggregated transaction figures for a merchant.
// SuccessRate is completed/total x 100, zero when the merchant has no
// transactions.
type TransactionSummary struct {
	TotalTransactions     int64   `json:"total_transactions"`
	CompletedTransactions int64   `json:"completed_transactions"`
	FailedTransactions    int64   `json:"failed_transactions"`
	TotalAmount           float64 `json:"total_amount"`
	CompletedAmount       float64 `json:"completed_amount"`
	SuccessRate           float64 `json:"success_rate"`
}

// WebhookRepository persists webhook delivery logs.
type WebhookRepository interface {
	Create(ctx context.Context, log *domain.WebhookDeliveryLog) error
	ListByTransactionID(ctx context.Context, transactionID uuid.UUID) ([]domain.WebhookDeliveryLog, error)
}
