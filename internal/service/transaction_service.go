package service

import (
	"context"
	"time"

	"paytrust-gateway/internal/core/domain"
	"paytrust-gateway/internal/core/ports"
	"paytrust-gateway/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const defaultHistoryLimit = 20

type transactionLedger struct {
	txRepo       ports.TransactionRepository
	merchantRepo ports.MerchantRepository
	encSvc       ports.EncryptionService
	sigSvc       ports.SignatureService
	oracle       ports.SettlementOracle
	notifier     ports.WebhookNotifier
	log          zerolog.Logger
}

// NewTransactionLedger creates the transaction core service.
func NewTransactionLedger(
	txRepo ports.TransactionRepository,
	merchantRepo ports.MerchantRepository,
	encSvc ports.EncryptionService,
	sigSvc ports.SignatureService,
	oracle ports.SettlementOracle,
	notifier ports.WebhookNotifier,
	log zerolog.Logger,
) ports.TransactionLedger {
	return &transactionLedger{
		txRepo:       txRepo,
		merchantRepo: merchantRepo,
		encSvc:       encSvc,
		sigSvc:       sigSvc,
		oracle:       oracle,
		notifier:     notifier,
		log:          log,
	}
}

// CreateCheckout records a pending transaction. The origin signature is
// computed once here, with the merchant secret current at creation; later
// rotations or status changes never touch it.
func (s *transactionLedger) CreateCheckout(ctx context.Context, req ports.CheckoutRequest) (*domain.Transaction, error) {
	if req.Amount <= 0 {
		return nil, apperror.Validation("amount must be positive")
	}

	merchant, err := s.merchantRepo.GetByID(ctx, req.MerchantID)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if merchant == nil {
		return nil, apperror.ErrNotFound("merchant")
	}

	secretKey, err := s.encSvc.Decrypt(merchant.APISecretEnc)
	if err != nil {
		return nil, err
	}

	referenceID := uuid.NewString()
	payload := s.sigSvc.BuildTransactionString(merchant.ID.String(), referenceID, req.Amount, req.Currency, req.CustomerEmail)
	signature := s.sigSvc.Sign(secretKey, payload)

	now := time.Now()
	tx := &domain.Transaction{
		ID:            uuid.New(),
		MerchantID:    merchant.ID,
		ReferenceID:   referenceID,
		Amount:        req.Amount,
		Currency:      req.Currency,
		CustomerEmail: req.CustomerEmail,
		Status:        domain.TransactionStatusPending,
		Signature:     signature,
		Metadata:      req.Metadata,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.txRepo.Create(ctx, tx); err != nil {
		return nil, apperror.InternalError(err)
	}

	s.log.Info().
		Str("transaction_id", tx.ID.String()).
		Str("merchant_id", merchant.ID.String()).
		Str("reference_id", referenceID).
		Msg("checkout created")

	return tx, nil
}

// Settle resolves a pending transaction. The status write is a compare-and-
// swap on pending, so concurrent settles of the same transaction produce
// exactly one outcome and one webhook.
func (s *transactionLedger) Settle(ctx context.Context, transactionID uuid.UUID) (*domain.Transaction, error) {
	tx, err := s.txRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if tx == nil {
		return nil, apperror.ErrNotFound("transaction")
	}
	if tx.Status != domain.TransactionStatusPending {
		return nil, apperror.ErrInvalidStateTransition()
	}

	outcome := s.oracle.Decide()

	updated, err := s.txRepo.UpdateStatusIfPending(ctx, tx.ID, outcome)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if !updated {
		// Lost the race: another settle already resolved it.
		return nil, apperror.ErrInvalidStateTransition()
	}

	tx.Status = outcome
	tx.UpdatedAt = time.Now()

	event := domain.EventTransactionCompleted
	if outcome == domain.TransactionStatusFailed {
		event = domain.EventTransactionFailed
	}
	s.notifier.Enqueue(tx, event)

	s.log.Info().
		Str("transaction_id", tx.ID.String()).
		Str("status", string(outcome)).
		Msg("transaction settled")

	return tx, nil
}

// History returns a filtered, newest-first page. Total counts the filtered
// set, not the page.
func (s *transactionLedger) History(ctx context.Context, params ports.TransactionListParams) (*ports.TransactionPage, error) {
	if params.Limit <= 0 {
		params.Limit = defaultHistoryLimit
	}
	if params.Skip < 0 {
		params.Skip = 0
	}

	items, total, err := s.txRepo.List(ctx, params)
	if err != nil {
		return nil, apperror.InternalError(err)
	}

	return &ports.TransactionPage{
		Items: items,
		Total: total,
		Limit: params.Limit,
		Skip:  params.Skip,
	}, nil
}

func (s *transactionLedger) Summary(ctx context.Context, merchantID uuid.UUID) (*ports.TransactionSummary, error) {
	summary, err := s.txRepo.GetSummary(ctx, merchantID)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	return summary, nil
}

// GetDetails returns a transaction scoped to the owning merchant. A foreign
// transaction is indistinguishable from a missing one.
func (s *transactionLedger) GetDetails(ctx context.Context, merchantID, transactionID uuid.UUID) (*domain.Transaction, error) {
	tx, err := s.txRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if tx == nil || tx.MerchantID != merchantID {
		return nil, apperror.ErrNotFound("transaction")
	}
	return tx, nil
}
