package service

import (
	"context"
	"time"

	"paytrust-gateway/internal/core/domain"
	"paytrust-gateway/internal/core/ports"
	"paytrust-gateway/pkg/apperror"

	"github.com/google/uuid"
)

type merchantService struct {
	merchantRepo ports.MerchantRepository
	txRepo       ports.TransactionRepository
	vault        ports.CredentialVault
	encSvc       ports.EncryptionService
}

// NewMerchantService creates a new merchant management service.
func NewMerchantService(
	merchantRepo ports.MerchantRepository,
	txRepo ports.TransactionRepository,
	vault ports.CredentialVault,
	encSvc ports.EncryptionService,
) ports.MerchantService {
	return &merchantService{
		merchantRepo: merchantRepo,
		txRepo:       txRepo,
		vault:        vault,
		encSvc:       encSvc,
	}
}

// Create provisions a merchant account for the user. Each user gets exactly
// one merchant; the plaintext secret appears only in this response.
func (s *merchantService) Create(ctx context.Context, userID uuid.UUID, businessName string, webhookURL *string) (*ports.MerchantCredentials, error) {
	existing, err := s.merchantRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if existing != nil {
		return nil, apperror.ErrMerchantExists()
	}

	apiKey, apiSecret, err := s.vault.Generate()
	if err != nil {
		return nil, err
	}
	encSecret, err := s.encSvc.Encrypt(apiSecret)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	merchant := &domain.Merchant{
		ID:           uuid.New(),
		UserID:       userID,
		BusinessName: businessName,
		APIKey:       apiKey,
		APISecretEnc: encSecret,
		Status:       domain.MerchantStatusActive,
		WebhookURL:   webhookURL,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.merchantRepo.Create(ctx, merchant); err != nil {
		return nil, apperror.InternalError(err)
	}

	return &ports.MerchantCredentials{
		Merchant:  merchant,
		APIKey:    apiKey,
		APISecret: apiSecret,
	}, nil
}

func (s *merchantService) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Merchant, error) {
	merchant, err := s.merchantRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if merchant == nil {
		return nil, apperror.ErrNotFound("merchant")
	}
	return merchant, nil
}

// RotateCredentials replaces the caller's credential pair. The old secret is
// unusable as soon as this returns.
func (s *merchantService) RotateCredentials(ctx context.Context, userID uuid.UUID) (*ports.MerchantCredentials, error) {
	merchant, err := s.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	rotated, apiSecret, err := s.vault.Rotate(ctx, merchant.ID)
	if err != nil {
		return nil, err
	}

	return &ports.MerchantCredentials{
		Merchant:  rotated,
		APIKey:    rotated.APIKey,
		APISecret: apiSecret,
	}, nil
}

func (s *merchantService) UpdateWebhookURL(ctx context.Context, userID uuid.UUID, webhookURL string) error {
	merchant, err := s.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}

	merchant.WebhookURL = &webhookURL
	merchant.UpdatedAt = time.Now()

	if err := s.merchantRepo.Update(ctx, merchant); err != nil {
		return apperror.InternalError(err)
	}
	return nil
}

func (s *merchantService) GetStats(ctx context.Context, userID uuid.UUID) (*ports.TransactionSummary, error) {
	merchant, err := s.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary, err := s.txRepo.GetSummary(ctx, merchant.ID)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	return summary, nil
}
