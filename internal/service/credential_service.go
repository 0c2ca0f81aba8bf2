package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"paytrust-gateway/internal/core/domain"
	"paytrust-gateway/internal/core/ports"
	"paytrust-gateway/pkg/apperror"

	"github.com/google/uuid"
)

const (
	apiKeyBytes    = 32
	apiSecretBytes = 64
)

// credentialVault implements ports.CredentialVault. Secrets are encrypted
// before they ever reach the repository; plaintext leaves this service
// exactly once, in the return value.
type credentialVault struct {
	merchantRepo ports.MerchantRepository
	encSvc       ports.EncryptionService
}

// NewCredentialVault creates a new credential vault.
func NewCredentialVault(merchantRepo ports.MerchantRepository, encSvc ports.EncryptionService) ports.CredentialVault {
	return &credentialVault{
		merchantRepo: merchantRepo,
		encSvc:       encSvc,
	}
}

// Generate returns a fresh credential pair: 32 random bytes hex-encoded for
// the API key, 64 for the secret.
func (v *credentialVault) Generate() (string, string, error) {
	apiKey, err := randomHex(apiKeyBytes)
	if err != nil {
		return "", "", apperror.InternalError(fmt.Errorf("generate api key: %w", err))
	}
	apiSecret, err := randomHex(apiSecretBytes)
	if err != nil {
		return "", "", apperror.InternalError(fmt.Errorf("generate api secret: %w", err))
	}
	return apiKey, apiSecret, nil
}

// Rotate replaces the merchant's credential pair. The previous secret stops
// verifying as soon as the update lands; there is no grace period.
func (v *credentialVault) Rotate(ctx context.Context, merchantID uuid.UUID) (*domain.Merchant, string, error) {
	merchant, err := v.merchantRepo.GetByID(ctx, merchantID)
	if err != nil {
		return nil, "", apperror.InternalError(err)
	}
	if merchant == nil {
		return nil, "", apperror.ErrNotFound("merchant")
	}

	apiKey, apiSecret, err := v.Generate()
	if err != nil {
		return nil, "", err
	}

	encSecret, err := v.encSvc.Encrypt(apiSecret)
	if err != nil {
		return nil, "", err
	}

	now := time.Now()
	merchant.APIKey = apiKey
	merchant.APISecretEnc = encSecret
	merchant.RotationCount++
	merchant.LastRotatedAt = &now
	merchant.UpdatedAt = now

	if err := v.merchantRepo.Update(ctx, merchant); err != nil {
		return nil, "", apperror.InternalError(err)
	}

	return merchant, apiSecret, nil
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
