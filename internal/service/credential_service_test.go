package service

import (
	"context"
	"testing"
	"time"

	"paytrust-gateway/internal/core/domain"
	"paytrust-gateway/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestCredentialVault_Generate(t *testing.T) {
	ctrl := gomock.NewController(t)
	vault := NewCredentialVault(mocks.NewMockMerchantRepository(ctrl), mocks.NewMockEncryptionService(ctrl))

	apiKey, apiSecret, err := vault.Generate()
	require.NoError(t, err)

	assert.Regexp(t, `^[0-9a-f]{64}$`, apiKey, "api key should be 32 random bytes hex-encoded")
	assert.Regexp(t, `^[0-9a-f]{128}$`, apiSecret, "api secret should be 64 random bytes hex-encoded")

	apiKey2, apiSecret2, err := vault.Generate()
	require.NoError(t, err)
	assert.NotEqual(t, apiKey, apiKey2)
	assert.NotEqual(t, apiSecret, apiSecret2)
}

func TestCredentialVault_Rotate_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRepo := mocks.NewMockMerchantRepository(ctrl)
	mockEnc := mocks.NewMockEncryptionService(ctrl)
	vault := NewCredentialVault(mockRepo, mockEnc)

	merchantID := uuid.New()
	oldRotated := time.Now().Add(-24 * time.Hour)
	mockRepo.EXPECT().GetByID(gomock.Any(), merchantID).Return(&domain.Merchant{
		ID:            merchantID,
		APIKey:        "old-key",
		APISecretEnc:  "old-enc-secret",
		RotationCount: 2,
		LastRotatedAt: &oldRotated,
	}, nil)
	mockEnc.EXPECT().Encrypt(gomock.Any()).Return("new-enc-secret", nil)
	mockRepo.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, merchant *domain.Merchant) error {
			assert.NotEqual(t, "old-key", merchant.APIKey)
			assert.Equal(t, "new-enc-secret", merchant.APISecretEnc)
			assert.Equal(t, 3, merchant.RotationCount)
			require.NotNil(t, merchant.LastRotatedAt)
			assert.True(t, merchant.LastRotatedAt.After(oldRotated))
			return nil
		})

	merchant, plaintext, err := vault.Rotate(context.Background(), merchantID)
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9a-f]{128}$`, plaintext)
	assert.Equal(t, 3, merchant.RotationCount)
	assert.NotContains(t, merchant.APISecretEnc, plaintext, "plaintext secret must never be stored")
}

func TestCredentialVault_Rotate_MerchantNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRepo := mocks.NewMockMerchantRepository(ctrl)
	vault := NewCredentialVault(mockRepo, mocks.NewMockEncryptionService(ctrl))

	mockRepo.EXPECT().GetByID(gomock.Any(), gomock.Any()).Return(nil, nil)

	_, _, err := vault.Rotate(context.Background(), uuid.New())
	assertAppErrorCode(t, err, "TXN_001")
}

func TestCredentialVault_Rotate_EncryptError(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRepo := mocks.NewMockMerchantRepository(ctrl)
	mockEnc := mocks.NewMockEncryptionService(ctrl)
	vault := NewCredentialVault(mockRepo, mockEnc)

	merchantID := uuid.New()
	mockRepo.EXPECT().GetByID(gomock.Any(), merchantID).Return(&domain.Merchant{ID: merchantID}, nil)
	mockEnc.EXPECT().Encrypt(gomock.Any()).Return("", assert.AnError)

	_, _, err := vault.Rotate(context.Background(), merchantID)
	assert.Error(t, err)
}
