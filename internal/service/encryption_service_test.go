package service

import (
	"encoding/hex"
	"strings"
	"testing"

	"paytrust-gateway/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Valid 32-byte key in hex (64 chars)
const testAESKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func TestAESEncryptionService_NewInvalidKey(t *testing.T) {
	_, err := NewAESEncryptionService("shortkey")
	assert.Error(t, err)
}

func TestAESEncryptionService_EncryptDecrypt(t *testing.T) {
	svc, err := NewAESEncryptionService(testAESKey)
	require.NoError(t, err)

	plaintext := "a-64-byte-api-secret"
	record, err := svc.Encrypt(plaintext)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, record)

	decrypted, err := svc.Decrypt(record)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestAESEncryptionService_RecordFormat(t *testing.T) {
	svc, err := NewAESEncryptionService(testAESKey)
	require.NoError(t, err)

	record, err := svc.Encrypt("secret")
	require.NoError(t, err)

	parts := strings.Split(record, ":")
	require.Len(t, parts, 3)

	nonce, err := hex.DecodeString(parts[0])
	require.NoError(t, err)
	assert.Len(t, nonce, 12)

	tag, err := hex.DecodeString(parts[1])
	require.NoError(t, err)
	assert.Len(t, tag, 16)

	ciphertext, err := hex.DecodeString(parts[2])
	require.NoError(t, err)
	assert.Len(t, ciphertext, len("secret"))
}

func TestAESEncryptionService_DifferentNonces(t *testing.T) {
	svc, err := NewAESEncryptionService(testAESKey)
	require.NoError(t, err)

	plaintext := "test_value"
	c1, err := svc.Encrypt(plaintext)
	require.NoError(t, err)
	c2, err := svc.Encrypt(plaintext)
	require.NoError(t, err)

	assert.NotEqual(t, c1, c2, "same plaintext should produce different records due to random nonce")

	d1, _ := svc.Decrypt(c1)
	d2, _ := svc.Decrypt(c2)
	assert.Equal(t, d1, d2)
}

func TestAESEncryptionService_TamperedCiphertext(t *testing.T) {
	svc, err := NewAESEncryptionService(testAESKey)
	require.NoError(t, err)

	record, err := svc.Encrypt("secret")
	require.NoError(t, err)

	tampered := record[:len(record)-2] + "ff"
	_, err = svc.Decrypt(tampered)
	requireCryptoError(t, err)
}

func TestAESEncryptionService_TamperedAuthTag(t *testing.T) {
	svc, err := NewAESEncryptionService(testAESKey)
	require.NoError(t, err)

	record, err := svc.Encrypt("secret")
	require.NoError(t, err)

	parts := strings.Split(record, ":")
	require.Len(t, parts, 3)
	parts[1] = strings.Repeat("00", 16)
	_, err = svc.Decrypt(strings.Join(parts, ":"))
	requireCryptoError(t, err)
}

func TestAESEncryptionService_WrongKey(t *testing.T) {
	svc1, _ := NewAESEncryptionService(testAESKey)
	otherKey := "abcdef0123456789abcdef0123456789abcdef0123456789abcdef0123456789"
	svc2, _ := NewAESEncryptionService(otherKey)

	record, err := svc1.Encrypt("rotated-secret")
	require.NoError(t, err)

	_, err = svc2.Decrypt(record)
	requireCryptoError(t, err)
}

func TestAESEncryptionService_MalformedRecords(t *testing.T) {
	svc, _ := NewAESEncryptionService(testAESKey)

	tests := []struct {
		name   string
		record string
	}{
		{"no separators", "abcdef"},
		{"two parts", "abcd:ef01"},
		{"four parts", "ab:cd:ef:01"},
		{"non-hex nonce", "zz:" + strings.Repeat("00", 16) + ":abcd"},
		{"short nonce", "abcd:" + strings.Repeat("00", 16) + ":abcd"},
		{"short tag", strings.Repeat("00", 12) + ":abcd:abcd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Decrypt(tt.record)
			requireCryptoError(t, err)
		})
	}
}

func requireCryptoError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CRYPTO_001", appErr.Code)
}
