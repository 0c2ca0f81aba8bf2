package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
)

// HMACSignatureService implements ports.SignatureService using HMAC-SHA256.
type HMACSignatureService struct{}

// NewHMACSignatureService creates a new HMAC-SHA256 signature service.
func NewHMACSignatureService() *HMACSignatureService {
	return &HMACSignatureService{}
}

// Sign computes HMAC-SHA256 of payload using secretKey.
// Returns lowercase hex-encoded signature.
func (s *HMACSignatureService) Sign(secretKey string, payload string) string {
	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks if signature matches HMAC-SHA256(secretKey, payload).
// Uses constant-time comparison to prevent timing attacks.
func (s *HMACSignatureService) Verify(secretKey string, payload string, signature string) bool {
	expected := s.Sign(secretKey, payload)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// BuildRequestString constructs the canonical request payload.
// Format: METHOD|PATH|RAW_BODY|TIMESTAMP. The body must be the raw bytes as
// received, before any binding or re-serialization.
func (s *HMACSignatureService) BuildRequestString(method, path, body string, timestamp int64) string {
	return fmt.Sprintf("%s|%s|%s|%d", method, path, body, timestamp)
}

// BuildTransactionString constructs the canonical transaction payload.
// Format: merchantID|referenceID|amount|currency|customerEmail.
func (s *HMACSignatureService) BuildTransactionString(merchantID, referenceID string, amount float64, currency, customerEmail string) string {
	return fmt.Sprintf("%s|%s|%s|%s|%s", merchantID, referenceID, formatAmount(amount), currency, customerEmail)
}

// formatAmount renders an amount with no trailing zeros: 100.00 -> "100",
// 99.50 -> "99.5". Signer and verifier must agree on this rendering.
func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}
