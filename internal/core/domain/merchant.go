package domain

import (
	"time"

	"github.com/google/uuid"
)

// MerchantStatus represents the state of a merchant account.
type MerchantStatus string

const (
	MerchantStatusActive    MerchantStatus = "active"
	MerchantStatusInactive  MerchantStatus = "inactive"
	MerchantStatusSuspended MerchantStatus = "suspended"
)

// Merchant represents a merchant account owned by exactly one user.
// APISecretEnc holds the AES-256-GCM record nonceHex:authTagHex:ciphertextHex;
// the plaintext secret exists only transiently during signing and verification.
type Merchant struct {
	ID            uuid.UUID      `json:"id"`
	UserID        uuid.UUID      `json:"user_id"`
	BusinessName  string         `json:"business_name"`
	APIKey        string         `json:"api_key"`
	APISecretEnc  string         `json:"-"` // Encrypted at rest, never expose
	Status        MerchantStatus `json:"status"`
	WebhookURL    *string        `json:"webhook_url,omitempty"`
	RotationCount int            `json:"rotation_count"`
	LastRotatedAt *time.Time     `json:"last_rotated_at,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// IsActive returns true if the merchant account is active.
func (m *Merchant) IsActive() bool {
	return m.Status == MerchantStatusActive
}
