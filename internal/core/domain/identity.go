package domain

import "github.com/google/uuid"

// IdentityKind tags the two ways a caller can authenticate.
type IdentityKind string

const (
	IdentityKindMerchant IdentityKind = "merchant" // HMAC-signed API request
	IdentityKindUser     IdentityKind = "user"     // JWT dashboard session
)

// Identity is the authenticated principal bound to a request context.
// It is a closed union over merchant-signed and user-session callers;
// MerchantID is set only when Kind is IdentityKindMerchant.
type Identity struct {
	Kind       IdentityKind
	UserID     uuid.UUID
	Role       Role
	MerchantID uuid.UUID
}

// NewMerchantIdentity builds the identity bound after HMAC verification:
// the merchant's owning user with the MERCHANT role.
func NewMerchantIdentity(userID, merchantID uuid.UUID) Identity {
	return Identity{
		Kind:       IdentityKindMerchant,
		UserID:     userID,
		Role:       RoleMerchant,
		MerchantID: merchantID,
	}
}

// NewUserIdentity builds the identity carried by a verified session token.
func NewUserIdentity(userID uuid.UUID, role Role) Identity {
	return Identity{
		Kind:   IdentityKindUser,
		UserID: userID,
		Role:   role,
	}
}
