package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role classifies dashboard users.
type Role string

const (
	RoleMerchant Role = "MERCHANT"
	RoleAdmin    Role = "ADMIN"
)

// User represents a dashboard account. A user owns at most one merchant.
type User struct {
	ID                  uuid.UUID  `json:"id"`
	Email               string     `json:"email"`
	PasswordHash        string     `json:"-"` // Argon2id, never expose
	Role                Role       `json:"role"`
	BusinessName        string     `json:"business_name"`
	EmailVerified       bool       `json:"email_verified"`
	VerificationToken   *string    `json:"-"`
	VerificationExpires *time.Time `json:"-"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}
