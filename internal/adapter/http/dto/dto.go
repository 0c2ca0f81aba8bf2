package dto

import (
	"time"

	"paytrust-gateway/internal/core/domain"
	"paytrust-gateway/internal/core/ports"
)

// RegisterRequest is the request body for dashboard user registration.
type RegisterRequest struct {
	Email        string `json:"email" binding:"required,email,max=254"`
	Password     string `json:"password" binding:"required,min=8,max=128"`
	BusinessName string `json:"business_name" binding:"required,min=1,max=100"`
}

// LoginRequest is the request body for dashboard login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest carries the refresh token for access-token renewal.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// VerifyEmailRequest carries the verification token from the email link.
type VerifyEmailRequest struct {
	Token string `json:"token" binding:"required"`
}

// RegisterResponse is the response body for successful registration.
type RegisterResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	AccessToken   string `json:"access_token"`
	RefreshToken  string `json:"refresh_token"`
	AccessExpiry  int64  `json:"access_expiry"`  // Unix timestamp
	RefreshExpiry int64  `json:"refresh_expiry"` // Unix timestamp
}

// RefreshResponse is the response body for access-token renewal.
type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	AccessExpiry int64  `json:"access_expiry"` // Unix timestamp
}

// CreateMerchantRequest is the request body for merchant account creation.
type CreateMerchantRequest struct {
	BusinessName string  `json:"business_name" binding:"required,min=1,max=100"`
	WebhookURL   *string `json:"webhook_url,omitempty" binding:"omitempty,safe_url"`
}

// UpdateWebhookRequest is the request body for changing the webhook URL.
type UpdateWebhookRequest struct {
	WebhookURL string `json:"webhook_url" binding:"required,safe_url"`
}

// MerchantResponse is the merchant account view without credentials.
type MerchantResponse struct {
	ID            string  `json:"id"`
	BusinessName  string  `json:"business_name"`
	APIKey        string  `json:"api_key"`
	Status        string  `json:"status"`
	WebhookURL    *string `json:"webhook_url,omitempty"`
	RotationCount int     `json:"rotation_count"`
	LastRotatedAt *string `json:"last_rotated_at,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

// MerchantCredentialsResponse carries the plaintext secret exactly once,
// at creation or rotation. It is never retrievable afterwards.
type MerchantCredentialsResponse struct {
	MerchantResponse
	APISecret string `json:"api_secret"`
}

// CheckoutRequest is the request body for checkout creation.
type CheckoutRequest struct {
	Amount        float64           `json:"amount" binding:"required,gt=0"`
	Currency      string            `json:"currency" binding:"required,len=3"`
	CustomerEmail string            `json:"customer_email" binding:"required,email"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// TransactionResponse is the transaction view returned to callers.
type TransactionResponse struct {
	ID            string            `json:"id"`
	ReferenceID   string            `json:"reference_id"`
	Amount        float64           `json:"amount"`
	Currency      string            `json:"currency"`
	CustomerEmail string            `json:"customer_email"`
	Status        string            `json:"status"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	CreatedAt     string            `json:"created_at"`
	UpdatedAt     string            `json:"updated_at"`
}

// TransactionListResponse wraps a filtered, paginated transaction slice.
type TransactionListResponse struct {
	Items []TransactionResponse `json:"items"`
	Total int64                 `json:"total"`
	Limit int                   `json:"limit"`
	Skip  int                   `json:"skip"`
}

// NewMerchantResponse maps a domain merchant to its API view.
func NewMerchantResponse(m *domain.Merchant) MerchantResponse {
	resp := MerchantResponse{
		ID:            m.ID.String(),
		BusinessName:  m.BusinessName,
		APIKey:        m.APIKey,
		Status:        string(m.Status),
		WebhookURL:    m.WebhookURL,
		RotationCount: m.RotationCount,
		CreatedAt:     m.CreatedAt.UTC().Format(time.RFC3339),
	}
	if m.LastRotatedAt != nil {
		s := m.LastRotatedAt.UTC().Format(time.RFC3339)
		resp.LastRotatedAt = &s
	}
	return resp
}

// NewMerchantCredentialsResponse maps a creation/rotation result including
// the one-time plaintext secret.
func NewMerchantCredentialsResponse(creds *ports.MerchantCredentials) MerchantCredentialsResponse {
	return MerchantCredentialsResponse{
		MerchantResponse: NewMerchantResponse(creds.Merchant),
		APISecret:        creds.APISecret,
	}
}

// NewTransactionResponse maps a domain transaction to its API view.
func NewTransactionResponse(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:            t.ID.String(),
		ReferenceID:   t.ReferenceID,
		Amount:        t.Amount,
		Currency:      t.Currency,
		CustomerEmail: t.CustomerEmail,
		Status:        string(t.Status),
		Metadata:      t.Metadata,
		CreatedAt:     t.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     t.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// NewTransactionListResponse maps a history page to its API view.
func NewTransactionListResponse(page *ports.TransactionPage) TransactionListResponse {
	items := make([]TransactionResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, NewTransactionResponse(&page.Items[i]))
	}
	return TransactionListResponse{
		Items: items,
		Total: page.Total,
		Limit: page.Limit,
		Skip:  page.Skip,
	}
}
