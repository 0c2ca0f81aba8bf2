package ports

import (
	"context"
	"time"

	"paytrust-gateway/internal/core/domain"

	"github.com/google/uuid"
)

// EncryptionService handles AES-256-GCM encryption/decryption of merchant
// secrets. The record format is nonceHex:authTagHex:ciphertextHex.
type EncryptionService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// SignatureService handles HMAC-SHA256 signing and verification.
// Canonical strings must be built byte-for-byte identically by signer and
// verifier; both builders live here so there is a single source of truth.
type SignatureService interface {
	Sign(secretKey string, payload string) string
	Verify(secretKey string, payload string, signature string) bool
	BuildRequestString(method, path, body string, timestamp int64) string
	BuildTransactionString(merchantID, referenceID string, amount float64, currency, customerEmail string) string
}

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService issues and verifies the two session token variants.
// Access and refresh tokens are signed with independent secrets and are
// never interchangeable.
type TokenService interface {
	IssueAccess(userID uuid.UUID, role domain.Role) (string, time.Time, error)
	IssueRefresh(userID uuid.UUID, role domain.Role) (string, time.Time, error)
	VerifyAccess(token string) (*TokenClaims, error)
	VerifyRefresh(token string) (*TokenClaims, error)
}

// TokenClaims holds the parsed session token claims.
type TokenClaims struct {
	UserID uuid.UUID
	Role   domain.Role
}

// CredentialVault generates and rotates merchant API credential pairs.
type CredentialVault interface {
	// Generate returns a fresh pair: 32 random bytes hex-encoded for the
	// key, 64 for the secret.
	Generate() (apiKey string, apiSecret string, err error)
	// Rotate replaces the merchant's pair, increments rotation_count and
	// stamps last_rotated_at. The previous secret is unusable immediately.
	// The plaintext secret is returned once and never stored.
	Rotate(ctx context.Context, merchantID uuid.UUID) (*domain.Merchant, string, error)
}

// SettlementOracle decides the outcome of a settlement attempt. The
// production oracle is pseudo-random (P(completed)=0.9); tests substitute
// deterministic implementations.
type SettlementOracle interface {
	Decide() domain.TransactionStatus
}

// EmailSender delivers account emails. Delivery is best-effort; failures
// are logged, never propagated into registration flow.
type EmailSender interface {
	SendVerificationEmail(ctx context.Context, to string, token string) error
}

// --- Service Ports (Business Logic) ---

// AuthService defines dashboard user authentication.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error)
	Login(ctx context.Context, email, password string) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (string, time.Time, error)
	VerifyEmail(ctx context.Context, token string) error
}

// RegisterRequest holds validated input for user registration.
type RegisterRequest struct {
	Email        string
	Password     string
	BusinessName string
}

// RegisterResult holds the registration outcome.
type RegisterResult struct {
	UserID            uuid.UUID
	Email             string
	VerificationToken string
}

// TokenPair holds both session tokens issued at login.
type TokenPair struct {
	AccessToken   string
	RefreshToken  string
	AccessExpiry  time.Time
	RefreshExpiry time.Time
}

// MerchantService defines merchant account management. All operations are
// keyed by the owning user.
type MerchantService interface {
	Create(ctx context.Context, userID uuid.UUID, businessName string, webhookURL *string) (*MerchantCredentials, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Merchant, error)
	RotateCredentials(ctx context.Context, userID uuid.UUID) (*MerchantCredentials, error)
	UpdateWebhookURL(ctx context.Context, userID uuid.UUID, webhookURL string) error
	GetStats(ctx context.Context, userID uuid.UUID) (*TransactionSummary, error)
}

// MerchantCredentials carries the plaintext secret out of creation or
// rotation; it is shown to the caller exactly once.
type MerchantCredentials struct {
	Merchant  *domain.Merchant
	APIKey    string
	APISecret string
}

// TransactionLedger defines the transaction core: checkout creation with
// origin signing, settlement, history and aggregates.
type TransactionLedger interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*domain.Transaction, error)
	Settle(ctx context.Context, transactionID uuid.UUID) (*domain.Transaction, error)
	History(ctx context.Context, params TransactionListParams) (*TransactionPage, error)
	Summary(ctx context.Context, merchantID uuid.UUID) (*TransactionSummary, error)
	GetDetails(ctx context.Context, merchantID, transactionID uuid.UUID) (*domain.Transaction, error)
}

// CheckoutRequest holds validated input for checkout creation.
type CheckoutRequest struct {
	MerchantID    uuid.UUID
	Amount        float64
	Currency      string
	CustomerEmail string
	Metadata      map[string]string
}

// TransactionPage wraps a filtered, paginated history slice. Total is the
// filtered count, not the page size.
type TransactionPage struct {
	Items []domain.Transaction
	Total int64
	Limit int
	Skip  int
}

// WebhookNotifier dispatches transaction events to merchant endpoints.
// Enqueue never blocks and never fails the caller; the delivery outcome is
// logged only.
type WebhookNotifier interface {
	Enqueue(transaction *domain.Transaction, event domain.WebhookEvent)
	Close()
}
