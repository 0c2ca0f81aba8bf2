package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses. Message is
// the client-visible text and stays deliberately generic: authentication
// and crypto failures never reveal which specific check failed.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Request Authentication (SEC) ----

func ErrMissingCredentials() *AppError {
	return New("SEC_001", "Missing required signing headers", http.StatusBadRequest)
}

func ErrReplayRejected() *AppError {
	return New("SEC_002", "Request timestamp expired", http.StatusUnauthorized)
}

// ErrInvalidMerchant covers both unknown and non-active merchants with a
// single opaque message.
func ErrInvalidMerchant() *AppError {
	return New("SEC_003", "Invalid merchant", http.StatusUnauthorized)
}

func ErrInvalidSignature() *AppError {
	return New("SEC_004", "Invalid signature", http.StatusUnauthorized)
}

// ---- Session Tokens (AUTH) ----

func ErrTokenExpired() *AppError {
	return New("AUTH_001", "Token expired", http.StatusUnauthorized)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_002", "Invalid token", http.StatusUnauthorized)
}

func ErrInvalidCredentials() *AppError {
	return New("AUTH_003", "Invalid credentials", http.StatusUnauthorized)
}

func ErrEmailNotVerified() *AppError {
	return New("AUTH_004", "Email address not verified", http.StatusForbidden)
}

// ---- Crypto (CRYPTO) ----

// ErrCrypto covers malformed ciphertext records and failed authentication
// tags alike; the distinction is never exposed.
func ErrCrypto(err error) *AppError {
	return Wrap("CRYPTO_001", "Decryption failed", http.StatusInternalServerError, err)
}

// ---- Business (TXN) ----

func ErrNotFound(entity string) *AppError {
	return New("TXN_001", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrInvalidStateTransition() *AppError {
	return New("TXN_002", "Transaction is not in a settleable state", http.StatusConflict)
}

func ErrMerchantExists() *AppError {
	return New("TXN_003", "User already has a merchant account", http.StatusConflict)
}

func ErrEmailExists() *AppError {
	return New("TXN_004", "Email already registered", http.StatusConflict)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a client validation error.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}
