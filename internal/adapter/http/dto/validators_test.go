package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// --- SanitizeStruct tests ---

func TestSanitizeStruct_TrimsWhitespace(t *testing.T) {
	req := RegisterRequest{
		Email:        "  alice@example.com  ",
		Password:     "  pass1234  ",
		BusinessName: " My Shop ",
	}
	SanitizeStruct(&req)

	assert.Equal(t, "alice@example.com", req.Email)
	assert.Equal(t, "pass1234", req.Password)
	assert.Equal(t, "My Shop", req.BusinessName)
}

func TestSanitizeStruct_EscapesHTML(t *testing.T) {
	req := CreateMerchantRequest{
		BusinessName: "shop <script>alert('x')</script>",
	}
	SanitizeStruct(&req)

	assert.Contains(t, req.BusinessName, "&lt;script&gt;")
	assert.NotContains(t, req.BusinessName, "<script>")
}

func TestSanitizeStruct_HandlesPointerString(t *testing.T) {
	url := "  https://example.com/webhook  "
	req := CreateMerchantRequest{
		BusinessName: "Bob Shop",
		WebhookURL:   &url,
	}
	SanitizeStruct(&req)

	assert.Equal(t, "https://example.com/webhook", *req.WebhookURL)
}

func TestSanitizeStruct_NilPointerIsNoOp(t *testing.T) {
	req := CreateMerchantRequest{
		BusinessName: "Carol Shop",
		WebhookURL:   nil,
	}
	SanitizeStruct(&req)
	assert.Nil(t, req.WebhookURL)
}

func TestSanitizeStruct_NonPointerIsNoOp(t *testing.T) {
	s := "hello"
	SanitizeStruct(s) // should not panic
}

// --- Custom Validator tests ---

func TestSafeID_Valid(t *testing.T) {
	cases := []string{
		"ref-001",
		"REF_002",
		"a.b.c",
		"simple123",
		"ABC-def_GHI.123",
	}
	for _, tc := range cases {
		assert.True(t, safeStringRe.MatchString(tc), "expected valid: %s", tc)
	}
}

func TestSafeID_Invalid(t *testing.T) {
	cases := []string{
		"ref 001",     // space
		"ref<001>",    // angle brackets
		"ref;DROP",    // semicolon
		"",            // empty
		"hello world", // space
		"ref\n001",    // newline
	}
	for _, tc := range cases {
		assert.False(t, safeStringRe.MatchString(tc), "expected invalid: %s", tc)
	}
}

func TestSanitizeStruct_CheckoutRequest(t *testing.T) {
	req := CheckoutRequest{
		Amount:        100.5,
		Currency:      " USD ",
		CustomerEmail: "  buyer@example.com  ",
	}
	SanitizeStruct(&req)

	assert.Equal(t, "USD", req.Currency)
	assert.Equal(t, "buyer@example.com", req.CustomerEmail)
	assert.Equal(t, 100.5, req.Amount)
}
