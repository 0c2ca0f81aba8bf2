package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"paytrust-gateway/internal/adapter/http/handler"
	"paytrust-gateway/internal/core/domain"
	"paytrust-gateway/internal/core/ports"
	"paytrust-gateway/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAESKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func init() {
	gin.SetMode(gin.TestMode)
}

// captureEmailSender records verification tokens instead of sending mail.
type captureEmailSender struct {
	mu     sync.Mutex
	tokens map[string]string // email -> token
}

func newCaptureEmailSender() *captureEmailSender {
	return &captureEmailSender{tokens: make(map[string]string)}
}

func (s *captureEmailSender) SendVerificationEmail(ctx context.Context, to, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[to] = token
	return nil
}

func (s *captureEmailSender) tokenFor(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens[email]
}

type testEnv struct {
	router   *gin.Engine
	emails   *captureEmailSender
	sigSvc   ports.SignatureService
	notifier ports.WebhookNotifier

	userRepo     *inMemoryUserRepo
	merchantRepo *inMemoryMerchantRepo
	txRepo       *inMemoryTransactionRepo
	webhookRepo  *inMemoryWebhookRepo
}

func newTestEnv(t *testing.T, oracle ports.SettlementOracle) *testEnv {
	t.Helper()
	log := zerolog.Nop()

	env := &testEnv{
		emails:       newCaptureEmailSender(),
		userRepo:     newInMemoryUserRepo(),
		merchantRepo: newInMemoryMerchantRepo(),
		txRepo:       newInMemoryTransactionRepo(),
		webhookRepo:  newInMemoryWebhookRepo(),
	}

	encSvc, err := service.NewAESEncryptionService(testAESKeyHex)
	require.NoError(t, err)
	sigSvc := service.NewHMACSignatureService()
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService("access-secret", "refresh-secret", 15*time.Minute, 168*time.Hour, "paytrust-test")
	vault := service.NewCredentialVault(env.merchantRepo, encSvc)

	notifier := service.NewWebhookNotifier(
		env.merchantRepo, env.webhookRepo, encSvc, sigSvc,
		&http.Client{Timeout: 2 * time.Second},
		2*time.Second, 2, 32, log,
	)
	t.Cleanup(notifier.Close)

	authSvc := service.NewAuthService(env.userRepo, hashSvc, tokenSvc, env.emails, log)
	merchantSvc := service.NewMerchantService(env.merchantRepo, env.txRepo, vault, encSvc)
	ledger := service.NewTransactionLedger(env.txRepo, env.merchantRepo, encSvc, sigSvc, oracle, notifier, log)

	env.sigSvc = sigSvc
	env.notifier = notifier
	env.router = handler.SetupRouter(handler.RouterDeps{
		AuthSvc:      authSvc,
		MerchantSvc:  merchantSvc,
		Ledger:       ledger,
		MerchantRepo: env.merchantRepo,
		EncSvc:       encSvc,
		SigSvc:       sigSvc,
		TokenSvc:     tokenSvc,
		Logger:       log,
	})
	return env
}

func (env *testEnv) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func dataOf(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "body: %s", w.Body.String())
	data, ok := resp["data"].(map[string]interface{})
	require.True(t, ok, "no data object in %s", w.Body.String())
	return data
}

// registerAndLogin walks a fresh user through register -> verify -> login
// and returns the access token.
func (env *testEnv) registerAndLogin(t *testing.T, email string) string {
	t.Helper()

	w := env.do(t, http.MethodPost, "/api/v1/auth/register", map[string]any{
		"email":         email,
		"password":      "password123",
		"business_name": "Shop",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Login before verification must be rejected
	w = env.do(t, http.MethodPost, "/api/v1/auth/login", map[string]any{
		"email":    email,
		"password": "password123",
	}, nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	token := env.emails.tokenFor(email)
	require.NotEmpty(t, token)
	w = env.do(t, http.MethodPost, "/api/v1/auth/verify-email", map[string]any{"token": token}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodPost, "/api/v1/auth/login", map[string]any{
		"email":    email,
		"password": "password123",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return dataOf(t, w)["access_token"].(string)
}

// createMerchant provisions a merchant over the dashboard API and returns
// the one-time credentials.
func (env *testEnv) createMerchant(t *testing.T, accessToken string, webhookURL *string) (apiKey, apiSecret string) {
	t.Helper()
	body := map[string]any{"business_name": "Shop"}
	if webhookURL != nil {
		body["webhook_url"] = *webhookURL
	}
	w := env.do(t, http.MethodPost, "/api/v1/merchants", body, map[string]string{
		"Authorization": "Bearer " + accessToken,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := dataOf(t, w)
	return data["api_key"].(string), data["api_secret"].(string)
}

// signedHeaders produces the three HMAC headers for a merchant API call.
func (env *testEnv) signedHeaders(method, path, body, apiKey, apiSecret string, ts int64) map[string]string {
	canonical := env.sigSvc.BuildRequestString(method, path, body, ts)
	return map[string]string{
		"X-Merchant-Id": apiKey,
		"X-Timestamp":   strconv.FormatInt(ts, 10),
		"X-Signature":   env.sigSvc.Sign(apiSecret, canonical),
	}
}

func (env *testEnv) signedPost(t *testing.T, path string, body any, apiKey, apiSecret string) *httptest.ResponseRecorder {
	t.Helper()
	var raw string
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		raw = string(b)
	}
	headers := env.signedHeaders(http.MethodPost, path, raw, apiKey, apiSecret, time.Now().Unix())
	headers["Content-Type"] = "application/json"

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte(raw)))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func TestFullCheckoutFlow(t *testing.T) {
	env := newTestEnv(t, &service.FixedSettlementOracle{Outcome: domain.TransactionStatusCompleted})

	// Merchant endpoint receiving the webhook
	received := make(chan []byte, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r.Body)
		received <- buf.Bytes()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	accessToken := env.registerAndLogin(t, "owner@example.com")
	apiKey, apiSecret := env.createMerchant(t, accessToken, &srv.URL)

	// Checkout over the HMAC API
	w := env.signedPost(t, "/api/v1/transactions", map[string]any{
		"amount":         100.0,
		"currency":       "USD",
		"customer_email": "buyer@example.com",
	}, apiKey, apiSecret)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := dataOf(t, w)
	assert.Equal(t, "pending", data["status"])
	txID := data["id"].(string)

	refID, err := uuid.Parse(data["reference_id"].(string))
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), refID.Version())

	// Settle
	w = env.signedPost(t, fmt.Sprintf("/api/v1/transactions/%s/settle", txID), nil, apiKey, apiSecret)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "completed", dataOf(t, w)["status"])

	// Settling a terminal transaction conflicts
	w = env.signedPost(t, fmt.Sprintf("/api/v1/transactions/%s/settle", txID), nil, apiKey, apiSecret)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Webhook arrives asynchronously
	select {
	case payload := <-received:
		var hook map[string]interface{}
		require.NoError(t, json.Unmarshal(payload, &hook))
		assert.Equal(t, "transaction.completed", hook["event"])
		assert.Equal(t, txID, hook["transaction_id"])
		assert.Equal(t, 100.0, hook["amount"])
	case <-time.After(5 * time.Second):
		t.Fatal("webhook not delivered")
	}

	// History and summary over the dashboard API
	w = env.do(t, http.MethodGet, "/api/v1/transactions", nil, map[string]string{
		"Authorization": "Bearer " + accessToken,
	})
	require.Equal(t, http.StatusOK, w.Code)
	list := dataOf(t, w)
	assert.Equal(t, float64(1), list["total"])

	w = env.do(t, http.MethodGet, "/api/v1/transactions/summary", nil, map[string]string{
		"Authorization": "Bearer " + accessToken,
	})
	require.Equal(t, http.StatusOK, w.Code)
	summary := dataOf(t, w)
	assert.Equal(t, float64(100), summary["success_rate"])
}

func TestHMACAuth_TimestampWindow(t *testing.T) {
	env := newTestEnv(t, &service.FixedSettlementOracle{Outcome: domain.TransactionStatusCompleted})
	accessToken := env.registerAndLogin(t, "window@example.com")
	apiKey, apiSecret := env.createMerchant(t, accessToken, nil)

	checkout := map[string]any{
		"amount":         10.0,
		"currency":       "USD",
		"customer_email": "buyer@example.com",
	}
	raw, _ := json.Marshal(checkout)

	// 301 seconds stale: rejected before any signature work
	staleTs := time.Now().Add(-301 * time.Second).Unix()
	headers := env.signedHeaders(http.MethodPost, "/api/v1/transactions", string(raw), apiKey, apiSecret, staleTs)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", bytes.NewReader(raw))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "SEC_002")

	// 299 seconds stale: accepted
	okTs := time.Now().Add(-299 * time.Second).Unix()
	headers = env.signedHeaders(http.MethodPost, "/api/v1/transactions", string(raw), apiKey, apiSecret, okTs)
	req = httptest.NewRequest(http.MethodPost, "/api/v1/transactions", bytes.NewReader(raw))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestRotationInvalidatesOldSecret(t *testing.T) {
	env := newTestEnv(t, &service.FixedSettlementOracle{Outcome: domain.TransactionStatusCompleted})
	accessToken := env.registerAndLogin(t, "rotate@example.com")
	oldKey, oldSecret := env.createMerchant(t, accessToken, nil)

	checkout := map[string]any{
		"amount":         25.0,
		"currency":       "EUR",
		"customer_email": "buyer@example.com",
	}

	// Works before rotation
	w := env.signedPost(t, "/api/v1/transactions", checkout, oldKey, oldSecret)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Rotate over the dashboard API
	w = env.do(t, http.MethodPost, "/api/v1/merchants/rotate", nil, map[string]string{
		"Authorization": "Bearer " + accessToken,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := dataOf(t, w)
	newKey := data["api_key"].(string)
	newSecret := data["api_secret"].(string)
	assert.NotEqual(t, oldKey, newKey)
	assert.Equal(t, float64(1), data["rotation_count"])

	// Old pair stops working immediately
	w = env.signedPost(t, "/api/v1/transactions", checkout, oldKey, oldSecret)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// New pair works
	w = env.signedPost(t, "/api/v1/transactions", checkout, newKey, newSecret)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestTamperedBodyRejected(t *testing.T) {
	env := newTestEnv(t, &service.FixedSettlementOracle{Outcome: domain.TransactionStatusCompleted})
	accessToken := env.registerAndLogin(t, "tamper@example.com")
	apiKey, apiSecret := env.createMerchant(t, accessToken, nil)

	signedBody := `{"amount":10,"currency":"USD","customer_email":"buyer@example.com"}`
	tampered := `{"amount":9999,"currency":"USD","customer_email":"buyer@example.com"}`

	ts := time.Now().Unix()
	headers := env.signedHeaders(http.MethodPost, "/api/v1/transactions", signedBody, apiKey, apiSecret, ts)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", bytes.NewReader([]byte(tampered)))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "SEC_004")
}

func TestSummaryEmptyMerchant(t *testing.T) {
	env := newTestEnv(t, &service.FixedSettlementOracle{Outcome: domain.TransactionStatusCompleted})
	accessToken := env.registerAndLogin(t, "empty@example.com")
	env.createMerchant(t, accessToken, nil)

	w := env.do(t, http.MethodGet, "/api/v1/transactions/summary", nil, map[string]string{
		"Authorization": "Bearer " + accessToken,
	})
	require.Equal(t, http.StatusOK, w.Code)
	summary := dataOf(t, w)
	assert.Equal(t, float64(0), summary["total_transactions"])
	assert.Equal(t, float64(0), summary["success_rate"])
}
