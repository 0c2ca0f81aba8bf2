package middleware

import (
	"bytes"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"paytrust-gateway/internal/core/domain"
	"paytrust-gateway/internal/core/ports"
	"paytrust-gateway/pkg/apperror"
	"paytrust-gateway/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	// Header names for HMAC authentication
	HeaderMerchantID = "X-Merchant-Id"
	HeaderSignature  = "X-Signature"
	HeaderTimestamp  = "X-Timestamp"

	// Max timestamp drift allowed, in either direction
	maxTimestampDrift = 300 * time.Second

	// Context keys
	CtxIdentity   = "identity"
	CtxMerchantID = "merchant_id"
)

// HMACAuth creates a middleware that verifies HMAC-SHA256 signed API
// requests. Pipeline: header presence -> timestamp window -> merchant
// lookup -> signature verification. The timestamp is checked before any
// database work so replayed requests are rejected cheaply, and unknown
// and suspended merchants produce the same opaque error.
func HMACAuth(
	merchantRepo ports.MerchantRepository,
	encSvc ports.EncryptionService,
	sigSvc ports.SignatureService,
	log zerolog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader(HeaderMerchantID)
		signature := c.GetHeader(HeaderSignature)
		timestampStr := c.GetHeader(HeaderTimestamp)

		if apiKey == "" || signature == "" || timestampStr == "" {
			response.Error(c, apperror.ErrMissingCredentials())
			c.Abort()
			return
		}

		// Step 1: Timestamp window
		timestamp, err := strconv.ParseInt(timestampStr, 10, 64)
		if err != nil {
			response.Error(c, apperror.ErrReplayRejected())
			c.Abort()
			return
		}
		now := time.Now().Unix()
		if math.Abs(float64(now-timestamp)) > maxTimestampDrift.Seconds() {
			response.Error(c, apperror.ErrReplayRejected())
			c.Abort()
			return
		}

		// Step 2: Merchant lookup
		merchant, err := merchantRepo.GetByAPIKey(c.Request.Context(), apiKey)
		if err != nil {
			log.Error().Err(err).Msg("failed to fetch merchant")
			response.Error(c, apperror.InternalError(err))
			c.Abort()
			return
		}
		if merchant == nil || !merchant.IsActive() {
			response.Error(c, apperror.ErrInvalidMerchant())
			c.Abort()
			return
		}

		// Step 3: Signature verification over the raw body
		secretKey, err := encSvc.Decrypt(merchant.APISecretEnc)
		if err != nil {
			log.Error().Err(err).Str("merchant_id", merchant.ID.String()).Msg("failed to decrypt merchant secret")
			response.Error(c, apperror.InternalError(err))
			c.Abort()
			return
		}

		bodyBytes, err := io.ReadAll(c.Request.Body)
		if err != nil {
			response.Error(c, apperror.Validation("cannot read request body"))
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

		canonical := sigSvc.BuildRequestString(
			c.Request.Method,
			c.Request.URL.Path,
			string(bodyBytes),
			timestamp,
		)

		if !sigSvc.Verify(secretKey, canonical, signature) {
			response.Error(c, apperror.ErrInvalidSignature())
			c.Abort()
			return
		}

		c.Set(CtxIdentity, domain.NewMerchantIdentity(merchant.UserID, merchant.ID))
		c.Set(CtxMerchantID, merchant.ID)

		c.Next()
	}
}

// JWTAuth creates a middleware that validates access tokens for dashboard
// routes. Refresh tokens are signed with a different secret and are
// rejected here.
func JWTAuth(tokenSvc ports.TokenService, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || len(authHeader) < 8 || authHeader[:7] != "Bearer " {
			response.Error(c, apperror.ErrInvalidToken())
			c.Abort()
			return
		}

		tokenStr := authHeader[7:]
		claims, err := tokenSvc.VerifyAccess(tokenStr)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(CtxIdentity, domain.NewUserIdentity(claims.UserID, claims.Role))
		c.Next()
	}
}

// IdentityFrom extracts the authenticated identity bound by HMACAuth or
// JWTAuth. ok is false on routes that skipped authentication.
func IdentityFrom(c *gin.Context) (domain.Identity, bool) {
	v, exists := c.Get(CtxIdentity)
	if !exists {
		return domain.Identity{}, false
	}
	identity, ok := v.(domain.Identity)
	return identity, ok
}

// RequestLogger creates a middleware that logs every HTTP request.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		event := log.Info()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		} else if status >= http.StatusBadRequest {
			event = log.Warn()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", latency).
			Str("client_ip", c.ClientIP()).
			Msg("http request")
	}
}

// Recovery creates a panic recovery middleware.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("path", c.Request.URL.Path).Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error_code": "SYS_001",
					"message":    "Internal server error",
				})
			}
		}()
		c.Next()
	}
}
