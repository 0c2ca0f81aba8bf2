package handler

import (
	"paytrust-gateway/internal/adapter/http/middleware"
	redisStore "paytrust-gateway/internal/adapter/storage/redis"
	"paytrust-gateway/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	MerchantSvc    ports.MerchantService
	Ledger         ports.TransactionLedger
	MerchantRepo   ports.MerchantRepository
	EncSvc         ports.EncryptionService
	SigSvc         ports.SignatureService
	TokenSvc       ports.TokenService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", rl("auth_register"), authHandler.Register)
		auth.POST("/login", rl("auth_login"), authHandler.Login)
		auth.POST("/refresh", rl("auth_login"), authHandler.Refresh)
		auth.POST("/verify-email", rl("auth_login"), authHandler.VerifyEmail)
	}

	hmacAuth := middleware.HMACAuth(deps.MerchantRepo, deps.EncSvc, deps.SigSvc, deps.Logger)
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)

	merchantHandler := NewMerchantHandler(deps.MerchantSvc)
	txHandler := NewTransactionHandler(deps.Ledger, deps.MerchantSvc)

	// --- JWT-authenticated routes (dashboard) ---
	merchants := v1.Group("/merchants", jwtAuth)
	{
		merchants.POST("", rl("dashboard"), merchantHandler.Create)
		merchants.GET("/me", rl("dashboard"), merchantHandler.GetProfile)
		merchants.POST("/rotate", rl("dashboard"), merchantHandler.RotateCredentials)
		merchants.PUT("/webhook", rl("dashboard"), merchantHandler.UpdateWebhookURL)
		merchants.GET("/stats", rl("dashboard"), merchantHandler.GetStats)
	}

	transactions := v1.Group("/transactions")
	{
		// Merchant API (HMAC-signed)
		transactions.POST("", hmacAuth, rl("checkout"), txHandler.CreateCheckout)
		transactions.POST("/:id/settle", hmacAuth, rl("checkout"), txHandler.Settle)

		// Dashboard reads (JWT)
		transactions.GET("", jwtAuth, rl("dashboard"), txHandler.List)
		transactions.GET("/summary", jwtAuth, rl("dashboard"), txHandler.Summary)
		transactions.GET("/:id", jwtAuth, rl("dashboard"), txHandler.GetByID)
	}

	return r
}
