package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"paytrust-gateway/config"
	"paytrust-gateway/internal/adapter/email"
	httpHandler "paytrust-gateway/internal/adapter/http/handler"
	pgStorage "paytrust-gateway/internal/adapter/storage/postgres"
	redisStorage "paytrust-gateway/internal/adapter/storage/redis"
	"paytrust-gateway/internal/core/ports"
	"paytrust-gateway/internal/service"
	"paytrust-gateway/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting PayTrust Gateway")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// Initialize repositories
	userRepo := pgStorage.NewUserRepo(pool)
	merchantRepo := pgStorage.NewMerchantRepo(pool)
	txRepo := pgStorage.NewTransactionRepo(pool)
	webhookRepo := pgStorage.NewWebhookRepo(pool)

	// Initialize core services
	encSvc, err := service.NewAESEncryptionService(cfg.AES.Key)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize encryption service")
	}
	sigSvc := service.NewHMACSignatureService()
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(
		cfg.Token.AccessSecret,
		cfg.Token.RefreshSecret,
		cfg.Token.AccessExpiry,
		cfg.Token.RefreshExpiry,
		cfg.Token.Issuer,
	)
	vault := service.NewCredentialVault(merchantRepo, encSvc)
	oracle := service.NewRandomSettlementOracle(0.9, time.Now().UnixNano())

	// Webhook worker pool; Close drains pending deliveries on shutdown.
	notifier := service.NewWebhookNotifier(
		merchantRepo,
		webhookRepo,
		encSvc,
		sigSvc,
		&http.Client{Timeout: cfg.Webhook.Timeout},
		cfg.Webhook.Timeout,
		cfg.Webhook.Workers,
		cfg.Webhook.QueueSize,
		log,
	)
	defer notifier.Close()

	// Initialize business services
	emailSender := email.NewGomailSender(cfg.SMTP)
	authSvc := service.NewAuthService(userRepo, hashSvc, tokenSvc, emailSender, log)
	merchantSvc := service.NewMerchantService(merchantRepo, txRepo, vault, encSvc)
	ledger := service.NewTransactionLedger(txRepo, merchantRepo, encSvc, sigSvc, oracle, notifier, log)

	// Initialize rate limit store and health checkers
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		MerchantSvc:    merchantSvc,
		Ledger:         ledger,
		MerchantRepo:   merchantRepo,
		EncSvc:         encSvc,
		SigSvc:         sigSvc,
		TokenSvc:       tokenSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
