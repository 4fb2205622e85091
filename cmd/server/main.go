package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	httpAdapter "github.com/mosolopay/mosolo/internal/adapter/http"
	"github.com/mosolopay/mosolo/internal/adapter/http/handler"
	"github.com/mosolopay/mosolo/internal/adapter/http/middleware"
	postgresRepo "github.com/mosolopay/mosolo/internal/adapter/repository/postgres"
	redisRepo "github.com/mosolopay/mosolo/internal/adapter/repository/redis"
	"github.com/mosolopay/mosolo/internal/infrastructure/auth"
	"github.com/mosolopay/mosolo/internal/infrastructure/clock"
	"github.com/mosolopay/mosolo/internal/infrastructure/config"
	"github.com/mosolopay/mosolo/internal/infrastructure/eventpublisher"
	"github.com/mosolopay/mosolo/internal/infrastructure/logger"
	"github.com/mosolopay/mosolo/internal/infrastructure/metrics"
	"github.com/mosolopay/mosolo/internal/infrastructure/postgres"
	"github.com/mosolopay/mosolo/internal/infrastructure/redis"
	"github.com/mosolopay/mosolo/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	log.Logger = appLogger

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		appLogger.Fatal().Err(err).Str("timezone", cfg.Timezone).Msg("invalid timezone")
	}

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	appLogger.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	appLogger.Info().Msg("connected to redis")

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	withdrawalRepo := postgresRepo.NewWithdrawalRepository(pool)
	quotaRepo := postgresRepo.NewQuotaRepository(pool)
	transferRepo := postgresRepo.NewTransferRepository(pool)
	entryRepo := postgresRepo.NewEntryRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	accountCache := redisRepo.NewCache(redisClient)
	idGen := postgresRepo.NewULIDGenerator()
	codeGen := postgresRepo.NewVerificationCodeGenerator()
	retrier := postgresRepo.NewRetrier(appLogger)
	realClock := clock.RealClock{}
	appMetrics := metrics.New()

	// Initialize use cases
	accountUC := usecase.NewAccountUseCase(accountRepo, accountCache, idGen, realClock, appMetrics)
	withdrawalUC := usecase.NewWithdrawalUseCase(
		txManager, accountRepo, withdrawalRepo, entryRepo, outboxRepo, auditRepo,
		idGen, codeGen, realClock, retrier, appMetrics,
	)
	depositUC := usecase.NewDepositUseCase(
		txManager, accountRepo, quotaRepo, entryRepo, outboxRepo, auditRepo,
		idGen, realClock, location, retrier, appMetrics,
	)
	transferUC := usecase.NewTransferUseCase(
		txManager, accountRepo, transferRepo, entryRepo, outboxRepo,
		idGen, realClock, retrier, cfg.PlatformAccountID, appMetrics,
	)
	feeUC := usecase.NewFeeUseCase(appMetrics)
	ledgerUC := usecase.NewLedgerUseCase(
		txManager, accountRepo, entryRepo, auditRepo, idGen, realClock, retrier, appMetrics,
	)

	var jwtManager *auth.JWTManager
	if cfg.AuthEnabled {
		jwtManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	}

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:    handler.NewAccountHandler(accountUC),
		WithdrawalHandler: handler.NewWithdrawalHandler(withdrawalUC),
		DepositHandler:    handler.NewDepositHandler(depositUC),
		TransferHandler:   handler.NewTransferHandler(transferUC),
		FeeHandler:        handler.NewFeeHandler(feeUC),
		LedgerHandler:     handler.NewLedgerHandler(ledgerUC),
		AuditHandler:      handler.NewAuditHandler(auditRepo),
		HealthHandler:     handler.NewHealthHandler(pool, redisClient),
		IdempotencyStore:  idempotencyStore,
		JWTManager:        jwtManager,
		AuthEnabled:       cfg.AuthEnabled,
		RateLimiter:       middleware.NewRateLimiter(100, 200),
		Logger:            middleware.NewLoggingMiddleware(appLogger),
	})

	// Start the outbox publisher
	publisherCtx, stopPublisher := context.WithCancel(ctx)
	defer stopPublisher()

	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  eventpublisher.NewLogPublisher(appLogger),
		Logger:     appLogger,
	})
	go func() {
		if err := publisher.Start(publisherCtx); err != nil && err != context.Canceled {
			appLogger.Error().Err(err).Msg("event publisher stopped")
		}
	}()

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		appLogger.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info().Msg("shutting down server...")
	stopPublisher()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	appLogger.Info().Msg("server stopped")
}
