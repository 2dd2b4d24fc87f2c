package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rental-payment-service/config"
	"rental-payment-service/internal/adapter/events"
	httpHandler "rental-payment-service/internal/adapter/http/handler"
	"rental-payment-service/internal/adapter/rental"
	pgStorage "rental-payment-service/internal/adapter/storage/postgres"
	redisStorage "rental-payment-service/internal/adapter/storage/redis"
	"rental-payment-service/internal/core/ports"
	"rental-payment-service/internal/metrics"
	"rental-payment-service/internal/service"
	"rental-payment-service/pkg/logger"
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
		Msg("Starting Rental Payment Service")

	ctx := context.Background()

	// Initialize metrics registry
	metrics.Init()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Apply schema migrations
	if err := pgStorage.Migrate(cfg.Database.DSN(), log); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	balanceRepo := pgStorage.NewBalanceRepo(pool)
	txRepo := pgStorage.NewTransactionRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize rental lookup. Without a base URL the in-memory stub
	// serves local development.
	var rentalClient ports.RentalClient
	if cfg.Rental.BaseURL != "" {
		rentalClient = rental.NewClient(cfg.Rental, log)
	} else {
		log.Warn().Msg("No rental service URL configured, using in-memory stub")
		rentalClient = rental.NewStub()
	}

	// Initialize core services
	tokenVerifier := service.NewJWTTokenVerifier(cfg.JWT.Secret, cfg.JWT.Issuer)
	paymentSvc := service.NewPaymentService(balanceRepo, txRepo, rentalClient, transactor, log)

	// Initialize Redis stores
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)
	eventDedup := redisStorage.NewEventDedup(rdb)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Start rental event consumer
	consumerCtx, stopConsumer := context.WithCancel(ctx)
	defer stopConsumer()
	if cfg.Kafka.Enabled {
		consumer := events.NewConsumer(cfg.Kafka, paymentSvc, eventDedup, log)
		defer consumer.Close() //nolint:errcheck
		go consumer.Run(consumerCtx)
	} else {
		log.Info().Msg("Kafka consumer disabled")
	}

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		PaymentSvc:     paymentSvc,
		TokenVerifier:  tokenVerifier,
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

	stopConsumer()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
