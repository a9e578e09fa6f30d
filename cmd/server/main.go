package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/opengive/donation-ledger/internal/api"
	"github.com/opengive/donation-ledger/internal/api/handler"
	"github.com/opengive/donation-ledger/internal/auth"
	"github.com/opengive/donation-ledger/internal/config"
	"github.com/opengive/donation-ledger/internal/coordinator"
	"github.com/opengive/donation-ledger/internal/data/mongo"
	"github.com/opengive/donation-ledger/internal/data/postgres"
	"github.com/opengive/donation-ledger/internal/gateway"
	"github.com/opengive/donation-ledger/internal/ledger"
	"github.com/opengive/donation-ledger/internal/logger"
	"github.com/opengive/donation-ledger/internal/platform/messaging/producers"
	"github.com/opengive/donation-ledger/internal/platform/persistence"
	"github.com/opengive/donation-ledger/internal/reconciliation"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("server")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	// Initialize databases with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Initialize Kafka producer for transaction events
	kafkaProducer, err := producers.NewTransactionEventsProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize Kafka producer", "error", err)
		os.Exit(1)
	}

	// Connect to the blockchain node. The startup probe is fatal on
	// exhaustion: the platform must not accept submissions it cannot stamp.
	ledgerClient, err := ledger.Dial(appCtx, log, &cfg.Ledger)
	if err != nil {
		log.Error("Failed to connect to ledger node", "error", err)
		os.Exit(1)
	}

	// Initialize the payment gateway client
	gatewayClient := gateway.NewClient(log, &cfg.Gateway)

	// Initialize repositories
	transactionRepo := postgres.NewTransactionRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	ngoRepo := postgres.NewNGORepository(log, postgresDB)
	userRepo := postgres.NewUserRepository(log, postgresDB)
	auditRepo := mongo.NewAuditRepository(log, mongoDB.Database())

	// Initialize the recording coordinator
	coord := coordinator.NewCoordinator(log, ledgerClient, gatewayClient, postgresDB, transactionRepo, outboxRepo, ngoRepo, auditRepo)

	// Initialize auth and handlers
	issuer := auth.NewTokenIssuer(&cfg.JWT)
	ngoHandler := handler.NewNGOHandler(log, coord, ngoRepo, transactionRepo)
	transactionHandler := handler.NewTransactionHandler(log, coord, transactionRepo)
	userHandler := handler.NewUserHandler(log, userRepo, issuer)

	// Initialize REST server
	server := api.NewServer(log, cfg, issuer, ngoHandler, transactionHandler, userHandler)
	log.Info("REST server initialized")

	// Initialize the outbox poller
	poller, err := reconciliation.NewPoller(log, &cfg.Outbox, &cfg.WorkerPool, outboxRepo, kafkaProducer)
	if err != nil {
		log.Error("Failed to initialize outbox poller", "error", err)
		os.Exit(1)
	}
	go poller.Start(appCtx)

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context; the poller loop stops on the next tick
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Stop accepting requests before tearing down what handlers depend on
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	poller.Shutdown()

	if err = kafkaProducer.Close(); err != nil {
		log.Error("Error closing Kafka producer", "error", err)
	}

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	postgresDB.Close()

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
