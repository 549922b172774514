package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Juanitagalindoe/TiendaPoli/internal/application/service"
	"github.com/Juanitagalindoe/TiendaPoli/internal/config"
	"github.com/Juanitagalindoe/TiendaPoli/internal/domain/event"
	"github.com/Juanitagalindoe/TiendaPoli/internal/infrastructure/database"
	"github.com/Juanitagalindoe/TiendaPoli/internal/infrastructure/messaging"
	"github.com/Juanitagalindoe/TiendaPoli/internal/infrastructure/observability"
	"github.com/Juanitagalindoe/TiendaPoli/internal/infrastructure/repository"
	"github.com/Juanitagalindoe/TiendaPoli/internal/presentation/http/handler"
	"github.com/Juanitagalindoe/TiendaPoli/internal/presentation/http/routes"
	"github.com/Juanitagalindoe/TiendaPoli/pkg/clock"
	"github.com/Juanitagalindoe/TiendaPoli/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, cfgErr := config.Load()

	zlog, err := logger.New(cfg.App.Env, cfg.App.Debug)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	if cfgErr != nil {
		zlog.Info("no .env file loaded, using environment only", zap.Error(cfgErr))
	}

	if err := run(cfg, zlog); err != nil {
		zlog.Error("server stopped with error", zap.Error(err))
		_ = zlog.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, zlog *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.Telemetry)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			zlog.Warn("tracing shutdown failed", zap.Error(err))
		}
	}()

	// Connect to database
	db, err := database.Open(&cfg.Database, cfg.App.Debug, zlog)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		return err
	}

	// Event publisher
	var publisher interface {
		event.Publisher
		Close() error
	} = messaging.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = messaging.NewKafkaPublisher(messaging.NewKafkaWriter(cfg.Kafka), zlog)
		zlog.Info("publishing invoice events", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			zlog.Warn("failed to close event publisher", zap.Error(err))
		}
	}()

	clk := clock.System()

	// Initialize repositories
	tx := repository.NewTransactor(db)
	productRepo := repository.NewProductRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	lineRepo := repository.NewInvoiceLineRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	// Initialize services
	ledger := service.NewProductLedger(productRepo, lineRepo, tx, zlog)
	lineEngine := service.NewLineEngine(invoiceRepo, lineRepo, productRepo, ledger, tx, zlog)
	invoices := service.NewInvoiceAggregate(invoiceRepo, lineRepo, customerRepo, ledger, tx, clk, zlog)
	coordinator := service.NewCoordinator(tx, lineEngine, invoices, publisher, service.RetryPolicy{
		MaxAttempts:     cfg.Retry.MaxAttempts,
		InitialInterval: cfg.Retry.InitialInterval,
		MaxInterval:     cfg.Retry.MaxInterval,
	}, clk, zlog)
	customerService := service.NewCustomerService(customerRepo, invoiceRepo, tx, clk)

	if cfg.Janitor.Enabled && cfg.Janitor.Interval > 0 {
		janitor := service.NewDraftJanitor(invoices, coordinator, idempotencyRepo, clk, cfg.Janitor.DraftMaxAge, zlog)
		go janitor.Run(ctx, cfg.Janitor.Interval)
	}

	// Initialize handlers
	handlers := &routes.Handlers{
		Product:  handler.NewProductHandler(ledger),
		Customer: handler.NewCustomerHandler(customerService),
		Invoice:  handler.NewInvoiceHandler(coordinator, invoices, lineEngine),
	}

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
		Clock:           clk,
		Logger:          zlog,
	})

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zlog.Info("starting server", zap.String("name", cfg.App.Name), zap.String("port", port), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zlog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
