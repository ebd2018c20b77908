package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	skm "skm_agent_backend"
	"skm_agent_backend/internal/adapters/storage"
	"skm_agent_backend/internal/ai"
	"skm_agent_backend/internal/auth"
	"skm_agent_backend/internal/conversation"
	"skm_agent_backend/internal/conversation/repository"
	"skm_agent_backend/internal/conversation/service"
	"skm_agent_backend/internal/events"
	apphttp "skm_agent_backend/internal/http"
	"skm_agent_backend/internal/http/router"
	"skm_agent_backend/internal/notification"
	"skm_agent_backend/internal/webhook"
	"skm_agent_backend/internal/whatsapp"
	"skm_agent_backend/platform/config"
	"skm_agent_backend/platform/db"
	"skm_agent_backend/platform/logger"
	"skm_agent_backend/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	migrations, err := fs.Sub(skm.Migrations, "migrations")
	if err != nil {
		panic("failed to open embedded migrations: " + err.Error())
	}
	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	// Document vault (MinIO)
	vault, err := storage.NewMinIOVault(cfg)
	if err != nil {
		log.Error("failed to initialize document vault", "error", err)
		panic("failed to initialize document vault: " + err.Error())
	}
	if err := withRetry(ctx, log, "ensure documents bucket", 5, 2*time.Second, func() error {
		return vault.EnsureBucketExists(ctx)
	}); err != nil {
		log.Error("failed to ensure documents bucket exists", "error", err)
		panic("failed to ensure documents bucket exists: " + err.Error())
	}
	log.Info("document vault initialized", "bucket", cfg.GetMinioBucketDocuments())

	// Reply generator (Gemini)
	generator, err := ai.NewGeminiClient(ctx, cfg)
	if err != nil {
		log.Error("failed to initialize reply generator", "error", err)
		panic("failed to initialize reply generator: " + err.Error())
	}
	log.Info("reply generator initialized", "model", cfg.GetGeminiModel())

	// WhatsApp Cloud API client
	waClient, err := whatsapp.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize whatsapp client", "error", err)
		panic("failed to initialize whatsapp client: " + err.Error())
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	repo := repository.New(pool)
	convService := service.New(repo, generator, waClient, waClient, vault, eventBus, log)

	// Notification module subscribes to domain events and feeds the dashboard
	notificationModule := notification.New(log)
	notificationModule.RegisterHandlers(eventBus)
	defer notificationModule.SSE().Close()

	authModule := auth.NewModule(cfg, val, log)
	conversationModule := conversation.NewModule(convService, val)
	webhookModule := webhook.NewModule(convService, cfg, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			authModule,
			webhookModule,
			conversationModule,
			notificationModule,
		},
	}

	engine := router.New(app, auth.Required(cfg))

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: engine,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
