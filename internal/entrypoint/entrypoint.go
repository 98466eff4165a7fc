package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spellbook-app/spellbook/internal/audit"
	"github.com/spellbook-app/spellbook/internal/auth"
	"github.com/spellbook-app/spellbook/internal/config"
	"github.com/spellbook-app/spellbook/internal/database"
	auditrepo "github.com/spellbook-app/spellbook/internal/database/audit"
	"github.com/spellbook-app/spellbook/internal/database/favorites"
	"github.com/spellbook-app/spellbook/internal/database/runes"
	"github.com/spellbook-app/spellbook/internal/database/spellbooks"
	"github.com/spellbook-app/spellbook/internal/database/spells"
	"github.com/spellbook-app/spellbook/internal/database/users"
	http_controllers "github.com/spellbook-app/spellbook/internal/http"
	"github.com/spellbook-app/spellbook/internal/logging"
	"github.com/spellbook-app/spellbook/internal/preview"
	"github.com/spellbook-app/spellbook/internal/scheduler"
	"github.com/spellbook-app/spellbook/internal/search"
	"github.com/spellbook-app/spellbook/internal/tasks"
	"github.com/spellbook-app/spellbook/internal/validation"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT or SIGTERM, then shuts it down
// within the configured timeout.
func Serve(router *gin.Engine, cfg *config.Config, logger *zap.Logger, onShutdown ShutdownFunc) error {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second
	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)

	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case sig := <-quit:
		logger.Info("Shutting down server", zap.String("signal", sig.String()), zap.Duration("timeout", timeout))
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop accepting requests before tearing down what they depend on.
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}
	if onShutdown != nil {
		onShutdown(ctx)
	}

	logger.Info("Server exited")
	return nil
}

// Run wires every component from cfg and serves until a shutdown signal.
func Run(cfg *config.Config, version string) error {
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting Spellbook", zap.String("version", version))

	db, err := database.NewDatabase(cfg.Database.Path, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Error closing database", zap.Error(err))
		}
	}()

	userRepo := users.NewRepository(db.DB)
	spellRepo := spells.NewRepository(db.DB)
	spellbookRepo := spellbooks.NewRepository(db.DB)
	runeRepo := runes.NewRepository(db.DB)
	favoriteRepo := favorites.NewRepository(db.DB)
	auditService := audit.NewService(auditrepo.NewRepository(db.DB), logger)
	defer auditService.Wait()

	// Authentication
	secret, err := sessionSecret(cfg.Auth, logger)
	if err != nil {
		return err
	}
	authService := auth.NewService(userRepo, cfg.Auth)
	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get SQL DB for sessions: %w", err)
	}
	sessionManager, err := auth.NewSessionManager(sqlDB, cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize session manager: %w", err)
	}
	tokens := auth.NewTokenService(secret, cfg.Auth.TokenExpiry)
	authController := auth.NewAuthController(authService, sessionManager, tokens, auditService, logger, cfg.Auth)
	defer authController.Stop()

	var csrfSecret []byte
	if cfg.Auth.CSRFEnabled {
		csrfSecret = secret
	} else {
		logger.Warn("CSRF protection is disabled")
	}
	if !cfg.Auth.SecureCookies {
		logger.Warn("Session cookies are not marked Secure; use only for local development")
	}

	// Full-text search is optional. The indexer is left as an untyped nil
	// without it so the notifier and queues see it as disabled.
	var index *search.Index
	var indexer tasks.ContentIndexer
	if cfg.Search.Enabled {
		index, err = search.Open(search.Options{Path: cfg.Search.IndexDir, Logger: logger})
		if err != nil {
			logger.Error("Search disabled: failed to open index", zap.String("path", cfg.Search.IndexDir), zap.Error(err))
			index = nil
		} else {
			indexer = index
			defer func() {
				if err := index.Close(); err != nil {
					logger.Error("Error closing search index", zap.Error(err))
				}
			}()
		}
	} else {
		logger.Info("Search disabled")
	}

	// Background work
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var taskClient *tasks.Client
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.FromConfig(cfg.Tasks), logger)
		if err != nil {
			return fmt.Errorf("failed to initialize task queue: %w", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				logger.Error("Error closing task client", zap.Error(err))
			}
		}()

		taskClient.Register(
			tasks.NewIndexContentQueue(indexer, db.DB),
			tasks.NewReindexContentQueue(indexer, db.DB, auditService, logger),
			tasks.NewCleanupAuditQueue(auditService, auditService, logger),
		)
		taskClient.Start(ctx)
	}

	notifier := tasks.NewIndexNotifier(taskClient, indexer, db.DB, logger)

	sched := scheduler.New(logger)
	for _, job := range scheduledJobs(cfg, db, index, auditService, taskClient, logger) {
		if err := sched.Add(job); err != nil {
			return fmt.Errorf("failed to schedule %s: %w", job.Name, err)
		}
	}
	sched.Start(ctx)

	// A fresh index is filled right away instead of waiting for the schedule.
	if index != nil {
		if count, err := index.DocumentCount(); err == nil && count == 0 {
			sched.RunNow(reindexJob(cfg, db, index, auditService, taskClient, logger, "empty index"))
		}
	}

	routerCfg := http_controllers.RouterConfig{
		DB:              db.DB,
		Logger:          logger,
		Validator:       validation.New(),
		Users:           userRepo,
		Spells:          spellRepo,
		Spellbooks:      spellbookRepo,
		Runes:           runeRepo,
		Favorites:       favoriteRepo,
		AuthService:     authService,
		AuthController:  authController,
		AuthMiddleware:  auth.NewMiddleware(authService, sessionManager, tokens),
		SessionManager:  sessionManager,
		Tokens:          tokens,
		CSRFSecret:      csrfSecret,
		SecureCookies:   cfg.Auth.SecureCookies,
		Audit:           auditService,
		Index:           notifier,
		Search:          index,
		Runner:          preview.NewRunner(cfg.Runner),
		SiteBaseURL:     cfg.Site.BaseURL,
		ExploreCacheTTL: cfg.Explore.CacheTTL,
		DemoMode:        cfg.Demo.Enabled,
		Version:         version,
	}
	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		sched.Stop()
		if taskClient != nil {
			taskClient.Stop(ctx)
		}
		cancel()
	}

	return Serve(router, cfg, logger, onShutdown)
}

// scheduledJobs returns the cron jobs. With a task queue each run is enqueued
// so it gets retries and history; otherwise the work runs in the scheduler.
func scheduledJobs(cfg *config.Config, db *database.Database, index *search.Index,
	auditService *audit.Service, taskClient *tasks.Client, logger *zap.Logger) []scheduler.Job {
	var jobs []scheduler.Job
	if index != nil {
		jobs = append(jobs, reindexJob(cfg, db, index, auditService, taskClient, logger, "scheduled"))
	}

	cleanup := tasks.CleanupAuditTask{RetentionDays: cfg.Audit.RetentionDays}
	if taskClient != nil {
		jobs = append(jobs, scheduler.EnqueueJob(scheduler.JobAuditCleanup, cfg.Audit.CleanupSchedule, taskClient, cleanup))
	} else {
		process := tasks.CleanupAuditProcessor(auditService, auditService, logger)
		jobs = append(jobs, scheduler.InlineJob(scheduler.JobAuditCleanup, cfg.Audit.CleanupSchedule, func() error {
			return process(context.Background(), cleanup)
		}))
	}
	return jobs
}

func reindexJob(cfg *config.Config, db *database.Database, index *search.Index,
	auditService *audit.Service, taskClient *tasks.Client, logger *zap.Logger, reason string) scheduler.Job {
	task := tasks.ReindexContentTask{Reason: reason}
	if taskClient != nil {
		return scheduler.EnqueueJob(scheduler.JobReindex, cfg.Search.ReindexSchedule, taskClient, task)
	}
	process := tasks.ReindexContentProcessor(index, db.DB, auditService, logger)
	return scheduler.InlineJob(scheduler.JobReindex, cfg.Search.ReindexSchedule, func() error {
		return process(context.Background(), task)
	})
}

// sessionSecret decodes the configured secret or generates a throwaway one.
// Sessions, CSRF tokens and bearer tokens do not survive a restart without a
// configured secret.
func sessionSecret(cfg config.Auth, logger *zap.Logger) ([]byte, error) {
	if cfg.SessionSecret != "" {
		return auth.DecodeSecret(cfg.SessionSecret), nil
	}
	generated, err := auth.GenerateSecret()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session secret: %w", err)
	}
	logger.Warn("Generated a session secret; set AUTH_SESSION_SECRET to keep sessions across restarts")
	return auth.DecodeSecret(generated), nil
}
