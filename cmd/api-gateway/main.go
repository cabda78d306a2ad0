package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/changedesk-api/api/swagger"
	"github.com/noah-isme/changedesk-api/internal/backend"
	"github.com/noah-isme/changedesk-api/internal/dispatch"
	"github.com/noah-isme/changedesk-api/internal/events"
	"github.com/noah-isme/changedesk-api/internal/handler"
	"github.com/noah-isme/changedesk-api/internal/middleware"
	"github.com/noah-isme/changedesk-api/internal/repository"
	"github.com/noah-isme/changedesk-api/internal/router"
	"github.com/noah-isme/changedesk-api/internal/service"
	"github.com/noah-isme/changedesk-api/internal/session"
	"github.com/noah-isme/changedesk-api/internal/validation"
	"github.com/noah-isme/changedesk-api/pkg/cache"
	"github.com/noah-isme/changedesk-api/pkg/config"
	"github.com/noah-isme/changedesk-api/pkg/database"
	"github.com/noah-isme/changedesk-api/pkg/jobs"
	"github.com/noah-isme/changedesk-api/pkg/logger"
)

// @title ChangeDesk API
// @version 1.0.0
// @description Gateway for the change management, task and project workflows
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey SessionHeader
// @in header
// @name X-Session-ID

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := service.NewMetricsService()
	validate := validation.New()
	checks := map[string]handler.ReadinessCheck{}

	var redisClient *redis.Client
	if cfg.Session.Store == config.SessionStoreRedis || cfg.Reports.CacheEnabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Fatal("failed to connect redis", zap.Error(err))
		}
		defer redisClient.Close() //nolint:errcheck
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	client := backend.New(cfg.Backend, backend.WithLogger(logr), backend.WithObserver(metrics))

	var store session.Store = session.NewMemoryStore()
	if cfg.Session.Store == config.SessionStoreRedis {
		store = repository.NewSessionRepository(redisClient, cfg.Session.KeyPrefix)
	}
	sessions := session.NewManager(store, client, cfg.Session.TTL, session.WithLogger(logr))
	client.SetUnauthorizedHandler(sessions.Invalidate)

	audit, closeAudit := buildAudit(ctx, cfg, metrics, logr, checks)
	defer closeAudit()

	dispatcher := dispatch.New(client,
		dispatch.WithValidator(validate),
		dispatch.WithLogger(logr),
		dispatch.WithRecorder(metrics),
		dispatch.WithRecorder(audit),
	)

	cacheSvc := service.NewCacheService(repository.NewCacheRepository(redisClient, logr), metrics, cfg.Reports.CacheTTL, logr, cfg.Reports.CacheEnabled)
	reports := service.NewReportService(client, cacheSvc, logr, service.ReportServiceConfig{
		CacheTTL:  cfg.Reports.CacheTTL,
		Dashboard: cfg.Reports.Dashboard,
	})
	changes := service.NewChangeRequestService(client, dispatcher, validate, logr)
	tasks := service.NewTaskService(client, dispatcher, validate, logr)
	projectRequests := service.NewProjectRequestService(client, dispatcher, validate, logr)
	projects := service.NewProjectService(client, dispatcher, logr)
	admin := service.NewAdminService(client, validate, logr)
	auth := service.NewAuthService(sessions, client, reports, validate, logr)
	exports := service.NewExportService(changes, logr)

	source := middleware.SessionSource{Header: cfg.Session.HeaderName, Cookie: cfg.Session.CookieName}
	engine := router.New(router.Handlers{
		Auth:           handler.NewAuthHandler(auth, handler.CookieConfig{Source: source, Secure: cfg.Env == config.EnvProduction}),
		ChangeRequests: handler.NewChangeRequestHandler(changes, exports),
		Tasks:          handler.NewTaskHandler(tasks),
		Projects:       handler.NewProjectHandler(projectRequests, projects),
		Admin:          handler.NewAdminHandler(admin, audit),
		Reports:        handler.NewReportHandler(reports),
		Health:         handler.NewHealthHandler(metrics.Handler(), checks),
	}, sessions, router.Options{
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Source:         source,
		Docs:           cfg.Env != config.EnvProduction,
		Logger:         logr,
		Metrics:        metrics,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "backend", cfg.Backend.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

// buildAudit wires the action log sinks and starts the delivery queue.
// The returned func drains the queue and closes every sink.
func buildAudit(ctx context.Context, cfg *config.Config, metrics *service.MetricsService, logr *zap.Logger, checks map[string]handler.ReadinessCheck) (*service.AuditService, func()) {
	var (
		opts    []service.AuditServiceOption
		closers []func()
	)

	if cfg.Audit.Enabled && cfg.Audit.PersistToDB {
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			logr.Fatal("failed to connect postgres", zap.Error(err))
		}
		repo := repository.NewActionLogRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			logr.Fatal("failed to prepare action log schema", zap.Error(err))
		}
		opts = append(opts, service.WithActionLogStore(repo))
		checks["database"] = pingDB(db)
		closers = append(closers, func() { _ = db.Close() })
	}

	if cfg.Audit.Enabled && cfg.Audit.AMQPURL != "" {
		publisher, err := events.Dial(cfg.Audit.AMQPURL, cfg.Audit.Queue, logr)
		if err != nil {
			logr.Fatal("failed to connect amqp", zap.Error(err))
		}
		opts = append(opts, service.WithEventPublisher(publisher))
		closers = append(closers, func() { _ = publisher.Close() })
	}

	opts = append(opts, service.WithAuditMetrics(metrics))
	audit := service.NewAuditService(logr, opts...)
	if !cfg.Audit.Enabled {
		return audit, func() {}
	}

	queue := audit.NewQueue(jobs.QueueConfig{
		Workers:    cfg.Audit.Workers,
		BufferSize: cfg.Audit.BufferSize,
		MaxRetries: cfg.Audit.MaxRetries,
		RetryDelay: cfg.Audit.RetryDelay,
		Logger:     logr,
	})
	queue.Start(context.Background())

	return audit, func() {
		queue.Stop()
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
}

func pingDB(db *sqlx.DB) handler.ReadinessCheck {
	return func(ctx context.Context) error {
		return db.PingContext(ctx)
	}
}
