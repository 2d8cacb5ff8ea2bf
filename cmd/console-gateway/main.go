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
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	_ "github.com/noah-isme/newsroom-console/api/swagger"
	"github.com/noah-isme/newsroom-console/internal/handler"
	"github.com/noah-isme/newsroom-console/internal/repository"
	"github.com/noah-isme/newsroom-console/internal/service"
	"github.com/noah-isme/newsroom-console/pkg/cache"
	"github.com/noah-isme/newsroom-console/pkg/config"
	"github.com/noah-isme/newsroom-console/pkg/jobs"
	"github.com/noah-isme/newsroom-console/pkg/logger"
	"github.com/noah-isme/newsroom-console/pkg/middleware/browsercontext"
	"github.com/noah-isme/newsroom-console/pkg/storage"
	"github.com/noah-isme/newsroom-console/pkg/transport"
)

// @title Newsroom Console Gateway
// @version 1.0.0
// @description Backend-for-frontend of the newsroom console: sessions, route guard, bulk import, polls and comments over the news API
// @BasePath /api/v1
// @schemes http

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

	repo, closeRepo, err := openStorage(ctx, cfg, logr)
	if err != nil {
		logr.Fatal("storage unavailable", zap.Error(err))
	}
	defer closeRepo()

	var metrics *service.MetricsService
	if cfg.Metrics.Enabled {
		metrics = service.NewMetricsService()
	}

	upstreamClient := transport.NewClient(transport.Options{
		BaseURL:  cfg.Upstream.BaseURL,
		Timeout:  cfg.Upstream.Timeout,
		Logger:   logr,
		Observer: metrics,
	})
	sessions := service.NewSessionManager(repo, service.TransportClients(upstreamClient), validator.New(), metrics, logr, service.SessionManagerConfig{
		KeyPrefix:   cfg.Storage.KeyPrefix,
		ScopeTTL:    cfg.Session.ScopeTTL,
		RestoreWait: cfg.Session.RestoreWait,
	})

	imports := service.NewImportService(service.ImportConfig{
		MaxFileSizeBytes: cfg.Import.MaxFileSizeBytes,
		PreviewRows:      cfg.Import.PreviewRows,
	}, metrics, logr)

	files, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		logr.Fatal("report storage unavailable", zap.Error(err))
	}
	reports := service.NewReportService(imports, files, storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL), logr, service.ReportConfig{
		APIPrefix:       cfg.APIPrefix,
		ResultTTL:       24 * time.Hour,
		CleanupInterval: time.Hour,
	})
	reports.StartCleanup(ctx)

	viewQueue := jobs.NewQueue("article-views", service.HandleViewJob, jobs.QueueConfig{
		Workers:    cfg.Views.Workers,
		BufferSize: cfg.Views.BufferSize,
		JobTimeout: cfg.Upstream.Timeout,
		Logger:     logr,
	})
	viewQueue.Start(ctx)
	defer viewQueue.Stop()

	router := handler.NewRouter(handler.RouterConfig{
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Context: browsercontext.Options{
			CookieName: cfg.Context.CookieName,
			Secret:     cfg.Context.CookieSecret,
			TTL:        cfg.Context.CookieTTL,
			Secure:     cfg.Context.SecureCookie,
		},
		EnableMetrics:  cfg.Metrics.Enabled,
		EnableDocs:     cfg.Env != config.EnvProduction,
		MaxUploadBytes: cfg.Import.MaxFileSizeBytes,
		Logger:         logr,
		Metrics:        metrics,
	}, handler.Services{
		Sessions: sessions,
		Imports:  imports,
		Reports:  reports,
		Polls:    service.NewPollService(cfg.Polls.ActiveLimit, metrics, logr),
		Comments: service.NewCommentService(logr),
		Articles: service.NewArticleService(viewQueue, logr),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env), zap.String("upstream", cfg.Upstream.BaseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
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

func openStorage(ctx context.Context, cfg *config.Config, logr *zap.Logger) (service.StorageRepository, func(), error) {
	if cfg.Storage.Driver != config.StorageDriverRedis {
		logr.Info("using in-memory browser storage")
		return repository.NewMemoryStorage(), func() {}, nil
	}
	client, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	store := repository.NewRedisStorage(client, logr)
	return store, func() {
		if err := store.Close(); err != nil {
			logr.Warn("close redis", zap.Error(err))
		}
	}, nil
}
