package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/gouvernance-ai/gouvernance/internal/app"
	"github.com/gouvernance-ai/gouvernance/internal/cms"
	jobmetrics "github.com/gouvernance-ai/gouvernance/internal/jobs"
	"github.com/gouvernance-ai/gouvernance/internal/observability"
	"github.com/gouvernance-ai/gouvernance/internal/sitemap"
	"github.com/gouvernance-ai/gouvernance/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	metrics := observability.NewMetrics()
	jobMetrics := jobmetrics.NewMetrics(metrics.Registerer())

	cmsClient := cms.NewClient(cms.Config{
		BaseURL:  cfg.CMSURL,
		Token:    cfg.CMSToken,
		Timeout:  cfg.CMSTimeout,
		CacheTTL: cfg.CMSCacheTTL,
		Category: cfg.CMSCategory,
	}, metrics, logger)

	sitemapJob := &jobs.SitemapBuildJob{
		Generator: sitemap.Generator{BaseURL: cfg.AppBaseURL, ContentDir: cfg.ContentDir, Logger: logger},
		Target:    cfg.SitemapPath,
		Logger:    logger,
		Metrics:   jobMetrics,
	}
	warmupJob := &jobs.CMSWarmupJob{CMS: cmsClient, PageSize: cfg.NewsPerPage, Logger: logger, Metrics: jobMetrics}
	warmupTask, err := jobs.NewCMSWarmupTask(3)
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskSitemapBuild, Handler: sitemapJob.Handle},
			{Type: jobs.TaskCMSWarmup, Handler: warmupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 3 * * *", Task: jobs.NewSitemapBuildTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "*/30 * * * *", Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(1)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if cfg.WorkerMetricsAddr != "" {
		metricsServer := &http.Server{Addr: cfg.WorkerMetricsAddr, Handler: metrics.Handler(), ReadTimeout: cfg.AppReadTimeout}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Warn("worker metrics server", slog.Any("error", err))
			}
		}()
		defer func() { _ = metricsServer.Close() }()
	}

	logger.Info("starting worker")
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
