package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/gouvernance-ai/gouvernance/internal/agents"
	"github.com/gouvernance-ai/gouvernance/internal/app"
	"github.com/gouvernance-ai/gouvernance/internal/audit"
	"github.com/gouvernance-ai/gouvernance/internal/authz"
	"github.com/gouvernance-ai/gouvernance/internal/cms"
	"github.com/gouvernance-ai/gouvernance/internal/dashboard"
	"github.com/gouvernance-ai/gouvernance/internal/diagnostics"
	"github.com/gouvernance-ai/gouvernance/internal/documents"
	"github.com/gouvernance-ai/gouvernance/internal/identity"
	"github.com/gouvernance-ai/gouvernance/internal/marketing"
	"github.com/gouvernance-ai/gouvernance/internal/members"
	"github.com/gouvernance-ai/gouvernance/internal/observability"
	"github.com/gouvernance-ai/gouvernance/internal/platform/cache"
	"github.com/gouvernance-ai/gouvernance/internal/platform/db"
	"github.com/gouvernance-ai/gouvernance/internal/policies"
	"github.com/gouvernance-ai/gouvernance/internal/scope"
	"github.com/gouvernance-ai/gouvernance/internal/shared"
	"github.com/gouvernance-ai/gouvernance/internal/sitemap"
	"github.com/gouvernance-ai/gouvernance/internal/traces"
	"github.com/gouvernance-ai/gouvernance/internal/view"
	"github.com/gouvernance-ai/gouvernance/jobs"
)

const draftTTL = 30 * 24 * time.Hour

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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
	slog.SetDefault(logger)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	sessionManager := shared.NewSessionManager(redisClient, "gv_session", cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}
	pages := &view.Pages{Engine: templates, CSRF: csrfManager, Logger: logger}

	identityService := identity.NewService(identity.NewRepository(pool))
	unsubscribe := identityService.Subscribe(func(evt identity.AuthEvent) {
		logger.Info("auth state changed", slog.String("kind", string(evt.Kind)), slog.String("user_id", evt.UserID.String()))
	})
	defer unsubscribe()

	fallback, _ := cfg.FallbackRole()
	authzMiddleware := authz.Middleware{
		Resolver: authz.NewResolver(authz.NewPGRoleStore(pool), fallback),
		Gate:     authz.Gate{Observer: metrics},
		Logger:   logger,
	}

	queryCache := scope.NewCache(redisClient, cfg.QueryCacheTTL, metrics)
	auditLog := shared.NewAuditLogger(pool)

	agentService := agents.NewService(agents.NewRepository(pool), queryCache, auditLog, logger)
	policyService := policies.NewService(policies.NewRepository(pool), queryCache, auditLog, logger)
	traceService := traces.NewService(traces.NewRepository(pool), queryCache, auditLog, logger)
	diagnosticService := diagnostics.NewService(diagnostics.NewRepository(pool),
		diagnostics.NewDraftStore(redisClient, draftTTL), queryCache, auditLog, logger)
	documentService := documents.NewService(documents.NewRepository(pool), queryCache, auditLog, logger)
	memberService := members.NewService(members.NewRepository(pool), queryCache, auditLog, logger)
	auditService := audit.NewService(audit.NewRepository(pool))

	cmsClient := cms.NewClient(cms.Config{
		BaseURL:  cfg.CMSURL,
		Token:    cfg.CMSToken,
		Timeout:  cfg.CMSTimeout,
		CacheTTL: cfg.CMSCacheTTL,
		Category: cfg.CMSCategory,
	}, metrics, logger)

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	queue := asynq.NewClient(redisOpts)
	defer func() {
		if err := queue.Close(); err != nil {
			logger.Warn("queue close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		Pages:          pages,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		Metrics:        metrics,
		Identity:       identity.Middleware{Service: identityService, Logger: logger},
		Authz:          authzMiddleware,
		AuthHandler:    identity.NewHandler(logger, identityService, templates, sessionManager, csrfManager),
		AuthzHandler:   authz.NewHandler(authzMiddleware),
		Agents:         agents.NewHandler(agentService, authzMiddleware),
		Policies:       policies.NewHandler(policyService, authzMiddleware),
		Traces:         traces.NewHandler(traceService, authzMiddleware),
		Diagnostics:    diagnostics.NewHandler(diagnosticService, authzMiddleware),
		Documents:      documents.NewHandler(documentService, authzMiddleware),
		Members:        members.NewHandler(memberService, authzMiddleware),
		Audit:          audit.NewHandler(logger, auditService, authzMiddleware),
		Jobs:           jobs.NewHandler(queue, inspector, authzMiddleware, logger),
		News:           cms.NewHandler(cmsClient, pages, cfg.NewsPerPage, logger),
		Dashboard: dashboard.NewHandler(dashboard.Loader{
			Agents:      agentService,
			Policies:    policyService,
			Diagnostics: diagnosticService,
		}, pages, logger),
		Marketing: marketing.NewHandler(pages),
		Sitemap:   sitemap.Generator{BaseURL: cfg.AppBaseURL, ContentDir: cfg.ContentDir, Logger: logger},
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
