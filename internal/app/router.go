package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gouvernance-ai/gouvernance/internal/agents"
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
	"github.com/gouvernance-ai/gouvernance/internal/platform/httpx"
	"github.com/gouvernance-ai/gouvernance/internal/policies"
	"github.com/gouvernance-ai/gouvernance/internal/shared"
	"github.com/gouvernance-ai/gouvernance/internal/sitemap"
	"github.com/gouvernance-ai/gouvernance/internal/traces"
	"github.com/gouvernance-ai/gouvernance/internal/view"
	"github.com/gouvernance-ai/gouvernance/jobs"
	"github.com/gouvernance-ai/gouvernance/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	Pages          *view.Pages
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Metrics        *observability.Metrics

	Identity      identity.Middleware
	Authz         authz.Middleware
	AuthHandler   *identity.Handler
	AuthzHandler  *authz.Handler
	Agents        *agents.Handler
	Policies      *policies.Handler
	Traces        *traces.Handler
	Diagnostics   *diagnostics.Handler
	Documents     *documents.Handler
	Members       *members.Handler
	Audit         *audit.Handler
	News          *cms.Handler
	Dashboard     *dashboard.Handler
	Marketing     *marketing.Handler
	Jobs          *jobs.Handler
	Sitemap       sitemap.Generator
}

// NewRouter constructs the chi.Router with the portal routes.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}
	r.Use(params.Identity.Load)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}
	r.Get("/sitemap.xml", sitemap.Handler(params.Sitemap, params.Logger))

	supervise := Supervise(params.Pages, params.Metrics, params.Logger)
	r.Group(func(r chi.Router) {
		r.Use(supervise)
		r.Use(params.Authz.Resolve)
		if params.Marketing != nil {
			params.Marketing.MountRoutes(r)
		}
		if params.News != nil {
			r.Route("/actualites", params.News.MountRoutes)
		}
		r.Route("/auth", params.AuthHandler.MountRoutes)
		if params.Dashboard != nil {
			r.With(identity.RequireSignIn).Method(http.MethodGet, "/tableau-de-bord", params.Dashboard)
		}
	})

	r.Route("/api", func(r chi.Router) {
		if params.AuthzHandler != nil {
			params.AuthzHandler.MountRoutes(r)
		}
		mount := func(path string, h interface{ MountRoutes(chi.Router) }) {
			r.Route(path, h.MountRoutes)
		}
		if params.Agents != nil {
			mount("/agents", params.Agents)
		}
		if params.Policies != nil {
			mount("/policies", params.Policies)
		}
		if params.Traces != nil {
			mount("/traces", params.Traces)
		}
		if params.Diagnostics != nil {
			mount("/diagnostics", params.Diagnostics)
		}
		if params.Documents != nil {
			mount("/documents", params.Documents)
		}
		if params.Members != nil {
			mount("/members", params.Members)
		}
		if params.Audit != nil {
			mount("/audit", params.Audit)
		}
		if params.Jobs != nil {
			mount("/jobs", params.Jobs)
		}
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			httpx.RespondError(w, httpx.ErrNotFound)
		})
	})

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	r.NotFound(params.Pages.NotFound)
	return r
}

// staticCacheHandler lets browsers keep static assets for an hour.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
