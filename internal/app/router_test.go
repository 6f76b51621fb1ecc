package app

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gouvernance-ai/gouvernance/internal/dashboard"
	"github.com/gouvernance-ai/gouvernance/internal/identity"
	"github.com/gouvernance-ai/gouvernance/internal/marketing"
	"github.com/gouvernance-ai/gouvernance/internal/observability"
	"github.com/gouvernance-ai/gouvernance/internal/shared"
	"github.com/gouvernance-ai/gouvernance/internal/sitemap"
	"github.com/gouvernance-ai/gouvernance/internal/testing/testkit"
	"github.com/gouvernance-ai/gouvernance/internal/view"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	client, _ := testkit.Redis(t)
	engine, err := view.NewEngine()
	require.NoError(t, err)
	cfg := &Config{AppEnv: "test", AppRequestTimeout: 5 * time.Second}
	sessions := shared.NewSessionManager(client, "gv_session", time.Hour, false)
	csrf := shared.NewCSRFManager("csrf")
	pages := &view.Pages{Engine: engine, CSRF: csrf}
	ids := identity.NewService(nil)

	return NewRouter(RouterParams{
		Config:         cfg,
		Logger:         NewLogger(cfg),
		Pages:          pages,
		SessionManager: sessions,
		CSRFManager:    csrf,
		Metrics:        observability.NewMetrics(),
		Identity:       identity.Middleware{Service: ids},
		AuthHandler:    identity.NewHandler(nil, ids, engine, sessions, csrf),
		Dashboard:      dashboard.NewHandler(dashboard.Loader{}, pages, nil),
		Marketing:      marketing.NewHandler(pages),
		Sitemap:        sitemap.Generator{BaseURL: "https://gouvernance.ai", ContentDir: t.TempDir()},
	})
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func TestRouterPublicRoutes(t *testing.T) {
	r := newTestRouter(t)

	home := get(r, "/")
	assert.Equal(t, http.StatusOK, home.Code)
	assert.Equal(t, "nosniff", home.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, home.Header().Get("Set-Cookie"))

	assert.Equal(t, http.StatusOK, get(r, "/healthz").Code)
	assert.Contains(t, get(r, "/sitemap.xml").Body.String(), "<urlset")
	assert.Contains(t, get(r, "/metrics").Body.String(), "gouvernance_http_requests_total")
	assert.Equal(t, http.StatusOK, get(r, "/static/css/site.css").Code)
}

func TestRouterNotFound(t *testing.T) {
	r := newTestRouter(t)
	page := get(r, "/inexistant")
	assert.Equal(t, http.StatusNotFound, page.Code)
	assert.Contains(t, page.Body.String(), "Page introuvable")

	api := get(r, "/api/inexistant")
	assert.Equal(t, http.StatusNotFound, api.Code)
	assert.Contains(t, api.Header().Get("Content-Type"), "application/problem+json")
}

func TestRouterDashboardRequiresSignIn(t *testing.T) {
	rr := get(newTestRouter(t), "/tableau-de-bord")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/auth/login?next=%2Ftableau-de-bord", rr.Header().Get("Location"))
}

func TestRouterRejectsPostWithoutCSRFToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader("email=a%40b.fr&password=motdepasse"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}
