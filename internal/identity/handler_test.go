package identity_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gouvernance-ai/gouvernance/internal/identity"
	"github.com/gouvernance-ai/gouvernance/internal/scope"
	"github.com/gouvernance-ai/gouvernance/internal/shared"
	"github.com/gouvernance-ai/gouvernance/internal/view"
)

type authFixture struct {
	router   chi.Router
	repo     *stubRepo
	service  *identity.Service
	sessions *shared.SessionManager
	current  *shared.Session
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	templates, err := view.NewEngine()
	require.NoError(t, err)

	f := &authFixture{repo: newStubRepo()}
	f.sessions = shared.NewSessionManager(client, "gv_session", time.Hour, false)
	f.service = identity.NewService(f.repo)
	handler := identity.NewHandler(nil, f.service, templates, f.sessions, shared.NewCSRFManager("csrf"))
	mw := identity.Middleware{Service: f.service, Logger: nil}

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			sess, err := f.sessions.Load(req.Context(), req)
			require.NoError(t, err)
			f.current = sess
			next.ServeHTTP(w, req.WithContext(shared.ContextWithSession(req.Context(), sess)))
		})
	})
	r.Use(mw.Load)
	r.Route("/auth", handler.MountRoutes)
	r.With(identity.RequireSignIn).Get("/tableau-de-bord", func(w http.ResponseWriter, req *http.Request) {
		sc := scope.FromContext(req.Context())
		_, _ = w.Write([]byte(sc.OrganizationID.String()))
	})
	f.router = r
	return f
}

func postLogin(f *authFixture, email, password string) *httptest.ResponseRecorder {
	form := url.Values{"email": {email}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func TestLoginPageRendersForm(t *testing.T) {
	f := newAuthFixture(t)
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/auth/login", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "<form")
	assert.Contains(t, rr.Body.String(), `name="csrf_token"`)
}

func TestLoginValidation(t *testing.T) {
	f := newAuthFixture(t)
	rr := postLogin(f, "pas-une-adresse", "court")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Adresse e-mail invalide")
	assert.Contains(t, rr.Body.String(), "Mot de passe trop court")
}

func TestLoginInvalidCredentials(t *testing.T) {
	f := newAuthFixture(t)
	f.repo.addUser(t, "claire@example.fr", "motdepasse", true)
	rr := postLogin(f, "claire@example.fr", "mauvais-mot")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Adresse e-mail ou mot de passe invalide")
	assert.Empty(t, f.current.User())
}

func TestLoginSuccessRotatesSession(t *testing.T) {
	f := newAuthFixture(t)
	user := f.repo.addUser(t, "claire@example.fr", "motdepasse", true)

	rr := postLogin(f, "claire@example.fr", "motdepasse")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/tableau-de-bord", rr.Header().Get("Location"))
	assert.Equal(t, user.ID.String(), f.current.User())
	assert.Contains(t, f.repo.sessions, f.current.ID)
}

func TestLoginRedirectStaysOnSite(t *testing.T) {
	f := newAuthFixture(t)
	f.repo.addUser(t, "claire@example.fr", "motdepasse", true)

	for next, want := range map[string]string{
		"/api/agents":      "/api/agents",
		"/\\evil.example": "/tableau-de-bord",
		"//evil.example":   "/tableau-de-bord",
	} {
		form := url.Values{"email": {"claire@example.fr"}, "password": {"motdepasse"}, "next": {next}}
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rr := httptest.NewRecorder()
		f.router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusSeeOther, rr.Code, next)
		assert.Equal(t, want, rr.Header().Get("Location"), next)
	}
}

func TestDashboardRequiresSignIn(t *testing.T) {
	f := newAuthFixture(t)
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/tableau-de-bord", nil))
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Header().Get("Location"), "/auth/login"))
}

func TestLoadAttachesOrganizationScope(t *testing.T) {
	f := newAuthFixture(t)
	user := f.repo.addUser(t, "claire@example.fr", "motdepasse", true)
	orgID := uuid.New()
	f.repo.profiles[user.ID] = &identity.Profile{UserID: user.ID, OrganizationID: &orgID}

	sess, err := f.sessions.Load(t.Context(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.SetUser(user.ID.String())
	commit := httptest.NewRecorder()
	require.NoError(t, f.sessions.Commit(t.Context(), commit, sess))

	req := httptest.NewRequest(http.MethodGet, "/tableau-de-bord", nil)
	for _, c := range commit.Result().Cookies() {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, orgID.String(), rr.Body.String())
}
