package identity

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gouvernance-ai/gouvernance/internal/scope"
	"github.com/gouvernance-ai/gouvernance/internal/shared"
)

// Middleware turns the session user into an explicit scope on the request.
type Middleware struct {
	Service *Service
	Logger  *slog.Logger
}

// Load attaches scope.Scope to the request. Anonymous requests get the empty scope.
func (m Middleware) Load(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sess := shared.SessionFromContext(ctx)
		var sc scope.Scope
		if sess != nil && sess.User() != "" {
			user, err := m.Service.CurrentUser(ctx, sess.User())
			if err != nil {
				m.logger().Error("identity load user", slog.Any("error", err))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			if user == nil {
				sess.SetUser("")
			} else {
				profile, err := m.Service.CurrentProfile(ctx, user.ID)
				if err != nil {
					m.logger().Error("identity load profile", slog.Any("error", err))
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
					return
				}
				sc = scope.Scope{UserID: user.ID, OrganizationID: profile.Organization()}
			}
		}
		next.ServeHTTP(w, r.WithContext(scope.WithScope(ctx, sc)))
	})
}

// RequireSignIn redirects anonymous visitors to the login page.
func RequireSignIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !scope.FromContext(r.Context()).Authenticated() {
			http.Redirect(w, r, "/auth/login?next="+url.QueryEscape(r.URL.Path), http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m Middleware) logger() *slog.Logger {
	if m.Logger == nil {
		return slog.Default()
	}
	return m.Logger
}
