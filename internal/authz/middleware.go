package authz

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gouvernance-ai/gouvernance/internal/platform/httpx"
	"github.com/gouvernance-ai/gouvernance/internal/scope"
)

type roleContextKey struct{}

// ContextWithRole stores the role resolved for the current request.
func ContextWithRole(ctx context.Context, role Role) context.Context {
	return context.WithValue(ctx, roleContextKey{}, role)
}

// RoleFromContext returns the role stored by Middleware, or RoleNone.
func RoleFromContext(ctx context.Context) Role {
	role, _ := ctx.Value(roleContextKey{}).(Role)
	return role
}

// Middleware wires role resolution and permission checks into HTTP handlers.
type Middleware struct {
	Resolver *Resolver
	Gate     Gate
	Logger   *slog.Logger
}

// Resolve attaches the caller's role to the request context. It never rejects.
func (m Middleware) Resolve(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sc := scope.FromContext(r.Context())
		role := m.resolve(r.Context(), sc)
		next.ServeHTTP(w, r.WithContext(ContextWithRole(r.Context(), role)))
	})
}

// Require lets the request through when the caller holds any of perms.
func (m Middleware) Require(perms ...Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sc := scope.FromContext(r.Context())
			if !sc.Authenticated() {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
			role := m.resolve(r.Context(), sc)
			for _, p := range perms {
				if m.Gate.Allow(role, p) {
					next.ServeHTTP(w, r.WithContext(ContextWithRole(r.Context(), role)))
					return
				}
			}
			httpx.RespondError(w, httpx.ErrForbidden)
		})
	}
}

func (m Middleware) resolve(ctx context.Context, sc scope.Scope) Role {
	if !sc.HasOrganization() {
		return RoleNone
	}
	role, err := m.Resolver.Resolve(ctx, sc.UserID, sc.OrganizationID)
	if err != nil {
		m.logger().Warn("authz resolve role",
			slog.String("user_id", sc.UserID.String()),
			slog.String("organization_id", sc.OrganizationID.String()),
			slog.Any("error", err))
	}
	return role
}

func (m Middleware) logger() *slog.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return slog.Default()
}
