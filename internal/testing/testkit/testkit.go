// Package testkit holds fixtures shared by package tests.
package testkit

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/gouvernance-ai/gouvernance/internal/authz"
	"github.com/gouvernance-ai/gouvernance/internal/scope"
)

// Redis starts a miniredis server bound to t and returns a client for it.
func Redis(t testing.TB) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

// Cache returns a scope.Cache backed by miniredis.
func Cache(t testing.TB) *scope.Cache {
	t.Helper()
	client, _ := Redis(t)
	return scope.NewCache(client, time.Minute, nil)
}

// Member returns a scope for a fresh user in a fresh organization.
func Member() scope.Scope {
	return scope.Scope{UserID: uuid.New(), OrganizationID: uuid.New()}
}

// Roles is an in-memory authz.RoleStore that assigns one role to every
// (user, organization) pair it is asked about.
type Roles struct {
	Role  authz.Role
	Calls atomic.Int32
}

// RoleFor implements authz.RoleStore.
func (r *Roles) RoleFor(ctx context.Context, userID, orgID uuid.UUID) (string, bool, error) {
	r.Calls.Add(1)
	if r.Role.IsNone() {
		return "", false, nil
	}
	return r.Role.String(), true, nil
}

// Authz returns middleware resolving every caller to role.
func Authz(role authz.Role) authz.Middleware {
	return authz.Middleware{Resolver: authz.NewResolver(&Roles{Role: role}, authz.RoleNone)}
}

// WithScope returns r carrying sc.
func WithScope(r *http.Request, sc scope.Scope) *http.Request {
	return r.WithContext(scope.WithScope(r.Context(), sc))
}
