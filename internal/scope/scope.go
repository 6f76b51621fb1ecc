// Package scope carries the caller's user and organization through a request
// and provides the organization-scoped query cache used by the domain packages.
package scope

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/gouvernance-ai/gouvernance/internal/platform/httpx"
)

// ErrNoOrganization is returned by mutations attempted without an organization.
var ErrNoOrganization = fmt.Errorf("aucune organisation associée: %w", httpx.ErrForbidden)

// Scope identifies who is asking and which organization the data belongs to.
type Scope struct {
	UserID         uuid.UUID
	OrganizationID uuid.UUID
}

// Authenticated reports whether a user is attached.
func (s Scope) Authenticated() bool {
	return s.UserID != uuid.Nil
}

// HasOrganization reports whether the user belongs to an organization.
func (s Scope) HasOrganization() bool {
	return s.Authenticated() && s.OrganizationID != uuid.Nil
}

type scopeContextKey struct{}

// WithScope stores s in ctx.
func WithScope(ctx context.Context, s Scope) context.Context {
	return context.WithValue(ctx, scopeContextKey{}, s)
}

// FromContext returns the scope stored in ctx, or the empty scope.
func FromContext(ctx context.Context) Scope {
	s, _ := ctx.Value(scopeContextKey{}).(Scope)
	return s
}
