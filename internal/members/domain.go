// Package members manages who holds which role in an organization.
package members

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gouvernance-ai/gouvernance/internal/authz"
	"github.com/gouvernance-ai/gouvernance/internal/platform/httpx"
)

// Resource is the cache resource name for member queries.
const Resource = "members"

var (
	// ErrSelfChange blocks administrators from editing their own role.
	ErrSelfChange = fmt.Errorf("modification de son propre rôle: %w", httpx.ErrForbidden)
	// ErrSuperAdminGrant blocks non super administrators from granting that role.
	ErrSuperAdminGrant = fmt.Errorf("attribution du rôle super administrateur: %w", httpx.ErrForbidden)
	// ErrSuperAdminChange blocks non super administrators from changing or
	// revoking the role of a super administrator.
	ErrSuperAdminChange = fmt.Errorf("modification d'un super administrateur: %w", httpx.ErrForbidden)
	// ErrNoRole rejects an assignment without a role.
	ErrNoRole = fmt.Errorf("rôle requis: %w", httpx.ErrValidation)
)

// Member is a user holding a role in the organization.
type Member struct {
	UserID     uuid.UUID  `json:"user_id"`
	Email      string     `json:"email"`
	FullName   string     `json:"full_name"`
	Role       authz.Role `json:"role"`
	AssignedAt time.Time  `json:"assigned_at"`
}

// AssignInput grants a role to a user.
type AssignInput struct {
	UserID uuid.UUID  `json:"user_id" validate:"required"`
	Role   authz.Role `json:"role" validate:"required"`
}

// RoleInput changes the role of an existing member.
type RoleInput struct {
	Role authz.Role `json:"role" validate:"required"`
}
