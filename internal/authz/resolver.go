package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RoleStore reads role assignments. found is false when no row exists.
type RoleStore interface {
	RoleFor(ctx context.Context, userID, orgID uuid.UUID) (name string, found bool, err error)
}

// Resolver returns the role a user holds in an organization.
type Resolver struct {
	store    RoleStore
	fallback Role
}

// NewResolver builds a Resolver. fallback is returned alongside the error when
// the store fails; RoleNone keeps lookup failures closed.
func NewResolver(store RoleStore, fallback Role) *Resolver {
	return &Resolver{store: store, fallback: fallback}
}

// Resolve looks up the assignment for (userID, orgID). A missing assignment
// yields RoleNone and a nil error. Results are not cached.
func (r *Resolver) Resolve(ctx context.Context, userID, orgID uuid.UUID) (Role, error) {
	if userID == uuid.Nil || orgID == uuid.Nil {
		return RoleNone, nil
	}
	if r == nil || r.store == nil {
		return RoleNone, errors.New("authz: role store not configured")
	}
	name, found, err := r.store.RoleFor(ctx, userID, orgID)
	if err != nil {
		return r.fallback, fmt.Errorf("authz: resolve role: %w", err)
	}
	if !found {
		return RoleNone, nil
	}
	role, err := ParseRole(name)
	if err != nil {
		return RoleNone, err
	}
	return role, nil
}

// PGRoleStore reads organization_roles from PostgreSQL.
type PGRoleStore struct {
	pool *pgxpool.Pool
}

// NewPGRoleStore constructs the store.
func NewPGRoleStore(pool *pgxpool.Pool) *PGRoleStore {
	return &PGRoleStore{pool: pool}
}

// RoleFor implements RoleStore.
func (s *PGRoleStore) RoleFor(ctx context.Context, userID, orgID uuid.UUID) (string, bool, error) {
	var role string
	err := s.pool.QueryRow(ctx,
		`SELECT role FROM organization_roles WHERE user_id = $1 AND organization_id = $2`,
		userID, orgID,
	).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return role, true, nil
}

var _ RoleStore = (*PGRoleStore)(nil)
