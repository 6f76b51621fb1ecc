package members

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gouvernance-ai/gouvernance/internal/authz"
	"github.com/gouvernance-ai/gouvernance/internal/platform/db"
	"github.com/gouvernance-ai/gouvernance/internal/platform/httpx"
)

// Repository abstracts role assignment persistence.
type Repository interface {
	List(ctx context.Context, orgID uuid.UUID) ([]Member, error)
	RoleOf(ctx context.Context, orgID, userID uuid.UUID) (authz.Role, error)
	Assign(ctx context.Context, orgID, userID uuid.UUID, role authz.Role) error
	Change(ctx context.Context, orgID, userID uuid.UUID, role authz.Role) error
	Remove(ctx context.Context, orgID, userID uuid.UUID) error
}

// PGRepository reads members through the list_organization_members
// procedure and writes organization_roles directly.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a PGRepository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// List returns the organization's members.
func (r *PGRepository) List(ctx context.Context, orgID uuid.UUID) ([]Member, error) {
	rows, err := r.pool.Query(ctx, `SELECT user_id, email, full_name, role, assigned_at
		FROM list_organization_members($1)`, orgID)
	if err != nil {
		return nil, fmt.Errorf("members: list: %w", err)
	}
	defer rows.Close()
	var out []Member
	for rows.Next() {
		var m Member
		var role string
		if err := rows.Scan(&m.UserID, &m.Email, &m.FullName, &role, &m.AssignedAt); err != nil {
			return nil, err
		}
		// Unknown stored roles grant nothing.
		m.Role, _ = authz.ParseRole(role)
		out = append(out, m)
	}
	return out, rows.Err()
}

// RoleOf returns the role currently held by userID. ErrNotFound when the
// member has no assignment.
func (r *PGRepository) RoleOf(ctx context.Context, orgID, userID uuid.UUID) (authz.Role, error) {
	var raw string
	err := r.pool.QueryRow(ctx, `SELECT role FROM organization_roles
		WHERE organization_id = $1 AND user_id = $2`, orgID, userID).Scan(&raw)
	if db.IsNoRows(err) {
		return authz.RoleNone, httpx.ErrNotFound
	}
	if err != nil {
		return authz.RoleNone, fmt.Errorf("members: role of: %w", err)
	}
	role, _ := authz.ParseRole(raw)
	return role, nil
}

// Assign inserts an assignment. A second role for the same pair is a duplicate.
func (r *PGRepository) Assign(ctx context.Context, orgID, userID uuid.UUID, role authz.Role) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO organization_roles (organization_id, user_id, role)
		VALUES ($1, $2, $3)`, orgID, userID, role.String())
	if db.IsUniqueViolation(err) {
		return httpx.ErrDuplicate
	}
	return err
}

// Change replaces the role of an existing assignment.
func (r *PGRepository) Change(ctx context.Context, orgID, userID uuid.UUID, role authz.Role) error {
	tag, err := r.pool.Exec(ctx, `UPDATE organization_roles SET role = $3, updated_at = now()
		WHERE organization_id = $1 AND user_id = $2`, orgID, userID, role.String())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// Remove deletes an assignment.
func (r *PGRepository) Remove(ctx context.Context, orgID, userID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM organization_roles
		WHERE organization_id = $1 AND user_id = $2`, orgID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}
