package policies

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gouvernance-ai/gouvernance/internal/platform/db"
	"github.com/gouvernance-ai/gouvernance/internal/platform/httpx"
)

// Repository abstracts policy persistence.
type Repository interface {
	List(ctx context.Context, orgID uuid.UUID, status Status) ([]Policy, error)
	Create(ctx context.Context, orgID, actorID uuid.UUID, in CreateInput) (Policy, error)
	UpdateStatus(ctx context.Context, orgID, id uuid.UUID, status Status) (Policy, error)
}

// PGRepository stores policies in PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a PGRepository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const policyColumns = `id, organization_id, title, category, body, status, version, created_by, created_at, updated_at`

func scanPolicy(row pgx.Row) (Policy, error) {
	var p Policy
	err := row.Scan(&p.ID, &p.OrganizationID, &p.Title, &p.Category, &p.Body,
		&p.Status, &p.Version, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	switch {
	case db.IsNoRows(err):
		return Policy{}, httpx.ErrNotFound
	case db.IsUniqueViolation(err):
		return Policy{}, httpx.ErrDuplicate
	}
	return p, err
}

// List returns policies ordered by title.
func (r *PGRepository) List(ctx context.Context, orgID uuid.UUID, status Status) ([]Policy, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+policyColumns+` FROM policies
		WHERE organization_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY title`, orgID, string(status))
	if err != nil {
		return nil, fmt.Errorf("policies: list: %w", err)
	}
	defer rows.Close()
	var out []Policy
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Create inserts a draft policy.
func (r *PGRepository) Create(ctx context.Context, orgID, actorID uuid.UUID, in CreateInput) (Policy, error) {
	return scanPolicy(r.pool.QueryRow(ctx, `INSERT INTO policies
		(organization_id, title, category, body, status, version, created_by)
		VALUES ($1, $2, $3, $4, 'draft', 1, $5)
		RETURNING `+policyColumns, orgID, in.Title, in.Category, in.Body, actorID))
}

// UpdateStatus changes the status and bumps the version.
func (r *PGRepository) UpdateStatus(ctx context.Context, orgID, id uuid.UUID, status Status) (Policy, error) {
	return scanPolicy(r.pool.QueryRow(ctx, `UPDATE policies
		SET status = $3, version = version + 1, updated_at = now()
		WHERE organization_id = $1 AND id = $2
		RETURNING `+policyColumns, orgID, id, string(status)))
}
