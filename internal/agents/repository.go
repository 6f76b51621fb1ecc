package agents

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gouvernance-ai/gouvernance/internal/platform/db"
	"github.com/gouvernance-ai/gouvernance/internal/platform/httpx"
)

// Repository abstracts agent persistence.
type Repository interface {
	List(ctx context.Context, orgID uuid.UUID, filter ListFilter) ([]Agent, error)
	Get(ctx context.Context, orgID, id uuid.UUID) (Agent, error)
	Register(ctx context.Context, orgID, actorID uuid.UUID, in RegisterInput) (Agent, error)
	UpdateRiskScore(ctx context.Context, orgID, id uuid.UUID, score int) (Agent, error)
}

// PGRepository stores agents in PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a PGRepository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const agentColumns = `id, organization_id, name, provider, purpose, risk_level, risk_score, status, created_by, created_at, updated_at`

func scanAgent(row pgx.Row) (Agent, error) {
	var a Agent
	err := row.Scan(&a.ID, &a.OrganizationID, &a.Name, &a.Provider, &a.Purpose,
		&a.RiskLevel, &a.RiskScore, &a.Status, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt)
	if db.IsNoRows(err) {
		return Agent{}, httpx.ErrNotFound
	}
	return a, err
}

// List returns the organization's agents, most recent first.
func (r *PGRepository) List(ctx context.Context, orgID uuid.UUID, filter ListFilter) ([]Agent, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+agentColumns+` FROM agents
		WHERE organization_id = $1
		  AND ($2 = '' OR status = $2)
		  AND ($3 = '' OR risk_level = $3)
		ORDER BY created_at DESC`, orgID, string(filter.Status), string(filter.RiskLevel))
	if err != nil {
		return nil, fmt.Errorf("agents: list: %w", err)
	}
	defer rows.Close()
	var out []Agent
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Get loads one agent of the organization.
func (r *PGRepository) Get(ctx context.Context, orgID, id uuid.UUID) (Agent, error) {
	return scanAgent(r.pool.QueryRow(ctx, `SELECT `+agentColumns+` FROM agents
		WHERE organization_id = $1 AND id = $2`, orgID, id))
}

// Register calls the register_agent procedure, which owns the
// registration rules server-side.
func (r *PGRepository) Register(ctx context.Context, orgID, actorID uuid.UUID, in RegisterInput) (Agent, error) {
	a, err := scanAgent(r.pool.QueryRow(ctx, `SELECT `+agentColumns+`
		FROM register_agent($1, $2, $3, $4, $5, $6)`,
		orgID, actorID, in.Name, in.Provider, in.Purpose, string(in.RiskLevel)))
	if db.IsUniqueViolation(err) {
		return Agent{}, httpx.ErrDuplicate
	}
	return a, err
}

// UpdateRiskScore stores a new risk score.
func (r *PGRepository) UpdateRiskScore(ctx context.Context, orgID, id uuid.UUID, score int) (Agent, error) {
	return scanAgent(r.pool.QueryRow(ctx, `UPDATE agents SET risk_score = $3, updated_at = now()
		WHERE organization_id = $1 AND id = $2
		RETURNING `+agentColumns, orgID, id, score))
}
