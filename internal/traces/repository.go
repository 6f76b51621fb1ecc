package traces

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gouvernance-ai/gouvernance/internal/platform/db"
	"github.com/gouvernance-ai/gouvernance/internal/platform/httpx"
)

// Repository abstracts trace persistence.
type Repository interface {
	List(ctx context.Context, orgID uuid.UUID, filter Filter) ([]Trace, error)
	Insert(ctx context.Context, orgID, actorID uuid.UUID, t NewTrace) (Trace, error)
}

// PGRepository stores traces in PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a PGRepository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const traceColumns = `id, organization_id, agent_id, kind, decision, rationale, outcome, severity, recorded_by, created_at`

func scanTrace(row pgx.Row) (Trace, error) {
	var t Trace
	var severity pgtype.Text
	err := row.Scan(&t.ID, &t.OrganizationID, &t.AgentID, &t.Kind, &t.Decision,
		&t.Rationale, &t.Outcome, &severity, &t.RecordedBy, &t.CreatedAt)
	if db.IsNoRows(err) {
		return Trace{}, httpx.ErrNotFound
	}
	t.Severity = severity.String
	return t, err
}

func optionalUUID(id uuid.UUID) pgtype.UUID {
	if id == uuid.Nil {
		return pgtype.UUID{}
	}
	return pgtype.UUID{Bytes: id, Valid: true}
}

// List returns the newest traces first.
func (r *PGRepository) List(ctx context.Context, orgID uuid.UUID, filter Filter) ([]Trace, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+traceColumns+` FROM traces
		WHERE organization_id = $1
		  AND ($2::uuid IS NULL OR agent_id = $2)
		  AND ($3 = '' OR kind = $3)
		ORDER BY created_at DESC
		LIMIT $4`, orgID, optionalUUID(filter.AgentID), string(filter.Kind), filter.Limit)
	if err != nil {
		return nil, fmt.Errorf("traces: list: %w", err)
	}
	defer rows.Close()
	var out []Trace
	for rows.Next() {
		t, err := scanTrace(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Insert stores a trace. The agent must belong to the organization.
func (r *PGRepository) Insert(ctx context.Context, orgID, actorID uuid.UUID, t NewTrace) (Trace, error) {
	var severity pgtype.Text
	if t.Severity != "" {
		severity = pgtype.Text{String: t.Severity, Valid: true}
	}
	return scanTrace(r.pool.QueryRow(ctx, `INSERT INTO traces
		(organization_id, agent_id, kind, decision, rationale, outcome, severity, recorded_by)
		SELECT $1, a.id, $3, $4, $5, $6, $7, $8
		FROM agents a WHERE a.organization_id = $1 AND a.id = $2
		RETURNING `+traceColumns,
		orgID, t.AgentID, string(t.Kind), t.Decision, t.Rationale, t.Outcome, severity, actorID))
}
