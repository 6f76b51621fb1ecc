package diagnostics

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gouvernance-ai/gouvernance/internal/platform/db"
	"github.com/gouvernance-ai/gouvernance/internal/platform/httpx"
)

// Repository abstracts diagnostic persistence.
type Repository interface {
	List(ctx context.Context, orgID uuid.UUID) ([]Diagnostic, error)
	Latest(ctx context.Context, orgID uuid.UUID) (Diagnostic, error)
	Insert(ctx context.Context, d Diagnostic) (Diagnostic, error)
}

// PGRepository stores diagnostics in PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a PGRepository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const diagnosticColumns = `id, organization_id, answers, score, level, submitted_by, created_at`

func scanDiagnostic(row pgx.Row) (Diagnostic, error) {
	var d Diagnostic
	err := row.Scan(&d.ID, &d.OrganizationID, &d.Answers, &d.Score, &d.Level, &d.SubmittedBy, &d.CreatedAt)
	if db.IsNoRows(err) {
		return Diagnostic{}, httpx.ErrNotFound
	}
	return d, err
}

// List returns every diagnostic of the organization, newest first.
func (r *PGRepository) List(ctx context.Context, orgID uuid.UUID) ([]Diagnostic, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+diagnosticColumns+` FROM diagnostics
		WHERE organization_id = $1 ORDER BY created_at DESC`, orgID)
	if err != nil {
		return nil, fmt.Errorf("diagnostics: list: %w", err)
	}
	defer rows.Close()
	var out []Diagnostic
	for rows.Next() {
		d, err := scanDiagnostic(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Latest returns the most recent diagnostic.
func (r *PGRepository) Latest(ctx context.Context, orgID uuid.UUID) (Diagnostic, error) {
	return scanDiagnostic(r.pool.QueryRow(ctx, `SELECT `+diagnosticColumns+` FROM diagnostics
		WHERE organization_id = $1 ORDER BY created_at DESC LIMIT 1`, orgID))
}

// Insert stores a submitted diagnostic.
func (r *PGRepository) Insert(ctx context.Context, d Diagnostic) (Diagnostic, error) {
	return scanDiagnostic(r.pool.QueryRow(ctx, `INSERT INTO diagnostics
		(organization_id, answers, score, level, submitted_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+diagnosticColumns, d.OrganizationID, d.Answers, d.Score, d.Level, d.SubmittedBy))
}
