package documents

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gouvernance-ai/gouvernance/internal/platform/db"
	"github.com/gouvernance-ai/gouvernance/internal/platform/httpx"
)

// Repository abstracts document persistence.
type Repository interface {
	List(ctx context.Context, orgID uuid.UUID, kind Kind) ([]Document, error)
	Create(ctx context.Context, orgID, actorID uuid.UUID, in CreateInput) (Document, error)
}

// PGRepository stores documents in PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a PGRepository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const documentColumns = `id, organization_id, agent_id, title, kind, url, uploaded_by, created_at`

func scanDocument(row pgx.Row) (Document, error) {
	var d Document
	err := row.Scan(&d.ID, &d.OrganizationID, &d.AgentID, &d.Title, &d.Kind, &d.URL, &d.UploadedBy, &d.CreatedAt)
	switch {
	case db.IsNoRows(err):
		return Document{}, httpx.ErrNotFound
	case db.IsUniqueViolation(err):
		return Document{}, httpx.ErrDuplicate
	}
	return d, err
}

// List returns documents, newest first.
func (r *PGRepository) List(ctx context.Context, orgID uuid.UUID, kind Kind) ([]Document, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+documentColumns+` FROM documents
		WHERE organization_id = $1 AND ($2 = '' OR kind = $2)
		ORDER BY created_at DESC`, orgID, string(kind))
	if err != nil {
		return nil, fmt.Errorf("documents: list: %w", err)
	}
	defer rows.Close()
	var out []Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Create indexes a document.
func (r *PGRepository) Create(ctx context.Context, orgID, actorID uuid.UUID, in CreateInput) (Document, error) {
	return scanDocument(r.pool.QueryRow(ctx, `INSERT INTO documents
		(organization_id, agent_id, title, kind, url, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+documentColumns, orgID, in.AgentID, in.Title, string(in.Kind), in.URL, actorID))
}
