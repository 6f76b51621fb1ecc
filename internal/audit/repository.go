package audit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WindowParams selects a page of the timeline.
type WindowParams struct {
	OrganizationID uuid.UUID
	Filters        TimelineFilters
	Offset         int
	Limit          int
}

// Repository reads audit_logs.
type Repository interface {
	TimelineWindow(ctx context.Context, arg WindowParams) ([]TimelineRow, error)
	TimelineAll(ctx context.Context, orgID uuid.UUID, filters TimelineFilters) ([]TimelineRow, error)
}

// PGRepository reads audit_logs from PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a PGRepository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const timelineQuery = `SELECT l.occurred_at, l.actor_id, COALESCE(u.email, ''), l.action, l.entity, l.entity_id, l.meta
	FROM audit_logs l
	LEFT JOIN users u ON u.id = l.actor_id
	WHERE l.organization_id = $1
	  AND ($2::timestamptz IS NULL OR l.occurred_at >= $2)
	  AND ($3::timestamptz IS NULL OR l.occurred_at < $3)
	  AND ($4::uuid IS NULL OR l.actor_id = $4)
	  AND ($5::text IS NULL OR l.entity = $5)
	  AND ($6::text IS NULL OR l.action = $6)
	ORDER BY l.occurred_at DESC, l.id DESC`

// TimelineWindow returns one page of entries, newest first.
func (r *PGRepository) TimelineWindow(ctx context.Context, arg WindowParams) ([]TimelineRow, error) {
	f := arg.Filters
	return r.query(ctx, timelineQuery+` OFFSET $7 LIMIT $8`,
		arg.OrganizationID, toPgTime(f.From), toPgTime(f.To), optionalUUID(f.ActorID),
		optionalText(f.Entity), optionalText(f.Action), arg.Offset, arg.Limit)
}

// TimelineAll returns every matching entry.
func (r *PGRepository) TimelineAll(ctx context.Context, orgID uuid.UUID, f TimelineFilters) ([]TimelineRow, error) {
	return r.query(ctx, timelineQuery,
		orgID, toPgTime(f.From), toPgTime(f.To), optionalUUID(f.ActorID),
		optionalText(f.Entity), optionalText(f.Action))
}

func (r *PGRepository) query(ctx context.Context, sql string, args ...any) ([]TimelineRow, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("audit: timeline: %w", err)
	}
	defer rows.Close()
	var out []TimelineRow
	for rows.Next() {
		var row TimelineRow
		var actor pgtype.UUID
		if err := rows.Scan(&row.At, &actor, &row.Actor, &row.Action, &row.Entity, &row.EntityID, &row.Meta); err != nil {
			return nil, err
		}
		if actor.Valid {
			row.ActorID = actor.Bytes
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func toPgTime(t time.Time) pgtype.Timestamptz {
	if t.IsZero() {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func optionalText(value string) pgtype.Text {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: trimmed, Valid: true}
}

func optionalUUID(id uuid.UUID) pgtype.UUID {
	if id == uuid.Nil {
		return pgtype.UUID{}
	}
	return pgtype.UUID{Bytes: id, Valid: true}
}
