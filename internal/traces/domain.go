// Package traces records the decisions taken by AI agents and the incidents
// reported against them.
package traces

import (
	"time"

	"github.com/google/uuid"
)

// Resource is the cache resource name for trace queries.
const Resource = "traces"

// Listing bounds.
const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// Kind distinguishes ordinary decision traces from incidents.
type Kind string

// Trace kinds.
const (
	KindDecision Kind = "decision"
	KindIncident Kind = "incident"
)

// Trace is one recorded agent decision or incident.
type Trace struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	AgentID        uuid.UUID `json:"agent_id"`
	Kind           Kind      `json:"kind"`
	Decision       string    `json:"decision"`
	Rationale      string    `json:"rationale"`
	Outcome        string    `json:"outcome"`
	Severity       string    `json:"severity,omitempty"`
	RecordedBy     uuid.UUID `json:"recorded_by"`
	CreatedAt      time.Time `json:"created_at"`
}

// Filter narrows trace listings.
type Filter struct {
	AgentID uuid.UUID
	Kind    Kind
	Limit   int
}

// Normalize clamps the limit into [1, MaxLimit].
func (f Filter) Normalize() Filter {
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	return f
}

// RecordInput is the payload of a decision trace.
type RecordInput struct {
	AgentID   uuid.UUID `json:"agent_id" validate:"required"`
	Decision  string    `json:"decision" validate:"required,max=500"`
	Rationale string    `json:"rationale" validate:"max=5000"`
	Outcome   string    `json:"outcome" validate:"max=500"`
}

// IncidentInput is the payload of an incident report.
type IncidentInput struct {
	AgentID     uuid.UUID `json:"agent_id" validate:"required"`
	Description string    `json:"description" validate:"required,max=5000"`
	Severity    string    `json:"severity" validate:"required,oneof=faible moyenne elevee critique"`
}

// NewTrace is what the repository inserts.
type NewTrace struct {
	AgentID   uuid.UUID
	Kind      Kind
	Decision  string
	Rationale string
	Outcome   string
	Severity  string
}
