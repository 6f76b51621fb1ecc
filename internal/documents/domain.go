// Package documents indexes the compliance documents of an organization.
package documents

import (
	"time"

	"github.com/google/uuid"
)

// Resource is the cache resource name for document queries.
const Resource = "documents"

// Kind classifies a compliance document.
type Kind string

// Document kinds.
const (
	KindImpactAssessment Kind = "analyse_impact"
	KindTechnicalFile    Kind = "dossier_technique"
	KindRegister         Kind = "registre"
	KindProcedure        Kind = "procedure"
	KindReport           Kind = "rapport"
)

// Document is a reference to a stored compliance document.
type Document struct {
	ID             uuid.UUID  `json:"id"`
	OrganizationID uuid.UUID  `json:"organization_id"`
	AgentID        *uuid.UUID `json:"agent_id,omitempty"`
	Title          string     `json:"title"`
	Kind           Kind       `json:"kind"`
	URL            string     `json:"url"`
	UploadedBy     uuid.UUID  `json:"uploaded_by"`
	CreatedAt      time.Time  `json:"created_at"`
}

// CreateInput is the payload for indexing a document.
type CreateInput struct {
	Title   string     `json:"title" validate:"required,max=300"`
	Kind    Kind       `json:"kind" validate:"required,oneof=analyse_impact dossier_technique registre procedure rapport"`
	URL     string     `json:"url" validate:"required,url,max=2000"`
	AgentID *uuid.UUID `json:"agent_id"`
}
