// Package policies manages the governance policies of an organization.
package policies

import (
	"time"

	"github.com/google/uuid"
)

// Resource is the cache resource name for policy queries.
const Resource = "policies"

// Status of a policy.
type Status string

// Policy statuses.
const (
	StatusDraft    Status = "draft"
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

// Policy is a governance rule adopted by an organization.
type Policy struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Title          string    `json:"title"`
	Category       string    `json:"category"`
	Body           string    `json:"body"`
	Status         Status    `json:"status"`
	Version        int       `json:"version"`
	CreatedBy      uuid.UUID `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CreateInput is the payload for a new policy.
type CreateInput struct {
	Title    string `json:"title" validate:"required,max=200"`
	Category string `json:"category" validate:"required,oneof=ethique transparence donnees securite conformite"`
	Body     string `json:"body" validate:"max=20000"`
}

// StatusInput moves a policy to another status.
type StatusInput struct {
	Status Status `json:"status" validate:"required,oneof=draft active archived"`
}

// CountActive returns how many policies are active.
func CountActive(list []Policy) int {
	n := 0
	for _, p := range list {
		if p.Status == StatusActive {
			n++
		}
	}
	return n
}
