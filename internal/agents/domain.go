// Package agents manages the AI systems an organization registers for oversight.
package agents

import (
	"time"

	"github.com/google/uuid"
)

// Resource is the cache resource name for agent queries.
const Resource = "agents"

// RiskLevel is the regulatory risk category declared for an agent.
type RiskLevel string

// Risk categories.
const (
	RiskMinimal      RiskLevel = "minimal"
	RiskLimited      RiskLevel = "limited"
	RiskHigh         RiskLevel = "high"
	RiskUnacceptable RiskLevel = "unacceptable"
)

// Status tracks the agent lifecycle.
type Status string

// Agent statuses.
const (
	StatusDraft   Status = "draft"
	StatusActive  Status = "active"
	StatusRetired Status = "retired"
)

// Agent is an AI system under governance.
type Agent struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Name           string    `json:"name"`
	Provider       string    `json:"provider"`
	Purpose        string    `json:"purpose"`
	RiskLevel      RiskLevel `json:"risk_level"`
	RiskScore      int       `json:"risk_score"`
	Status         Status    `json:"status"`
	CreatedBy      uuid.UUID `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ListFilter narrows agent listings. Empty fields match everything.
type ListFilter struct {
	Status    Status
	RiskLevel RiskLevel
}

// RegisterInput is the payload for registering a new agent.
type RegisterInput struct {
	Name      string    `json:"name" validate:"required,max=200"`
	Provider  string    `json:"provider" validate:"required,max=200"`
	Purpose   string    `json:"purpose" validate:"max=2000"`
	RiskLevel RiskLevel `json:"risk_level" validate:"required,oneof=minimal limited high unacceptable"`
}

// RiskAssessment updates the measured risk score of an agent.
type RiskAssessment struct {
	Score int    `json:"score" validate:"min=0,max=100"`
	Note  string `json:"note" validate:"max=2000"`
}

// AverageRisk returns the mean risk score of agents, 0 when empty.
func AverageRisk(list []Agent) float64 {
	if len(list) == 0 {
		return 0
	}
	total := 0
	for _, a := range list {
		total += a.RiskScore
	}
	return float64(total) / float64(len(list))
}
