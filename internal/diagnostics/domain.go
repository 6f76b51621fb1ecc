// Package diagnostics runs AI-governance maturity diagnostics.
package diagnostics

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gouvernance-ai/gouvernance/internal/platform/httpx"
)

// Resource is the cache resource name for diagnostic queries.
const Resource = "diagnostics"

// Dimensions assessed by a diagnostic, in display order.
var Dimensions = []string{"gouvernance", "donnees", "transparence", "robustesse", "ethique", "conformite"}

// MaxAnswer is the highest maturity answer for a dimension.
const MaxAnswer = 4

// Maturity levels.
const (
	LevelInitial      = "initial"
	LevelIntermediate = "intermediaire"
	LevelAdvanced     = "avance"
)

// Diagnostic is a submitted maturity assessment.
type Diagnostic struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Answers        Answers   `json:"answers"`
	Score          float64   `json:"score"`
	Level          string    `json:"level"`
	SubmittedBy    uuid.UUID `json:"submitted_by"`
	CreatedAt      time.Time `json:"created_at"`
}

// Answers maps a dimension to a maturity answer in [0, MaxAnswer].
type Answers map[string]int

// SubmitInput is the payload of a diagnostic submission.
type SubmitInput struct {
	Answers Answers `json:"answers" validate:"required"`
}

// Validate checks every dimension is answered within range.
func (a Answers) Validate() error {
	for _, dim := range Dimensions {
		v, ok := a[dim]
		if !ok {
			return fmt.Errorf("%w: dimension %q manquante", httpx.ErrValidation, dim)
		}
		if v < 0 || v > MaxAnswer {
			return fmt.Errorf("%w: dimension %q hors limites", httpx.ErrValidation, dim)
		}
	}
	for dim := range a {
		if !knownDimension(dim) {
			return fmt.Errorf("%w: dimension %q inconnue", httpx.ErrValidation, dim)
		}
	}
	return nil
}

func knownDimension(dim string) bool {
	for _, d := range Dimensions {
		if d == dim {
			return true
		}
	}
	return false
}

// Score is the plain average of the answers on a 0-100 scale.
func (a Answers) Score() float64 {
	if len(a) == 0 {
		return 0
	}
	total := 0
	for _, v := range a {
		total += v
	}
	return float64(total) * 100 / float64(len(a)*MaxAnswer)
}

// LevelFor maps a 0-100 score to a maturity level.
func LevelFor(score float64) string {
	switch {
	case score < 40:
		return LevelInitial
	case score < 70:
		return LevelIntermediate
	default:
		return LevelAdvanced
	}
}

// Draft holds answers in progress, kept between visits.
type Draft struct {
	Answers   Answers   `json:"answers"`
	UpdatedAt time.Time `json:"updated_at"`
}
