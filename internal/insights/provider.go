// Package insights defines the generation-service contract and its OpenAI
// implementation. The core only depends on the Provider interface; the model
// call, prompt text, and response parsing live behind it.
package insights

import (
	"context"

	"github.com/soundlens/soundlens/internal/models"
)

// Provider generates insight artifacts from a listening summary.
type Provider interface {
	// GenerateHabits produces 3-5 habit insights for the summary.
	GenerateHabits(ctx context.Context, summary *models.Summary) ([]models.HabitInsight, error)

	// GeneratePersona produces the listener persona for the summary.
	GeneratePersona(ctx context.Context, summary *models.Summary) (*models.PersonaInsight, error)
}
