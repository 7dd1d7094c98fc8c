package insights

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/soundlens/soundlens/internal/apperrors"
	"github.com/soundlens/soundlens/internal/models"
	"github.com/soundlens/soundlens/internal/validation"
)

const (
	// MinHabitInsights and MaxHabitInsights bound the habits artifact size.
	MinHabitInsights = 3
	MaxHabitInsights = 5
)

// extractJSON strips known textual wrappers the model may emit around the
// structured payload: markdown code fences first, then anything around the
// widest top-level object. Returns the original string when no object is
// found so the strict parse can fail loudly.
func extractJSON(raw string) string {
	cleaned := strings.TrimSpace(raw)

	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		if idx := strings.LastIndex(cleaned, "```"); idx != -1 {
			cleaned = cleaned[:idx]
		}
		cleaned = strings.TrimSpace(cleaned)
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start != -1 && end > start {
		return cleaned[start : end+1]
	}
	return cleaned
}

// parseHabits runs the two-stage parse for a habits artifact: strip wrappers,
// strict-unmarshal, then validate the schema. Any failure is a ParseError.
func parseHabits(content string) ([]models.HabitInsight, error) {
	var payload struct {
		Habits []models.HabitInsight `json:"habits"`
	}
	if err := json.Unmarshal([]byte(extractJSON(content)), &payload); err != nil {
		return nil, &apperrors.ParseError{Kind: "habits", Err: err}
	}

	if n := len(payload.Habits); n < MinHabitInsights || n > MaxHabitInsights {
		return nil, &apperrors.ParseError{
			Kind: "habits",
			Err:  fmt.Errorf("expected %d-%d insights, got %d", MinHabitInsights, MaxHabitInsights, n),
		}
	}
	for i, habit := range payload.Habits {
		if err := validation.Validate.Struct(habit); err != nil {
			return nil, &apperrors.ParseError{Kind: "habits", Err: fmt.Errorf("insight %d: %w", i, err)}
		}
	}
	return payload.Habits, nil
}

// parsePersona runs the two-stage parse for a persona artifact.
func parsePersona(content string) (*models.PersonaInsight, error) {
	var payload struct {
		Persona *models.PersonaInsight `json:"persona"`
	}
	raw := extractJSON(content)
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, &apperrors.ParseError{Kind: "persona", Err: err}
	}

	persona := payload.Persona
	if persona == nil {
		// Some responses return the persona object bare, without the wrapper key.
		persona = &models.PersonaInsight{}
		if err := json.Unmarshal([]byte(raw), persona); err != nil {
			return nil, &apperrors.ParseError{Kind: "persona", Err: err}
		}
	}
	if err := validation.Validate.Struct(persona); err != nil {
		return nil, &apperrors.ParseError{Kind: "persona", Err: err}
	}
	return persona, nil
}
