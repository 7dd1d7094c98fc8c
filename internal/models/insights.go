package models

// InsightCategory classifies a habit insight.
type InsightCategory string

const (
	CategoryTemporal InsightCategory = "temporal"
	CategoryMood     InsightCategory = "mood"
	CategoryGenre    InsightCategory = "genre"
	CategoryBehavior InsightCategory = "behavior"
)

// HabitInsight is one generated observation about listening habits.
type HabitInsight struct {
	Title       string          `json:"title" validate:"required"`
	Description string          `json:"description" validate:"required"`
	Confidence  int             `json:"confidence" validate:"min=0,max=100"`
	Category    InsightCategory `json:"category" validate:"insight_category"`
}

// PersonaInsight is the generated listener persona.
type PersonaInsight struct {
	Archetype       string   `json:"archetype" validate:"required"`
	Personality     string   `json:"personality" validate:"required"`
	ListeningStyle  string   `json:"listening_style" validate:"required"`
	Recommendations []string `json:"recommendations" validate:"len=3,dive,required"`
}
