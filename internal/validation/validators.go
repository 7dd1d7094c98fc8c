package validation

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/soundlens/soundlens/internal/models"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Register custom validators for enums
	if err := Validate.RegisterValidation("insight_category", validateInsightCategory); err != nil {
		panic(fmt.Sprintf("failed to register insight_category validator: %v", err))
	}
}

// validateInsightCategory validates that a string is a valid InsightCategory enum value
func validateInsightCategory(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	switch models.InsightCategory(value) {
	case models.CategoryTemporal, models.CategoryMood, models.CategoryGenre, models.CategoryBehavior:
		return true
	default:
		return false
	}
}
