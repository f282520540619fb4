package validator

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kubev2v/rvtools-summary/internal/lifecycle"
	"github.com/kubev2v/rvtools-summary/internal/summary"
)

const dateLayout = "2006-01-02"

func registerFn(tag string, fn func(fl validator.FieldLevel) bool) func(v *validator.Validate) error {
	return func(v *validator.Validate) error {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("failed to register %q validation: %w", tag, err)
		}
		return nil
	}
}

// NewQueryValidationRules registers the tags used by API query parameters.
func NewQueryValidationRules() []ValidationRule {
	return []ValidationRule{
		{
			Rule: registerFn("support_mode", supportModeValidator),
		},
		{
			Rule: registerFn("iso_date", isoDateValidator),
		},
		{
			Rule: registerFn("scenario", scenarioValidator),
		},
	}
}

func supportModeValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	_, err := lifecycle.ParseMode(val)
	return err == nil
}

func isoDateValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	_, err := time.Parse(dateLayout, val)
	return err == nil
}

func scenarioValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(int)
	if !ok {
		return false
	}
	_, err := summary.ScenarioByID(val)
	return err == nil
}
