package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ValidationRule struct {
	Rule func(v *validator.Validate) error
}

// Validator is a wrapper around the actual validator
// It sets up the validator and extract the rule error message from the underlying error
type Validator struct {
	validator *validator.Validate
	rules     []ValidationRule
}

func NewValidator() *Validator {
	v := validator.New()
	return &Validator{validator: v}
}

func (v *Validator) Register(rules ...ValidationRule) error {
	for _, validationRule := range rules {
		if err := validationRule.Rule(v.validator); err != nil {
			return err
		}
	}
	v.rules = append(v.rules, rules...)
	return nil
}

// Struct validates s and flattens field errors into one ErrInvalidQuery.
func (v *Validator) Struct(s any) error {
	err := v.validator.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err
	}

	messages := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		messages = append(messages, fmt.Sprintf("%s: failed on %q (value %v)", strings.ToLower(fe.Field()), fe.Tag(), fe.Value()))
	}
	return NewErrInvalidQuery("%s", strings.Join(messages, "; "))
}

type ErrInvalidQuery struct {
	error
}

func NewErrInvalidQuery(format string, args ...any) *ErrInvalidQuery {
	return &ErrInvalidQuery{fmt.Errorf(format, args...)}
}
