// Package validator provides validation infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package validator

import (
	"errors"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	yearMonthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)
	monthKeyPattern  = regexp.MustCompile(`^\d{4}_(0[1-9]|1[0-2])$`)
)

// Validator wraps the go-playground validator for structured validation.
type Validator struct {
	v *validator.Validate
}

// New creates a Validator with the shared custom tags registered:
// "yearmonth" (2026-01) and "monthkey" (2026_01).
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("yearmonth", func(fl validator.FieldLevel) bool {
		return yearMonthPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("monthkey", func(fl validator.FieldLevel) bool {
		return monthKeyPattern.MatchString(fl.Field().String())
	})
	return &Validator{v: v}
}

// Struct validates a struct based on validation tags.
func (val *Validator) Struct(s interface{}) error {
	return val.v.Struct(s)
}

// Var validates a single variable against a tag.
func (val *Validator) Var(field interface{}, tag string) error {
	return val.v.Var(field, tag)
}

// FieldErrors flattens validation errors into field -> failed tag.
// It returns nil for errors that are not validation errors.
func FieldErrors(err error) map[string]string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return nil
	}
	out := make(map[string]string, len(errs))
	for _, fe := range errs {
		out[fe.Field()] = fe.Tag()
	}
	return out
}
