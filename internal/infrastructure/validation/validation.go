// Package validation checks command structs before they reach the domain.
package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/erp/retailcore/internal/domain/shared"
	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func engine() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
		// Use JSON tag names for field names in errors
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// FieldError describes one failed constraint
type FieldError struct {
	Field   string
	Message string
}

// Struct validates s and returns an INVALID_INPUT domain error listing the
// failing fields
func Struct(s any) error {
	err := engine().Struct(s)
	if err == nil {
		return nil
	}
	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return shared.Errorf(shared.ErrInvalidInput, "Invalid request: %s", invalid.Error())
	}
	details := Details(err)
	parts := make([]string, len(details))
	for i, d := range details {
		parts[i] = d.Field + ": " + d.Message
	}
	return shared.Errorf(shared.ErrInvalidInput, "Request validation failed: %s", strings.Join(parts, "; "))
}

// Details flattens validator errors into field messages
func Details(err error) []FieldError {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}
	details := make([]FieldError, 0, len(validationErrors))
	for _, e := range validationErrors {
		details = append(details, FieldError{
			Field:   e.Field(),
			Message: message(e),
		})
	}
	return details
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "min":
		if e.Type().Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		return "Must be at least " + e.Param()
	case "max":
		if e.Type().Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "oneof":
		return "Must be one of: " + e.Param()
	case "gt":
		return "Must be greater than " + e.Param()
	case "gte":
		return "Must be greater than or equal to " + e.Param()
	case "ne":
		return "Must not be " + e.Param()
	case "required_if":
		return "This field is required when " + e.Param()
	case "excluded_if":
		return "This field must be empty when " + e.Param()
	default:
		return "Invalid value"
	}
}
