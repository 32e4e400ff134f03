// Package validation checks account form input before it is sent to the backend.
package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/minboot/ats-web/internal/domain/model"
)

// Validator is a function that validates a string value and returns an error message if invalid.
type Validator func(v string) string

// Required validates that a field is not empty and does not exceed maxLen characters.
// Uses rune count for proper Unicode support.
func Required(fieldName string, maxLen int) Validator {
	return func(v string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return fieldName + " is required."
		}
		if utf8.RuneCountInString(v) > maxLen {
			return fmt.Sprintf("%s cannot exceed %d characters.", fieldName, maxLen)
		}
		return ""
	}
}

// Optional validates that an optional field does not exceed maxLen characters if provided.
func Optional(fieldName string, maxLen int) Validator {
	return func(v string) string {
		if utf8.RuneCountInString(strings.TrimSpace(v)) > maxLen {
			return fmt.Sprintf("%s cannot exceed %d characters.", fieldName, maxLen)
		}
		return ""
	}
}

// Email validates a single address. Empty values pass; combine with Required.
func Email() Validator {
	return func(v string) string {
		v = strings.TrimSpace(v)
		if v == "" || model.ValidEmail(v) {
			return ""
		}
		return "Enter a valid email address."
	}
}

// Password validates a new password's length. Empty values pass; combine with Required.
func Password(minLen int) Validator {
	return func(v string) string {
		if v == "" || utf8.RuneCountInString(v) >= minLen {
			return ""
		}
		return fmt.Sprintf("Password must be at least %d characters.", minLen)
	}
}

// Matches validates that a confirmation field equals the original value.
func Matches(other, message string) Validator {
	return func(v string) string {
		if v != other {
			return message
		}
		return ""
	}
}

// Phrase validates that the visitor typed an exact confirmation phrase.
func Phrase(phrase string) Validator {
	return func(v string) string {
		if strings.TrimSpace(v) != phrase {
			return fmt.Sprintf("Type %q to confirm.", phrase)
		}
		return ""
	}
}

// OneOf validates that a field matches one of the provided options exactly.
func OneOf(fieldName string, options []string) Validator {
	return func(v string) string {
		v = strings.TrimSpace(v)
		for _, opt := range options {
			if v == opt {
				return ""
			}
		}
		return "Choose a " + strings.ToLower(fieldName) + "."
	}
}

// FieldValidator provides a fluent API for validating multiple fields.
type FieldValidator struct {
	errors map[string]string
}

// New creates a new FieldValidator instance.
func New() *FieldValidator {
	return &FieldValidator{errors: make(map[string]string)}
}

// Validate validates a field with one or more validators.
// It stops at the first error for each field.
func (fv *FieldValidator) Validate(field, value string, validators ...Validator) *FieldValidator {
	for _, v := range validators {
		if err := v(value); err != "" {
			fv.errors[field] = err
			break
		}
	}
	return fv
}

// Add records an error computed outside a Validator. Existing errors are kept.
func (fv *FieldValidator) Add(field, message string) *FieldValidator {
	if _, ok := fv.errors[field]; !ok && message != "" {
		fv.errors[field] = message
	}
	return fv
}

// Errors returns the accumulated validation errors.
func (fv *FieldValidator) Errors() map[string]string {
	return fv.errors
}

// Valid reports whether no errors were recorded.
func (fv *FieldValidator) Valid() bool { return len(fv.errors) == 0 }
