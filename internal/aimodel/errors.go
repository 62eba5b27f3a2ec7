package aimodel

import (
	"errors"
	"fmt"
)

// Error categories for model selection.
var (
	// ErrConfiguration indicates the catalog cannot serve a budget mode or
	// contains out-of-range values. Fatal at startup, never retried.
	ErrConfiguration = errors.New("model catalog misconfigured")

	// ErrValidation indicates malformed caller input such as a quality
	// priority outside [0,10] or an unknown budget mode.
	ErrValidation = errors.New("invalid selection input")
)

// SelectionError carries the context of a failed selection or catalog build.
type SelectionError struct {
	// Err is one of the sentinel errors above.
	Err error

	// Field names the offending input or catalog entry.
	Field string

	// Value is the rejected value, formatted for humans.
	Value string

	// Message is an optional detail line.
	Message string
}

func (e *SelectionError) Error() string {
	msg := e.Err.Error()
	if e.Field != "" {
		msg += ": " + e.Field
		if e.Value != "" {
			msg += "=" + e.Value
		}
	}
	if e.Message != "" {
		msg += " (" + e.Message + ")"
	}
	return msg
}

func (e *SelectionError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is a caller input error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsConfiguration reports whether err is a catalog configuration error.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

func validationError(field string, value any, msg string) *SelectionError {
	return &SelectionError{Err: ErrValidation, Field: field, Value: fmt.Sprint(value), Message: msg}
}

func configurationError(field string, value any, msg string) *SelectionError {
	return &SelectionError{Err: ErrConfiguration, Field: field, Value: fmt.Sprint(value), Message: msg}
}
