// Package apperr defines the error taxonomy shared by the service, HTTP and
// MCP layers.
package apperr

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrValidation  = errors.New("validation failed")
	ErrCyclicGraph = errors.New("cyclic graph")
)

// ValidationError lists the offending fields of a rejected write.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Is makes errors.Is(err, ErrValidation) true for any *ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid returns a ValidationError for a single field.
func Invalid(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// FromValidation converts ozzo-validation errors into a ValidationError.
// Errors that are not field errors are returned wrapped unchanged.
func FromValidation(err error) error {
	if err == nil {
		return nil
	}
	var errs validation.Errors
	if !errors.As(err, &errs) {
		var internal validation.InternalError
		if errors.As(err, &internal) {
			return fmt.Errorf("validation: %w", err)
		}
		return &ValidationError{Fields: map[string]string{"": err.Error()}}
	}
	out := &ValidationError{Fields: make(map[string]string, len(errs))}
	for field, fe := range errs {
		out.Fields[field] = fe.Error()
	}
	return out
}
