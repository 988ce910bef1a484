package domain

import (
	"fmt"
	"strings"
)

// FieldError describes a single invalid field in an input. Field is a path
// into the input payload, Message explains the violation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors aggregates every field violation found in one input. An
// input that fails validation produces no store mutation.
type ValidationErrors struct {
	Fields []FieldError `json:"fields"`
}

func (e ValidationErrors) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Error()
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NotFoundError reports that no record exists under the requested identifier.
// It is the explicit absent signal, distinct from a validation failure.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// LifecycleError reports an alert status change rejected by the lifecycle
// guard.
type LifecycleError struct {
	ID   string
	From AlertStatus
	To   AlertStatus
}

func (e LifecycleError) Error() string {
	return fmt.Sprintf("alert %s cannot move from %s to %s", e.ID, e.From, e.To)
}
