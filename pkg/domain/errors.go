package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors matched with errors.Is against the typed errors below.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
)

// FieldError describes a single rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports missing or malformed input, including foreign keys
// that do not resolve to a live parent. No mutation accompanies it.
type ValidationError struct {
	Entity  EntityType
	Message string
	Fields  []FieldError
}

func (e ValidationError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Entity))
	b.WriteString(": ")
	if e.Message != "" {
		b.WriteString(e.Message)
	} else {
		b.WriteString("invalid input")
	}
	for i, f := range e.Fields {
		if i == 0 {
			b.WriteString(" (")
		} else {
			b.WriteString("; ")
		}
		b.WriteString(f.Field)
		b.WriteString(": ")
		b.WriteString(f.Message)
		if i == len(e.Fields)-1 {
			b.WriteString(")")
		}
	}
	return b.String()
}

// Is lets errors.Is(err, ErrValidation) match.
func (e ValidationError) Is(target error) bool { return target == ErrValidation }

// HasField reports whether the named field was rejected.
func (e ValidationError) HasField(name string) bool {
	for _, f := range e.Fields {
		if f.Field == name {
			return true
		}
	}
	return false
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(entity EntityType, field, message string) ValidationError {
	return ValidationError{
		Entity:  entity,
		Message: message,
		Fields:  []FieldError{{Field: field, Message: message}},
	}
}

// NotFoundError is returned when an operation targets an absent id.
type NotFoundError struct {
	Entity EntityType
	ID     string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

// Is lets errors.Is(err, ErrNotFound) match.
func (e NotFoundError) Is(target error) bool { return target == ErrNotFound }

// InvalidStateError is returned when an action is not permitted from the
// entity's current state, such as approving an annex that is already Active.
type InvalidStateError struct {
	Entity EntityType
	ID     string
	From   string
	Action string
}

func (e InvalidStateError) Error() string {
	return fmt.Sprintf("%s %q: cannot %s from status %s", e.Entity, e.ID, e.Action, e.From)
}

// Is lets errors.Is(err, ErrInvalidState) match.
func (e InvalidStateError) Is(target error) bool { return target == ErrInvalidState }
