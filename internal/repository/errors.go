package repository

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when no workflow exists for the given id.
var ErrNotFound = errors.New("workflow not found")

// ValidationError reports a rejected field on create or update.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}
