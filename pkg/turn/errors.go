package turn

import (
	"errors"
	"fmt"
)

const (
	ErrorInvalidArgument = "invalid_argument"
	ErrorInvalidState    = "invalid_state"
	ErrorTypeMismatch    = "type_mismatch"
)

// Error represents a stable, categorized turn-dispatch failure.
//
// Adapter (transport) errors are never wrapped into this type; they pass
// through Send/Update/Delete unmodified.
type Error struct {
	Category string
	Detail   string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Detail == "" {
		return e.Category
	}

	return fmt.Sprintf("%s: %s", e.Category, e.Detail)
}

// NewError creates a categorized turn error.
func NewError(category string, detail string) error {
	return &Error{Category: category, Detail: detail}
}

// CategoryFromError returns the stable category for an error when available.
func CategoryFromError(err error) string {
	if err == nil {
		return ""
	}

	var categorized *Error
	if errors.As(err, &categorized) {
		return categorized.Category
	}

	return ""
}
