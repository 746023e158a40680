package valueobjects

import (
	"errors"

	"github.com/google/uuid"
)

// NewID generates a new random entity identifier.
// Ids are globally unique and stable for an entity's lifetime; every
// command and store addresses entities by these strings only.
func NewID() string {
	return uuid.New().String()
}

// ValidateID checks that an id is a well-formed UUID string
func ValidateID(id string) error {
	if id == "" {
		return errors.New("id cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return errors.New("id must be a valid UUID")
	}
	return nil
}

// IsValidID reports whether id is a well-formed UUID string
func IsValidID(id string) bool {
	return ValidateID(id) == nil
}
