package scene

import "github.com/google/uuid"

// NewID returns a fresh object identity.
func NewID() string {
	return uuid.NewString()
}
