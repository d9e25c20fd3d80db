package scene

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks bad user-entered numeric, colour or dimension input.
	ErrValidation = errors.New("validation error")

	// ErrInapplicableField is returned when a property update names a field
	// the target object's variant does not carry.
	ErrInapplicableField = fmt.Errorf("%w: field not applicable to object", ErrValidation)

	// ErrCorruptCheckpoint is returned when a checkpoint payload does not
	// decode into a valid scene.
	ErrCorruptCheckpoint = errors.New("corrupt checkpoint")

	// ErrSerialization is returned when the scene cannot be encoded.
	ErrSerialization = errors.New("serialization failure")

	ErrDuplicateID = errors.New("duplicate object id")
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
