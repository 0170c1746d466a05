package spec

import (
	"errors"
	"fmt"
)

// ErrValidation is matched by every ValidationError.
var ErrValidation = errors.New("invalid specification")

// ValidationError reports a missing or malformed document field.
type ValidationError struct {
	Path   string // file the document was read from, may be empty
	Field  string // dotted field path, e.g. "config.base"
	Reason string
}

func (e *ValidationError) Error() string {
	loc := e.Field
	if e.Path != "" {
		loc = e.Path + ": " + e.Field
	}
	return fmt.Sprintf("invalid specification %s: %s", loc, e.Reason)
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
