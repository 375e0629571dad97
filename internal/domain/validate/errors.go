package validate

import (
	"errors"
	"fmt"
	"strings"
)

// ErrValidation is the sentinel kind matched by every *Error.
var ErrValidation = errors.New("validation failed")

// Violation names a field and the constraint it broke.
type Violation struct {
	Field      string `json:"field"`
	Constraint string `json:"constraint"`
}

// Error is returned when a request fails its schema. It lists every violation
// in schema field order.
type Error struct {
	Schema     string
	Violations []Violation
}

func (e *Error) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = fmt.Sprintf("%s %s", v.Field, v.Constraint)
	}
	return fmt.Sprintf("invalid %s request: %s", e.Schema, strings.Join(parts, "; "))
}

// Is reports whether target is ErrValidation.
func (e *Error) Is(target error) bool { return target == ErrValidation }

// Fields returns the names of the offending fields.
func (e *Error) Fields() []string {
	out := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		out[i] = v.Field
	}
	return out
}
