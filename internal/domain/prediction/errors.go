package prediction

import (
	"errors"
	"fmt"
)

// ErrPrediction is the sentinel kind matched by every *Error.
var ErrPrediction = errors.New("prediction failed")

// Error reports that the model call itself failed or produced an unusable
// output. Msg carries the underlying message; Err the cause, if any.
type Error struct {
	Model string
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s prediction failed: %s", e.Model, e.Msg)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is ErrPrediction.
func (e *Error) Is(target error) bool { return target == ErrPrediction }
