package artifact

import "errors"

// Sentinel kinds for bundle loading.
var (
	ErrMissingField  = errors.New("artifact bundle missing required field")
	ErrInvalidBundle = errors.New("invalid artifact bundle")
	ErrRead          = errors.New("read artifact failed")
)
