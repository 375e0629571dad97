package features

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingFeature is the sentinel kind matched by *MissingFeatureError.
var ErrMissingFeature = errors.New("missing numeric feature")

// MissingFeatureError reports scaler columns absent after renaming. It points
// at a mismatch between the request schema and the artifact, not at the caller.
type MissingFeatureError struct {
	Missing []string
}

func (e *MissingFeatureError) Error() string {
	return fmt.Sprintf("missing numeric columns in input: %s", strings.Join(e.Missing, ", "))
}

// Is reports whether target is ErrMissingFeature.
func (e *MissingFeatureError) Is(target error) bool { return target == ErrMissingFeature }
