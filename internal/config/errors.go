package config

import "errors"

// ErrInvalidConfig wraps every Validate failure; the message names the key.
var ErrInvalidConfig = errors.New("medalcast: invalid configuration")

// ErrLoadConfig wraps failures reading the MEDALCAST_CONFIG file or the
// MEDALCAST_ environment.
var ErrLoadConfig = errors.New("medalcast: cannot load configuration")
