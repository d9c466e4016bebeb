package gate

import "errors"

// ErrInvalidConfig is returned when a benchmark Config cannot be run.
var ErrInvalidConfig = errors.New("invalid benchmark config")
