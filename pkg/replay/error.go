package replay

import "errors"

// ErrInvalidConfiguration is returned by New when the capacity or a scoring
// weight is out of range.
var ErrInvalidConfiguration = errors.New("invalid replay buffer configuration")
