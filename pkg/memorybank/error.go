package memorybank

import "errors"

// ErrInvalidConfiguration is returned by New when the capacity or the
// stability threshold is out of range. It is not recoverable: no usable Bank
// is returned alongside it.
var ErrInvalidConfiguration = errors.New("invalid memory bank configuration")
