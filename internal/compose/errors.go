package compose

import (
	"errors"
	"fmt"
)

// ErrConfig marks configuration problems detected while composing a
// network. Composition aborts before any simulation step runs.
var ErrConfig = errors.New("invalid network configuration")

// ErrNotSupported marks composition entry points that exist for interface
// parity but are deliberately not implemented.
var ErrNotSupported = errors.New("not supported")

func configErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfig, fmt.Sprintf(format, args...))
}
