package engine

import (
	"errors"
	"fmt"

	"github.com/SiriusScan/redis-tools/internal/store"
)

// Common errors
var (
	// ErrArgument reports a missing or malformed operation argument.
	ErrArgument = errors.New("invalid argument")
	// ErrKeyRequired reports that an operation was called without a key name.
	ErrKeyRequired = errors.New("key name is required")
	// ErrScanLimit is returned when a chunk sequence needs more round trips than
	// Options.MaxIterations allows, e.g. a scan cursor that never returns to 0.
	ErrScanLimit = errors.New("chunk sequence exceeded iteration limit")
)

// UnsupportedKindError is returned for a key whose type is none of the known kinds.
type UnsupportedKindError struct {
	Key  string
	Kind store.Kind
}

func (e *UnsupportedKindError) Error() string {
	return fmt.Sprintf("unsupported kind %q for key %q", e.Kind, e.Key)
}
