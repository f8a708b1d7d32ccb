package statevec

import (
	"fmt"

	"github.com/go-faster/errors"
)

var (
	ErrInvalidOperation            = errors.New("invalid operation")
	ErrNondeterministicMeasurement = errors.New("measurement outcome is not deterministic and no entropy source is set")
	ErrVanishingNorm               = errors.New("state norm vanished during collapse")
)

// DimensionError reports an index outside the register. It is a contract
// violation of the caller and aborts the run.
type DimensionError struct {
	Kind  string // "qubit" or "clbit"
	Index int
	Size  int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("%s index %d is out of range [0,%d)", e.Kind, e.Index, e.Size)
}

// IsDimensionError reports whether err wraps a *DimensionError.
func IsDimensionError(err error) bool {
	var de *DimensionError
	return errors.As(err, &de)
}
