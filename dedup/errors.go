package dedup

import (
	"errors"
	"fmt"
)

// ErrInvariantViolation is returned when the clustering bookkeeping is
// inconsistent. The pass is aborted and no result is returned.
var ErrInvariantViolation = errors.New("dedup: invariant violation")

// InvariantError reports a cluster that was referenced but is not live.
type InvariantError struct {
	Cluster uint64
	Record  uint32
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("dedup: record %d references cluster %d which is not live", e.Record, e.Cluster)
}

// Unwrap returns ErrInvariantViolation.
func (e *InvariantError) Unwrap() error { return ErrInvariantViolation }
