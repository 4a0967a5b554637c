package lshdedup

import (
	"errors"
	"fmt"

	"github.com/hupe1980/lshdedup/dedup"
	"github.com/hupe1980/lshdedup/internal/resource"
	"github.com/hupe1980/lshdedup/lsh"
)

var (
	// ErrInvalidConfig is returned when num_perm, num_bands or the threshold
	// cannot be used. It is returned before any signature work.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvariantViolation is returned when the clustering pass detects
	// corrupted bookkeeping or the result is not a partition of the corpus.
	ErrInvariantViolation = errors.New("clustering invariant violated")

	// ErrMemoryLimitExceeded is returned when the signature matrix does not
	// fit the configured memory limit.
	ErrMemoryLimitExceeded = errors.New("memory limit exceeded")

	// ErrNotFound is returned by SearchBuilder.First when nothing matches.
	ErrNotFound = errors.New("not found")

	// ErrTooManyRecords is returned when a corpus has more than 2^32-1 records.
	ErrTooManyRecords = errors.New("too many records")
)

// ConfigError names the configuration field that was rejected.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ConfigError struct {
	Field  string
	Reason string
	cause  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is reports ErrInvalidConfig.
func (e *ConfigError) Is(target error) bool { return target == ErrInvalidConfig }

func (e *ConfigError) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var ce *lsh.ConfigError
	if errors.As(err, &ce) {
		return &ConfigError{Field: ce.Field, Reason: ce.Reason, cause: err}
	}
	if errors.Is(err, lsh.ErrInvalidConfig) {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if errors.Is(err, dedup.ErrInvariantViolation) {
		return fmt.Errorf("%w: %w", ErrInvariantViolation, err)
	}
	if errors.Is(err, resource.ErrMemoryLimitExceeded) {
		return fmt.Errorf("%w: %w", ErrMemoryLimitExceeded, err)
	}
	if errors.Is(err, lsh.ErrTooManyRecords) {
		return fmt.Errorf("%w: %w", ErrTooManyRecords, err)
	}

	return err
}
