package lsh

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is returned when the banding configuration is unusable.
	ErrInvalidConfig = errors.New("lsh: invalid configuration")

	// ErrTooManyRecords is returned when a corpus does not fit 32-bit record ids.
	ErrTooManyRecords = errors.New("lsh: too many records")

	// ErrUnknownRecord is returned when querying a record id that is not indexed.
	ErrUnknownRecord = errors.New("lsh: unknown record")

	// ErrSignatureLength is returned when a query signature does not have NumPerm values.
	ErrSignatureLength = errors.New("lsh: signature length mismatch")
)

// ConfigError describes which configuration field is invalid.
//
// It matches ErrInvalidConfig with errors.Is.
type ConfigError struct {
	Field  string
	Value  int
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("lsh: invalid %s %d: %s", e.Field, e.Value, e.Reason)
}

// Unwrap returns ErrInvalidConfig.
func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

// Config holds the banding parameters. It is everything needed to reproduce
// the signatures of an index besides the shingler.
type Config struct {
	// NumPerm is the signature length.
	NumPerm int
	// NumBands is the number of bands; it must divide NumPerm.
	NumBands int
	// Seed derives the MinHash permutations.
	Seed uint64
}

// DefaultConfig returns the configuration used by the batch tool:
// 128 permutations in 16 bands of 8 rows.
func DefaultConfig() Config {
	return Config{NumPerm: 128, NumBands: 16}
}

// Validate checks that both counts are positive and that NumBands divides NumPerm.
func (c Config) Validate() error {
	if c.NumPerm <= 0 {
		return &ConfigError{Field: "num_perm", Value: c.NumPerm, Reason: "must be positive"}
	}
	if c.NumBands <= 0 {
		return &ConfigError{Field: "num_bands", Value: c.NumBands, Reason: "must be positive"}
	}
	if c.NumPerm%c.NumBands != 0 {
		return &ConfigError{
			Field:  "num_bands",
			Value:  c.NumBands,
			Reason: fmt.Sprintf("must divide num_perm %d", c.NumPerm),
		}
	}
	return nil
}

// Rows returns the band width r = NumPerm / NumBands.
func (c Config) Rows() int {
	if c.NumBands <= 0 {
		return 0
	}
	return c.NumPerm / c.NumBands
}
