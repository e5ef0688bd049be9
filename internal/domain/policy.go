package domain

import (
	"fmt"
	"math"
)

// Megabyte is the number of bytes in one policy megabyte (decimal, not 1<<20).
const Megabyte = 1_000_000

// MaxLimitMB is the largest accepted size limit. Running batch sums stay
// below twice the batch limit, so twice this value must still fit an int.
const MaxLimitMB = float64(math.MaxInt / (2 * Megabyte))

// Default policy limits.
const (
	DefaultMaxRecordSizeMB   = 1
	DefaultMaxBatchSizeMB    = 5
	DefaultMaxRecordsInBatch = 500
)

// Policy holds the limits governing batch formation.
type Policy struct {
	// MaxRecordSizeMB is the per-record ceiling. Larger records are discarded.
	// Fractional values are allowed (0.5 is 500,000 bytes).
	MaxRecordSizeMB float64 `json:"max_record_size_in_mb" toml:"max_record_size_in_mb" yaml:"max_record_size_in_mb"`

	// MaxBatchSizeMB is the ceiling on the summed byte size of one batch.
	MaxBatchSizeMB float64 `json:"max_batch_size_in_mb" toml:"max_batch_size_in_mb" yaml:"max_batch_size_in_mb"`

	// MaxRecordsInBatch is the ceiling on the number of records in one batch.
	MaxRecordsInBatch int `json:"max_records_in_batch" toml:"max_records_in_batch" yaml:"max_records_in_batch"`
}

// DefaultPolicy returns the documented defaults: 1 MB records, 5 MB batches,
// 500 records per batch.
func DefaultPolicy() Policy {
	return Policy{
		MaxRecordSizeMB:   DefaultMaxRecordSizeMB,
		MaxBatchSizeMB:    DefaultMaxBatchSizeMB,
		MaxRecordsInBatch: DefaultMaxRecordsInBatch,
	}
}

// Validate reports an error wrapping ErrInvalidPolicy if any limit is not
// positive, a size limit is above MaxLimitMB, or the record limit is larger
// than the batch limit.
func (p Policy) Validate() error {
	if err := validateSizeMB("max_record_size_in_mb", p.MaxRecordSizeMB); err != nil {
		return err
	}
	if err := validateSizeMB("max_batch_size_in_mb", p.MaxBatchSizeMB); err != nil {
		return err
	}
	if p.MaxRecordsInBatch <= 0 {
		return fmt.Errorf("%w: max_records_in_batch must be positive, got %d", ErrInvalidPolicy, p.MaxRecordsInBatch)
	}
	// An admitted record must always fit an empty batch.
	if p.MaxRecordSizeMB > p.MaxBatchSizeMB {
		return fmt.Errorf("%w: max_record_size_in_mb (%g) exceeds max_batch_size_in_mb (%g)",
			ErrInvalidPolicy, p.MaxRecordSizeMB, p.MaxBatchSizeMB)
	}
	return nil
}

func validateSizeMB(name string, mb float64) error {
	// !(mb > 0) also catches NaN.
	if !(mb > 0) {
		return fmt.Errorf("%w: %s must be positive, got %g", ErrInvalidPolicy, name, mb)
	}
	if mb > MaxLimitMB {
		return fmt.Errorf("%w: %s must be at most %g, got %g", ErrInvalidPolicy, name, MaxLimitMB, mb)
	}
	return nil
}

// MaxRecordBytes returns the per-record limit in bytes. Fractional bytes are
// dropped: an integer size exceeds x exactly when it exceeds floor(x).
func (p Policy) MaxRecordBytes() int {
	return mbToBytes(p.MaxRecordSizeMB)
}

// MaxBatchBytes returns the per-batch size limit in bytes.
func (p Policy) MaxBatchBytes() int {
	return mbToBytes(p.MaxBatchSizeMB)
}

func mbToBytes(mb float64) int {
	return int(math.Floor(mb * Megabyte))
}
