// Package recbatch groups text records into bounded batches.
//
// Example usage:
//
//	p, err := recbatch.New(recbatch.Policy{
//	    MaxRecordSizeMB:   1,
//	    MaxBatchSizeMB:    5,
//	    MaxRecordsInBatch: 500,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, b := range p.Batchify(records) {
//	    send(b.Records)
//	}
package recbatch

import (
	"github.com/bft-labs/recbatch/internal/domain"
	"github.com/bft-labs/recbatch/internal/partition"
)

// Policy holds the three batching limits. Sizes are in decimal megabytes.
type Policy = domain.Policy

// Batch is an ordered group of records within the policy limits.
type Batch = domain.Batch

// BatchSet is the ordered result of one run.
type BatchSet = domain.BatchSet

// Partitioner splits records into batches. It is safe for concurrent use.
type Partitioner = partition.Partitioner

// Result carries batches plus the records that were discarded.
type Result = partition.Result

// Megabyte is the number of bytes in one policy megabyte.
const Megabyte = domain.Megabyte

// ErrInvalidPolicy is returned by New when a limit is unusable.
var ErrInvalidPolicy = domain.ErrInvalidPolicy

// New creates a Partitioner after validating p.
func New(p Policy) (*Partitioner, error) {
	return partition.New(p)
}

// DefaultPolicy returns 1 MB records, 5 MB batches, 500 records per batch.
func DefaultPolicy() Policy {
	return domain.DefaultPolicy()
}

// Batchify splits records with the default policy.
func Batchify(records []string) BatchSet {
	return partition.Default().Batchify(records)
}
