// Package partition splits an ordered sequence of text records into batches.
//
// A [Partitioner] holds an immutable [domain.Policy] with three limits: the
// maximum size of one record, the maximum summed size of one batch, and the
// maximum number of records in one batch. Partitioning is a single greedy
// forward pass:
//
//   - records larger than the per-record limit are discarded
//   - the current batch is closed when it already holds the maximum count
//   - the current batch is closed when the next record would push it past
//     the size limit
//   - the last batch is flushed at end of input
//
// Input order is preserved and no batch is ever empty.
//
// # Usage
//
//	p, err := partition.New(domain.Policy{
//	    MaxRecordSizeMB:   1,
//	    MaxBatchSizeMB:    5,
//	    MaxRecordsInBatch: 500,
//	})
//	if err != nil {
//	    return err
//	}
//	batches := p.Batchify(records)
//
// For inputs too large to hold in memory, [Partitioner.Stream] pulls records
// one at a time and emits each batch as soon as it closes.
//
// A Partitioner keeps no state between calls, so a single instance may be
// shared by concurrent callers.
package partition
