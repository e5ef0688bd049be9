package partition

import "github.com/bft-labs/recbatch/internal/domain"

// Accumulator holds the state of one partitioning run: the open batch and
// its running byte size. It is not safe for concurrent use; create one per run
// with [Partitioner.NewAccumulator].
type Accumulator struct {
	batch          *domain.Batch
	maxRecordBytes int
	maxBatchBytes  int
	maxRecords     int
}

func newAccumulator(p domain.Policy) *Accumulator {
	return &Accumulator{
		batch:          domain.NewBatch(),
		maxRecordBytes: p.MaxRecordBytes(),
		maxBatchBytes:  p.MaxBatchBytes(),
		maxRecords:     p.MaxRecordsInBatch,
	}
}

// Offer adds a record to the open batch, calling emit for any batch that
// closes first. It returns false without touching the batch when the record
// exceeds the per-record limit.
func (a *Accumulator) Offer(record string, emit func(domain.Batch) error) (bool, error) {
	size := domain.ByteLen(record)

	if size > a.maxRecordBytes {
		return false, nil
	}

	// Make sure the batch isn't full
	if a.batch.Size() >= a.maxRecords {
		if err := a.close(emit); err != nil {
			return true, err
		}
	}

	// Checked after the count close, against the possibly reset counter
	if !a.batch.Fits(size, a.maxBatchBytes) {
		if err := a.close(emit); err != nil {
			return true, err
		}
	}

	a.batch.Add(record)
	return true, nil
}

// Flush closes the open batch. Flushing an empty batch emits nothing.
func (a *Accumulator) Flush(emit func(domain.Batch) error) error {
	return a.close(emit)
}

func (a *Accumulator) close(emit func(domain.Batch) error) error {
	if a.batch.Empty() {
		return nil
	}
	closed := domain.Batch{Records: a.batch.Records, TotalBytes: a.batch.TotalBytes}
	a.batch.Reset()
	return emit(closed)
}
