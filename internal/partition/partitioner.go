package partition

import (
	"context"
	"fmt"

	"github.com/bft-labs/recbatch/internal/domain"
)

// Partitioner groups records into batches according to a fixed policy.
type Partitioner struct {
	policy domain.Policy
}

// Result is the outcome of [Partitioner.Partition].
type Result struct {
	// Batches are the closed batches in the order they closed.
	Batches domain.BatchSet

	// Discarded are the records that exceeded the per-record limit, in input order.
	Discarded []string

	Stats Stats
}

// Stats counts what happened during one run.
type Stats struct {
	Records        int   // records read
	Admitted       int   // records placed in a batch
	Discarded      int   // records over the per-record limit
	Batches        int   // batches emitted
	AdmittedBytes  int64 // bytes placed in batches
	DiscardedBytes int64 // bytes dropped by the per-record limit
}

// NextFunc yields the next record. It returns ok=false at end of input.
type NextFunc func() (record string, ok bool, err error)

// New creates a Partitioner, failing fast with an error wrapping
// domain.ErrInvalidPolicy when a limit is unusable.
func New(p domain.Policy) (*Partitioner, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Partitioner{policy: p}, nil
}

// Default returns a Partitioner using domain.DefaultPolicy.
func Default() *Partitioner {
	return &Partitioner{policy: domain.DefaultPolicy()}
}

// Policy returns the limits this Partitioner applies.
func (p *Partitioner) Policy() domain.Policy {
	return p.policy
}

// NewAccumulator returns fresh per-run state for incremental partitioning.
func (p *Partitioner) NewAccumulator() *Accumulator {
	return newAccumulator(p.policy)
}

// Batchify splits records into batches. Oversized records are silently
// dropped; empty input or input where every record is dropped yields an empty
// BatchSet.
func (p *Partitioner) Batchify(records []string) domain.BatchSet {
	return p.Partition(records).Batches
}

// Partition is Batchify that also reports the discarded records.
func (p *Partitioner) Partition(records []string) Result {
	var res Result
	res.Batches = domain.BatchSet{}

	acc := p.NewAccumulator()
	collect := func(b domain.Batch) error {
		res.Batches = append(res.Batches, b)
		return nil
	}

	for _, record := range records {
		res.Stats.Records++
		// collect never fails
		admitted, _ := acc.Offer(record, collect)
		if !admitted {
			res.Discarded = append(res.Discarded, record)
			res.Stats.Discarded++
			res.Stats.DiscardedBytes += int64(domain.ByteLen(record))
			continue
		}
		res.Stats.Admitted++
		res.Stats.AdmittedBytes += int64(domain.ByteLen(record))
	}
	_ = acc.Flush(collect)

	res.Stats.Batches = len(res.Batches)
	return res
}

// Stream partitions records pulled from next, calling emit for each batch as
// soon as it closes and discard (if non-nil) for each dropped record. Memory
// use is bounded by one batch. It stops at the first error from next, emit or
// discard, and between records when ctx is done. The batch open at the time
// of an error is not emitted.
func (p *Partitioner) Stream(ctx context.Context, next NextFunc, emit func(domain.Batch) error, discard func(string) error) (Stats, error) {
	var stats Stats

	acc := p.NewAccumulator()
	counted := func(b domain.Batch) error {
		if err := emit(b); err != nil {
			return fmt.Errorf("emit batch %d: %w", stats.Batches, err)
		}
		stats.Batches++
		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		record, ok, err := next()
		if err != nil {
			return stats, fmt.Errorf("read record %d: %w", stats.Records, err)
		}
		if !ok {
			break
		}
		stats.Records++

		admitted, err := acc.Offer(record, counted)
		if err != nil {
			return stats, err
		}
		if !admitted {
			stats.Discarded++
			stats.DiscardedBytes += int64(domain.ByteLen(record))
			if discard != nil {
				if err := discard(record); err != nil {
					return stats, fmt.Errorf("discard record %d: %w", stats.Records-1, err)
				}
			}
			continue
		}
		stats.Admitted++
		stats.AdmittedBytes += int64(domain.ByteLen(record))
	}

	if err := acc.Flush(counted); err != nil {
		return stats, err
	}
	return stats, nil
}

// SliceSource adapts an in-memory slice to a NextFunc.
func SliceSource(records []string) NextFunc {
	i := 0
	return func() (string, bool, error) {
		if i >= len(records) {
			return "", false, nil
		}
		r := records[i]
		i++
		return r, true, nil
	}
}
