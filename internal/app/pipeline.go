package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bft-labs/recbatch/internal/domain"
	"github.com/bft-labs/recbatch/internal/partition"
	"github.com/bft-labs/recbatch/internal/sink"
	"github.com/bft-labs/recbatch/internal/source"
	"github.com/bft-labs/recbatch/pkg/log"
)

// PipelineConfig contains the knobs of one Pipeline.
type PipelineConfig struct {
	Format         string // default record format for inputs
	MaxRetries     int    // send attempts after the first failure
	BackoffInitial time.Duration
	BackoffMax     time.Duration
}

// Pipeline reads records from a source, partitions them and hands each batch
// to a sink. Discarded records go to the dead-letter writer when one is set.
type Pipeline struct {
	cfg         PipelineConfig
	partitioner *partition.Partitioner
	sink        sink.Sink
	deadLetters *sink.DeadLetterWriter
	logger      log.Logger
}

// Report summarises one processed input.
type Report struct {
	Source      string
	Stats       partition.Stats
	Skipped     int // lines too long to read, counted in Stats.Discarded too
	DeadLetters int // dead letters written for this input
	Retries     int
	Duration    time.Duration
}

// NewPipeline wires a pipeline. deadLetters and logger may be nil.
func NewPipeline(cfg PipelineConfig, p *partition.Partitioner, s sink.Sink, deadLetters *sink.DeadLetterWriter, logger log.Logger) *Pipeline {
	if logger == nil {
		logger = log.Noop()
	}
	if cfg.BackoffInitial <= 0 {
		cfg.BackoffInitial = DefaultBackoffInitial
	}
	if cfg.BackoffMax <= 0 {
		cfg.BackoffMax = DefaultBackoffMax
	}
	if cfg.Format == "" {
		cfg.Format = source.FormatLines
	}
	return &Pipeline{
		cfg:         cfg,
		partitioner: p,
		sink:        s,
		deadLetters: deadLetters,
		logger:      logger,
	}
}

// ProcessFile partitions the file at path ("-" for stdin).
func (p *Pipeline) ProcessFile(ctx context.Context, path string) (Report, error) {
	name := path
	if path == "" || path == "-" {
		name = "stdin"
	}

	var skipped []skippedLine
	onSkip := func(line, size int) {
		skipped = append(skipped, skippedLine{line: line, size: size})
	}

	r, closeFn, err := source.Open(path, source.FormatForPath(path, p.cfg.Format), p.partitioner.Policy().MaxRecordBytes(), onSkip)
	if err != nil {
		return Report{Source: name}, err
	}
	defer closeFn()

	return p.process(ctx, name, r, &skipped)
}

// Process partitions records read from r.
func (p *Pipeline) Process(ctx context.Context, name string, r source.Reader) (Report, error) {
	return p.process(ctx, name, r, nil)
}

type skippedLine struct {
	line, size int
}

func (p *Pipeline) process(ctx context.Context, name string, r source.Reader, skipped *[]skippedLine) (Report, error) {
	start := time.Now()
	rep := Report{Source: name}
	dlqBefore := p.deadLetterCount()

	// Lines skipped by the reader are dead-lettered as soon as Next returns,
	// keeping the dead-letter file in input order.
	drain := func() error {
		if skipped == nil {
			return nil
		}
		for _, s := range *skipped {
			rep.Skipped++
			p.logger.Debug("record over size limit, not read",
				log.String("source", name), log.Int("line", s.line), log.Int("bytes", s.size))
			if p.deadLetters != nil {
				if err := p.deadLetters.Write(sink.DeadLetter{
					Source:    name,
					Line:      s.line,
					ByteLen:   s.size,
					Reason:    sink.ReasonRecordTooLarge,
					Truncated: true,
				}); err != nil {
					return err
				}
			}
		}
		*skipped = (*skipped)[:0]
		return nil
	}

	next := func() (string, bool, error) {
		rec, ok, err := r.Next()
		if derr := drain(); derr != nil {
			return "", false, derr
		}
		return rec, ok, err
	}

	seq := 0
	back := newBackoff(p.cfg.BackoffInitial, p.cfg.BackoffMax)
	emit := func(b domain.Batch) error {
		env := sink.NewEnvelope(name, seq, b)
		retries, err := p.send(ctx, env, back)
		rep.Retries += retries
		if err != nil {
			return err
		}
		p.logger.Debug("batch sent",
			log.String("id", env.ID), log.Int("records", env.Count), log.Int("bytes", env.TotalBytes))
		seq++
		return nil
	}

	discard := func(record string) error {
		size := domain.ByteLen(record)
		p.logger.Debug("record over size limit, discarded", log.String("source", name), log.Int("bytes", size))
		if p.deadLetters == nil {
			return nil
		}
		return p.deadLetters.Write(sink.DeadLetter{
			Source:  name,
			ByteLen: size,
			Reason:  sink.ReasonRecordTooLarge,
			Record:  record,
		})
	}

	stats, err := p.partitioner.Stream(ctx, next, emit, discard)
	stats.Records += rep.Skipped
	stats.Discarded += rep.Skipped
	rep.Stats = stats
	rep.DeadLetters = p.deadLetterCount() - dlqBefore
	rep.Duration = time.Since(start)
	if err != nil {
		return rep, fmt.Errorf("process %s: %w", name, err)
	}

	p.logger.Info("input processed",
		log.String("source", name),
		log.Int("records", stats.Records),
		log.Int("batches", stats.Batches),
		log.Int("discarded", stats.Discarded),
		log.Int("dead_letters", rep.DeadLetters),
		log.Int64("bytes", stats.AdmittedBytes),
		log.Duration("took", rep.Duration))
	return rep, nil
}

func (p *Pipeline) deadLetterCount() int {
	if p.deadLetters == nil {
		return 0
	}
	return p.deadLetters.Count()
}

// send delivers env, retrying with back. It returns the number of retries.
// back is reset after a successful send so the next batch starts from the
// initial delay.
func (p *Pipeline) send(ctx context.Context, env sink.Envelope, back *backoff) (int, error) {
	for attempt := 0; ; attempt++ {
		err := p.sink.Send(ctx, env)
		if err == nil {
			back.Reset()
			return attempt, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || attempt >= p.cfg.MaxRetries {
			return attempt, fmt.Errorf("send batch %d: %w", env.Sequence, err)
		}
		p.logger.Warn("send failed, retrying",
			log.String("id", env.ID), log.Int("attempt", attempt+1), log.Err(err))
		if werr := back.Wait(ctx); werr != nil {
			return attempt, werr
		}
	}
}
