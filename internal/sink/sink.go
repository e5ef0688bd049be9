// Package sink transmits finished batches downstream and persists
// dead-lettered records.
package sink

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/bft-labs/recbatch/internal/domain"
)

// Supported sink kinds.
const (
	KindStdout = "stdout"
	KindFile   = "file"
	KindHTTP   = "http"
	KindAMQP   = "amqp"
)

// Sink transmits batches to a downstream system.
type Sink interface {
	// Send transmits one batch. Returns nil on success.
	Send(ctx context.Context, env Envelope) error

	// Close releases connections and flushes buffered output.
	Close() error
}

// Envelope is the unit handed to a sink: one batch plus identifying metadata.
type Envelope struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	Sequence   int       `json:"sequence"`
	CreatedAt  time.Time `json:"created_at"`
	Count      int       `json:"count"`
	TotalBytes int       `json:"total_bytes"`
	Records    []string  `json:"records"`
}

// NewEnvelope wraps batch number seq of the run reading from source.
func NewEnvelope(source string, seq int, b domain.Batch) Envelope {
	return Envelope{
		ID:         ulid.Make().String(),
		Source:     source,
		Sequence:   seq,
		CreatedAt:  time.Now().UTC(),
		Count:      len(b.Records),
		TotalBytes: b.TotalBytes,
		Records:    b.Records,
	}
}
