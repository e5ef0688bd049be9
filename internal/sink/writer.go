package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
)

// WriterSink writes each envelope as one JSON line.
type WriterSink struct {
	mu     sync.Mutex
	enc    *json.Encoder
	closer io.Closer
}

// NewWriterSink writes to w. Close does not close w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{enc: json.NewEncoder(w)}
}

// NewFileSink appends to the file at path, creating it if needed.
func NewFileSink(path string) (*WriterSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open output: %w", err)
	}
	return &WriterSink{enc: json.NewEncoder(f), closer: f}, nil
}

// Send encodes env.
func (s *WriterSink) Send(ctx context.Context, env Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enc.Encode(env); err != nil {
		return fmt.Errorf("write batch %s: %w", env.ID, err)
	}
	return nil
}

// Close closes the underlying file, if the sink owns one.
func (s *WriterSink) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
