package sink

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Dead-letter reasons.
const (
	ReasonRecordTooLarge = "record_too_large"
)

// DeadLetter is one discarded record. Record is empty when the record was
// too long to be read into memory.
type DeadLetter struct {
	Source    string    `json:"source"`
	Line      int       `json:"line,omitempty"`
	ByteLen   int       `json:"byte_len"`
	Reason    string    `json:"reason"`
	Record    string    `json:"record,omitempty"`
	Truncated bool      `json:"truncated,omitempty"`
	At        time.Time `json:"at"`
}

// DeadLetterWriter appends discarded records as JSON lines.
type DeadLetterWriter struct {
	mu     sync.Mutex
	enc    *json.Encoder
	closer io.Closer
	count  int
}

// NewDeadLetterWriter writes to w.
func NewDeadLetterWriter(w io.Writer) *DeadLetterWriter {
	return &DeadLetterWriter{enc: json.NewEncoder(w)}
}

// OpenDeadLetterFile appends to the file at path, creating it if needed.
func OpenDeadLetterFile(path string) (*DeadLetterWriter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open dead-letter file: %w", err)
	}
	return &DeadLetterWriter{enc: json.NewEncoder(f), closer: f}, nil
}

// Write records one dead letter.
func (w *DeadLetterWriter) Write(dl DeadLetter) error {
	if dl.At.IsZero() {
		dl.At = time.Now().UTC()
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.enc.Encode(dl); err != nil {
		return fmt.Errorf("write dead letter: %w", err)
	}
	w.count++
	return nil
}

// Count returns the number of dead letters written.
func (w *DeadLetterWriter) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// Close closes the underlying file, if the writer owns one.
func (w *DeadLetterWriter) Close() error {
	if w.closer == nil {
		return nil
	}
	return w.closer.Close()
}
