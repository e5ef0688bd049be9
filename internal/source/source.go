// Package source reads records from files and streams.
//
// Two formats are supported: "lines", where every newline-delimited line is
// one record, and "jsonl", where every value is a JSON string holding one
// record (so records may themselves contain newlines).
package source

import (
	"fmt"
	"io"
	"os"
)

// Supported record formats.
const (
	FormatLines = "lines"
	FormatJSONL = "jsonl"
)

// Reader yields records one at a time in input order.
type Reader interface {
	// Next returns the next record, or ok=false at end of input.
	Next() (record string, ok bool, err error)
}

// SkipFunc is called for a line too long to be kept in memory. size is the
// byte length of the record without its line terminator.
type SkipFunc func(line, size int)

// New returns a Reader for the given format. limit bounds the size of a kept
// line for the lines format; see NewLineReader.
func New(r io.Reader, format string, limit int, onSkip SkipFunc) (Reader, error) {
	switch format {
	case FormatLines, "":
		return NewLineReader(r, limit, onSkip), nil
	case FormatJSONL:
		return NewJSONLReader(r), nil
	default:
		return nil, fmt.Errorf("unknown record format %q", format)
	}
}

// Open opens path ("-" for stdin) and returns a Reader over it along with a
// close function.
func Open(path, format string, limit int, onSkip SkipFunc) (Reader, func() error, error) {
	if path == "-" || path == "" {
		r, err := New(os.Stdin, format, limit, onSkip)
		return r, func() error { return nil }, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open input: %w", err)
	}
	r, err := New(f, format, limit, onSkip)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return r, f.Close, nil
}

// FormatForPath guesses the record format from a file extension.
func FormatForPath(path, fallback string) string {
	n := len(path)
	switch {
	case n > 6 && path[n-6:] == ".jsonl":
		return FormatJSONL
	case n > 5 && path[n-5:] == ".json":
		return FormatJSONL
	default:
		return fallback
	}
}
