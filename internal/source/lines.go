package source

import (
	"bufio"
	"errors"
	"io"
)

const readBufferSize = 64 * 1024

// LineReader reads newline-delimited records. A trailing "\r" is trimmed so
// CRLF input yields the same records as LF input. Empty lines are empty
// records.
//
// Lines longer than the limit are consumed without being buffered and
// reported through the skip callback instead of being returned. The limit is
// normally the policy's per-record size, so every skipped line is one the
// partitioner would have discarded anyway.
type LineReader struct {
	br     *bufio.Reader
	limit  int
	onSkip SkipFunc
	buf    []byte
	line   int
	done   bool
}

// NewLineReader creates a LineReader. A non-positive limit keeps every line.
func NewLineReader(r io.Reader, limit int, onSkip SkipFunc) *LineReader {
	return &LineReader{
		br:     bufio.NewReaderSize(r, readBufferSize),
		limit:  limit,
		onSkip: onSkip,
	}
}

// Next returns the next kept line.
func (r *LineReader) Next() (string, bool, error) {
	for !r.done {
		rec, size, kept, err := r.readLine()
		if err != nil {
			return "", false, err
		}
		if r.done && size == 0 && !kept {
			break
		}
		r.line++
		if kept {
			return rec, true, nil
		}
		if r.onSkip != nil {
			r.onSkip(r.line, size)
		}
	}
	return "", false, nil
}

func (r *LineReader) readLine() (string, int, bool, error) {
	r.buf = r.buf[:0]
	var (
		size     int
		overflow bool
		sawAny   bool
		lastCR   bool
	)

	for {
		chunk, err := r.br.ReadSlice('\n')
		if err != nil && !errors.Is(err, bufio.ErrBufferFull) && !errors.Is(err, io.EOF) {
			return "", 0, false, err
		}
		if len(chunk) > 0 {
			sawAny = true
		}
		if n := len(chunk); n > 0 && chunk[n-1] == '\n' {
			chunk = chunk[:n-1]
		}
		if n := len(chunk); n > 0 {
			lastCR = chunk[n-1] == '\r'
		}
		size += len(chunk)

		if !overflow {
			// +1 leaves room for a "\r" that is trimmed below.
			if r.limit > 0 && len(r.buf)+len(chunk) > r.limit+1 {
				overflow = true
				r.buf = r.buf[:0]
			} else {
				r.buf = append(r.buf, chunk...)
			}
		}

		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if errors.Is(err, io.EOF) {
			r.done = true
		}
		break
	}

	if !sawAny {
		return "", 0, false, nil
	}
	if lastCR {
		size--
		if !overflow {
			r.buf = r.buf[:len(r.buf)-1]
		}
	}
	if overflow || (r.limit > 0 && size > r.limit) {
		return "", size, false, nil
	}
	return string(r.buf), size, true, nil
}
