package source

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// JSONLReader reads a stream of JSON strings, conventionally one per line.
type JSONLReader struct {
	dec   *json.Decoder
	count int
}

// NewJSONLReader creates a JSONLReader.
func NewJSONLReader(r io.Reader) *JSONLReader {
	return &JSONLReader{dec: json.NewDecoder(r)}
}

// Next decodes the next record. Values that are not JSON strings are an error.
func (r *JSONLReader) Next() (string, bool, error) {
	var rec string
	if err := r.dec.Decode(&rec); err != nil {
		if errors.Is(err, io.EOF) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("decode record %d: %w", r.count+1, err)
	}
	r.count++
	return rec, true, nil
}
