package domain

// Batch is an ordered group of records ready to be sent together.
// It maintains the invariant that TotalBytes equals the summed byte length of Records.
type Batch struct {
	// Records holds the original record text in input order
	Records []string

	// TotalBytes is the sum of all record byte lengths
	TotalBytes int
}

// NewBatch creates a new empty batch.
func NewBatch() *Batch {
	return &Batch{
		Records: make([]string, 0),
	}
}

// Add appends a record to the batch.
func (b *Batch) Add(record string) {
	b.Records = append(b.Records, record)
	b.TotalBytes += ByteLen(record)
}

// Size returns the number of records in the batch.
func (b *Batch) Size() int {
	return len(b.Records)
}

// Empty returns true if the batch has no records.
func (b *Batch) Empty() bool {
	return len(b.Records) == 0
}

// Fits reports whether adding n more bytes keeps the batch within maxBytes.
// A batch that would land exactly on maxBytes still fits.
func (b *Batch) Fits(n, maxBytes int) bool {
	return b.TotalBytes+n <= maxBytes
}

// Reset clears the batch. The backing array is released rather than reused
// because closed batches keep referencing it.
func (b *Batch) Reset() {
	b.Records = nil
	b.TotalBytes = 0
}

// Clone returns a copy of the batch that shares no memory with b.
func (b *Batch) Clone() Batch {
	records := make([]string, len(b.Records))
	copy(records, b.Records)
	return Batch{Records: records, TotalBytes: b.TotalBytes}
}

// BatchSet is the ordered sequence of batches produced by one partitioning run.
type BatchSet []Batch

// Records returns every record of every batch, concatenated in order.
func (s BatchSet) Records() []string {
	out := make([]string, 0, s.TotalRecords())
	for _, b := range s {
		out = append(out, b.Records...)
	}
	return out
}

// TotalRecords returns the number of records across all batches.
func (s BatchSet) TotalRecords() int {
	var n int
	for _, b := range s {
		n += len(b.Records)
	}
	return n
}

// TotalBytes returns the summed byte size of all batches.
func (s BatchSet) TotalBytes() int64 {
	var n int64
	for _, b := range s {
		n += int64(b.TotalBytes)
	}
	return n
}
