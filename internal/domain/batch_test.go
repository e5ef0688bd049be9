package domain

import (
	"reflect"
	"testing"
)

func TestBatch_AddAndReset(t *testing.T) {
	b := NewBatch()
	if !b.Empty() {
		t.Fatal("new batch should be empty")
	}

	b.Add("abc")
	b.Add("é")

	if b.Size() != 2 {
		t.Errorf("Size() = %d, want 2", b.Size())
	}
	if b.TotalBytes != 5 {
		t.Errorf("TotalBytes = %d, want 5", b.TotalBytes)
	}

	b.Reset()
	if !b.Empty() || b.TotalBytes != 0 {
		t.Errorf("after Reset: size=%d bytes=%d, want 0/0", b.Size(), b.TotalBytes)
	}
}

func TestBatch_Fits(t *testing.T) {
	b := NewBatch()
	b.Add("12345")

	if !b.Fits(5, 10) {
		t.Error("landing exactly on the limit should fit")
	}
	if b.Fits(6, 10) {
		t.Error("going over the limit should not fit")
	}
}

func TestBatch_Clone(t *testing.T) {
	b := NewBatch()
	b.Add("a")
	c := b.Clone()
	b.Records[0] = "z"

	if c.Records[0] != "a" {
		t.Errorf("clone shares memory with original: %q", c.Records[0])
	}
}

func TestBatchSet_Records(t *testing.T) {
	set := BatchSet{
		{Records: []string{"a", "b"}, TotalBytes: 2},
		{Records: []string{"cc"}, TotalBytes: 2},
	}

	if got := set.Records(); !reflect.DeepEqual(got, []string{"a", "b", "cc"}) {
		t.Errorf("Records() = %v", got)
	}
	if set.TotalRecords() != 3 {
		t.Errorf("TotalRecords() = %d, want 3", set.TotalRecords())
	}
	if set.TotalBytes() != 4 {
		t.Errorf("TotalBytes() = %d, want 4", set.TotalBytes())
	}
}
