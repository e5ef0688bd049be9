package domain

import (
	"errors"
	"math"
	"testing"
)

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()

	if p.MaxRecordSizeMB != 1 {
		t.Errorf("MaxRecordSizeMB = %v, want 1", p.MaxRecordSizeMB)
	}
	if p.MaxBatchSizeMB != 5 {
		t.Errorf("MaxBatchSizeMB = %v, want 5", p.MaxBatchSizeMB)
	}
	if p.MaxRecordsInBatch != 500 {
		t.Errorf("MaxRecordsInBatch = %v, want 500", p.MaxRecordsInBatch)
	}
	if p.MaxRecordBytes() != 1_000_000 {
		t.Errorf("MaxRecordBytes = %v, want 1000000", p.MaxRecordBytes())
	}
	if p.MaxBatchBytes() != 5_000_000 {
		t.Errorf("MaxBatchBytes = %v, want 5000000", p.MaxBatchBytes())
	}
}

func TestPolicy_Validate(t *testing.T) {
	tests := []struct {
		name    string
		policy  Policy
		wantErr bool
	}{
		{"defaults", DefaultPolicy(), false},
		{"equal record and batch limits", Policy{2, 2, 1}, false},
		{"zero record size", Policy{0, 5, 500}, true},
		{"negative batch size", Policy{1, -5, 500}, true},
		{"zero record count", Policy{1, 5, 0}, true},
		{"record limit above batch limit", Policy{6, 5, 500}, true},
		{"fractional limits", Policy{0.5, 2.5, 10}, false},
		{"limits at ceiling", Policy{MaxLimitMB, MaxLimitMB, 5}, false},
		{"record size overflows bytes", Policy{1e13, 1e13, 5}, true},
		{"batch size above ceiling", Policy{1, MaxLimitMB * 2, 5}, true},
		{"NaN record size", Policy{math.NaN(), 5, 500}, true},
		{"infinite batch size", Policy{1, math.Inf(1), 500}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.policy.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidPolicy) {
				t.Errorf("Validate() error = %v, want ErrInvalidPolicy", err)
			}
		})
	}
}

func TestPolicy_FractionalBytes(t *testing.T) {
	p := Policy{MaxRecordSizeMB: 0.5, MaxBatchSizeMB: 2.5, MaxRecordsInBatch: 10}

	if got := p.MaxRecordBytes(); got != 500_000 {
		t.Errorf("MaxRecordBytes = %d, want 500000", got)
	}
	if got := p.MaxBatchBytes(); got != 2_500_000 {
		t.Errorf("MaxBatchBytes = %d, want 2500000", got)
	}

	// Sub-byte precision is dropped.
	p.MaxRecordSizeMB = 0.0000015
	if got := p.MaxRecordBytes(); got != 1 {
		t.Errorf("MaxRecordBytes = %d, want 1", got)
	}
}

func TestPolicy_CeilingDoesNotOverflow(t *testing.T) {
	p := Policy{MaxRecordSizeMB: MaxLimitMB, MaxBatchSizeMB: MaxLimitMB, MaxRecordsInBatch: 1}
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	b := p.MaxBatchBytes()
	if b <= 0 || 2*b <= 0 {
		t.Errorf("MaxBatchBytes = %d, twice it must stay positive", b)
	}
}

func TestByteLen(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"record1", 7},
		{"é", 2},
		{"日本", 6},
		{"🙂", 4},
	}

	for _, tt := range tests {
		if got := ByteLen(tt.in); got != tt.want {
			t.Errorf("ByteLen(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
