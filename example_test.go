package recbatch_test

import (
	"fmt"

	"github.com/bft-labs/recbatch"
)

func Example() {
	p, err := recbatch.New(recbatch.Policy{
		MaxRecordSizeMB:   1,
		MaxBatchSizeMB:    1,
		MaxRecordsInBatch: 2,
	})
	if err != nil {
		panic(err)
	}

	for i, b := range p.Batchify([]string{"a", "b", "c"}) {
		fmt.Println(i, b.Records)
	}
	// Output:
	// 0 [a b]
	// 1 [c]
}

func ExampleBatchify() {
	batches := recbatch.Batchify([]string{"record1", "record2"})
	fmt.Println(len(batches), batches[0].Records)
	// Output: 1 [record1 record2]
}

func ExampleNew_invalidPolicy() {
	_, err := recbatch.New(recbatch.Policy{MaxRecordSizeMB: 1, MaxBatchSizeMB: 5})
	fmt.Println(err)
	// Output: recbatch: invalid policy: max_records_in_batch must be positive, got 0
}
