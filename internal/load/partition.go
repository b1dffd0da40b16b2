package load

import "github.com/PhatDave/BssPrepaidImporter/pkg/bssimport"

// Partition splits records into workers contiguous chunks. Every chunk but
// the last holds len(records)/workers records; the last takes the rest.
// workers is clamped to len(records), so no chunk is empty, and an empty
// input yields no chunks. Chunks share the backing array of records.
func Partition(records []bssimport.Record, workers int) [][]bssimport.Record {
	n := len(records)
	if n == 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}

	size := n / workers
	chunks := make([][]bssimport.Record, workers)
	for i := 0; i < workers-1; i++ {
		chunks[i] = records[i*size : (i+1)*size : (i+1)*size]
	}
	chunks[workers-1] = records[(workers-1)*size:]
	return chunks
}
