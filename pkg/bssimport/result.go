package bssimport

import "time"

// WorkerResult is the terminal outcome of one worker.
type WorkerResult struct {
	ID        int
	ChunkSize int

	// Flushed is the number of records committed to staging before the
	// worker finished or failed.
	Flushed int

	// Batches is the number of successful INSERT statements.
	Batches int

	Err      error
	Duration time.Duration
}

// Succeeded reports whether the worker staged its whole chunk.
func (r WorkerResult) Succeeded() bool {
	return r.Err == nil && r.Flushed == r.ChunkSize
}

// LoadResult summarizes one import job.
type LoadResult struct {
	RunID RunID
	State JobState

	// Records is the number of input records handed to the engine.
	Records int

	Workers []WorkerResult

	// Merged reports whether the merge statement ran to completion.
	Merged bool

	// Inserted is the number of rows the merge added to the target table.
	Inserted int64

	// Failed names the failing component. Empty on success.
	Failed Component

	Duration time.Duration
}

// FailedWorkers returns the results of workers that did not stage their whole chunk.
func (r *LoadResult) FailedWorkers() []WorkerResult {
	var failed []WorkerResult
	for _, w := range r.Workers {
		if !w.Succeeded() {
			failed = append(failed, w)
		}
	}
	return failed
}

// Staged returns the total number of records committed to staging.
func (r *LoadResult) Staged() int {
	n := 0
	for _, w := range r.Workers {
		n += w.Flushed
	}
	return n
}
