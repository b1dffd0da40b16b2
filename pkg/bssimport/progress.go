package bssimport

// ProgressEvent is emitted by a worker after each successful flush.
// Count is the number of records that flush committed to staging.
type ProgressEvent struct {
	WorkerID int
	Count    int
}

// WorkerProgress is the position of one worker in its chunk.
type WorkerProgress struct {
	Current int
	Total   int
}

// Done reports whether the worker has staged its whole chunk.
func (p WorkerProgress) Done() bool {
	return p.Current >= p.Total
}

// Fraction returns Current/Total in [0,1]. An empty chunk counts as complete.
func (p WorkerProgress) Fraction() float64 {
	if p.Total <= 0 {
		return 1
	}
	f := float64(p.Current) / float64(p.Total)
	if f > 1 {
		return 1
	}
	return f
}

// ProgressSnapshot is a point-in-time copy of all worker positions,
// indexed by worker ID.
type ProgressSnapshot []WorkerProgress

// Totals sums current and total across workers.
func (s ProgressSnapshot) Totals() WorkerProgress {
	var sum WorkerProgress
	for _, p := range s {
		sum.Current += p.Current
		sum.Total += p.Total
	}
	return sum
}

// ProgressObserver receives snapshots from the progress aggregator.
// Observers are purely observational; they never influence loading.
type ProgressObserver interface {
	// OnProgress is called from the aggregator goroutine with a fresh snapshot.
	OnProgress(snapshot ProgressSnapshot)

	// OnFinish is called once after the last event has been applied.
	OnFinish(snapshot ProgressSnapshot)
}
