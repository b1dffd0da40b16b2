package bssimport

// JobState is the lifecycle state of an import job.
//
//	INIT -> STAGING_READY -> LOADING -> MERGE_PENDING -> MERGING -> DONE
//
// FAILED is reachable from every state except DONE.
type JobState int

const (
	StateInit JobState = iota
	StateStagingReady
	StateLoading
	StateMergePending
	StateMerging
	StateDone
	StateFailed
)

func (s JobState) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateStagingReady:
		return "STAGING_READY"
	case StateLoading:
		return "LOADING"
	case StateMergePending:
		return "MERGE_PENDING"
	case StateMerging:
		return "MERGING"
	case StateDone:
		return "DONE"
	case StateFailed:
		return "FAILED"
	}
	return "UNKNOWN"
}

// IsTerminal reports whether no further transition is possible.
func (s JobState) IsTerminal() bool {
	return s == StateDone || s == StateFailed
}

// CanTransition reports whether the job may move from s to next.
func (s JobState) CanTransition(next JobState) bool {
	if next == StateFailed {
		return s != StateDone && s != StateFailed
	}
	switch s {
	case StateInit:
		return next == StateStagingReady
	case StateStagingReady:
		return next == StateLoading
	case StateLoading:
		return next == StateMergePending
	case StateMergePending:
		return next == StateMerging
	case StateMerging:
		return next == StateDone
	}
	return false
}
