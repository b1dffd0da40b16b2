// Package load is the import engine: it resets the staging table, splits
// the records into one contiguous chunk per worker, stages every chunk in
// parallel with multi-row INSERTs, waits for all workers, and merges
// staging into the target table with insert-or-skip semantics.
//
// The job moves through INIT, STAGING_READY, LOADING, MERGE_PENDING,
// MERGING and DONE, or ends in FAILED. A failing worker never stops its
// siblings; whether the merge still runs is decided by the merge policy.
package load
