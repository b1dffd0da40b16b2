// Package retry retries connection establishment with exponential backoff.
//
// The importer never retries batch flushes or the merge statement. Only the
// initial pool setup goes through an Executor, so a database that is still
// starting up (or briefly refusing connections) does not fail the job.
//
//	exec := retry.NewExecutor(retry.NewConnectClassifier(), retry.NewExponentialBackoff(3))
//	err := exec.Execute(ctx, func(ctx context.Context) error {
//	    return pool.Ping(ctx)
//	})
package retry
