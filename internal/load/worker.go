package load

import (
	"context"
	"fmt"
	"time"

	"github.com/PhatDave/BssPrepaidImporter/pkg/bssimport"
)

// worker stages one chunk on one dedicated connection.
type worker struct {
	id        int
	chunk     []bssimport.Record
	batchSize int
	stmt      *insertStatement
	report    func(bssimport.ProgressEvent)
	logger    bssimport.Logger
}

// run flushes the chunk in order, batchSize records per statement, the
// remainder last. The first failed flush stops the worker. It never
// returns an error; the outcome is in the result.
func (w *worker) run(ctx context.Context, pool bssimport.DBConnection) (res bssimport.WorkerResult) {
	started := time.Now()
	res = bssimport.WorkerResult{ID: w.id, ChunkSize: len(w.chunk)}
	defer func() { res.Duration = time.Since(started) }()

	conn, err := pool.Acquire(ctx)
	if err != nil {
		res.Err = fmt.Errorf("worker %d: failed to acquire connection: %w", w.id, err)
		return res
	}
	defer conn.Release()

	for start := 0; start < len(w.chunk); start += w.batchSize {
		if err := ctx.Err(); err != nil {
			res.Err = fmt.Errorf("worker %d stopped after %d of %d records: %w", w.id, res.Flushed, res.ChunkSize, err)
			return res
		}

		batch := w.chunk[start:min(start+w.batchSize, len(w.chunk))]
		sql, args := w.stmt.build(batch)
		if _, err := conn.Exec(ctx, sql, args...); err != nil {
			res.Err = fmt.Errorf("worker %d failed after %d of %d records: %w", w.id, res.Flushed, res.ChunkSize, err)
			return res
		}

		res.Flushed += len(batch)
		res.Batches++
		w.report(bssimport.ProgressEvent{WorkerID: w.id, Count: len(batch)})
	}

	w.logger.Verbose("worker %d finished: %d records in %d batches", w.id, res.Flushed, res.Batches)
	return res
}
