package load

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/PhatDave/BssPrepaidImporter/pkg/bssimport"
)

// Options configures an Engine.
type Options struct {
	Tables      bssimport.TableSpec
	Workers     int
	BatchSize   int
	MergePolicy bssimport.MergePolicy

	// ProgressBuffer is the capacity of the progress channel.
	ProgressBuffer int

	// ProgressInterval throttles observer notifications.
	ProgressInterval time.Duration

	Observers []bssimport.ProgressObserver
	RunID     bssimport.RunID
}

// Engine runs one import job against a connection pool.
type Engine struct {
	pool   bssimport.DBConnection
	mgr    bssimport.TableManager
	logger bssimport.Logger
	opts   Options
}

// NewEngine panics if pool, mgr or logger is nil.
func NewEngine(pool bssimport.DBConnection, mgr bssimport.TableManager, logger bssimport.Logger, opts Options) *Engine {
	if pool == nil {
		panic("pool cannot be nil")
	}
	if mgr == nil {
		panic("table manager cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	opts.Tables = opts.Tables.WithDefaults()
	if opts.Workers < 1 {
		opts.Workers = bssimport.DefaultWorkers
	}
	if opts.BatchSize < 1 {
		opts.BatchSize = bssimport.DefaultBatchSize
	}
	if opts.ProgressBuffer < 1 {
		opts.ProgressBuffer = bssimport.DefaultProgressBuffer
	}
	return &Engine{pool: pool, mgr: mgr, logger: logger, opts: opts}
}

// job tracks the state machine of one Run.
type job struct {
	result *bssimport.LoadResult
	logger bssimport.Logger
}

func (j *job) transition(next bssimport.JobState) {
	from := j.result.State
	if !from.CanTransition(next) {
		panic(fmt.Sprintf("invalid job transition %s -> %s", from, next))
	}
	j.result.State = next
	j.logger.Verbose("job %s: %s -> %s", j.result.RunID, from, next)
}

func (j *job) fail(c bssimport.Component, err error) (*bssimport.LoadResult, error) {
	if errors.Is(err, bssimport.ErrInvalidConfig) {
		c = bssimport.ComponentConfig
	}
	j.transition(bssimport.StateFailed)
	j.result.Failed = c
	return j.result, bssimport.NewJobError(c, err)
}

// Run imports records. The returned result is never nil; the error is a
// *bssimport.JobError naming the failing component.
func (e *Engine) Run(ctx context.Context, records []bssimport.Record) (*bssimport.LoadResult, error) {
	started := time.Now()
	j := &job{
		result: &bssimport.LoadResult{
			RunID:   e.opts.RunID,
			State:   bssimport.StateInit,
			Records: len(records),
		},
		logger: e.logger,
	}
	defer func() { j.result.Duration = time.Since(started) }()
	tables := e.opts.Tables

	if err := ResetStaging(ctx, e.pool, e.mgr, tables); err != nil {
		return j.fail(bssimport.ComponentStaging, err)
	}
	e.logger.Verbose("staging table %s recreated from %s", tables.Staging, tables.Target)
	j.transition(bssimport.StateStagingReady)

	chunks := Partition(records, e.opts.Workers)
	if len(chunks) < e.opts.Workers {
		e.logger.Verbose("clamped workers from %d to %d", e.opts.Workers, len(chunks))
	}
	j.transition(bssimport.StateLoading)

	j.result.Workers = e.stage(ctx, chunks)
	e.logger.Info("All workers finished")
	j.transition(bssimport.StateMergePending)

	var workerErrs []error
	for _, w := range j.result.FailedWorkers() {
		e.logger.Error("worker %d staged %d of %d records: %v", w.ID, w.Flushed, w.ChunkSize, w.Err)
		workerErrs = append(workerErrs, w.Err)
	}
	loadErr := errors.Join(workerErrs...)

	if err := ctx.Err(); err != nil {
		e.logger.Error("staging table %s retained after cancellation", tables.Staging)
		return j.fail(bssimport.ComponentLoad, errors.Join(err, loadErr))
	}
	if loadErr != nil && e.opts.MergePolicy == bssimport.MergeOnSuccess {
		e.logger.Error("merge skipped, staging table %s retained (%d rows staged)", tables.Staging, j.result.Staged())
		return j.fail(bssimport.ComponentLoad, loadErr)
	}

	j.transition(bssimport.StateMerging)
	e.logger.Info("Merging %s into %s (could take a minute) ...", tables.Staging, tables.Target)
	inserted, err := Merge(ctx, e.pool, e.mgr, tables)
	j.result.Inserted = inserted
	if err != nil {
		return j.fail(bssimport.ComponentMerge, err)
	}
	j.result.Merged = true
	e.logger.Verbose("merged %d new rows, staging table dropped", inserted)

	if loadErr != nil {
		return j.fail(bssimport.ComponentLoad, loadErr)
	}
	j.transition(bssimport.StateDone)
	return j.result, nil
}

// stage runs one worker per chunk and waits for all of them. Workers
// record their outcome in their own slot and always return nil to the
// group, so one failure leaves the others running.
func (e *Engine) stage(ctx context.Context, chunks [][]bssimport.Record) []bssimport.WorkerResult {
	totals := make([]int, len(chunks))
	for i, c := range chunks {
		totals[i] = len(c)
	}
	agg := NewAggregator(totals, e.opts.ProgressBuffer, e.opts.ProgressInterval, e.opts.Observers...)
	agg.Start()

	stmt := newInsertStatement(e.opts.Tables, e.opts.BatchSize)
	results := make([]bssimport.WorkerResult, len(chunks))

	var g errgroup.Group
	for i, chunk := range chunks {
		w := &worker{
			id:        i,
			chunk:     chunk,
			batchSize: e.opts.BatchSize,
			stmt:      stmt,
			report:    func(ev bssimport.ProgressEvent) { agg.Report(ev) },
			logger:    e.logger,
		}
		e.logger.Info("Starting worker %d with %d rows", i, len(chunk))
		g.Go(func() error {
			results[w.id] = w.run(ctx, e.pool)
			return nil
		})
	}
	_ = g.Wait()

	agg.Close(results)
	if n := agg.Dropped(); n > 0 {
		e.logger.Verbose("%d progress events dropped", n)
	}
	return results
}
