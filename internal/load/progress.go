package load

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/PhatDave/BssPrepaidImporter/pkg/bssimport"
)

// Aggregator owns the per-worker progress table. Workers feed it through
// a buffered channel; Report never blocks and drops the event when the
// buffer is full. Progress is observational only.
type Aggregator struct {
	events    chan bssimport.ProgressEvent
	interval  time.Duration
	observers []bssimport.ProgressObserver

	mu    sync.Mutex
	state []bssimport.WorkerProgress

	dropped atomic.Int64
	done    chan struct{}
}

// NewAggregator creates an aggregator for workers with the given chunk
// sizes. Observers are notified at most once per interval.
func NewAggregator(totals []int, buffer int, interval time.Duration, observers ...bssimport.ProgressObserver) *Aggregator {
	if buffer < 1 {
		buffer = 1
	}
	state := make([]bssimport.WorkerProgress, len(totals))
	for i, t := range totals {
		state[i].Total = t
	}
	return &Aggregator{
		events:    make(chan bssimport.ProgressEvent, buffer),
		interval:  interval,
		observers: observers,
		state:     state,
		done:      make(chan struct{}),
	}
}

// Start consumes events until Close.
func (a *Aggregator) Start() {
	go a.loop()
}

// Report queues ev. It returns false if the event was dropped.
func (a *Aggregator) Report(ev bssimport.ProgressEvent) bool {
	select {
	case a.events <- ev:
		return true
	default:
		a.dropped.Add(1)
		return false
	}
}

// Dropped returns the number of events lost to a full buffer.
func (a *Aggregator) Dropped() int64 {
	return a.dropped.Load()
}

// Snapshot copies the current progress table.
func (a *Aggregator) Snapshot() bssimport.ProgressSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	snap := make(bssimport.ProgressSnapshot, len(a.state))
	copy(snap, a.state)
	return snap
}

// Close stops the aggregator once every worker has returned. Final
// positions are taken from the worker results, so dropped events do not
// show in the last snapshot. Report must not be called after Close.
func (a *Aggregator) Close(results []bssimport.WorkerResult) bssimport.ProgressSnapshot {
	close(a.events)
	<-a.done

	a.mu.Lock()
	for _, r := range results {
		if r.ID >= 0 && r.ID < len(a.state) {
			a.state[r.ID].Current = r.Flushed
		}
	}
	a.mu.Unlock()

	snap := a.Snapshot()
	for _, o := range a.observers {
		o.OnFinish(snap)
	}
	return snap
}

func (a *Aggregator) loop() {
	defer close(a.done)

	var tick <-chan time.Time
	if a.interval > 0 && len(a.observers) > 0 {
		ticker := time.NewTicker(a.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	changed := false
	for {
		select {
		case ev, ok := <-a.events:
			if !ok {
				return
			}
			a.apply(ev)
			changed = true
		case <-tick:
			if changed {
				a.notify()
				changed = false
			}
		}
	}
}

func (a *Aggregator) apply(ev bssimport.ProgressEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if ev.WorkerID < 0 || ev.WorkerID >= len(a.state) {
		return
	}
	p := &a.state[ev.WorkerID]
	p.Current = min(p.Current+ev.Count, p.Total)
}

func (a *Aggregator) notify() {
	snap := a.Snapshot()
	for _, o := range a.observers {
		o.OnProgress(snap)
	}
}
