package tui

import "github.com/PhatDave/BssPrepaidImporter/pkg/bssimport"

// LogObserver reports progress as log lines. Used when no terminal is attached.
type LogObserver struct {
	logger bssimport.Logger
}

// NewLogObserver panics if logger is nil.
func NewLogObserver(logger bssimport.Logger) *LogObserver {
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &LogObserver{logger: logger}
}

// OnProgress implements bssimport.ProgressObserver.
func (o *LogObserver) OnProgress(snapshot bssimport.ProgressSnapshot) {
	total := snapshot.Totals()
	o.logger.Verbose("staged %d/%d records (%.1f%%), %d/%d workers done",
		total.Current, total.Total, total.Fraction()*100, doneWorkers(snapshot), len(snapshot))
}

// OnFinish implements bssimport.ProgressObserver.
func (o *LogObserver) OnFinish(snapshot bssimport.ProgressSnapshot) {
	total := snapshot.Totals()
	o.logger.Info("Staged %d of %d records", total.Current, total.Total)
}

func doneWorkers(snapshot bssimport.ProgressSnapshot) int {
	n := 0
	for _, w := range snapshot {
		if w.Done() {
			n++
		}
	}
	return n
}

var (
	_ bssimport.ProgressObserver = (*LogObserver)(nil)
	_ bssimport.ProgressObserver = (*ProgressView)(nil)
)
