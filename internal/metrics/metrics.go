// Package metrics records operational metrics for songetl runs through a
// global, pluggable Backend.
//
// The default backend is a no-op, so instrumentation is always safe to call.
// Concrete systems live in subpackages (prompush for a Prometheus
// Pushgateway, datadog for DogStatsD) and are installed with SetBackend.
package metrics

import "time"

// Metric names.
const (
	StepTotal    = "songetl_step_total"
	StepDuration = "songetl_step_duration_seconds"
	RowsTotal    = "songetl_rows_total"
	FilesTotal   = "songetl_files_total"
	LookupsTotal = "songetl_lookups_total"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

func status(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

// RecordStep counts one execution of a per-file step (parse, transform,
// load, commit) and records how long it took.
func RecordStep(job, step string, err error, d time.Duration) {
	lbls := Labels{"job": job, "step": step, "status": status(err)}
	backend.IncCounter(StepTotal, 1, lbls)
	backend.ObserveHistogram(StepDuration, d.Seconds(), lbls)
}

// RecordRows counts rows written to table.
func RecordRows(job, table string, n int) {
	if n <= 0 {
		return
	}
	backend.IncCounter(RowsTotal, float64(n), Labels{"job": job, "table": table})
}

// RecordFile counts one finished input file.
func RecordFile(job string, err error) {
	backend.IncCounter(FilesTotal, 1, Labels{"job": job, "status": status(err)})
}

// RecordLookups counts songplay lookups by outcome: "hit", "miss", or
// "cached" for answers served from a per-file cache.
func RecordLookups(job, outcome string, n int) {
	if n <= 0 {
		return
	}
	backend.IncCounter(LookupsTotal, float64(n), Labels{"job": job, "outcome": outcome})
}
