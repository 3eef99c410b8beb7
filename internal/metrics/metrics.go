// Package metrics provides a small, backend-agnostic abstraction for recording
// operational metrics from the log sink.
//
// The package is intentionally minimal:
//
//   - It exposes a narrow interface (Backend) focused on counters and timing
//     data (histograms).
//   - It provides a global, pluggable backend that defaults to a no-op
//     implementation, so metrics are always safe to call even when no real
//     backend is configured.
//   - Concrete metric systems (Prometheus Pushgateway, Datadog) live in
//     subpackages so the sink depends only on this interface.
package metrics

import (
	"sync"
	"time"
)

// Metric names emitted by the sink.
const (
	WritesTotal          = "logsink_writes_total"
	WriteDurationSeconds = "logsink_write_duration_seconds"
	FilteredTotal        = "logsink_events_filtered_total"
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

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	mu.Lock()
	backend = b
	mu.Unlock()
}

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// Flush delegates to the current backend.
func Flush() error {
	return current().Flush()
}

// RecordWrite counts one sink write and its latency, labelled by outcome.
func RecordWrite(err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{"status": status}

	b := current()
	b.IncCounter(WritesTotal, 1, lbls)
	b.ObserveHistogram(WriteDurationSeconds, d.Seconds(), lbls)
}

// RecordFiltered counts an event skipped because it was below the sink's
// minimum level.
func RecordFiltered(levelName string) {
	current().IncCounter(FilteredTotal, 1, Labels{"level": levelName})
}
