// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// This package adapts the generic metrics.Backend interface to Prometheus by:
//
//   - Using client_golang CounterVec and SummaryVec collectors.
//   - Mapping the sink labels (status, level) onto Prometheus labels.
//   - Pushing collected metrics to a Prometheus Pushgateway instance instead of
//     exposing an HTTP scrape endpoint. Short-lived processes that log to a
//     local store have nothing long-running to scrape.
package prompush

import (
	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"logsink/internal/metrics"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group
	reg        *prometheus.Registry

	writeCounter    *prometheus.CounterVec // logsink_writes_total
	writeDuration   *prometheus.SummaryVec // logsink_write_duration_seconds
	filteredCounter *prometheus.CounterVec // logsink_events_filtered_total
}

// NewBackend constructs a Prometheus Pushgateway backend.
// jobName: the Pushgateway "job" name.
// gatewayURL: base URL of the Pushgateway server.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, errors.New("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "logsink"
	}

	reg := prometheus.NewRegistry()

	writeCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metrics.WritesTotal,
			Help: "Total number of sink writes, partitioned by status.",
		},
		[]string{"status"},
	)
	writeDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       metrics.WriteDurationSeconds,
			Help:       "Duration of sink writes in seconds, partitioned by status.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"status"},
	)
	filteredCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metrics.FilteredTotal,
			Help: "Events skipped because they were below the sink's minimum level.",
		},
		[]string{"level"},
	)

	for _, c := range []struct {
		what string
		c    prometheus.Collector
	}{
		{"write counter", writeCounter},
		{"write summary", writeDuration},
		{"filtered counter", filteredCounter},
	} {
		if err := reg.Register(c.c); err != nil {
			return nil, errors.Wrapf(err, "prompush: register %s", c.what)
		}
	}

	return &Backend{
		gatewayURL:      gatewayURL,
		jobName:         jobName,
		reg:             reg,
		writeCounter:    writeCounter,
		writeDuration:   writeDuration,
		filteredCounter: filteredCounter,
	}, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case metrics.WritesTotal:
		if b.writeCounter == nil {
			return
		}
		b.writeCounter.WithLabelValues(labels["status"]).Add(delta)

	case metrics.FilteredTotal:
		if b.filteredCounter == nil {
			return
		}
		b.filteredCounter.WithLabelValues(labels["level"]).Add(delta)

	default:
		// unknown metric name: ignore
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != metrics.WriteDurationSeconds || b.writeDuration == nil {
		return
	}
	b.writeDuration.WithLabelValues(labels["status"]).Observe(value)
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}
