package prompush

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"logsink/internal/metrics"
)

// readCounterValue reads the current value of a Counter for assertions in tests.
func readCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()

	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		t.Fatalf("Counter.Write() error = %v", err)
	}
	if m.GetCounter() == nil {
		t.Fatalf("metric did not contain Counter value")
	}
	return m.GetCounter().GetValue()
}

// readSummaryCountSum reads sample count and sum from a SummaryVec.
func readSummaryCountSum(t *testing.T, v *prometheus.SummaryVec, labels ...string) (uint64, float64) {
	t.Helper()

	m := &dto.Metric{}
	metric, ok := v.WithLabelValues(labels...).(prometheus.Metric)
	if !ok {
		t.Fatalf("SummaryVec.WithLabelValues(...) does not implement prometheus.Metric")
	}
	if err := metric.Write(m); err != nil {
		t.Fatalf("Summary.Write() error = %v", err)
	}
	if m.GetSummary() == nil {
		t.Fatalf("metric did not contain Summary value")
	}
	sum := m.GetSummary()
	return sum.GetSampleCount(), sum.GetSampleSum()
}

func TestNewBackend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		jobName     string
		gatewayURL  string
		wantErr     bool
		wantJobName string
	}{
		{name: "missing gateway URL returns error", jobName: "app", wantErr: true},
		{name: "empty job name uses default", gatewayURL: "http://pushgateway:9091", wantJobName: "logsink"},
		{name: "explicit job name is preserved", jobName: "my-app", gatewayURL: "http://pushgateway:9091", wantJobName: "my-app"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b, err := NewBackend(tt.jobName, tt.gatewayURL)
			if tt.wantErr {
				if err == nil || b != nil {
					t.Fatalf("NewBackend(%q, %q) = %v, %v; want nil, error", tt.jobName, tt.gatewayURL, b, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewBackend(%q, %q) error = %v", tt.jobName, tt.gatewayURL, err)
			}
			if b.jobName != tt.wantJobName {
				t.Fatalf("backend.jobName = %q, want %q", b.jobName, tt.wantJobName)
			}
			if b.writeCounter == nil || b.writeDuration == nil || b.filteredCounter == nil {
				t.Fatalf("collectors not initialized: %+v", b)
			}
		})
	}
}

// TestIncCounter verifies routing to the correct collectors and that unknown
// metric names are ignored.
func TestIncCounter(t *testing.T) {
	t.Parallel()

	b, err := NewBackend("app", "http://example.com")
	if err != nil {
		t.Fatalf("NewBackend() error = %v", err)
	}

	b.IncCounter(metrics.WritesTotal, 2, metrics.Labels{"status": "success"})
	b.IncCounter(metrics.WritesTotal, 1, metrics.Labels{"status": "failure"})
	b.IncCounter(metrics.FilteredTotal, 3, metrics.Labels{"level": "DEBUG"})
	b.IncCounter("unknown_metric", 10, metrics.Labels{"status": "success"})

	if got := readCounterValue(t, b.writeCounter.WithLabelValues("success")); got != 2 {
		t.Fatalf("writes{success} = %v, want 2", got)
	}
	if got := readCounterValue(t, b.writeCounter.WithLabelValues("failure")); got != 1 {
		t.Fatalf("writes{failure} = %v, want 1", got)
	}
	if got := readCounterValue(t, b.filteredCounter.WithLabelValues("DEBUG")); got != 3 {
		t.Fatalf("filtered{DEBUG} = %v, want 3", got)
	}
}

// TestIncCounterNilMetrics ensures a zero-value backend does not panic.
func TestIncCounterNilMetrics(t *testing.T) {
	t.Parallel()

	b := &Backend{}
	b.IncCounter(metrics.WritesTotal, 1, metrics.Labels{"status": "success"})
	b.IncCounter(metrics.FilteredTotal, 1, metrics.Labels{"level": "INFO"})
	b.ObserveHistogram(metrics.WriteDurationSeconds, 1, metrics.Labels{"status": "success"})
}

func TestObserveHistogram(t *testing.T) {
	t.Parallel()

	b, err := NewBackend("app", "http://example.com")
	if err != nil {
		t.Fatalf("NewBackend() error = %v", err)
	}

	b.ObserveHistogram(metrics.WriteDurationSeconds, 1.5, metrics.Labels{"status": "success"})
	b.ObserveHistogram("other_metric", 2.0, metrics.Labels{"status": "success"})

	count, sum := readSummaryCountSum(t, b.writeDuration, "success")
	if count != 1 || sum != 1.5 {
		t.Fatalf("summary = (%d, %v), want (1, 1.5)", count, sum)
	}
}

// TestFlush verifies that Flush pushes the registry to the Pushgateway.
func TestFlush(t *testing.T) {
	t.Parallel()

	type pushRequestInfo struct {
		method  string
		path    string
		bodyLen int
	}
	reqCh := make(chan pushRequestInfo, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		body, _ := io.ReadAll(r.Body)
		reqCh <- pushRequestInfo{method: r.Method, path: r.URL.Path, bodyLen: len(body)}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	b, err := NewBackend("app", server.URL)
	if err != nil {
		t.Fatalf("NewBackend() error = %v", err)
	}
	b.IncCounter(metrics.WritesTotal, 1, metrics.Labels{"status": "success"})

	if err := b.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	var got pushRequestInfo
	select {
	case got = <-reqCh:
	default:
		t.Fatalf("Flush() did not result in any HTTP request to the Pushgateway")
	}
	if got.method != http.MethodPut {
		t.Fatalf("push method = %q, want PUT", got.method)
	}
	if got.path != "/metrics/job/app" {
		t.Fatalf("push path = %q, want /metrics/job/app", got.path)
	}
	if got.bodyLen == 0 {
		t.Fatalf("push body is empty")
	}
}
