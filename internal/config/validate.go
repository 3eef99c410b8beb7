package config

import (
	"fmt"
	"strings"

	"logsink/internal/record"
	"logsink/internal/storage/sqlite"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a problem worth surfacing that does not block
	// execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding.
//
// Path is a dotted path into the config (e.g. "sink.store_location").
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// Validate performs static checks over c and returns every issue found. It
// does not touch the store.
func Validate(c Config) []Issue {
	var issues []Issue

	if strings.TrimSpace(c.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "job",
			Message:  "job is empty; events will be stored under the root logger name",
		})
	}
	issues = append(issues, validateSink(c.Sink)...)
	issues = append(issues, validateConsole(c.Console)...)
	issues = append(issues, validateMetrics(c.Metrics)...)

	if strings.TrimSpace(c.TimeFormat) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "time_format",
			Message:  "time_format is empty; the default layout will be used",
		})
	}
	return issues
}

func validateSink(s Sink) []Issue {
	var issues []Issue

	loc := strings.TrimSpace(s.StoreLocation)
	switch {
	case loc == "":
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "sink.store_location",
			Message:  "sink.store_location must not be empty",
		})
	case sqlite.IsMemoryDSN(loc):
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "sink.store_location",
			Message:  fmt.Sprintf("in-memory store %q does not persist between writes", loc),
		})
	}

	if _, err := record.ParseLevel(s.MinimumLevel); err != nil {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "sink.minimum_level",
			Message:  err.Error(),
		})
	}

	if s.BusyTimeoutMS < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "sink.busy_timeout_ms",
			Message:  "sink.busy_timeout_ms must be >= 0",
		})
	}
	return issues
}

func validateConsole(c Console) []Issue {
	if !c.Enabled {
		return nil
	}
	if _, err := record.ParseLevel(c.Level); err != nil {
		return []Issue{{
			Severity: SeverityError,
			Path:     "console.level",
			Message:  err.Error(),
		}}
	}
	return nil
}

func validateMetrics(m Metrics) []Issue {
	var issues []Issue

	switch m.Backend {
	case "", "none":
	case "pushgateway":
		if strings.TrimSpace(m.PushgatewayURL) == "" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "metrics.pushgateway_url",
				Message:  "pushgateway backend without a URL; PUSHGATEWAY_URL or the default will be used",
			})
		}
	case "datadog":
		if strings.TrimSpace(m.DatadogAddr) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.datadog_addr",
				Message:  "datadog backend requires metrics.datadog_addr",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q; metrics will be disabled", m.Backend),
		})
	}
	return issues
}

// HasErrors reports whether any issue has SeverityError.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}
