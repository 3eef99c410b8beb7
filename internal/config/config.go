// Package config defines the JSON configuration for the sqlitelog binary. It
// is deliberately small and decoded with the standard library; the sink
// itself only needs a store location and a minimum level.
//
// Example:
//
//	{
//	  "job":     "my-app",
//	  "sink":    { "store_location": "logs.sqlite", "minimum_level": "DEBUG" },
//	  "console": { "enabled": true, "level": "DEBUG" },
//	  "time_format": "01/02/2006 03:04:05 PM",
//	  "metrics": { "backend": "pushgateway", "pushgateway_url": "http://localhost:9091" }
//	}
package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/cockroachdb/errors"

	"logsink/internal/record"
)

// Config is the top-level object decoded from a config file.
type Config struct {
	// Job names the application; used as the logger name and metrics job.
	Job string `json:"job"`

	Sink    Sink    `json:"sink"`
	Console Console `json:"console"`

	// TimeFormat is the Go layout for the stored asctime column.
	TimeFormat string `json:"time_format"`

	Metrics Metrics `json:"metrics"`
}

// Sink configures the SQLite log sink.
type Sink struct {
	// StoreLocation is the SQLite file path or URI filename.
	StoreLocation string `json:"store_location"`

	// MinimumLevel is a level name ("INFO") or number ("20").
	MinimumLevel string `json:"minimum_level"`

	// BusyTimeoutMS bounds the wait on another writer's lock. Zero uses the
	// driver default.
	BusyTimeoutMS int `json:"busy_timeout_ms"`
}

// Console configures the optional stderr text handler.
type Console struct {
	Enabled bool   `json:"enabled"`
	Level   string `json:"level"`
}

// Metrics selects the metrics backend.
type Metrics struct {
	// Backend is one of "none", "pushgateway", "datadog". Empty defers to
	// the METRICS_BACKEND environment variable.
	Backend        string `json:"backend"`
	PushgatewayURL string `json:"pushgateway_url"`
	DatadogAddr    string `json:"datadog_addr"`
}

// Default returns the configuration used when no file is given. It mirrors
// the classic demo: DEBUG to both console and logs.sqlite.
func Default() Config {
	return Config{
		Job:        "my-logger",
		Sink:       Sink{StoreLocation: "logs.sqlite", MinimumLevel: "DEBUG"},
		Console:    Console{Enabled: true, Level: "DEBUG"},
		TimeFormat: "01/02/2006 03:04:05 PM",
	}
}

// Load decodes the file at path over Default(). Unknown fields are rejected.
func Load(path string) (Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	if err != nil {
		return cfg, errors.Wrap(err, "config: open")
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, errors.Wrapf(err, "config: decode %s", path)
	}
	return cfg, nil
}

// MinLevel parses Sink.MinimumLevel.
func (c Config) MinLevel() (int, error) {
	return record.ParseLevel(c.Sink.MinimumLevel)
}

// ConsoleLevel parses Console.Level.
func (c Config) ConsoleLevel() (int, error) {
	return record.ParseLevel(c.Console.Level)
}

// BusyTimeout returns Sink.BusyTimeoutMS as a duration.
func (c Config) BusyTimeout() time.Duration {
	return time.Duration(c.Sink.BusyTimeoutMS) * time.Millisecond
}
