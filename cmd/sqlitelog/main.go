package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"logsink/internal/config"
	"logsink/internal/metrics"
	"logsink/internal/metrics/datadog"
	"logsink/internal/metrics/prompush"
	"logsink/internal/sink"
	"logsink/internal/slogsink"
)

// main wires a console handler and the SQLite sink into one slog.Logger and
// emits the demo events.
func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("sqlitelog", flag.ContinueOnError)
	var (
		cfgPath           = fs.String("config", "", "optional JSON config path")
		dbPath            = fs.String("db", "", "SQLite store location (overrides sink.store_location)")
		level             = fs.String("level", "", "minimum level persisted, name or number (overrides sink.minimum_level)")
		metricsBackendFlg = fs.String("metrics-backend", "", "metrics backend to use (none, pushgateway, datadog)")
		pushGatewayURLFlg = fs.String("pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
		datadogAddrFlg    = fs.String("datadog-addr", "", "DogStatsD address, e.g. 127.0.0.1:8125")
		validate          = fs.Bool("validate", false, "validate the configuration and exit")
		verbose           = fs.Bool("v", false, "enable verbose logs")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			log.Printf("%v", err)
			return 1
		}
	}
	if *dbPath != "" {
		cfg.Sink.StoreLocation = *dbPath
	}
	if *level != "" {
		cfg.Sink.MinimumLevel = *level
	}
	if *metricsBackendFlg != "" {
		cfg.Metrics.Backend = *metricsBackendFlg
	}
	if *pushGatewayURLFlg != "" {
		cfg.Metrics.PushgatewayURL = *pushGatewayURLFlg
	}
	if *datadogAddrFlg != "" {
		cfg.Metrics.DatadogAddr = *datadogAddrFlg
	}

	issues := config.Validate(cfg)
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		log.Printf("Configuration is invalid")
		return 1
	}
	if *validate {
		log.Printf("Configuration is valid")
		return 0
	}

	if flush := setupMetrics(cfg, *verbose); flush != nil {
		defer flush()
	}

	logger := newLogger(context.Background(), cfg)
	logger.Info("hello from logger")
	logger.Error("this is an error message")
	return 0
}

// newLogger builds the console handler and the SQLite handler. When the store
// is unavailable the program keeps running with console output only.
func newLogger(ctx context.Context, cfg config.Config) *slog.Logger {
	var handlers []slog.Handler

	if cfg.Console.Enabled {
		lvl, _ := cfg.ConsoleLevel()
		handlers = append(handlers, slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: consoleLevel(lvl),
		}))
	}

	minLevel, _ := cfg.MinLevel()
	s, err := sink.New(ctx, sink.Config{
		Location:    cfg.Sink.StoreLocation,
		MinLevel:    minLevel,
		BusyTimeout: cfg.BusyTimeout(),
	})
	if err != nil {
		log.Printf("sqlite sink disabled, logging to console only: %v", err)
	} else {
		handlers = append(handlers, slogsink.New(s, &slogsink.Options{
			Name:       cfg.Job,
			TimeFormat: cfg.TimeFormat,
		}))
	}

	return slog.New(tee(handlers))
}

// consoleLevel inverts slogsink.LevelNumber for the console handler.
func consoleLevel(n int) slog.Level {
	return slog.Level((n - 20) * 2 / 5)
}

func setupMetrics(cfg config.Config, verbose bool) func() {
	backendName := cfg.Metrics.Backend
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}

	var (
		b   metrics.Backend
		err error
	)
	switch backendName {
	case "pushgateway":
		gwURL := cfg.Metrics.PushgatewayURL
		if gwURL == "" {
			gwURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}
		b, err = prompush.NewBackend(cfg.Job, gwURL)
		if err == nil {
			log.Printf("metrics: url=%v, backend=%v, job_name=%v", gwURL, backendName, cfg.Job)
		}

	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       cfg.Metrics.DatadogAddr,
			GlobalTags: []string{"job:" + cfg.Job},
		})

	case "", "none":
		if verbose {
			log.Printf("metrics: disabled (backend=%q)", backendName)
		}
		return nil

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
		return nil
	}

	if err != nil {
		log.Printf("metrics: failed to init %s backend: %v; using nop", backendName, err)
		return nil
	}
	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}
}
