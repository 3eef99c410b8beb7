// Package sink persists log events, one row per event, into the LOGS table of
// an embedded SQLite store.
//
// A Sink is synchronous: Write blocks until the row is committed or the write
// fails. Each Write opens its own connection, runs one INSERT in its own
// transaction, commits, and releases the connection on every exit path.
// There is no pooling, buffering, batching or retry.
//
// Sinks hold no in-process lock. Several sinks, goroutines or processes may
// write to the same store; they serialize on SQLite's own file lock (waiting
// up to the busy timeout), so many high-frequency writers from separate
// processes will contend and may fail with a busy error.
package sink

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"logsink/internal/metrics"
	"logsink/internal/record"
	"logsink/internal/schema"
	"logsink/internal/storage/sqlite"
)

// Config configures a Sink.
type Config struct {
	// Location is the store's file path or SQLite URI filename. In-memory
	// databases are rejected: each write uses a fresh connection and would
	// see an empty store.
	Location string

	// MinLevel is the lowest level number this sink persists.
	MinLevel int

	// BusyTimeout bounds the wait on another writer's lock. Zero means
	// sqlite.DefaultBusyTimeout.
	BusyTimeout time.Duration
}

// Sink writes log events to the LOGS table. It is safe for concurrent use.
type Sink struct {
	store    sqlite.Config
	minLevel int
	insert   string
}

// New ensures the LOGS table exists at cfg.Location and returns a Sink that
// accepts events at or above cfg.MinLevel. All failures are marked with
// ErrStoreUnavailable and no Sink is returned.
func New(ctx context.Context, cfg Config) (*Sink, error) {
	loc := strings.TrimSpace(cfg.Location)
	if loc == "" {
		return nil, storeUnavailable(errors.New("empty store location"), "sink: new")
	}
	if sqlite.IsMemoryDSN(loc) {
		return nil, storeUnavailable(errors.Newf("in-memory store %q does not persist across connections", loc), "sink: new")
	}

	insert, err := schema.InsertSQL()
	if err != nil {
		return nil, storeUnavailable(err, "sink: new")
	}

	store := sqlite.Config{DSN: loc, BusyTimeout: cfg.BusyTimeout}
	if err := schema.Ensure(ctx, store); err != nil {
		return nil, storeUnavailable(err, "sink: new %s", loc)
	}

	// Writes never create the store; a file removed after New fails the write.
	store.MustExist = true
	return &Sink{store: store, minLevel: cfg.MinLevel, insert: insert}, nil
}

// Location returns the store location the sink writes to.
func (s *Sink) Location() string { return s.store.DSN }

// MinLevel returns the lowest level number the sink persists.
func (s *Sink) MinLevel() int { return s.minLevel }

// Enabled reports whether an event at level would be persisted.
func (s *Sink) Enabled(level int) bool { return level >= s.minLevel }

// Write persists ev as one LOGS row. Events below the sink's minimum level
// are skipped without error. Any open, insert or commit failure is marked
// with ErrWriteFailed; nothing is retried and no partial row is left behind.
//
// The sink adds no deadline of its own; ctx only matters if the caller gives
// it one.
func (s *Sink) Write(ctx context.Context, ev record.Event) (err error) {
	if !s.Enabled(ev.LevelNumber) {
		metrics.RecordFiltered(record.LevelName(ev.LevelNumber))
		return nil
	}

	start := time.Now()
	defer func() { metrics.RecordWrite(err, time.Since(start)) }()

	err = sqlite.WithRepository(ctx, s.store, func(r *sqlite.Repository) error {
		return r.InsertRow(ctx, s.insert, namedArgs(ev)...)
	})
	if err != nil {
		return writeFailed(err, "sink: write %s event from %q", record.LevelName(ev.LevelNumber), ev.LoggerName)
	}
	return nil
}
