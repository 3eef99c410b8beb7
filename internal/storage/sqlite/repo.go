// Package sqlite implements the SQLite connection lifecycle used by the schema
// manager and the log sink, on top of database/sql and the pure-Go
// modernc.org/sqlite driver.
//
// A Repository wraps exactly one physical connection. Callers open one per
// unit of work and release it with the returned close function; nothing is
// pooled or shared across calls.
package sqlite

import (
	"context"
	"database/sql"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	_ "modernc.org/sqlite"
)

// DefaultBusyTimeout is how long a connection waits on another writer's lock
// before SQLite reports SQLITE_BUSY.
const DefaultBusyTimeout = 5 * time.Second

// Repository is a single-connection handle to a SQLite store.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// NewRepository opens a SQLite connection using the provided DSN and returns
// a Repository plus a Close function for cleanup. The connection is
// established eagerly so an unreachable store fails here rather than on the
// first statement.
//
// A plain DSN is a filesystem path and is opened as that exact file; a DSN
// starting with "file:" is a SQLite URI filename and keeps its query. For
// example:
//
//	"logs.sqlite"
//	"/var/log/app/logs?v2.sqlite"
//	"file:/var/log/app/logs.sqlite?mode=rw"
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, errors.New("sqlite: DSN must not be empty")
	}

	db, err := sql.Open("sqlite", cfg.driverDSN())
	if err != nil {
		return nil, nil, errors.Wrap(err, "sqlite: open")
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, errors.Wrap(err, "sqlite: ping")
	}

	closeFn := func() { _ = db.Close() }
	return &Repository{db: db, cfg: cfg}, closeFn, nil
}

// Exec executes an arbitrary SQL statement (typically DDL) in autocommit mode.
func (r *Repository) Exec(ctx context.Context, stmt string) error {
	if strings.TrimSpace(stmt) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, stmt); err != nil {
		return errors.Wrap(err, "sqlite: exec")
	}
	return nil
}

// InsertRow executes a single-row INSERT inside its own transaction and
// commits it. Either the row is committed or the transaction is rolled back;
// no partial row is ever visible.
func (r *Repository) InsertRow(ctx context.Context, stmt string, args ...any) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "sqlite: begin tx")
	}

	res, err := tx.ExecContext(ctx, stmt, args...)
	if err != nil {
		_ = tx.Rollback()
		return errors.Wrap(err, "sqlite: insert")
	}
	if n, err := res.RowsAffected(); err == nil && n != 1 {
		_ = tx.Rollback()
		return errors.Newf("sqlite: insert: affected %d rows, want 1", n)
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "sqlite: commit")
	}
	return nil
}

// DB exposes the underlying handle for read-side callers such as tests and
// tooling that inspect the store directly.
func (r *Repository) DB() *sql.DB { return r.db }

// WithRepository opens a Repository, runs fn, and releases the connection on
// every exit path.
func WithRepository(ctx context.Context, cfg Config, fn func(*Repository) error) error {
	r, closeFn, err := NewRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeFn()
	return fn(r)
}

// IsMemoryDSN reports whether dsn names an in-memory database. Such a store
// does not outlive its connection. Only ":memory:" and URI filenames can
// name one; any other DSN is a file path, whatever characters it contains.
func IsMemoryDSN(dsn string) bool {
	dsn = strings.TrimSpace(dsn)
	if dsn == memoryDSN {
		return true
	}
	rest, ok := strings.CutPrefix(dsn, "file:")
	if !ok {
		return false
	}
	path, query, _ := strings.Cut(rest, "?")
	if path == "" || path == memoryDSN {
		return true
	}
	q, err := url.ParseQuery(query)
	return err == nil && q.Get("mode") == "memory"
}
