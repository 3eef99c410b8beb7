package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

/*
Package-level test helpers (TB-aware)
*/

func tempDSN(tb testing.TB) string {
	tb.Helper()
	return filepath.Join(tb.TempDir(), "logs.sqlite")
}

func newRepo(tb testing.TB, dsn string) *Repository {
	tb.Helper()
	r, closeFn, err := NewRepository(context.Background(), Config{DSN: dsn})
	if err != nil {
		tb.Fatalf("NewRepository(%q): %v", dsn, err)
	}
	tb.Cleanup(closeFn)
	return r
}

func countRows(tb testing.TB, r *Repository, table string) int {
	tb.Helper()
	var n int
	if err := r.DB().QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&n); err != nil {
		tb.Fatalf("count %s: %v", table, err)
	}
	return n
}

/*
Unit tests
*/

func TestNewRepositoryEmptyDSN(t *testing.T) {
	t.Parallel()

	if _, _, err := NewRepository(context.Background(), Config{DSN: "  "}); err == nil {
		t.Fatalf("NewRepository(empty) error = nil, want non-nil")
	}
}

// TestNewRepositoryUnopenable verifies that a path under a missing directory
// fails at construction time rather than on first use.
func TestNewRepositoryUnopenable(t *testing.T) {
	t.Parallel()

	dsn := filepath.Join(t.TempDir(), "missing", "dir", "logs.sqlite")
	_, _, err := NewRepository(context.Background(), Config{DSN: dsn})
	if err == nil {
		t.Fatalf("NewRepository(%q) error = nil, want non-nil", dsn)
	}
	if !strings.Contains(err.Error(), "sqlite: ping") {
		t.Fatalf("error = %v, want sqlite: ping prefix", err)
	}
}

// TestInsertRowCommits verifies that InsertRow commits a row that is visible
// from an independent connection.
func TestInsertRowCommits(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dsn := tempDSN(t)
	r := newRepo(t, dsn)

	if err := r.Exec(ctx, `CREATE TABLE t (id INTEGER, name TEXT)`); err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if err := r.InsertRow(ctx, `INSERT INTO t (id, name) VALUES (:id, :name)`,
		sql.Named("id", 1), sql.Named("name", "x")); err != nil {
		t.Fatalf("InsertRow: %v", err)
	}

	other := newRepo(t, dsn)
	if got := countRows(t, other, "t"); got != 1 {
		t.Fatalf("rows = %d, want 1", got)
	}
}

// TestInsertRowFailureLeavesNoRow verifies rollback on a failing statement.
func TestInsertRowFailureLeavesNoRow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := newRepo(t, tempDSN(t))

	if err := r.Exec(ctx, `CREATE TABLE t (id INTEGER NOT NULL)`); err != nil {
		t.Fatalf("Exec: %v", err)
	}
	err := r.InsertRow(ctx, `INSERT INTO t (id) VALUES (:id)`, sql.Named("id", nil))
	if err == nil {
		t.Fatalf("InsertRow(NULL into NOT NULL) error = nil, want non-nil")
	}
	if !strings.Contains(err.Error(), "sqlite: insert") {
		t.Fatalf("error = %v, want sqlite: insert prefix", err)
	}
	if got := countRows(t, r, "t"); got != 0 {
		t.Fatalf("rows = %d, want 0", got)
	}
}

func TestExecEmptyIsNoop(t *testing.T) {
	t.Parallel()

	r := newRepo(t, tempDSN(t))
	if err := r.Exec(context.Background(), "   "); err != nil {
		t.Fatalf("Exec(empty) error = %v", err)
	}
}

// TestWithRepositoryReleases verifies that fn's error is returned and that the
// connection is closed afterwards.
func TestWithRepositoryReleases(t *testing.T) {
	t.Parallel()

	var held *Repository
	wantErr := context.Canceled
	err := WithRepository(context.Background(), Config{DSN: tempDSN(t)}, func(r *Repository) error {
		held = r
		return wantErr
	})
	if err != wantErr {
		t.Fatalf("WithRepository error = %v, want %v", err, wantErr)
	}
	if err := held.DB().Ping(); err == nil {
		t.Fatalf("Ping after release error = nil, want closed database error")
	}
}

func TestIsMemoryDSN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		dsn  string
		want bool
	}{
		{":memory:", true},
		{" :memory: ", true},
		{"file::memory:?cache=shared", true},
		{"file:logs?mode=memory", true},
		{"logs.sqlite", false},
		{"logs?mode=memory", false},
		{"file:", true},
		{"file:/tmp/logs.sqlite?mode=ro", false},
		{"/var/log/app/logs.sqlite", false},
	}
	for _, tt := range tests {
		if got := IsMemoryDSN(tt.dsn); got != tt.want {
			t.Errorf("IsMemoryDSN(%q) = %v, want %v", tt.dsn, got, tt.want)
		}
	}
}

func TestDriverDSN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"relative path", Config{DSN: "logs.sqlite"}, "file:logs.sqlite?_pragma=busy_timeout(5000)"},
		{"absolute path", Config{DSN: "/var/log/logs.sqlite", BusyTimeout: time.Second}, "file:/var/log/logs.sqlite?_pragma=busy_timeout(1000)"},
		{"question mark in path", Config{DSN: "/tmp/app?v1.sqlite"}, "file:/tmp/app%3Fv1.sqlite?_pragma=busy_timeout(5000)"},
		{"percent and space", Config{DSN: "my logs%.db"}, "file:my%20logs%25.db?_pragma=busy_timeout(5000)"},
		{"uri keeps query", Config{DSN: "file:x.db?mode=ro", BusyTimeout: time.Second}, "file:x.db?mode=ro&_pragma=busy_timeout(1000)"},
		{"memory", Config{DSN: ":memory:"}, ":memory:?_pragma=busy_timeout(5000)"},
		{"must exist", Config{DSN: "logs.sqlite", MustExist: true}, "file:logs.sqlite?_pragma=busy_timeout(5000)&mode=rw"},
		{"must exist keeps caller mode", Config{DSN: "file:x.db?mode=ro", MustExist: true}, "file:x.db?mode=ro&_pragma=busy_timeout(5000)"},
	}
	for _, tt := range tests {
		if got := tt.cfg.driverDSN(); got != tt.want {
			t.Errorf("%s: driverDSN() = %q, want %q", tt.name, got, tt.want)
		}
	}
	if got := (Config{}).busyTimeout(); got != DefaultBusyTimeout {
		t.Fatalf("default busy timeout = %v, want %v", got, DefaultBusyTimeout)
	}
}

// TestNewRepositoryOpensLiteralPath verifies that URI metacharacters in a
// plain path name the file itself.
func TestNewRepositoryOpensLiteralPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{"app?v1.sqlite", "app?v2.sqlite", "a#b.sqlite"} {
		dsn := filepath.Join(dir, name)
		r := newRepo(t, dsn)
		if err := r.Exec(context.Background(), `CREATE TABLE t (id INTEGER)`); err != nil {
			t.Fatalf("Exec on %q: %v", name, err)
		}
		if _, err := os.Stat(dsn); err != nil {
			t.Fatalf("stat %q: %v", dsn, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "app")); !os.IsNotExist(err) {
		t.Fatalf("stat truncated path error = %v, want not exist", err)
	}
}

// TestNewRepositoryMustExist verifies that a missing store is not created.
func TestNewRepositoryMustExist(t *testing.T) {
	t.Parallel()

	dsn := tempDSN(t)
	if _, _, err := NewRepository(context.Background(), Config{DSN: dsn, MustExist: true}); err == nil {
		t.Fatalf("NewRepository(missing, MustExist) error = nil, want non-nil")
	}
	if _, err := os.Stat(dsn); !os.IsNotExist(err) {
		t.Fatalf("stat %q error = %v, want not exist", dsn, err)
	}

	newRepo(t, dsn)
	r, closeFn, err := NewRepository(context.Background(), Config{DSN: dsn, MustExist: true})
	if err != nil {
		t.Fatalf("NewRepository(existing, MustExist): %v", err)
	}
	defer closeFn()
	if err := r.Exec(context.Background(), `CREATE TABLE t (id INTEGER)`); err != nil {
		t.Fatalf("Exec: %v", err)
	}
}
