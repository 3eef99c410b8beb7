package sqlite

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const memoryDSN = ":memory:"

// Config holds SQLite connection configuration.
type Config struct {
	// DSN is a SQLite file path or URI filename, e.g.:
	//   "logs.sqlite"
	//   "file:/var/log/app/logs.sqlite?mode=ro"
	DSN string

	// BusyTimeout bounds how long a statement waits on a lock held by another
	// connection. Zero means DefaultBusyTimeout.
	BusyTimeout time.Duration

	// MustExist opens the store read-write without creating it, so a missing
	// file fails the open instead of leaving an empty database behind. It has
	// no effect when the DSN already sets a mode.
	MustExist bool
}

func (c Config) busyTimeout() time.Duration {
	if c.BusyTimeout <= 0 {
		return DefaultBusyTimeout
	}
	return c.BusyTimeout
}

// driverDSN returns the string handed to the driver. A plain path becomes a
// file: URI with the path escaped, so '?', '#' and '%' stay part of the file
// name rather than starting a query.
func (c Config) driverDSN() string {
	dsn := c.DSN
	if dsn != memoryDSN && !strings.HasPrefix(dsn, "file:") {
		dsn = (&url.URL{Scheme: "file", OmitHost: true, Path: dsn}).String()
	}

	params := []string{fmt.Sprintf("_pragma=busy_timeout(%d)", c.busyTimeout().Milliseconds())}
	if c.MustExist && !hasMode(dsn) {
		params = append(params, "mode=rw")
	}

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(params, "&")
}

func hasMode(dsn string) bool {
	_, query, ok := strings.Cut(dsn, "?")
	if !ok {
		return false
	}
	q, err := url.ParseQuery(query)
	return err == nil && q.Has("mode")
}
