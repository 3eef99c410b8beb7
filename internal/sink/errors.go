package sink

import (
	"github.com/cockroachdb/errors"

	"logsink/internal/schema"
)

// ErrStoreUnavailable marks construction failures: the store could not be
// opened or the LOGS table could not be created or verified.
var ErrStoreUnavailable = schema.ErrStoreUnavailable

// ErrWriteFailed marks a single Write that could not open the store, insert
// the row, or commit. The event is not persisted; the underlying store error
// stays reachable through the chain.
var ErrWriteFailed = errors.New("write failed")

func storeUnavailable(err error, format string, args ...any) error {
	return errors.Mark(errors.Wrapf(err, format, args...), ErrStoreUnavailable)
}

func writeFailed(err error, format string, args ...any) error {
	return errors.Mark(errors.Wrapf(err, format, args...), ErrWriteFailed)
}
