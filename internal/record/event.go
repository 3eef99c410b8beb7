// Package record defines the log event consumed by the sink and the numeric
// severity scale it is filtered on.
//
// Every optional attribute is a pointer: nil means "absent" and is stored as
// SQL NULL, which keeps "no exception" distinct from "empty exception text".
package record

// Event is one structured diagnostic record produced by a logging framework.
// The sink only reads it.
type Event struct {
	// LoggerName is the name of the emitting logger. Required.
	LoggerName string
	// RawMessage is the unformatted message template. Required.
	RawMessage string
	// Args are the values used to interpolate RawMessage; nil when absent.
	Args []any

	LevelName   *string
	LevelNumber int // required

	SourcePath   *string
	SourceFile   *string
	ModuleName   *string
	FunctionName *string
	LineNumber   *int64

	ExceptionSummary *string
	ExceptionText    *string
	StackInfo        *string

	CreatedAtEpoch          *float64 // seconds since the Unix epoch
	CreatedAtMillisFraction *float64 // millisecond portion of CreatedAtEpoch
	ElapsedSinceStartMillis *float64

	ThreadID    *int64
	ThreadName  *string
	ProcessID   *int64
	ProcessName *string

	RenderedMessage    *string
	FormattedTimestamp *string
}

// String returns a pointer to s, for filling optional Event fields.
func String(s string) *string { return &s }

// Int returns a pointer to n.
func Int(n int64) *int64 { return &n }

// Float returns a pointer to f.
func Float(f float64) *float64 { return &f }
