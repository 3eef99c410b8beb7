package record

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Standard severity numbers. Values are monotonically comparable; any integer
// is a valid level.
const (
	NotSet   = 0
	Debug    = 10
	Info     = 20
	Warning  = 30
	Error    = 40
	Critical = 50
)

var levelNames = map[int]string{
	NotSet:   "NOTSET",
	Debug:    "DEBUG",
	Info:     "INFO",
	Warning:  "WARNING",
	Error:    "ERROR",
	Critical: "CRITICAL",
}

var namedLevels = map[string]int{
	"NOTSET":   NotSet,
	"DEBUG":    Debug,
	"INFO":     Info,
	"WARN":     Warning,
	"WARNING":  Warning,
	"ERROR":    Error,
	"CRITICAL": Critical,
	"FATAL":    Critical,
}

// LevelName returns the canonical name for n, or "Level n" when n has no name.
func LevelName(n int) string {
	if s, ok := levelNames[n]; ok {
		return s
	}
	return "Level " + strconv.Itoa(n)
}

// ParseLevel accepts a level name (case-insensitive) or a decimal number.
func ParseLevel(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("record: empty level")
	}
	if n, ok := namedLevels[cases.Upper(language.Und).String(s)]; ok {
		return n, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Newf("record: unknown level %q", s)
	}
	return n, nil
}
