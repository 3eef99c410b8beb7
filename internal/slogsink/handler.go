// Package slogsink lets a log/slog Logger drive an event sink.
//
// Handler converts each slog.Record into a record.Event: call-site fields come
// from the record's PC, process fields from the running process, and the
// record's attributes become the event's args. The first error-valued
// attribute fills the exception fields. Go exposes no OS-thread identity, so
// the thread fields are left absent.
//
// slog discards the error returned by Handle, so a failed write is also
// passed to Options.OnError; the default prints a notice with the standard
// log package and the application carries on.
package slogsink

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	"logsink/internal/record"
)

// DefaultTimeFormat renders asctime as e.g. "11/14/2023 10:13:20 PM".
const DefaultTimeFormat = "01/02/2006 03:04:05 PM"

// RootName is the logger name used when Options.Name is empty.
const RootName = "root"

// EventWriter is what the handler delivers events to. *sink.Sink satisfies it.
type EventWriter interface {
	Enabled(level int) bool
	Write(ctx context.Context, ev record.Event) error
}

// Options configures a Handler. The zero value is usable.
type Options struct {
	// Name is the logger name stored with every event.
	Name string

	// Level, when set, filters records before they reach the writer.
	Level slog.Leveler

	// TimeFormat is the Go layout used for the formatted timestamp.
	TimeFormat string

	// StackAt, when set, captures the goroutine stack for records at or
	// above this level.
	StackAt slog.Leveler

	// OnError receives every failed write.
	OnError func(error)
}

// Handler is a slog.Handler that writes each record through an EventWriter.
type Handler struct {
	w      EventWriter
	opts   Options
	start  time.Time
	prefix string // group prefix, e.g. "req.db."
	attrs  []slog.Attr

	pid   int64
	pname string
}

var _ slog.Handler = (*Handler)(nil)

// New returns a Handler writing to w.
func New(w EventWriter, opts *Options) *Handler {
	h := &Handler{w: w, start: time.Now(), pid: int64(os.Getpid()), pname: processName()}
	if opts != nil {
		h.opts = *opts
	}
	if h.opts.Name == "" {
		h.opts.Name = RootName
	}
	if h.opts.TimeFormat == "" {
		h.opts.TimeFormat = DefaultTimeFormat
	}
	if h.opts.OnError == nil {
		h.opts.OnError = func(err error) { log.Printf("slogsink: event not persisted: %v", err) }
	}
	return h
}

// processName is the base name of the running binary, or "" when the host
// left os.Args empty.
func processName() string {
	if len(os.Args) == 0 {
		return ""
	}
	return filepath.Base(os.Args[0])
}

// LevelNumber maps a slog level onto the numeric severity scale:
// Debug→10, Info→20, Warn→30, Error→40, and linearly in between.
func LevelNumber(l slog.Level) int {
	return record.Info + int(l)*5/2
}

// Named returns a child handler whose logger name is "<parent>.<name>".
func (h *Handler) Named(name string) *Handler {
	c := h.clone()
	if h.opts.Name == RootName {
		c.opts.Name = name
	} else {
		c.opts.Name = h.opts.Name + "." + name
	}
	return c
}

func (h *Handler) Enabled(_ context.Context, l slog.Level) bool {
	if h.opts.Level != nil && l < h.opts.Level.Level() {
		return false
	}
	return h.w.Enabled(LevelNumber(l))
}

func (h *Handler) WithAttrs(as []slog.Attr) slog.Handler {
	if len(as) == 0 {
		return h
	}
	c := h.clone()
	for _, a := range as {
		c.attrs = appendAttr(c.attrs, h.prefix, a)
	}
	return c
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := h.clone()
	c.prefix = h.prefix + name + "."
	return c
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	ev := h.event(r)
	if err := h.w.Write(ctx, ev); err != nil {
		h.opts.OnError(err)
		return err
	}
	return nil
}

func (h *Handler) event(r slog.Record) record.Event {
	t := r.Time
	if t.IsZero() {
		t = time.Now()
	}
	level := LevelNumber(r.Level)

	ev := record.Event{
		LoggerName:              h.opts.Name,
		RawMessage:              r.Message,
		LevelName:               record.String(record.LevelName(level)),
		LevelNumber:             level,
		CreatedAtEpoch:          record.Float(float64(t.UnixNano()) / 1e9),
		CreatedAtMillisFraction: record.Float(float64(t.Nanosecond()) / 1e6),
		ElapsedSinceStartMillis: record.Float(float64(t.Sub(h.start)) / float64(time.Millisecond)),
		ProcessID:               record.Int(h.pid),
		ProcessName:             record.String(h.pname),
		RenderedMessage:         record.String(r.Message),
		FormattedTimestamp:      record.String(t.Format(h.opts.TimeFormat)),
	}

	attrs := make([]slog.Attr, len(h.attrs), len(h.attrs)+r.NumAttrs())
	copy(attrs, h.attrs)
	r.Attrs(func(a slog.Attr) bool {
		attrs = appendAttr(attrs, h.prefix, a)
		return true
	})
	if len(attrs) > 0 {
		ev.Args = make([]any, len(attrs))
		for i, a := range attrs {
			ev.Args[i] = a
			if ev.ExceptionSummary == nil {
				if err, ok := a.Value.Any().(error); ok && err != nil {
					ev.ExceptionSummary = record.String(err.Error())
					ev.ExceptionText = record.String(fmt.Sprintf("%+v", err))
				}
			}
		}
	}

	if r.PC != 0 {
		fillSource(&ev, r.PC)
	}
	if h.opts.StackAt != nil && r.Level >= h.opts.StackAt.Level() {
		ev.StackInfo = record.String(string(debug.Stack()))
	}
	return ev
}

// fillSource sets the call-site fields from pc. Function names such as
// "example.com/app/db.(*Conn).Query" split into module "example.com/app/db"
// and function "(*Conn).Query".
func fillSource(ev *record.Event, pc uintptr) {
	f, _ := runtime.CallersFrames([]uintptr{pc}).Next()
	if f.File != "" {
		ev.SourcePath = record.String(f.File)
		ev.SourceFile = record.String(filepath.Base(f.File))
	}
	if f.Line > 0 {
		ev.LineNumber = record.Int(int64(f.Line))
	}
	if f.Function != "" {
		pkg, fn := splitFunction(f.Function)
		ev.ModuleName = record.String(pkg)
		ev.FunctionName = record.String(fn)
	}
}

func splitFunction(full string) (pkg, fn string) {
	slash := strings.LastIndexByte(full, '/')
	dot := strings.IndexByte(full[slash+1:], '.')
	if dot < 0 {
		return "", full
	}
	dot += slash + 1
	return full[:dot], full[dot+1:]
}

// appendAttr resolves a and appends it, flattening groups into dotted keys.
func appendAttr(dst []slog.Attr, prefix string, a slog.Attr) []slog.Attr {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return dst
	}
	if a.Value.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p = prefix + a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			dst = appendAttr(dst, p, ga)
		}
		return dst
	}
	a.Key = prefix + a.Key
	return append(dst, a)
}

func (h *Handler) clone() *Handler {
	c := *h
	c.attrs = append([]slog.Attr(nil), h.attrs...)
	return &c
}
