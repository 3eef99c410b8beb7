package sink

import (
	"database/sql"
	"fmt"

	"logsink/internal/record"
	"logsink/internal/schema"
)

// namedArgs maps every Event attribute onto its LOGS column. Nil attributes
// bind as SQL NULL. Args are stored as display text, not structurally: the
// column is TEXT and the original values may be of any type.
func namedArgs(ev record.Event) []any {
	return []any{
		sql.Named(schema.ColName, ev.LoggerName),
		sql.Named(schema.ColMsg, ev.RawMessage),
		sql.Named(schema.ColArgs, renderArgs(ev.Args)),
		sql.Named(schema.ColLevelName, text(ev.LevelName)),
		sql.Named(schema.ColLevelNo, int64(ev.LevelNumber)),
		sql.Named(schema.ColPathName, text(ev.SourcePath)),
		sql.Named(schema.ColFileName, text(ev.SourceFile)),
		sql.Named(schema.ColModule, text(ev.ModuleName)),
		sql.Named(schema.ColExcInfo, text(ev.ExceptionSummary)),
		sql.Named(schema.ColExcText, text(ev.ExceptionText)),
		sql.Named(schema.ColStackInfo, text(ev.StackInfo)),
		sql.Named(schema.ColLineNo, integer(ev.LineNumber)),
		sql.Named(schema.ColFuncName, text(ev.FunctionName)),
		sql.Named(schema.ColCreated, number(ev.CreatedAtEpoch)),
		sql.Named(schema.ColMsecs, number(ev.CreatedAtMillisFraction)),
		sql.Named(schema.ColRelativeCreated, number(ev.ElapsedSinceStartMillis)),
		sql.Named(schema.ColThread, integer(ev.ThreadID)),
		sql.Named(schema.ColThreadName, text(ev.ThreadName)),
		sql.Named(schema.ColProcessName, text(ev.ProcessName)),
		sql.Named(schema.ColProcess, integer(ev.ProcessID)),
		sql.Named(schema.ColMessage, text(ev.RenderedMessage)),
		sql.Named(schema.ColAscTime, text(ev.FormattedTimestamp)),
	}
}

// renderArgs returns the display text of args, or nil when there are none
// to record. The rendering is lossy by contract.
func renderArgs(args []any) any {
	if args == nil {
		return nil
	}
	return fmt.Sprint(args)
}

func text(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func integer(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

func number(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
