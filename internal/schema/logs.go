// Package schema owns the fixed LOGS table layout and makes sure it exists in
// a store before anything is written to it.
//
// Column names and their order are part of the on-disk contract: external
// tooling reads the table directly, so they never change.
package schema

import (
	"context"
	"database/sql"
	"slices"
	"sync"

	"github.com/cockroachdb/errors"

	"logsink/internal/ddl"
	"logsink/internal/storage/sqlite"
	sqliteddl "logsink/internal/storage/sqlite/ddl"
)

// Table is the name of the log table.
const Table = "LOGS"

// Column names, in table order.
const (
	ColName            = "name"
	ColMsg             = "msg"
	ColArgs            = "args"
	ColLevelName       = "levelname"
	ColLevelNo         = "levelno"
	ColPathName        = "pathname"
	ColFileName        = "filename"
	ColModule          = "module"
	ColExcInfo         = "exc_info"
	ColExcText         = "exc_test"
	ColStackInfo       = "stack_info"
	ColLineNo          = "lineno"
	ColFuncName        = "funcName"
	ColCreated         = "created"
	ColMsecs           = "msecs"
	ColRelativeCreated = "relativeCreated"
	ColThread          = "thread"
	ColThreadName      = "threadName"
	ColProcessName     = "processName"
	ColProcess         = "process"
	ColMessage         = "message"
	ColAscTime         = "asctime"
)

// ErrStoreUnavailable marks errors where the store could not be opened or the
// LOGS table could not be created or verified.
var ErrStoreUnavailable = errors.New("store unavailable")

// Logs returns the LOGS table definition. Every column is nullable; there is
// no primary key and no uniqueness constraint, rows are append-only.
func Logs() ddl.TableDef {
	col := func(name, typ string) ddl.ColumnDef {
		return ddl.ColumnDef{Name: name, SQLType: typ, Nullable: true}
	}
	return ddl.TableDef{
		FQN: Table,
		Columns: []ddl.ColumnDef{
			col(ColName, "TEXT"),
			col(ColMsg, "TEXT"),
			col(ColArgs, "TEXT"),
			col(ColLevelName, "TEXT"),
			col(ColLevelNo, "INTEGER"),
			col(ColPathName, "TEXT"),
			col(ColFileName, "TEXT"),
			col(ColModule, "TEXT"),
			col(ColExcInfo, "TEXT"),
			col(ColExcText, "TEXT"),
			col(ColStackInfo, "TEXT"),
			col(ColLineNo, "INTEGER"),
			col(ColFuncName, "TEXT"),
			col(ColCreated, "REAL"),
			col(ColMsecs, "REAL"),
			col(ColRelativeCreated, "REAL"),
			col(ColThread, "INTEGER"),
			col(ColThreadName, "TEXT"),
			col(ColProcessName, "TEXT"),
			col(ColProcess, "INTEGER"),
			col(ColMessage, "TEXT"),
			col(ColAscTime, "TEXT"),
		},
	}
}

var (
	stmtsOnce sync.Once
	createSQL string
	insertSQL string
	stmtsErr  error
)

func statements() (string, string, error) {
	stmtsOnce.Do(func() {
		createSQL, stmtsErr = sqliteddl.BuildCreateTableSQL(Logs())
		if stmtsErr != nil {
			return
		}
		insertSQL, stmtsErr = sqliteddl.BuildInsertSQL(Logs())
	})
	return createSQL, insertSQL, stmtsErr
}

// CreateSQL returns the idempotent CREATE TABLE statement for LOGS.
func CreateSQL() (string, error) {
	c, _, err := statements()
	return c, err
}

// InsertSQL returns the single-row INSERT for LOGS with one named parameter
// per column.
func InsertSQL() (string, error) {
	_, i, err := statements()
	return i, err
}

// Ensure opens the store, creates LOGS if it is absent, checks that an
// existing table has the expected columns, and releases the connection.
// Calling it repeatedly is safe. Every failure is marked with
// ErrStoreUnavailable.
func Ensure(ctx context.Context, cfg sqlite.Config) error {
	create, err := CreateSQL()
	if err != nil {
		return errors.Mark(errors.Wrap(err, "schema: build DDL"), ErrStoreUnavailable)
	}

	err = sqlite.WithRepository(ctx, cfg, func(r *sqlite.Repository) error {
		if err := r.Exec(ctx, create); err != nil {
			return err
		}
		return verify(ctx, r.DB())
	})
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "schema: ensure %s", Table), ErrStoreUnavailable)
	}
	return nil
}

// verify compares the live column list against Logs().
func verify(ctx context.Context, db *sql.DB) error {
	got, err := Columns(ctx, db)
	if err != nil {
		return err
	}
	if want := Logs().ColumnNames(); !slices.Equal(got, want) {
		return errors.Newf("existing %s table has columns %v, want %v", Table, got, want)
	}
	return nil
}

// Columns lists the column names of LOGS in table order as stored by SQLite.
func Columns(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT name FROM pragma_table_info('`+Table+`') ORDER BY cid`)
	if err != nil {
		return nil, errors.Wrap(err, "sqlite: table info")
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrap(err, "sqlite: scan table info")
		}
		cols = append(cols, name)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "sqlite: table info")
	}
	return cols, nil
}
