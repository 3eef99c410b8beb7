// Package ddl provides SQLite-specific helpers for generating CREATE TABLE and
// INSERT statements from the generic ddl.TableDef model.
//
// The builder here:
//   - Uses simple double-quoted identifiers: "table", "col".
//   - Emits CREATE TABLE IF NOT EXISTS, so applying it twice is a no-op.
//   - Emits INSERT statements with one named parameter per column
//     (":col"), bound with sql.Named.
package ddl

import (
	"strings"

	"github.com/cockroachdb/errors"

	gddl "logsink/internal/ddl"
)

// BuildCreateTableSQL returns a SQLite CREATE TABLE statement for the given
// table definition. The statement has the form:
//
//	CREATE TABLE IF NOT EXISTS "table" (
//	  "col1" TYPE [NOT NULL],
//	  "col2" TYPE
//	);
//
// TableDef.FQN is interpreted as a table name; if it contains dots (e.g.,
// "main.LOGS"), each segment is individually quoted.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	fqn, err := validate(t)
	if err != nil {
		return "", err
	}

	cols := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		var sb strings.Builder
		sb.WriteString(quoteIdent(strings.TrimSpace(c.Name)))
		sb.WriteByte(' ')
		sb.WriteString(strings.TrimSpace(c.SQLType))
		if !c.Nullable {
			sb.WriteString(" NOT NULL")
		}
		cols = append(cols, sb.String())
	}

	return "CREATE TABLE IF NOT EXISTS " + quoteFQN(fqn) +
		" (\n  " + strings.Join(cols, ",\n  ") + "\n);", nil
}

// BuildInsertSQL returns a single-row INSERT statement that binds every column
// by name:
//
//	INSERT INTO "table" ("col1", "col2") VALUES (:col1, :col2);
//
// Column names are used verbatim as parameter names, so callers bind values
// with sql.Named(col, v).
func BuildInsertSQL(t gddl.TableDef) (string, error) {
	fqn, err := validate(t)
	if err != nil {
		return "", err
	}

	cols := make([]string, len(t.Columns))
	params := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if !isParamName(name) {
			return "", errors.Newf("sqlite ddl: column %q cannot be used as a named parameter", name)
		}
		cols[i] = quoteIdent(name)
		params[i] = ":" + name
	}

	return "INSERT INTO " + quoteFQN(fqn) +
		" (" + strings.Join(cols, ", ") + ") VALUES (" + strings.Join(params, ", ") + ");", nil
}

func validate(t gddl.TableDef) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", errors.New("sqlite ddl: table FQN must not be empty")
	}
	if len(t.Columns) == 0 {
		return "", errors.New("sqlite ddl: at least one column is required")
	}
	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", errors.Newf("sqlite ddl: column with empty name in table %s", fqn)
		}
		if strings.TrimSpace(c.SQLType) == "" {
			return "", errors.Newf("sqlite ddl: column %s missing SQLType", name)
		}
	}
	return fqn, nil
}

// isParamName reports whether s is a valid SQLite parameter identifier: ASCII
// letters, digits and underscores, not starting with a digit.
func isParamName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

func quoteFQN(fqn string) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, quoteIdent(p))
	}
	return strings.Join(out, ".")
}
