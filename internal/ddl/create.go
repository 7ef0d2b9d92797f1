// Package ddl defines a small, backend-agnostic model for SQL DDL and a
// helper to render CREATE TABLE statements from that model.
//
// The zero Options render a plain statement: identifiers and types are
// emitted as-is and no IF NOT EXISTS clause is added. Backends pass Options
// that quote identifiers, map logical types, and render identity columns in
// their own dialect.
package ddl

import (
	"fmt"
	"strings"
)

// Options adapt BuildCreateTableSQL to a SQL dialect.
type Options struct {
	// Quote quotes one identifier segment. Nil leaves names untouched.
	Quote func(string) string

	// MapType translates a logical type into a concrete SQL type. Nil
	// emits ColumnDef.SQLType verbatim.
	MapType func(string) string

	// Identity renders the type clause of an AutoIncrement column. When
	// inlinePK is true the column carries its own PRIMARY KEY and is left
	// out of the table-level constraint (SQLite).
	Identity func(c ColumnDef) (clause string, inlinePK bool)

	// IfNotExists adds IF NOT EXISTS after CREATE TABLE.
	IfNotExists bool
}

func (o Options) quote(s string) string {
	if o.Quote == nil {
		return s
	}
	return o.Quote(s)
}

func (o Options) quoteFQN(fqn string) string {
	if o.Quote == nil {
		return fqn
	}
	parts := strings.Split(fqn, ".")
	for i, p := range parts {
		parts[i] = o.Quote(p)
	}
	return strings.Join(parts, ".")
}

// BuildCreateTableSQL renders a CREATE TABLE statement from a TableDef.
//
// Rules:
//
//   - t.FQN must be non-empty.
//
//   - Each column must have a non-empty Name and SQLType.
//
//   - A column is rendered as
//
//     <Name> <SQLType> [NOT NULL] [DEFAULT <Default>]
//
//     unless it is an AutoIncrement column and opt.Identity is set, in which
//     case the identity clause replaces everything after the name.
//
//   - Columns with PrimaryKey == true are collected into a trailing
//     PRIMARY KEY (...) clause.
func BuildCreateTableSQL(t TableDef, opt Options) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("ddl: table FQN must not be empty")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("ddl: at least one column is required")
	}

	cols := make([]string, 0, len(t.Columns)+1)
	pks := make([]string, 0, len(t.Columns))

	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("ddl: column with empty name in table %s", fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", fmt.Errorf("ddl: column %s missing SQLType", name)
		}

		var sb strings.Builder
		sb.WriteString(opt.quote(name))
		sb.WriteByte(' ')

		if c.AutoIncrement && opt.Identity != nil {
			clause, inline := opt.Identity(c)
			sb.WriteString(clause)
			cols = append(cols, sb.String())
			if c.PrimaryKey && !inline {
				pks = append(pks, opt.quote(name))
			}
			continue
		}

		if opt.MapType != nil {
			typ = opt.MapType(typ)
		}
		sb.WriteString(typ)

		if !c.Nullable {
			sb.WriteString(" NOT NULL")
		}
		if def := strings.TrimSpace(c.Default); def != "" {
			sb.WriteString(" DEFAULT ")
			sb.WriteString(def)
		}

		cols = append(cols, sb.String())

		if c.PrimaryKey {
			pks = append(pks, opt.quote(name))
		}
	}

	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}

	create := "CREATE TABLE "
	if opt.IfNotExists {
		create += "IF NOT EXISTS "
	}
	return fmt.Sprintf(
		"%s%s (\n  %s\n);",
		create,
		opt.quoteFQN(fqn),
		strings.Join(cols, ",\n  "),
	), nil
}
