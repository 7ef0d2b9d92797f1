package mssql

import (
	"fmt"
	"strconv"
	"strings"

	"songetl/internal/ddl"
	"songetl/internal/schema"
	"songetl/internal/storage"
)

// Dialect renders T-SQL. SQL Server has neither CREATE TABLE IF NOT EXISTS
// nor ON CONFLICT, so creation is guarded by OBJECT_ID and conflict
// handling goes through MERGE.
type Dialect struct{}

var _ storage.Dialect = Dialect{}

func (Dialect) Name() string             { return "mssql" }
func (Dialect) Placeholder(n int) string { return "@p" + strconv.Itoa(n) }

// QuoteIdent brackets an identifier, doubling any closing bracket.
func (Dialect) QuoteIdent(s string) string {
	return "[" + strings.ReplaceAll(s, "]", "]]") + "]"
}

// MapType maps a logical type string into a SQL Server column type.
// Unknown or empty kinds fall back to NVARCHAR(MAX).
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case ddl.TypeKey:
		return "NVARCHAR(64)"
	case ddl.TypeInt, "integer":
		return "INT"
	case ddl.TypeBigInt:
		return "BIGINT"
	case ddl.TypeFloat, "double":
		return "FLOAT"
	case ddl.TypeTimestamp, "datetime":
		return "DATETIME2(3)"
	default:
		return "NVARCHAR(MAX)"
	}
}

// CreateTableSQL returns a script of the form
//
//	IF OBJECT_ID(N'[table]', N'U') IS NULL
//	BEGIN
//	CREATE TABLE [table] (...);
//	END
func (d Dialect) CreateTableSQL(t schema.Table) (string, error) {
	create, err := ddl.BuildCreateTableSQL(t.TableDef, ddl.Options{
		Quote:   d.QuoteIdent,
		MapType: MapType,
		Identity: func(ddl.ColumnDef) (string, bool) {
			return "BIGINT IDENTITY(1,1) NOT NULL", false
		},
	})
	if err != nil {
		return "", err
	}
	name := strings.ReplaceAll(d.QuoteIdent(t.FQN), "'", "''")
	return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NULL\nBEGIN\n%s\nEND", name, create), nil
}

// InsertSQL renders a plain INSERT for tables without a conflict policy and
// a single-row MERGE otherwise.
func (d Dialect) InsertSQL(t schema.Table) string {
	if t.Conflict == schema.ConflictNone {
		return storage.InsertHead(d, t)
	}
	q := d.QuoteIdent
	cols := t.InsertColumns()
	src := make([]string, len(cols))
	names := make([]string, len(cols))
	vals := make([]string, len(cols))
	for i, c := range cols {
		src[i] = fmt.Sprintf("%s AS %s", d.Placeholder(i+1), q(c))
		names[i] = q(c)
		vals[i] = "s." + q(c)
	}
	var on []string
	for _, k := range t.KeyColumns() {
		on = append(on, fmt.Sprintf("t.%s = s.%s", q(k), q(k)))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "MERGE INTO %s WITH (HOLDLOCK) AS t USING (SELECT %s) AS s ON %s",
		q(t.FQN), strings.Join(src, ", "), strings.Join(on, " AND "))
	if t.Conflict == schema.ConflictUpdate {
		var sets []string
		for _, c := range storage.NonKeyColumns(t) {
			sets = append(sets, fmt.Sprintf("t.%s = s.%s", q(c), q(c)))
		}
		fmt.Fprintf(&sb, " WHEN MATCHED THEN UPDATE SET %s", strings.Join(sets, ", "))
	}
	fmt.Fprintf(&sb, " WHEN NOT MATCHED THEN INSERT (%s) VALUES (%s);",
		strings.Join(names, ", "), strings.Join(vals, ", "))
	return sb.String()
}

func (Dialect) SelectFirst(cols, rest string) string {
	return "SELECT TOP 1 " + cols + " " + rest
}
