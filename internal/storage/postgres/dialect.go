package postgres

import (
	"strconv"
	"strings"

	"songetl/internal/ddl"
	"songetl/internal/schema"
	"songetl/internal/storage"
)

// Dialect renders Postgres statements. It is shared by the pgx and lib/pq
// backed kinds.
type Dialect struct{}

var _ storage.Dialect = Dialect{}

func (Dialect) Name() string             { return "postgres" }
func (Dialect) Placeholder(n int) string { return "$" + strconv.Itoa(n) }

// QuoteIdent double-quotes an identifier, escaping embedded quotes. Quoting
// is unconditional: "time" and "year" are reserved words.
func (Dialect) QuoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// MapType normalizes a logical type into a Postgres SQL type.
//
//	"key"                -> VARCHAR
//	"int"/"integer"      -> INTEGER
//	"bigint"             -> BIGINT
//	"float"/"double"     -> DOUBLE PRECISION
//	"timestamp"          -> TIMESTAMP
//	everything else      -> TEXT
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case ddl.TypeKey:
		return "VARCHAR"
	case ddl.TypeInt, "integer":
		return "INTEGER"
	case ddl.TypeBigInt:
		return "BIGINT"
	case ddl.TypeFloat, "double":
		return "DOUBLE PRECISION"
	case ddl.TypeTimestamp:
		return "TIMESTAMP"
	default:
		return "TEXT"
	}
}

func (d Dialect) CreateTableSQL(t schema.Table) (string, error) {
	return ddl.BuildCreateTableSQL(t.TableDef, ddl.Options{
		Quote:   d.QuoteIdent,
		MapType: MapType,
		Identity: func(ddl.ColumnDef) (string, bool) {
			return "BIGINT GENERATED BY DEFAULT AS IDENTITY", false
		},
		IfNotExists: true,
	})
}

func (d Dialect) InsertSQL(t schema.Table) string { return storage.OnConflictInsertSQL(d, t) }

func (Dialect) SelectFirst(cols, rest string) string {
	return "SELECT " + cols + " " + rest + " LIMIT 1"
}
