package sqlite

import (
	"strings"

	"songetl/internal/ddl"
	"songetl/internal/schema"
	"songetl/internal/storage"
)

// Dialect renders SQLite statements. SQLite accepts ON CONFLICT since 3.24.
type Dialect struct{}

var _ storage.Dialect = Dialect{}

func (Dialect) Name() string           { return "sqlite" }
func (Dialect) Placeholder(int) string { return "?" }

func (Dialect) QuoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// MapType maps a logical column type to a SQLite declared type. TIMESTAMP
// keeps the driver returning time.Time on scan.
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case ddl.TypeInt, ddl.TypeBigInt, "integer":
		return "INTEGER"
	case ddl.TypeFloat, "double", "real":
		return "REAL"
	case ddl.TypeTimestamp, "datetime":
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
			return "INTEGER PRIMARY KEY AUTOINCREMENT", true
		},
		IfNotExists: true,
	})
}

func (d Dialect) InsertSQL(t schema.Table) string { return storage.OnConflictInsertSQL(d, t) }

func (Dialect) SelectFirst(cols, rest string) string {
	return "SELECT " + cols + " " + rest + " LIMIT 1"
}
