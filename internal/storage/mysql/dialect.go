package mysql

import (
	"fmt"
	"strings"

	"songetl/internal/ddl"
	"songetl/internal/schema"
	"songetl/internal/storage"
)

// Dialect renders MySQL statements. Conflicts are handled with ON DUPLICATE
// KEY UPDATE; a self-assignment of the key stands in for DO NOTHING so that
// unrelated errors are not downgraded to warnings the way INSERT IGNORE does.
type Dialect struct{}

var _ storage.Dialect = Dialect{}

func (Dialect) Name() string           { return "mysql" }
func (Dialect) Placeholder(int) string { return "?" }

func (Dialect) QuoteIdent(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}

// MapType maps a logical type to a MySQL column type. Key columns need a
// bounded VARCHAR to be indexable.
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case ddl.TypeKey:
		return "VARCHAR(64)"
	case ddl.TypeInt, "integer":
		return "INT"
	case ddl.TypeBigInt:
		return "BIGINT"
	case ddl.TypeFloat, "double":
		return "DOUBLE"
	case ddl.TypeTimestamp, "datetime":
		return "DATETIME(3)"
	default:
		return "TEXT"
	}
}

func (d Dialect) CreateTableSQL(t schema.Table) (string, error) {
	return ddl.BuildCreateTableSQL(t.TableDef, ddl.Options{
		Quote:   d.QuoteIdent,
		MapType: MapType,
		Identity: func(ddl.ColumnDef) (string, bool) {
			return "BIGINT NOT NULL AUTO_INCREMENT", false
		},
		IfNotExists: true,
	})
}

func (d Dialect) InsertSQL(t schema.Table) string {
	head := storage.InsertHead(d, t)
	var sets []string
	switch t.Conflict {
	case schema.ConflictIgnore:
		for _, k := range t.KeyColumns() {
			sets = append(sets, fmt.Sprintf("%s = %s", d.QuoteIdent(k), d.QuoteIdent(k)))
		}
	case schema.ConflictUpdate:
		for _, c := range storage.NonKeyColumns(t) {
			sets = append(sets, fmt.Sprintf("%s = VALUES(%s)", d.QuoteIdent(c), d.QuoteIdent(c)))
		}
	default:
		return head
	}
	return head + " ON DUPLICATE KEY UPDATE " + strings.Join(sets, ", ")
}

func (Dialect) SelectFirst(cols, rest string) string {
	return "SELECT " + cols + " " + rest + " LIMIT 1"
}
