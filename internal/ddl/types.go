package ddl

// Logical column types used by table definitions. Backends translate them
// to concrete SQL types through Options.MapType.
const (
	TypeKey       = "key"       // short textual identifier, indexable everywhere
	TypeText      = "text"      // free text
	TypeInt       = "int"       // 32-bit integer
	TypeBigInt    = "bigint"    // 64-bit integer
	TypeFloat     = "float"     // double precision
	TypeTimestamp = "timestamp" // instant without zone, stored as UTC
)

// ColumnDef describes a single column in a table definition. It
// intentionally uses simple, database-agnostic fields.
//
// Fields:
//   - Name: logical column name (unquoted; quoting happens at render time)
//   - SQLType: logical (TypeKey, ...) or concrete SQL type
//   - Nullable: whether NULL is allowed
//   - PrimaryKey: whether the column is part of the primary key
//   - AutoIncrement: value is generated by the database; never inserted
//   - Default: raw default expression (e.g., 'anon', CURRENT_TIMESTAMP)
type ColumnDef struct {
	Name          string
	SQLType       string
	Nullable      bool
	PrimaryKey    bool
	AutoIncrement bool
	Default       string
}

// TableDef holds the table name (FQN) and an ordered list of columns.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// KeyColumns returns the names of the primary key columns in order.
func (t TableDef) KeyColumns() []string {
	var out []string
	for _, c := range t.Columns {
		if c.PrimaryKey {
			out = append(out, c.Name)
		}
	}
	return out
}

// InsertColumns returns the names of every column an INSERT must supply,
// i.e. all columns except database-generated ones.
func (t TableDef) InsertColumns() []string {
	out := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		if !c.AutoIncrement {
			out = append(out, c.Name)
		}
	}
	return out
}
