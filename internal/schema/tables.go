package schema

import "songetl/internal/ddl"

// Conflict selects what an insert does when the primary key already exists.
type Conflict int

const (
	// ConflictNone inserts unconditionally.
	ConflictNone Conflict = iota
	// ConflictIgnore keeps the existing row.
	ConflictIgnore
	// ConflictUpdate overwrites the non-key columns (last write wins).
	ConflictUpdate
)

// Table pairs a table definition with its insert conflict policy.
type Table struct {
	ddl.TableDef
	Conflict Conflict
}

// Table names.
const (
	SongsTable     = "songs"
	ArtistsTable   = "artists"
	TimeTable      = "time"
	UsersTable     = "users"
	SongplaysTable = "songplays"
)

// Songs, Artists, Time, Users and Songplays define the star schema. Column
// order matches the Values method of the matching row type.
var (
	Songs = Table{
		TableDef: ddl.TableDef{FQN: SongsTable, Columns: []ddl.ColumnDef{
			{Name: "song_id", SQLType: ddl.TypeKey, PrimaryKey: true},
			{Name: "title", SQLType: ddl.TypeText},
			{Name: "artist_id", SQLType: ddl.TypeKey},
			{Name: "year", SQLType: ddl.TypeInt},
			{Name: "duration", SQLType: ddl.TypeFloat},
		}},
		Conflict: ConflictIgnore,
	}

	Artists = Table{
		TableDef: ddl.TableDef{FQN: ArtistsTable, Columns: []ddl.ColumnDef{
			{Name: "artist_id", SQLType: ddl.TypeKey, PrimaryKey: true},
			{Name: "name", SQLType: ddl.TypeText},
			{Name: "location", SQLType: ddl.TypeText, Nullable: true},
			{Name: "latitude", SQLType: ddl.TypeFloat, Nullable: true},
			{Name: "longitude", SQLType: ddl.TypeFloat, Nullable: true},
		}},
		Conflict: ConflictIgnore,
	}

	Time = Table{
		TableDef: ddl.TableDef{FQN: TimeTable, Columns: []ddl.ColumnDef{
			{Name: "start_time", SQLType: ddl.TypeTimestamp, PrimaryKey: true},
			{Name: "hour", SQLType: ddl.TypeInt},
			{Name: "day", SQLType: ddl.TypeInt},
			{Name: "week", SQLType: ddl.TypeInt},
			{Name: "month", SQLType: ddl.TypeInt},
			{Name: "year", SQLType: ddl.TypeInt},
			{Name: "weekday", SQLType: ddl.TypeInt},
		}},
		Conflict: ConflictIgnore,
	}

	Users = Table{
		TableDef: ddl.TableDef{FQN: UsersTable, Columns: []ddl.ColumnDef{
			{Name: "user_id", SQLType: ddl.TypeBigInt, PrimaryKey: true},
			{Name: "first_name", SQLType: ddl.TypeText, Nullable: true},
			{Name: "last_name", SQLType: ddl.TypeText, Nullable: true},
			{Name: "gender", SQLType: ddl.TypeText, Nullable: true},
			{Name: "level", SQLType: ddl.TypeText, Nullable: true},
		}},
		Conflict: ConflictUpdate,
	}

	// Songplays keys on a generated id: seq_index restarts with every file.
	Songplays = Table{
		TableDef: ddl.TableDef{FQN: SongplaysTable, Columns: []ddl.ColumnDef{
			{Name: "songplay_id", SQLType: ddl.TypeBigInt, PrimaryKey: true, AutoIncrement: true},
			{Name: "seq_index", SQLType: ddl.TypeInt},
			{Name: "start_time", SQLType: ddl.TypeTimestamp},
			{Name: "user_id", SQLType: ddl.TypeBigInt},
			{Name: "level", SQLType: ddl.TypeText, Nullable: true},
			{Name: "song_id", SQLType: ddl.TypeKey, Nullable: true},
			{Name: "artist_id", SQLType: ddl.TypeKey, Nullable: true},
			{Name: "session_id", SQLType: ddl.TypeBigInt},
			{Name: "location", SQLType: ddl.TypeText, Nullable: true},
			{Name: "user_agent", SQLType: ddl.TypeText, Nullable: true},
		}},
		Conflict: ConflictNone,
	}
)

// Tables lists every table in creation order.
func Tables() []Table {
	return []Table{Songs, Artists, Time, Users, Songplays}
}
