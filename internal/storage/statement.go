package storage

import (
	"fmt"
	"strings"

	"songetl/internal/schema"
)

// StatementID names a parameterized statement in a backend's catalog.
// Callers pass ids, never SQL text.
type StatementID string

const (
	StmtInsertSong     StatementID = "insert-song"
	StmtInsertArtist   StatementID = "insert-artist"
	StmtInsertTime     StatementID = "insert-time"
	StmtInsertUser     StatementID = "insert-user"
	StmtInsertSongplay StatementID = "insert-songplay"

	// StmtLookupTarget takes (title, artist name, duration) and returns at
	// most one (song_id, artist_id) row.
	StmtLookupTarget StatementID = "lookup-songplay-target"

	// StmtScanTargets returns every (title, name, duration, song_id,
	// artist_id) row of the song/artist join.
	StmtScanTargets StatementID = "scan-songplay-targets"

	// StmtCreateSchema labels the CREATE TABLE batch in errors.
	StmtCreateSchema StatementID = "create-schema"
)

// Catalog is a backend's statement text keyed by id, plus the DDL that
// creates the five tables in order.
type Catalog struct {
	Statements map[StatementID]string
	Schema     []string
}

// SQL returns the text for id.
func (c Catalog) SQL(id StatementID) (string, error) {
	s, ok := c.Statements[id]
	if !ok {
		return "", fmt.Errorf("storage: unknown statement %q", id)
	}
	return s, nil
}

// Dialect is what a backend knows about its SQL flavor. BuildCatalog turns
// it into a Catalog.
type Dialect interface {
	// Name is the storage kind, used in error messages.
	Name() string
	// Placeholder renders the n-th (1-based) bind parameter.
	Placeholder(n int) string
	// QuoteIdent quotes a single identifier.
	QuoteIdent(name string) string
	// CreateTableSQL renders an idempotent CREATE TABLE for t.
	CreateTableSQL(t schema.Table) (string, error)
	// InsertSQL renders the insert for t honoring t.Conflict.
	InsertSQL(t schema.Table) string
	// SelectFirst renders "SELECT <cols> <rest>" returning at most one row.
	SelectFirst(cols, rest string) string
}

var insertIDs = map[string]StatementID{
	schema.SongsTable:     StmtInsertSong,
	schema.ArtistsTable:   StmtInsertArtist,
	schema.TimeTable:      StmtInsertTime,
	schema.UsersTable:     StmtInsertUser,
	schema.SongplaysTable: StmtInsertSongplay,
}

// BuildCatalog renders every statement for d from schema.Tables.
func BuildCatalog(d Dialect) (Catalog, error) {
	c := Catalog{Statements: make(map[StatementID]string, len(insertIDs)+3)}
	for _, t := range schema.Tables() {
		ddl, err := d.CreateTableSQL(t)
		if err != nil {
			return Catalog{}, fmt.Errorf("%s: create %s: %w", d.Name(), t.FQN, err)
		}
		c.Schema = append(c.Schema, ddl)
		c.Statements[insertIDs[t.FQN]] = d.InsertSQL(t)
	}

	q := d.QuoteIdent
	join := fmt.Sprintf("FROM %s s JOIN %s a ON s.%s = a.%s",
		q(schema.SongsTable), q(schema.ArtistsTable), q("artist_id"), q("artist_id"))

	c.Statements[StmtLookupTarget] = d.SelectFirst(
		fmt.Sprintf("s.%s, a.%s", q("song_id"), q("artist_id")),
		fmt.Sprintf("%s WHERE s.%s = %s AND a.%s = %s AND s.%s = %s", join,
			q("title"), d.Placeholder(1), q("name"), d.Placeholder(2), q("duration"), d.Placeholder(3)),
	)
	c.Statements[StmtScanTargets] = fmt.Sprintf("SELECT s.%s, a.%s, s.%s, s.%s, a.%s %s",
		q("title"), q("name"), q("duration"), q("song_id"), q("artist_id"), join)
	return c, nil
}

// InsertHead renders "INSERT INTO t (cols) VALUES (params)" for the
// insertable columns of t.
func InsertHead(d Dialect, t schema.Table) string {
	cols := t.InsertColumns()
	names := make([]string, len(cols))
	params := make([]string, len(cols))
	for i, c := range cols {
		names[i] = d.QuoteIdent(c)
		params[i] = d.Placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.QuoteIdent(t.FQN), strings.Join(names, ", "), strings.Join(params, ", "))
}

// OnConflictInsertSQL renders InsertHead followed by the ON CONFLICT clause
// shared by Postgres and SQLite.
func OnConflictInsertSQL(d Dialect, t schema.Table) string {
	head := InsertHead(d, t)
	keys := quoteAll(d, t.KeyColumns())
	switch t.Conflict {
	case schema.ConflictIgnore:
		return fmt.Sprintf("%s ON CONFLICT (%s) DO NOTHING", head, strings.Join(keys, ", "))
	case schema.ConflictUpdate:
		var sets []string
		for _, c := range NonKeyColumns(t) {
			qc := d.QuoteIdent(c)
			sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", qc, qc))
		}
		return fmt.Sprintf("%s ON CONFLICT (%s) DO UPDATE SET %s", head, strings.Join(keys, ", "), strings.Join(sets, ", "))
	default:
		return head
	}
}

// NonKeyColumns returns the insertable columns of t that are not part of
// its primary key.
func NonKeyColumns(t schema.Table) []string {
	key := map[string]bool{}
	for _, k := range t.KeyColumns() {
		key[k] = true
	}
	var out []string
	for _, c := range t.InsertColumns() {
		if !key[c] {
			out = append(out, c)
		}
	}
	return out
}

func quoteAll(d Dialect, names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = d.QuoteIdent(n)
	}
	return out
}
