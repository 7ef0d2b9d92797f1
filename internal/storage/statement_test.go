package storage

import (
	"testing"

	"songetl/internal/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBuildCatalog_Ansi checks the statement set rendered for an ON CONFLICT
// dialect: every id is present, DDL follows table order, and each table's
// conflict policy shows up in its insert.
func TestBuildCatalog_Ansi(t *testing.T) {
	c, err := BuildCatalog(ansiDialect{})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"CREATE TABLE songs", "CREATE TABLE artists", "CREATE TABLE time",
		"CREATE TABLE users", "CREATE TABLE songplays",
	}, c.Schema)

	for _, id := range []StatementID{
		StmtInsertSong, StmtInsertArtist, StmtInsertTime, StmtInsertUser,
		StmtInsertSongplay, StmtLookupTarget, StmtScanTargets,
	} {
		_, err := c.SQL(id)
		assert.NoError(t, err, "statement %s", id)
	}
	_, err = c.SQL("drop-everything")
	assert.Error(t, err)

	assert.Equal(t,
		`INSERT INTO "songs" ("song_id", "title", "artist_id", "year", "duration") VALUES ($1, $2, $3, $4, $5) ON CONFLICT ("song_id") DO NOTHING`,
		c.Statements[StmtInsertSong])
	assert.Equal(t,
		`INSERT INTO "users" ("user_id", "first_name", "last_name", "gender", "level") VALUES ($1, $2, $3, $4, $5) ON CONFLICT ("user_id") DO UPDATE SET "first_name" = EXCLUDED."first_name", "last_name" = EXCLUDED."last_name", "gender" = EXCLUDED."gender", "level" = EXCLUDED."level"`,
		c.Statements[StmtInsertUser])
	assert.Contains(t, c.Statements[StmtInsertTime], `ON CONFLICT ("start_time") DO NOTHING`)

	sp := c.Statements[StmtInsertSongplay]
	assert.NotContains(t, sp, "songplay_id")
	assert.NotContains(t, sp, "ON CONFLICT")
	assert.Contains(t, sp, "$9)")

	assert.Equal(t,
		`SELECT s."song_id", a."artist_id" FROM "songs" s JOIN "artists" a ON s."artist_id" = a."artist_id" WHERE s."title" = $1 AND a."name" = $2 AND s."duration" = $3 LIMIT 1`,
		c.Statements[StmtLookupTarget])
	assert.Equal(t,
		`SELECT s."title", a."name", s."duration", s."song_id", a."artist_id" FROM "songs" s JOIN "artists" a ON s."artist_id" = a."artist_id"`,
		c.Statements[StmtScanTargets])
}

// TestRowValuesMatchInsertColumns guards the positional contract between the
// row types and the insert statements.
func TestRowValuesMatchInsertColumns(t *testing.T) {
	cases := map[string]struct {
		table schema.Table
		row   Row
	}{
		"songs":     {schema.Songs, schema.Song{}},
		"artists":   {schema.Artists, schema.Artist{}},
		"time":      {schema.Time, schema.TimeRow{}},
		"users":     {schema.Users, schema.User{}},
		"songplays": {schema.Songplays, schema.Songplay{}},
	}
	for name, tc := range cases {
		assert.Len(t, tc.row.Values(), len(tc.table.InsertColumns()), name)
	}
}
