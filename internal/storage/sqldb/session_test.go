package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"testing"

	"songetl/internal/schema"
	"songetl/internal/storage"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type qmarkDialect struct{}

func (qmarkDialect) Name() string               { return "test" }
func (qmarkDialect) Placeholder(int) string     { return "?" }
func (qmarkDialect) QuoteIdent(s string) string { return s }
func (qmarkDialect) CreateTableSQL(t schema.Table) (string, error) {
	return fmt.Sprintf("CREATE TABLE %s (x)", t.FQN), nil
}
func (d qmarkDialect) InsertSQL(t schema.Table) string { return storage.InsertHead(d, t) }
func (qmarkDialect) SelectFirst(cols, rest string) string {
	return "SELECT " + cols + " " + rest + " LIMIT 1"
}

func newMockSession(t *testing.T) (*Session, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	s, err := New(db, qmarkDialect{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return s, mock
}

func stmt(t *testing.T, s *Session, id storage.StatementID) string {
	t.Helper()
	q, err := s.catalog.SQL(id)
	require.NoError(t, err)
	return regexp.QuoteMeta(q)
}

// TestSession_WritesShareOneTransaction checks the first Exec opens a
// transaction, later calls reuse it, and Commit ends it.
func TestSession_WritesShareOneTransaction(t *testing.T) {
	s, mock := newMockSession(t)
	ctx := context.Background()
	song := schema.Song{ID: "S1", Title: "T", ArtistID: "A1", Year: 2000, Duration: 180}

	mock.ExpectBegin()
	mock.ExpectExec(stmt(t, s, storage.StmtInsertSong)).
		WithArgs("S1", "T", "A1", int64(2000), 180.0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(stmt(t, s, storage.StmtLookupTarget)).
		WithArgs("T", "N", 180.0).
		WillReturnRows(sqlmock.NewRows([]string{"song_id", "artist_id"}).AddRow("S1", "A1"))
	mock.ExpectCommit()

	require.NoError(t, s.Exec(ctx, storage.StmtInsertSong, song.Values()...))
	got, ok, err := s.LookupTarget(ctx, storage.StmtLookupTarget, "T", "N", 180.0)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, schema.Target{SongID: "S1", ArtistID: "A1"}, got)
	require.NoError(t, s.Commit(ctx))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSession_LookupMiss(t *testing.T) {
	s, mock := newMockSession(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(stmt(t, s, storage.StmtLookupTarget)).
		WillReturnRows(sqlmock.NewRows([]string{"song_id", "artist_id"}))

	_, ok, err := s.LookupTarget(ctx, storage.StmtLookupTarget, "X", "Y", 1.0)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestSession_CommitWithNothingPending is a no-op, as for a log file with no
// NextSong events.
func TestSession_CommitWithNothingPending(t *testing.T) {
	s, mock := newMockSession(t)
	require.NoError(t, s.Commit(context.Background()))
	require.NoError(t, s.Rollback(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSession_RollbackAfterFailure(t *testing.T) {
	s, mock := newMockSession(t)
	ctx := context.Background()
	boom := errors.New("constraint violated")

	mock.ExpectBegin()
	mock.ExpectExec(stmt(t, s, storage.StmtInsertArtist)).WillReturnError(boom)
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectExec(stmt(t, s, storage.StmtInsertArtist)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	a := schema.Artist{ID: "A1", Name: "N"}
	err := s.Exec(ctx, storage.StmtInsertArtist, a.Values()...)
	require.ErrorIs(t, err, boom)
	require.NoError(t, s.Rollback(ctx))

	require.NoError(t, s.Exec(ctx, storage.StmtInsertArtist, a.Values()...))
	require.NoError(t, s.Commit(ctx))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSession_UnknownStatement(t *testing.T) {
	s, mock := newMockSession(t)
	err := s.Exec(context.Background(), "drop-everything")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "unknown statement"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSession_ScanTargets(t *testing.T) {
	s, mock := newMockSession(t)
	mock.ExpectBegin()
	mock.ExpectQuery(stmt(t, s, storage.StmtScanTargets)).
		WillReturnRows(sqlmock.NewRows([]string{"title", "name", "duration", "song_id", "artist_id"}).
			AddRow("T", "N", 180.0, "S1", "A1").
			AddRow("U", "M", 95.5, "S2", "A2"))

	got, err := s.ScanTargets(context.Background(), storage.StmtScanTargets)
	require.NoError(t, err)
	assert.Equal(t, []schema.CatalogTarget{
		{Key: schema.NaturalKey{Title: "T", Artist: "N", Duration: 180}, Target: schema.Target{SongID: "S1", ArtistID: "A1"}},
		{Key: schema.NaturalKey{Title: "U", Artist: "M", Duration: 95.5}, Target: schema.Target{SongID: "S2", ArtistID: "A2"}},
	}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSession_EnsureSchema(t *testing.T) {
	s, mock := newMockSession(t)
	for _, tbl := range schema.Tables() {
		mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE " + tbl.FQN)).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	require.NoError(t, s.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSession_EnsureSchemaError(t *testing.T) {
	s, mock := newMockSession(t)
	boom := errors.New("permission denied")
	mock.ExpectExec("CREATE TABLE songs").WillReturnError(boom)

	err := s.EnsureSchema(context.Background())
	require.ErrorIs(t, err, boom)
	var ee *storage.ExecutionError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, storage.StmtCreateSchema, ee.Statement)
	assert.Equal(t, 0, ee.Row)
}

func TestOpen_EmptyDSN(t *testing.T) {
	_, err := Open(context.Background(), "sqlite", "  ", qmarkDialect{})
	require.Error(t, err)
}

func TestOpen_PingFailure(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	mock.ExpectClose()

	orig := sqlOpen
	sqlOpen = func(string, string) (*sql.DB, error) { return db, nil }
	t.Cleanup(func() { sqlOpen = orig })

	_, err = Open(context.Background(), "fake", "dsn", qmarkDialect{})
	require.ErrorContains(t, err, "test: ping")
	assert.NoError(t, mock.ExpectationsWereMet())
}
