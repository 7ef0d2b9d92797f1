// Package sqldb implements storage.Session on top of database/sql. The
// sqlite, mysql, mssql and pq backends share it and differ only in driver
// name and Dialect.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"songetl/internal/schema"
	"songetl/internal/storage"
)

// sqlOpen is a test hook.
var sqlOpen = sql.Open

// Session runs catalog statements inside a per-file transaction.
type Session struct {
	db      *sql.DB
	dialect storage.Dialect
	catalog storage.Catalog
	tx      *sql.Tx
}

var (
	_ storage.Session       = (*Session)(nil)
	_ storage.TargetScanner = (*Session)(nil)
)

// Open connects with driverName and pings the server before returning.
func Open(ctx context.Context, driverName, dsn string, d storage.Dialect) (*Session, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("%s: DSN must not be empty", d.Name())
	}
	db, err := sqlOpen(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: open: %w", d.Name(), err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: ping: %w", d.Name(), err)
	}

	s, err := New(db, d)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open handle. The Session owns db from here on.
func New(db *sql.DB, d storage.Dialect) (*Session, error) {
	cat, err := storage.BuildCatalog(d)
	if err != nil {
		return nil, err
	}
	return &Session{db: db, dialect: d, catalog: cat}, nil
}

// DB exposes the handle for backend-specific setup.
func (s *Session) DB() *sql.DB { return s.db }

func (s *Session) begin(ctx context.Context) (*sql.Tx, error) {
	if s.tx != nil {
		return s.tx, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: begin: %w", s.dialect.Name(), err)
	}
	s.tx = tx
	return tx, nil
}

func (s *Session) Exec(ctx context.Context, id storage.StatementID, params ...any) error {
	q, err := s.catalog.SQL(id)
	if err != nil {
		return err
	}
	tx, err := s.begin(ctx)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, q, params...)
	return err
}

func (s *Session) LookupTarget(ctx context.Context, id storage.StatementID, params ...any) (schema.Target, bool, error) {
	q, err := s.catalog.SQL(id)
	if err != nil {
		return schema.Target{}, false, err
	}
	tx, err := s.begin(ctx)
	if err != nil {
		return schema.Target{}, false, err
	}
	var t schema.Target
	err = tx.QueryRowContext(ctx, q, params...).Scan(&t.SongID, &t.ArtistID)
	if errors.Is(err, sql.ErrNoRows) {
		return schema.Target{}, false, nil
	}
	if err != nil {
		return schema.Target{}, false, err
	}
	return t, true, nil
}

func (s *Session) ScanTargets(ctx context.Context, id storage.StatementID) ([]schema.CatalogTarget, error) {
	q, err := s.catalog.SQL(id)
	if err != nil {
		return nil, err
	}
	tx, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []schema.CatalogTarget
	for rows.Next() {
		var ct schema.CatalogTarget
		if err := rows.Scan(&ct.Key.Title, &ct.Key.Artist, &ct.Key.Duration, &ct.SongID, &ct.ArtistID); err != nil {
			return nil, err
		}
		out = append(out, ct)
	}
	return out, rows.Err()
}

// EnsureSchema runs each CREATE TABLE outside the file transaction.
func (s *Session) EnsureSchema(ctx context.Context) error {
	for i, q := range s.catalog.Schema {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return &storage.ExecutionError{Statement: storage.StmtCreateSchema, Row: i, Err: err}
		}
	}
	log.Printf("%s: schema ensured tables=%d", s.dialect.Name(), len(s.catalog.Schema))
	return nil
}

func (s *Session) Commit(context.Context) error {
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", s.dialect.Name(), err)
	}
	return nil
}

func (s *Session) Rollback(context.Context) error {
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("%s: rollback: %w", s.dialect.Name(), err)
	}
	return nil
}

// Close discards any uncommitted work and closes the handle.
func (s *Session) Close() error {
	_ = s.Rollback(context.Background())
	return s.db.Close()
}
