// Package postgres implements storage.Session for Postgres. The "postgres"
// kind talks to the server through pgx v5 directly; the "pq" kind goes
// through lib/pq and the shared database/sql session.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log"

	"songetl/internal/schema"
	"songetl/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgConnLike is the subset of *pgx.Conn the session uses.
type pgConnLike interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Close(ctx context.Context) error
}

// Session runs catalog statements over a single pgx connection. The file
// transaction starts on first use and ends on Commit or Rollback.
type Session struct {
	conn    pgConnLike
	catalog storage.Catalog
	tx      pgx.Tx
}

var (
	_ storage.Session       = (*Session)(nil)
	_ storage.TargetScanner = (*Session)(nil)
)

// Connect dials dsn with pgx.Connect.
func Connect(ctx context.Context, dsn string) (*Session, error) {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres dsn: %w", err)
	}
	c, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	s, err := newSession(c)
	if err != nil {
		_ = c.Close(ctx)
		return nil, err
	}
	log.Printf("postgres: connected host=%s db=%s user=%s", cfg.Host, cfg.Database, cfg.User)
	return s, nil
}

func newSession(conn pgConnLike) (*Session, error) {
	cat, err := storage.BuildCatalog(Dialect{})
	if err != nil {
		return nil, err
	}
	return &Session{conn: conn, catalog: cat}, nil
}

func (s *Session) begin(ctx context.Context) (pgx.Tx, error) {
	if s.tx != nil {
		return s.tx, nil
	}
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("postgres: begin: %w", err)
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
	_, err = tx.Exec(ctx, q, params...)
	return pgError(err)
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
	err = tx.QueryRow(ctx, q, params...).Scan(&t.SongID, &t.ArtistID)
	if errors.Is(err, pgx.ErrNoRows) {
		return schema.Target{}, false, nil
	}
	if err != nil {
		return schema.Target{}, false, pgError(err)
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
	rows, err := tx.Query(ctx, q)
	if err != nil {
		return nil, pgError(err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (schema.CatalogTarget, error) {
		var ct schema.CatalogTarget
		err := row.Scan(&ct.Key.Title, &ct.Key.Artist, &ct.Key.Duration, &ct.SongID, &ct.ArtistID)
		return ct, err
	})
}

// EnsureSchema runs the CREATE TABLE statements on the connection, outside
// any file transaction.
func (s *Session) EnsureSchema(ctx context.Context) error {
	for i, q := range s.catalog.Schema {
		if _, err := s.conn.Exec(ctx, q); err != nil {
			return &storage.ExecutionError{Statement: storage.StmtCreateSchema, Row: i, Err: pgError(err)}
		}
	}
	log.Printf("postgres: schema ensured tables=%d", len(s.catalog.Schema))
	return nil
}

func (s *Session) Commit(ctx context.Context) error {
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit: %w", pgError(err))
	}
	return nil
}

func (s *Session) Rollback(ctx context.Context) error {
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("postgres: rollback: %w", err)
	}
	return nil
}

func (s *Session) Close() error {
	ctx := context.Background()
	_ = s.Rollback(ctx)
	return s.conn.Close(ctx)
}

// pgError appends the server's detail, which PgError.Error leaves out.
func pgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Detail != "" {
		return fmt.Errorf("%w: %s", err, pgErr.Detail)
	}
	return err
}
