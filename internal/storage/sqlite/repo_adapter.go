// Package sqlite registers the "sqlite" storage kind, backed by the pure-Go
// modernc.org/sqlite driver through the shared database/sql session.
//
// DSN examples:
//
//	"file:sparkify.db?_pragma=busy_timeout(5000)"
//	":memory:"
package sqlite

import (
	"context"

	"songetl/internal/storage"
	"songetl/internal/storage/sqldb"

	_ "modernc.org/sqlite"
)

// newSession is a test hook.
var newSession = Open

// Open connects to dsn. The pool is capped at one connection: SQLite
// serializes writers anyway, and ":memory:" databases are per connection.
func Open(ctx context.Context, dsn string) (*sqldb.Session, error) {
	s, err := sqldb.Open(ctx, "sqlite", dsn, Dialect{})
	if err != nil {
		return nil, err
	}
	s.DB().SetMaxOpenConns(1)
	if _, err := s.DB().ExecContext(ctx, "PRAGMA foreign_keys = ON;"); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func init() {
	storage.Register("sqlite", func(ctx context.Context, cfg storage.Config) (storage.Session, error) {
		s, err := newSession(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	})
}
