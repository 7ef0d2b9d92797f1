package postgres

import (
	"context"

	"songetl/internal/storage"
	"songetl/internal/storage/sqldb"

	_ "github.com/lib/pq"
)

// connect and openPQ are test hooks.
var (
	connect = Connect
	openPQ  = func(ctx context.Context, dsn string) (*sqldb.Session, error) {
		return sqldb.Open(ctx, "postgres", dsn, Dialect{})
	}
)

func init() {
	storage.Register("postgres", func(ctx context.Context, cfg storage.Config) (storage.Session, error) {
		s, err := connect(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	})

	storage.Register("pq", func(ctx context.Context, cfg storage.Config) (storage.Session, error) {
		s, err := openPQ(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	})
}
