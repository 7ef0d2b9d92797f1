// Package mssql registers the "mssql" storage kind: SQL Server through
// github.com/microsoft/go-mssqldb and the shared database/sql session.
package mssql

import (
	"context"
	"fmt"
	"log"

	"songetl/internal/storage"
	"songetl/internal/storage/sqldb"

	_ "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"
)

// newSession is a test hook.
var newSession = Open

// Open validates dsn, then connects with the "sqlserver" driver.
func Open(ctx context.Context, dsn string) (*sqldb.Session, error) {
	cfg, err := msdsn.Parse(dsn)
	if err != nil {
		return nil, fmt.Errorf("mssql dsn: %w", err)
	}
	s, err := sqldb.Open(ctx, "sqlserver", dsn, Dialect{})
	if err != nil {
		return nil, err
	}
	log.Printf("mssql: connected host=%s db=%s", cfg.Host, cfg.Database)
	return s, nil
}

func init() {
	storage.Register("mssql", func(ctx context.Context, cfg storage.Config) (storage.Session, error) {
		s, err := newSession(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	})
}
