// Package mysql registers the "mysql" storage kind: MySQL through
// github.com/go-sql-driver/mysql and the shared database/sql session.
package mysql

import (
	"context"
	"fmt"
	"log"
	"time"

	"songetl/internal/storage"
	"songetl/internal/storage/sqldb"

	"github.com/go-sql-driver/mysql"
)

// newSession is a test hook.
var newSession = Open

// normalizeDSN parses dsn and pins the settings the session relies on:
// DATETIME values come back as time.Time and are read and written in UTC.
func normalizeDSN(dsn string) (*mysql.Config, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg, nil
}

// Open validates dsn and connects with the "mysql" driver.
func Open(ctx context.Context, dsn string) (*sqldb.Session, error) {
	cfg, err := normalizeDSN(dsn)
	if err != nil {
		return nil, err
	}
	s, err := sqldb.Open(ctx, "mysql", cfg.FormatDSN(), Dialect{})
	if err != nil {
		return nil, err
	}
	log.Printf("mysql: connected addr=%s db=%s", cfg.Addr, cfg.DBName)
	return s, nil
}

func init() {
	storage.Register("mysql", func(ctx context.Context, cfg storage.Config) (storage.Session, error) {
		s, err := newSession(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	})
}
