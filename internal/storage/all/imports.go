// Package all wires every built-in storage backend into the storage factory.
//
// Importing it for side effects registers these kinds:
//
//   - "postgres" (pgx) and "pq" (lib/pq)  songetl/internal/storage/postgres
//   - "mysql"                             songetl/internal/storage/mysql
//   - "mssql"                             songetl/internal/storage/mssql
//   - "sqlite"                            songetl/internal/storage/sqlite
//
// Typical usage:
//
//	import _ "songetl/internal/storage/all"
//
//	sess, err := storage.New(ctx, storage.Config{Kind: "postgres", DSN: dsn})
//
// A binary that needs fewer backends can import the ones it wants instead.
package all

import (
	_ "songetl/internal/storage/mssql"
	_ "songetl/internal/storage/mysql"
	_ "songetl/internal/storage/postgres"
	_ "songetl/internal/storage/sqlite"
)
