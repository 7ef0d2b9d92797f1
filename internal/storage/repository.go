// Package storage holds the backend-agnostic side of loading: the statement
// catalog, the Executor and Session contracts, the row loader, songplay
// target resolvers, and the registry backends plug into.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"songetl/internal/schema"
)

// Executor runs catalog statements by id.
type Executor interface {
	// Exec runs a write statement with positional params.
	Exec(ctx context.Context, id StatementID, params ...any) error
	// LookupTarget runs a single-row query. ok is false when no row matched.
	LookupTarget(ctx context.Context, id StatementID, params ...any) (t schema.Target, ok bool, err error)
}

// TargetScanner is implemented by executors that can return the whole
// song/artist join in one query.
type TargetScanner interface {
	ScanTargets(ctx context.Context, id StatementID) ([]schema.CatalogTarget, error)
}

// Session is one connection to the warehouse. Writes accumulate in a
// transaction opened by the first Exec or LookupTarget and ended by Commit
// or Rollback; lookups see the session's own uncommitted writes.
type Session interface {
	Executor
	// EnsureSchema creates any missing tables. It commits on its own.
	EnsureSchema(ctx context.Context) error
	Commit(ctx context.Context) error
	// Rollback discards pending writes. It is a no-op with nothing pending.
	Rollback(ctx context.Context) error
	Close() error
}

// ExecutionError reports the statement and row a load failed on.
type ExecutionError struct {
	Statement StatementID
	Row       int // 0-based index in the batch, -1 when not row-scoped
	Err       error
}

func (e *ExecutionError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("storage: %s: %v", e.Statement, e.Err)
	}
	return fmt.Sprintf("storage: %s row %d: %v", e.Statement, e.Row, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// Config carries what a backend factory needs to open a Session.
type Config struct {
	Kind string
	DSN  string
}

// Factory opens a Session for one storage kind.
type Factory func(ctx context.Context, cfg Config) (Session, error)

var (
	regMu     sync.RWMutex
	factories = map[string]Factory{}
)

// Register installs (or replaces) the factory for kind. Backends call it
// from init.
func Register(kind string, f Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	factories[kind] = f
}

// New opens a Session using the factory registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Session, error) {
	regMu.RLock()
	f, ok := factories[cfg.Kind]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}

// ListKinds returns the registered kinds, sorted. The slice is a copy.
func ListKinds() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
