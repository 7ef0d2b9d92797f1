package storage

import (
	"context"
	"fmt"
	"strings"

	"songetl/internal/schema"
)

type call struct {
	ID     StatementID
	Params []any
}

// recordingExec records every call and can fail on a given call index.
type recordingExec struct {
	calls   []call
	failAt  int // 0-based call index; -1 never
	failErr error
	targets []schema.CatalogTarget
}

func newRecordingExec() *recordingExec { return &recordingExec{failAt: -1} }

func (r *recordingExec) Exec(_ context.Context, id StatementID, params ...any) error {
	r.calls = append(r.calls, call{ID: id, Params: params})
	if len(r.calls)-1 == r.failAt {
		return r.failErr
	}
	return nil
}

func (r *recordingExec) LookupTarget(_ context.Context, id StatementID, params ...any) (schema.Target, bool, error) {
	r.calls = append(r.calls, call{ID: id, Params: params})
	if len(r.calls)-1 == r.failAt {
		return schema.Target{}, false, r.failErr
	}
	for _, t := range r.targets {
		if t.Key.Title == params[0] && t.Key.Artist == params[1] && t.Key.Duration == params[2] {
			return t.Target, true, nil
		}
	}
	return schema.Target{}, false, nil
}

// scanningExec adds TargetScanner to recordingExec.
type scanningExec struct{ *recordingExec }

func (s scanningExec) ScanTargets(_ context.Context, id StatementID) ([]schema.CatalogTarget, error) {
	s.calls = append(s.calls, call{ID: id})
	if len(s.calls)-1 == s.failAt {
		return nil, s.failErr
	}
	return s.targets, nil
}

// ansiDialect is a minimal Dialect for catalog tests.
type ansiDialect struct{}

func (ansiDialect) Name() string             { return "ansi" }
func (ansiDialect) Placeholder(n int) string { return fmt.Sprintf("$%d", n) }
func (ansiDialect) QuoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
func (ansiDialect) CreateTableSQL(t schema.Table) (string, error) {
	return "CREATE TABLE " + t.FQN, nil
}
func (d ansiDialect) InsertSQL(t schema.Table) string { return OnConflictInsertSQL(d, t) }
func (ansiDialect) SelectFirst(cols, rest string) string {
	return "SELECT " + cols + " " + rest + " LIMIT 1"
}
