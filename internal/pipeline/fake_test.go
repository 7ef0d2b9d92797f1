package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"songetl/internal/schema"
	"songetl/internal/storage"

	"github.com/stretchr/testify/require"
)

// fakeTx records every call the driver and the process funcs make.
type fakeTx struct {
	execs     []storage.StatementID
	lookups   int
	commits   int
	rollbacks int

	commitErr error
	targets   map[schema.NaturalKey]schema.Target
}

func (f *fakeTx) Exec(_ context.Context, id storage.StatementID, _ ...any) error {
	f.execs = append(f.execs, id)
	return nil
}

func (f *fakeTx) LookupTarget(_ context.Context, _ storage.StatementID, params ...any) (schema.Target, bool, error) {
	f.lookups++
	key := schema.NaturalKey{Title: params[0].(string), Artist: params[1].(string), Duration: params[2].(float64)}
	t, ok := f.targets[key]
	return t, ok, nil
}

func (f *fakeTx) Commit(context.Context) error {
	if f.commitErr != nil {
		return f.commitErr
	}
	f.commits++
	return nil
}

func (f *fakeTx) Rollback(context.Context) error {
	f.rollbacks++
	return nil
}

// scanningTx adds the bulk lookup capability.
type scanningTx struct {
	fakeTx
	scans int
}

func (s *scanningTx) ScanTargets(context.Context, storage.StatementID) ([]schema.CatalogTarget, error) {
	s.scans++
	var out []schema.CatalogTarget
	for k, t := range s.targets {
		out = append(out, schema.CatalogTarget{Key: k, Target: t})
	}
	return out, nil
}

func writeFile(tb testing.TB, dir, name, body string) string {
	tb.Helper()
	p := filepath.Join(dir, name)
	require.NoError(tb, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(tb, os.WriteFile(p, []byte(body), 0o644))
	return p
}

const (
	songA = `{"num_songs":1,"artist_id":"A1","artist_latitude":null,"artist_longitude":null,"artist_location":"","artist_name":"N","song_id":"S1","title":"T","duration":180.0,"year":2000}` + "\n"

	logPlayHit  = `{"artist":"N","auth":"Logged In","firstName":"Kaylee","gender":"F","itemInSession":0,"lastName":"Summers","length":180.0,"level":"free","location":"Phoenix","method":"PUT","page":"NextSong","registration":1540344794796.0,"sessionId":139,"song":"T","status":200,"ts":1541106106796,"userAgent":"Mozilla","userId":"8"}`
	logPlayMiss = `{"artist":"X","auth":"Logged In","firstName":"Kaylee","gender":"F","itemInSession":1,"lastName":"Summers","length":1.0,"level":"paid","location":"Phoenix","method":"PUT","page":"NextSong","registration":1540344794796.0,"sessionId":139,"song":"U","status":200,"ts":1541106352796,"userAgent":"Mozilla","userId":"8"}`
	logHome     = `{"artist":null,"auth":"Logged In","firstName":"Walter","gender":"M","itemInSession":0,"lastName":"Frye","length":null,"level":"free","location":"SF","method":"GET","page":"Home","registration":1540919166796.0,"sessionId":38,"song":null,"status":200,"ts":1541105830796,"userAgent":"Mozilla","userId":"39"}`
)
