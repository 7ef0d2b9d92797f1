package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"songetl/internal/datasource/file"
	"songetl/internal/metrics"
	jsonparser "songetl/internal/parser/json"
	"songetl/internal/schema"
	"songetl/internal/storage"
	"songetl/internal/transformer"
	"songetl/pkg/records"
)

// Metric job labels of the two pipelines.
const (
	CatalogJob = "song_data"
	EventJob   = "log_data"
)

// LookupMode selects how songplays find their song and artist ids.
type LookupMode string

const (
	// LookupRow runs one lookup query per songplay.
	LookupRow LookupMode = "row"
	// LookupBulk reads the song/artist join once per file and matches in
	// memory. Executors that cannot scan fall back to LookupRow.
	LookupBulk LookupMode = "bulk"
)

// ParseLookupMode accepts "row", "bulk" or "" (LookupRow).
func ParseLookupMode(s string) (LookupMode, error) {
	switch m := LookupMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "", LookupRow:
		return LookupRow, nil
	case LookupBulk:
		return LookupBulk, nil
	default:
		return "", fmt.Errorf("pipeline: unknown lookup mode %q", s)
	}
}

// readTable is a test hook.
var readTable = func(ctx context.Context, path string) (records.Table, error) {
	rc, err := file.NewLocal(path).Open(ctx)
	if err != nil {
		return records.Table{}, err
	}
	defer rc.Close()
	return jsonparser.Read(rc, path)
}

func step(job, name string, fn func() error) error {
	start := time.Now()
	err := fn()
	metrics.RecordStep(job, name, err, time.Since(start))
	return err
}

// CatalogFile loads a song file: one song row and one artist row.
func CatalogFile() ProcessFunc {
	return func(ctx context.Context, exec storage.Executor, path string) (FileStats, error) {
		var (
			st     FileStats
			tbl    records.Table
			song   schema.Song
			artist schema.Artist
		)
		err := step(CatalogJob, "parse", func() (err error) {
			tbl, err = readTable(ctx, path)
			return err
		})
		if err != nil {
			return st, err
		}
		st.Records = tbl.Len()

		err = step(CatalogJob, "transform", func() (err error) {
			song, artist, err = transformer.Catalog(tbl)
			return err
		})
		if err != nil {
			return st, err
		}

		err = step(CatalogJob, "load", func() (err error) {
			if st.Songs, err = storage.Load(ctx, []schema.Song{song}, storage.KindSong, exec); err != nil {
				return err
			}
			st.Artists, err = storage.Load(ctx, []schema.Artist{artist}, storage.KindArtist, exec)
			return err
		})
		return st, err
	}
}

// EventFile loads a log file: time, user and songplay rows for every
// NextSong event. With cache set, repeated keys in the file are looked up
// once.
func EventFile(mode LookupMode, cache bool) ProcessFunc {
	return func(ctx context.Context, exec storage.Executor, path string) (FileStats, error) {
		var (
			st   FileStats
			tbl  records.Table
			rows transformer.EventRows
		)
		err := step(EventJob, "parse", func() (err error) {
			tbl, err = readTable(ctx, path)
			return err
		})
		if err != nil {
			return st, err
		}
		st.Records = tbl.Len()

		var res storage.KeyResolver = storage.RowResolver{Exec: exec}
		if mode == LookupBulk {
			res = &lazyBulk{exec: exec}
		}
		var cached *storage.CachedResolver
		if cache {
			cached = storage.NewCachedResolver(res)
			res = cached
		}

		err = step(EventJob, "transform", func() (err error) {
			rows, err = transformer.Events(ctx, tbl, res)
			return err
		})
		if err != nil {
			return st, err
		}
		for _, p := range rows.Songplays {
			if p.SongID != nil {
				st.Matched++
			} else {
				st.Unmatched++
			}
		}
		if cached != nil {
			st.Cached = cached.Hits
		}

		err = step(EventJob, "load", func() (err error) {
			if st.Times, err = storage.Load(ctx, rows.Times, storage.KindTime, exec); err != nil {
				return err
			}
			if st.Users, err = storage.Load(ctx, rows.Users, storage.KindUser, exec); err != nil {
				return err
			}
			st.Songplays, err = storage.Load(ctx, rows.Songplays, storage.KindSongplay, exec)
			return err
		})
		return st, err
	}
}

// lazyBulk builds a BulkResolver on the first lookup, so files without
// plays never scan the catalog.
type lazyBulk struct {
	exec storage.Executor
	next storage.KeyResolver
}

func (l *lazyBulk) Resolve(ctx context.Context, key schema.NaturalKey) (schema.Target, bool, error) {
	if l.next == nil {
		b, err := storage.NewBulkResolver(ctx, l.exec)
		switch {
		case errors.Is(err, storage.ErrNoScanner):
			log.Printf("pipeline: executor cannot scan targets, using row lookups")
			l.next = storage.RowResolver{Exec: l.exec}
		case err != nil:
			return schema.Target{}, false, err
		default:
			l.next = b
		}
	}
	return l.next.Resolve(ctx, key)
}
