package pipeline

import (
	"fmt"

	"songetl/internal/metrics"
	"songetl/internal/schema"
)

// FileStats counts what one file produced.
type FileStats struct {
	Records int // decoded lines

	Songs, Artists, Times, Users, Songplays int

	// Songplay lookups: Matched found ids, Unmatched did not (including keys
	// with a null part), Cached were answered without a query.
	Matched, Unmatched, Cached int
}

func (s *FileStats) add(o FileStats) {
	s.Records += o.Records
	s.Songs += o.Songs
	s.Artists += o.Artists
	s.Times += o.Times
	s.Users += o.Users
	s.Songplays += o.Songplays
	s.Matched += o.Matched
	s.Unmatched += o.Unmatched
	s.Cached += o.Cached
}

func (s FileStats) String() string {
	return fmt.Sprintf("songs=%d artists=%d time=%d users=%d songplays=%d matched=%d",
		s.Songs, s.Artists, s.Times, s.Users, s.Songplays, s.Matched)
}

// record reports committed rows and lookup outcomes.
func (s FileStats) record(job string) {
	metrics.RecordRows(job, schema.SongsTable, s.Songs)
	metrics.RecordRows(job, schema.ArtistsTable, s.Artists)
	metrics.RecordRows(job, schema.TimeTable, s.Times)
	metrics.RecordRows(job, schema.UsersTable, s.Users)
	metrics.RecordRows(job, schema.SongplaysTable, s.Songplays)
	metrics.RecordLookups(job, "hit", s.Matched)
	metrics.RecordLookups(job, "miss", s.Unmatched)
	metrics.RecordLookups(job, "cached", s.Cached)
}
