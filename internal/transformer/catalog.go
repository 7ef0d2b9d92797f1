package transformer

import (
	"errors"
	"log"

	"songetl/internal/schema"
	"songetl/pkg/records"
)

// CatalogColumns are the song file keys Catalog cannot do without. The
// artist_location/latitude/longitude keys are optional.
var CatalogColumns = []string{"song_id", "title", "artist_id", "year", "duration", "artist_name"}

// Catalog projects the first record of a song file into a Song and an
// Artist. Song files carry one record each; any further records are
// ignored with a warning.
func Catalog(t records.Table) (schema.Song, schema.Artist, error) {
	if t.Len() == 0 {
		return schema.Song{}, schema.Artist{}, &SchemaMismatchError{Kind: "song", Err: errors.New("file has no records")}
	}
	if missing := t.Missing(CatalogColumns...); len(missing) > 0 {
		return schema.Song{}, schema.Artist{}, &SchemaMismatchError{Kind: "song", Missing: missing}
	}
	if n := t.Len(); n > 1 {
		log.Printf("transformer: song file has %d records, using the first", n)
	}

	rec := t.Rows[0]
	var f fields
	song := schema.Song{
		ID:       f.requiredText(rec, "song_id"),
		Title:    f.requiredText(rec, "title"),
		ArtistID: f.requiredText(rec, "artist_id"),
		Year:     f.requiredInt(rec, "year"),
		Duration: f.requiredFloat(rec, "duration"),
	}
	artist := schema.Artist{
		ID:        song.ArtistID,
		Name:      f.requiredText(rec, "artist_name"),
		Location:  f.text(rec, "artist_location"),
		Latitude:  f.float(rec, "artist_latitude"),
		Longitude: f.float(rec, "artist_longitude"),
	}
	if f.err != nil {
		return schema.Song{}, schema.Artist{}, &SchemaMismatchError{Kind: "song", Row: 0, Err: f.err}
	}
	return song, artist, nil
}
