// Package schema holds the typed rows produced by the transformers and the
// table definitions they are loaded into.
package schema

import "time"

// Song is one catalog entry. Values follows the songs column order.
type Song struct {
	ID       string  `db:"song_id"`
	Title    string  `db:"title"`
	ArtistID string  `db:"artist_id"`
	Year     int64   `db:"year"`
	Duration float64 `db:"duration"`
}

func (s Song) Values() []any {
	return []any{s.ID, s.Title, s.ArtistID, s.Year, s.Duration}
}

// Artist is the creator of a Song. Location and coordinates are often
// missing from the catalog.
type Artist struct {
	ID        string   `db:"artist_id"`
	Name      string   `db:"name"`
	Location  *string  `db:"location"`
	Latitude  *float64 `db:"latitude"`
	Longitude *float64 `db:"longitude"`
}

func (a Artist) Values() []any {
	return []any{a.ID, a.Name, nullString(a.Location), nullFloat(a.Latitude), nullFloat(a.Longitude)}
}

// TimeRow is the calendar breakdown of one play's start time. Weekday
// counts from Monday = 0; Week is the ISO 8601 week number.
type TimeRow struct {
	StartTime time.Time `db:"start_time"`
	Hour      int       `db:"hour"`
	Day       int       `db:"day"`
	Week      int       `db:"week"`
	Month     int       `db:"month"`
	Year      int       `db:"year"`
	Weekday   int       `db:"weekday"`
}

func (t TimeRow) Values() []any {
	return []any{t.StartTime, t.Hour, t.Day, t.Week, t.Month, t.Year, t.Weekday}
}

// User is a listener as seen on one log event.
type User struct {
	ID        int64   `db:"user_id"`
	FirstName *string `db:"first_name"`
	LastName  *string `db:"last_name"`
	Gender    *string `db:"gender"`
	Level     *string `db:"level"`
}

func (u User) Values() []any {
	return []any{u.ID, nullString(u.FirstName), nullString(u.LastName), nullString(u.Gender), nullString(u.Level)}
}

// Songplay is one NextSong event. SongID and ArtistID are set together or
// not at all.
type Songplay struct {
	SeqIndex  int       `db:"seq_index"`
	StartTime time.Time `db:"start_time"`
	UserID    int64     `db:"user_id"`
	Level     *string   `db:"level"`
	SongID    *string   `db:"song_id"`
	ArtistID  *string   `db:"artist_id"`
	SessionID int64     `db:"session_id"`
	Location  *string   `db:"location"`
	UserAgent *string   `db:"user_agent"`
}

func (p Songplay) Values() []any {
	return []any{
		p.SeqIndex, p.StartTime, p.UserID, nullString(p.Level),
		nullString(p.SongID), nullString(p.ArtistID),
		p.SessionID, nullString(p.Location), nullString(p.UserAgent),
	}
}

// NaturalKey identifies a song by what a log event knows about it.
type NaturalKey struct {
	Title    string
	Artist   string
	Duration float64
}

// Target is the (song, artist) id pair a NaturalKey resolves to.
type Target struct {
	SongID   string
	ArtistID string
}

// CatalogTarget is one row of the song/artist join used for bulk lookups.
type CatalogTarget struct {
	Key NaturalKey
	Target
}

// nil pointers become untyped nil so every driver sees SQL NULL.
func nullString(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullFloat(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
