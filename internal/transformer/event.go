package transformer

import (
	"context"
	"fmt"

	"songetl/internal/schema"
	"songetl/pkg/records"
)

const (
	// ActionField is the log key naming what the user did.
	ActionField = "page"
	// PlayAction marks an event as a song being played.
	PlayAction = "NextSong"
)

// EventColumns are the log keys Events needs once rows have been filtered.
var EventColumns = []string{
	"ts", "userId", "firstName", "lastName", "gender", "level",
	"song", "artist", "length", "sessionId", "location", "userAgent",
}

// Resolver finds the song and artist ids for a natural key. A miss is
// reported with ok == false and is not an error.
type Resolver interface {
	Resolve(ctx context.Context, key schema.NaturalKey) (t schema.Target, ok bool, err error)
}

// EventRows holds everything derived from one log file. The three slices
// are parallel: index i of each comes from the i-th NextSong event.
type EventRows struct {
	Times     []schema.TimeRow
	Users     []schema.User
	Songplays []schema.Songplay
}

// Len returns the number of NextSong events the rows came from.
func (e EventRows) Len() int { return len(e.Songplays) }

// FilterPlays returns the records whose action is PlayAction, in order.
func FilterPlays(rows []records.Record) []records.Record {
	var out []records.Record
	for _, r := range rows {
		if a, ok := r[ActionField].(string); ok && a == PlayAction {
			out = append(out, r)
		}
	}
	return out
}

// Events turns a log file into time, user and songplay rows. Only NextSong
// events are kept and nothing is deduplicated: two plays at the same
// instant yield two identical time rows. Each songplay's ids come from res;
// keys with a null part are not looked up and stay unresolved.
func Events(ctx context.Context, t records.Table, res Resolver) (EventRows, error) {
	if t.Len() > 0 {
		if missing := t.Missing(ActionField); len(missing) > 0 {
			return EventRows{}, &SchemaMismatchError{Kind: "log", Missing: missing}
		}
	}
	plays := FilterPlays(t.Rows)
	if len(plays) == 0 {
		return EventRows{}, nil
	}
	if missing := t.Missing(EventColumns...); len(missing) > 0 {
		return EventRows{}, &SchemaMismatchError{Kind: "log", Missing: missing}
	}

	out := EventRows{
		Times:     make([]schema.TimeRow, 0, len(plays)),
		Users:     make([]schema.User, 0, len(plays)),
		Songplays: make([]schema.Songplay, 0, len(plays)),
	}
	for i, rec := range plays {
		var f fields
		ts := f.requiredInt(rec, "ts")
		userID := f.requiredInt(rec, "userId")
		level := f.text(rec, "level")
		title := f.text(rec, "song")
		artist := f.text(rec, "artist")
		length := f.float(rec, "length")
		play := schema.Songplay{
			SeqIndex:  i,
			UserID:    userID,
			Level:     level,
			SessionID: f.requiredInt(rec, "sessionId"),
			Location:  f.text(rec, "location"),
			UserAgent: f.text(rec, "userAgent"),
		}
		user := schema.User{
			ID:        userID,
			FirstName: f.text(rec, "firstName"),
			LastName:  f.text(rec, "lastName"),
			Gender:    f.text(rec, "gender"),
			Level:     level,
		}
		if f.err != nil {
			return EventRows{}, &SchemaMismatchError{Kind: "log", Row: i, Err: f.err}
		}

		tr := Decompose(ts)
		play.StartTime = tr.StartTime

		if title != nil && artist != nil && length != nil {
			key := schema.NaturalKey{Title: *title, Artist: *artist, Duration: *length}
			target, ok, err := res.Resolve(ctx, key)
			if err != nil {
				return EventRows{}, fmt.Errorf("transformer: resolve songplay %d: %w", i, err)
			}
			if ok {
				play.SongID = &target.SongID
				play.ArtistID = &target.ArtistID
			}
		}

		out.Times = append(out.Times, tr)
		out.Users = append(out.Users, user)
		out.Songplays = append(out.Songplays, play)
	}
	return out, nil
}
