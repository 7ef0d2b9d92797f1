package transformer

import (
	"time"

	"songetl/internal/schema"
)

// Decompose breaks a millisecond Unix timestamp into its calendar parts,
// all in UTC. It depends on nothing but ms.
func Decompose(ms int64) schema.TimeRow {
	t := time.UnixMilli(ms).UTC()
	_, week := t.ISOWeek()
	return schema.TimeRow{
		StartTime: t,
		Hour:      t.Hour(),
		Day:       t.Day(),
		Week:      week,
		Month:     int(t.Month()),
		Year:      t.Year(),
		Weekday:   (int(t.Weekday()) + 6) % 7, // Monday = 0
	}
}
