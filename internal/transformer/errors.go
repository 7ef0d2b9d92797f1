package transformer

import (
	"fmt"
	"strings"
)

// SchemaMismatchError reports a record that lacks the columns a transformer
// needs, or holds a value of the wrong shape in one of them.
type SchemaMismatchError struct {
	Kind    string   // "song" or "log"
	Missing []string // absent columns, when that is the cause
	Row     int      // 0-based row within the input, when known
	Err     error
}

func (e *SchemaMismatchError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("transformer: %s record: missing columns %s", e.Kind, strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("transformer: %s record %d: %v", e.Kind, e.Row, e.Err)
}

func (e *SchemaMismatchError) Unwrap() error { return e.Err }
