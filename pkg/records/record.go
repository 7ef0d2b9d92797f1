// Package records defines the schema-free shapes that flow out of the
// parsers: a Record is one decoded JSON object, a Table is every record of
// one input file together with the set of keys seen.
package records

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Record is one decoded JSON object keyed by its original field names.
type Record map[string]any

// Has reports whether key is present, even when its value is JSON null.
func (r Record) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// Text returns the string value of key. Absent keys and JSON null yield nil.
// Numbers are rendered with their original JSON text so identifiers that
// arrive as numbers keep their spelling.
func (r Record) Text(key string) (*string, error) {
	v, ok := r[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch t := v.(type) {
	case string:
		return &t, nil
	case json.Number:
		s := t.String()
		return &s, nil
	default:
		return nil, fmt.Errorf("field %q: want string, got %T", key, v)
	}
}

// Float returns the numeric value of key as float64. Numeric strings are
// accepted; an empty string is treated like null.
func (r Record) Float(key string) (*float64, error) {
	v, ok := r[key]
	if !ok || v == nil {
		return nil, nil
	}
	var (
		f   float64
		err error
	)
	switch t := v.(type) {
	case json.Number:
		f, err = t.Float64()
	case float64:
		f = t
	case int64:
		f = float64(t)
	case int:
		f = float64(t)
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil, nil
		}
		f, err = strconv.ParseFloat(s, 64)
	default:
		return nil, fmt.Errorf("field %q: want number, got %T", key, v)
	}
	if err != nil {
		return nil, fmt.Errorf("field %q: %w", key, err)
	}
	return &f, nil
}

// Int returns the integral value of key. Numbers written with a fraction
// are accepted only when the fraction is zero (e.g. 2000.0).
func (r Record) Int(key string) (*int64, error) {
	v, ok := r[key]
	if !ok || v == nil {
		return nil, nil
	}
	var s string
	switch t := v.(type) {
	case json.Number:
		s = t.String()
	case string:
		s = strings.TrimSpace(t)
		if s == "" {
			return nil, nil
		}
	case int64:
		return &t, nil
	case int:
		n := int64(t)
		return &n, nil
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return nil, fmt.Errorf("field %q: want integer, got %T", key, v)
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return &n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt64 {
		return nil, fmt.Errorf("field %q: %q is not an integer", key, s)
	}
	n := int64(f)
	return &n, nil
}

// Table is every record of one input file. Columns lists each key present
// in any record, in first-seen order. Rows keep document order.
type Table struct {
	Columns []string
	Rows    []Record
}

// Append adds rec to the table and registers any keys not seen before.
func (t *Table) Append(rec Record, keyOrder []string) {
	seen := make(map[string]struct{}, len(t.Columns))
	for _, c := range t.Columns {
		seen[c] = struct{}{}
	}
	for _, k := range keyOrder {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		t.Columns = append(t.Columns, k)
	}
	t.Rows = append(t.Rows, rec)
}

// Missing returns the subset of cols that is not a column of the table,
// in the order requested.
func (t Table) Missing(cols ...string) []string {
	have := make(map[string]struct{}, len(t.Columns))
	for _, c := range t.Columns {
		have[c] = struct{}{}
	}
	var out []string
	for _, c := range cols {
		if _, ok := have[c]; !ok {
			out = append(out, c)
		}
	}
	return out
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Rows) }
