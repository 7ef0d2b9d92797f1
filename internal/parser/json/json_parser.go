// Package json implements the line-delimited JSON reader used for both song
// and log files.
//
// Each non-blank line holds exactly one JSON object:
//
//	{"song_id":"S1","title":"T","artist_id":"A1","year":2000,"duration":180.0}
//	{"song_id":"S2","title":"U","artist_id":"A2","year":0,"duration":95.5}
//
// Numbers are decoded as json.Number so downstream code decides whether a
// value is an integer or a float. No filtering or coercion happens here.
package json

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"songetl/pkg/records"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ReadTable reads every line of r into a Table. Blank lines are skipped.
// The first malformed line stops the read with a *ParseError naming the
// 1-based line number.
func ReadTable(r io.Reader) (records.Table, error) {
	return readTable(r, "")
}

func readTable(r io.Reader, path string) (records.Table, error) {
	var (
		tbl  records.Table
		br   = newLineReader(stripBOM(r))
		line int
	)
	for {
		b, err := br.next()
		if err != nil && !errors.Is(err, io.EOF) {
			return records.Table{}, &ParseError{Path: path, Line: line + 1, Err: err}
		}
		if len(b) > 0 || !errors.Is(err, io.EOF) {
			line++
		}
		if trimmed := bytes.TrimSpace(b); len(trimmed) > 0 {
			rec, keys, perr := decodeObject(trimmed)
			if perr != nil {
				return records.Table{}, &ParseError{Path: path, Line: line, Err: perr}
			}
			tbl.Append(rec, keys)
		}
		if errors.Is(err, io.EOF) {
			return tbl, nil
		}
	}
}

// decodeObject decodes one line into a Record and also returns the
// object's keys in document order, which a map cannot preserve.
func decodeObject(line []byte) (records.Record, []string, error) {
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("line is not a JSON object")
	}

	rec := records.Record{}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("unexpected token %v", tok)
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, nil, fmt.Errorf("value of %q: %w", key, err)
		}
		if _, dup := rec[key]; !dup {
			keys = append(keys, key)
		}
		rec[key] = v
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, nil, fmt.Errorf("trailing data after object")
	}
	return rec, keys, nil
}

func stripBOM(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(transform.Nop))
}
