package json

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

/*
TestReadTable_ColumnsAndOrder verifies that ReadTable:

  - keeps rows in document order,
  - reports columns as the union of keys in first-seen order,
  - decodes numbers as json.Number.
*/
func TestReadTable_ColumnsAndOrder(t *testing.T) {
	const ndjson = `{"song_id":"S1","title":"T","year":2000}
{"song_id":"S2","duration":95.5,"title":"U"}
`
	tbl, err := ReadTable(strings.NewReader(ndjson))
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}

	wantCols := []string{"song_id", "title", "year", "duration"}
	if !reflect.DeepEqual(tbl.Columns, wantCols) {
		t.Fatalf("Columns = %#v; want %#v", tbl.Columns, wantCols)
	}
	if tbl.Len() != 2 {
		t.Fatalf("Len() = %d; want 2", tbl.Len())
	}
	if got := tbl.Rows[0]["song_id"]; got != "S1" {
		t.Fatalf("row 0 song_id = %#v; want \"S1\"", got)
	}
	if got, ok := tbl.Rows[0]["year"].(json.Number); !ok || got.String() != "2000" {
		t.Fatalf("row 0 year = %#v (%T); want json.Number(\"2000\")", tbl.Rows[0]["year"], tbl.Rows[0]["year"])
	}
	if got, ok := tbl.Rows[1]["duration"].(json.Number); !ok || got.String() != "95.5" {
		t.Fatalf("row 1 duration = %#v; want json.Number(\"95.5\")", tbl.Rows[1]["duration"])
	}
}

/*
TestReadTable_EmptyAndBlank verifies that empty input and input consisting
only of blank lines produce an empty table without error.
*/
func TestReadTable_EmptyAndBlank(t *testing.T) {
	for _, in := range []string{"", "\n", "  \n\n\t\n"} {
		tbl, err := ReadTable(strings.NewReader(in))
		if err != nil {
			t.Fatalf("ReadTable(%q): %v", in, err)
		}
		if tbl.Len() != 0 || len(tbl.Columns) != 0 {
			t.Fatalf("ReadTable(%q) = %+v; want empty table", in, tbl)
		}
	}
}

/*
TestReadTable_NoTrailingNewlineAndBOM checks that the final line is read
without a trailing newline and that a UTF-8 BOM does not leak into the first
key.
*/
func TestReadTable_NoTrailingNewlineAndBOM(t *testing.T) {
	in := "\ufeff" + `{"a":1}` + "\n" + `{"a":2}`
	tbl, err := ReadTable(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	if tbl.Len() != 2 {
		t.Fatalf("Len() = %d; want 2", tbl.Len())
	}
	if !reflect.DeepEqual(tbl.Columns, []string{"a"}) {
		t.Fatalf("Columns = %#v; want [a]", tbl.Columns)
	}
}

/*
TestReadTable_ParseErrors covers the inputs that must fail with *ParseError
and checks the reported line number.
*/
func TestReadTable_ParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		wantLine int
	}{
		{name: "truncated_object", in: "{\"a\":1}\n{\"a\":", wantLine: 2},
		{name: "array_line", in: "[1,2]\n", wantLine: 1},
		{name: "primitive_line", in: "{\"a\":1}\n\n42\n", wantLine: 3},
		{name: "two_objects_one_line", in: "{\"a\":1} {\"a\":2}\n", wantLine: 1},
		{name: "garbage", in: "not json\n", wantLine: 1},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadTable(strings.NewReader(tc.in))
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("ReadTable error = %v; want *ParseError", err)
			}
			if pe.Line != tc.wantLine {
				t.Fatalf("ParseError.Line = %d; want %d (err=%v)", pe.Line, tc.wantLine, err)
			}
		})
	}
}

/*
TestReadFile_PathInError verifies ReadFile carries the path into ParseError
and returns a plain error for a missing file.
*/
func TestReadFile_PathInError(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{oops}\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, err := ReadFile(bad)
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("ReadFile error = %v; want *ParseError", err)
	}
	if pe.Path != bad || !strings.Contains(err.Error(), bad) {
		t.Fatalf("ParseError path = %q, msg = %q; want %q", pe.Path, err.Error(), bad)
	}

	_, err = ReadFile(filepath.Join(dir, "missing.json"))
	if err == nil || errors.As(err, &pe) {
		t.Fatalf("ReadFile(missing) error = %v; want non-ParseError", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("ReadFile(missing) error = %v; want os.ErrNotExist", err)
	}
}

// TestRead_LabelsPath checks Read reports the caller's path.
func TestRead_LabelsPath(t *testing.T) {
	_, err := Read(strings.NewReader("{\"a\":1}\n[]\n"), "log_data/x.json")
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("Read error = %v; want *ParseError", err)
	}
	if pe.Path != "log_data/x.json" || pe.Line != 2 {
		t.Fatalf("ParseError = %+v; want path log_data/x.json line 2", pe)
	}
}
