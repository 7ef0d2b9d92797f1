package json

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"songetl/pkg/records"
)

// ParseError reports input that is not valid line-delimited JSON.
type ParseError struct {
	Path string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	loc := e.Path
	if loc == "" {
		loc = "<input>"
	}
	return fmt.Sprintf("json parser: %s:%d: %v", loc, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ReadFile opens path and reads it into a Table.
func ReadFile(path string) (records.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return records.Table{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readTable(f, path)
}

// Read reads r into a Table. path only labels parse errors.
func Read(r io.Reader, path string) (records.Table, error) {
	return readTable(r, path)
}

// lineReader yields lines without the trailing newline and without the
// bufio.Scanner token limit; log lines with long user agents are common.
type lineReader struct{ r *bufio.Reader }

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{r: bufio.NewReaderSize(r, 64*1024)}
}

func (l *lineReader) next() ([]byte, error) {
	b, err := l.r.ReadBytes('\n')
	if n := len(b); n > 0 && b[n-1] == '\n' {
		b = b[:n-1]
	}
	return b, err
}
