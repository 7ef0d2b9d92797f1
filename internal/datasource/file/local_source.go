// Package file finds and opens the local input files of a run.
package file

import (
	"context"
	"fmt"
	"io"
	"os"

	"songetl/internal/datasource"
)

// Local opens one file from the local disk.
type Local struct{ path string }

var _ datasource.Source = (*Local)(nil)

func NewLocal(path string) *Local { return &Local{path: path} }

// Path returns the file Local opens.
func (l *Local) Path() string { return l.path }

// Open returns the file for reading. A context that is already done wins
// over the filesystem; errors keep os.ErrNotExist and friends reachable.
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	return f, nil
}
