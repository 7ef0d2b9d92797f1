// Package pipeline runs the per-file batch loop: read a file, transform it,
// load the rows through the session, commit, and report progress.
//
// Files are processed one at a time in discovery order. Each file is its
// own unit of work: its writes are committed together after it loads, or
// rolled back together when any step fails.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"songetl/internal/datasource/file"
	"songetl/internal/metrics"
	"songetl/internal/storage"
)

// Policy selects what Run does when a file fails.
type Policy string

const (
	// Abort returns the first file error; later files are not processed.
	Abort Policy = "abort"
	// Skip rolls the failing file back, logs it, and moves on. Run reports
	// every skipped file in a *RunError at the end.
	Skip Policy = "skip"
)

// ParsePolicy accepts "abort", "skip" or "" (Abort).
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "", Abort:
		return Abort, nil
	case Skip:
		return Skip, nil
	default:
		return "", fmt.Errorf("pipeline: unknown failure policy %q", s)
	}
}

// Tx is the part of storage.Session the driver needs.
type Tx interface {
	storage.Executor
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// ProcessFunc turns one file into loaded rows through exec. It must not
// commit; the driver does that once the function returns.
type ProcessFunc func(ctx context.Context, exec storage.Executor, path string) (FileStats, error)

// FileError ties a failure to the file it happened in.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string { return fmt.Sprintf("pipeline: %s: %v", e.Path, e.Err) }
func (e *FileError) Unwrap() error { return e.Err }

// RunError lists the files a Skip run could not load.
type RunError struct {
	Failed []*FileError
	Total  int
}

func (e *RunError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "pipeline: %d of %d files failed", len(e.Failed), e.Total)
	for _, f := range e.Failed {
		b.WriteString("\n  ")
		b.WriteString(f.Error())
	}
	return b.String()
}

func (e *RunError) Unwrap() []error {
	out := make([]error, len(e.Failed))
	for i, f := range e.Failed {
		out[i] = f
	}
	return out
}

// Summary totals one Run.
type Summary struct {
	Files     int // files found
	Committed int
	Failed    int
	FileStats
}

// Driver runs ProcessFuncs over files against a single session.
type Driver struct {
	Tx Tx

	// Out receives progress lines. Nil means os.Stdout.
	Out io.Writer

	// OnError is the failure policy; empty means Abort.
	OnError Policy

	// Job labels metrics, e.g. "song_data".
	Job string

	Verbose bool
}

// walk is a test hook.
var walk = file.Walk

func (d *Driver) out() io.Writer {
	if d.Out == nil {
		return os.Stdout
	}
	return d.Out
}

func (d *Driver) job() string {
	if d.Job == "" {
		return "songetl"
	}
	return d.Job
}

// ProcessDir finds every .json file under root, prints how many there are,
// and runs fn over them.
func (d *Driver) ProcessDir(ctx context.Context, root string, fn ProcessFunc) (Summary, error) {
	paths, err := walk(root, ".json")
	if err != nil {
		return Summary{}, fmt.Errorf("pipeline: %w", err)
	}
	fmt.Fprintf(d.out(), "%d files found in %s\n", len(paths), root)
	return d.Run(ctx, paths, fn)
}

// Run processes paths in order. After each committed file it prints
// "<i>/<n> files processed." where i counts from 1.
func (d *Driver) Run(ctx context.Context, paths []string, fn ProcessFunc) (Summary, error) {
	sum := Summary{Files: len(paths)}
	var failed []*FileError

	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		st, err := d.runFile(ctx, path, fn)
		metrics.RecordFile(d.job(), err)
		if err != nil {
			ferr := &FileError{Path: path, Err: err}
			sum.Failed++
			if d.OnError != Skip {
				return sum, ferr
			}
			log.Printf("pipeline: skip file=%s err=%v", path, err)
			failed = append(failed, ferr)
			continue
		}

		sum.Committed++
		sum.FileStats.add(st)
		st.record(d.job())
		if d.Verbose {
			log.Printf("pipeline: file=%s records=%d %s", path, st.Records, st)
		}
		fmt.Fprintf(d.out(), "%d/%d files processed.\n", i+1, len(paths))
	}

	if len(failed) > 0 {
		return sum, &RunError{Failed: failed, Total: len(paths)}
	}
	return sum, nil
}

func (d *Driver) runFile(ctx context.Context, path string, fn ProcessFunc) (FileStats, error) {
	st, err := fn(ctx, d.Tx, path)
	if err != nil {
		d.rollback(ctx, path)
		return st, err
	}

	start := time.Now()
	err = d.Tx.Commit(ctx)
	metrics.RecordStep(d.job(), "commit", err, time.Since(start))
	if err != nil {
		d.rollback(ctx, path)
		return st, fmt.Errorf("commit: %w", err)
	}
	return st, nil
}

func (d *Driver) rollback(ctx context.Context, path string) {
	// The failing file's context may be done; rollback still has to run.
	if err := d.Tx.Rollback(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("pipeline: rollback file=%s err=%v", path, err)
	}
}
