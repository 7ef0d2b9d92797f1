package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

//
// ==============================
//  FAKES (Test Doubles for pgx)
// ==============================
//

type execCall struct {
	q    string
	args []any
}

// fakePgConn implements pgConnLike.
type fakePgConn struct {
	execCalls []execCall
	execErr   error
	beginTxs  []*fakePgTx // handed out in order by Begin
	begins    int
	beginErr  error
	closed    bool
}

func (c *fakePgConn) Exec(ctx context.Context, q string, args ...any) (pgconn.CommandTag, error) {
	c.execCalls = append(c.execCalls, execCall{q, args})
	return pgconn.CommandTag{}, c.execErr
}

func (c *fakePgConn) Begin(ctx context.Context) (pgx.Tx, error) {
	if c.beginErr != nil {
		return nil, c.beginErr
	}
	if c.begins >= len(c.beginTxs) {
		return nil, fmt.Errorf("fake: no transaction prepared for Begin #%d", c.begins+1)
	}
	tx := c.beginTxs[c.begins]
	c.begins++
	return tx, nil
}

func (c *fakePgConn) Close(ctx context.Context) error { c.closed = true; return nil }

// fakePgTx implements pgx.Tx. Exec, QueryRow and Query are instrumented.
type fakePgTx struct {
	execCalls  []execCall
	execErr    error
	queryCalls []execCall
	row        []any   // values for QueryRow; nil means no rows
	rows       [][]any // values for Query
	committed  bool
	rolledBack bool
	commitErr  error
}

func (t *fakePgTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }

func (t *fakePgTx) Exec(ctx context.Context, q string, args ...any) (pgconn.CommandTag, error) {
	t.execCalls = append(t.execCalls, execCall{q, args})
	return pgconn.CommandTag{}, t.execErr
}

func (t *fakePgTx) Query(ctx context.Context, q string, args ...any) (pgx.Rows, error) {
	t.queryCalls = append(t.queryCalls, execCall{q, args})
	return &fakeRows{data: t.rows, i: -1}, nil
}

func (t *fakePgTx) QueryRow(ctx context.Context, q string, args ...any) pgx.Row {
	t.queryCalls = append(t.queryCalls, execCall{q, args})
	return fakeRow(t.row)
}

func (t *fakePgTx) CopyFrom(ctx context.Context, table pgx.Identifier, cols []string, src pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *fakePgTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *fakePgTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *fakePgTx) Conn() *pgx.Conn                                              { return nil }
func (t *fakePgTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}

func (t *fakePgTx) Commit(ctx context.Context) error {
	t.committed = true
	return t.commitErr
}

func (t *fakePgTx) Rollback(ctx context.Context) error {
	if t.committed || t.rolledBack {
		return pgx.ErrTxClosed
	}
	t.rolledBack = true
	return nil
}

// fakeRow implements pgx.Row over one row of values.
type fakeRow []any

func (r fakeRow) Scan(dest ...any) error {
	if r == nil {
		return pgx.ErrNoRows
	}
	return assign(dest, r)
}

// fakeRows implements pgx.Rows over a fixed result set.
type fakeRows struct {
	data   [][]any
	i      int
	closed bool
}

func (r *fakeRows) Close()                                       { r.closed = true }
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.closed || r.i+1 >= len(r.data) {
		r.closed = true
		return false
	}
	r.i++
	return true
}

func (r *fakeRows) Scan(dest ...any) error { return assign(dest, r.data[r.i]) }
func (r *fakeRows) Values() ([]any, error) { return r.data[r.i], nil }

func assign(dest, src []any) error {
	if len(dest) != len(src) {
		return fmt.Errorf("fake: scan %d values into %d targets", len(src), len(dest))
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = src[i].(string)
		case *float64:
			*p = src[i].(float64)
		default:
			return fmt.Errorf("fake: unsupported scan target %T", d)
		}
	}
	return nil
}
