package storage

import (
	"context"
	"fmt"
	"log"
)

// Row is anything that renders itself as positional params in its table's
// insert column order.
type Row interface {
	Values() []any
}

// RowKind says which table a batch of rows belongs to.
type RowKind int

const (
	KindSong RowKind = iota + 1
	KindArtist
	KindTime
	KindUser
	KindSongplay
)

var kindStatements = map[RowKind]StatementID{
	KindSong:     StmtInsertSong,
	KindArtist:   StmtInsertArtist,
	KindTime:     StmtInsertTime,
	KindUser:     StmtInsertUser,
	KindSongplay: StmtInsertSongplay,
}

func (k RowKind) String() string {
	if id, ok := kindStatements[k]; ok {
		return string(id)
	}
	return fmt.Sprintf("RowKind(%d)", int(k))
}

// Statement returns the insert statement for k.
func (k RowKind) Statement() (StatementID, error) {
	id, ok := kindStatements[k]
	if !ok {
		return "", fmt.Errorf("storage: unknown row kind %d", int(k))
	}
	return id, nil
}

// Load executes kind's insert statement once per row, in order. It does not
// begin or commit anything; the caller owns the transaction.
//
// The first failing row stops the batch. The returned count is the number
// of rows executed successfully before it, and the error is an
// *ExecutionError wrapping the driver error.
func Load[R Row](ctx context.Context, rows []R, kind RowKind, exec Executor) (int, error) {
	id, err := kind.Statement()
	if err != nil {
		return 0, err
	}
	for i, r := range rows {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if err := exec.Exec(ctx, id, r.Values()...); err != nil {
			log.Printf("loader: %s failed row=%d err=%v", id, i, err)
			return i, &ExecutionError{Statement: id, Row: i, Err: err}
		}
	}
	return len(rows), nil
}
