package storage

import (
	"context"
	"encoding/binary"
	"errors"
	"math"

	"songetl/internal/schema"

	"github.com/zeebo/xxh3"
)

// ErrNoScanner is returned by NewBulkResolver when the executor cannot scan
// the catalog join.
var ErrNoScanner = errors.New("storage: executor does not support target scans")

// RowResolver runs one lookup query per songplay.
type RowResolver struct {
	Exec Executor
}

func (r RowResolver) Resolve(ctx context.Context, key schema.NaturalKey) (schema.Target, bool, error) {
	return r.Exec.LookupTarget(ctx, StmtLookupTarget, key.Title, key.Artist, key.Duration)
}

// BulkResolver answers lookups from a snapshot of the song/artist join
// taken once. Matching is exact on all three key parts, as in SQL.
type BulkResolver struct {
	index map[schema.NaturalKey]schema.Target
}

// NewBulkResolver scans the join through exec, which must implement
// TargetScanner.
func NewBulkResolver(ctx context.Context, exec Executor) (*BulkResolver, error) {
	sc, ok := exec.(TargetScanner)
	if !ok {
		return nil, ErrNoScanner
	}
	rows, err := sc.ScanTargets(ctx, StmtScanTargets)
	if err != nil {
		return nil, &ExecutionError{Statement: StmtScanTargets, Row: -1, Err: err}
	}
	return NewBulkResolverFrom(rows), nil
}

// NewBulkResolverFrom indexes rows. When several rows share a key the first
// one wins.
func NewBulkResolverFrom(rows []schema.CatalogTarget) *BulkResolver {
	idx := make(map[schema.NaturalKey]schema.Target, len(rows))
	for _, r := range rows {
		if _, dup := idx[r.Key]; !dup {
			idx[r.Key] = r.Target
		}
	}
	return &BulkResolver{index: idx}
}

func (b *BulkResolver) Resolve(_ context.Context, key schema.NaturalKey) (schema.Target, bool, error) {
	t, ok := b.index[key]
	return t, ok, nil
}

// Len returns the number of distinct keys in the snapshot.
func (b *BulkResolver) Len() int { return len(b.index) }

// KeyResolver is the lookup side of a resolver.
type KeyResolver interface {
	Resolve(ctx context.Context, key schema.NaturalKey) (schema.Target, bool, error)
}

type cacheEntry struct {
	key    schema.NaturalKey
	target schema.Target
	ok     bool
}

// CachedResolver memoizes another resolver, misses included. Keys are
// hashed with xxh3; a hash hit on a different key falls through to Next.
// Use one per file: cached answers do not see later writes.
type CachedResolver struct {
	Next KeyResolver

	entries      map[xxh3.Uint128]cacheEntry
	Hits, Misses int
}

func NewCachedResolver(next KeyResolver) *CachedResolver {
	return &CachedResolver{Next: next, entries: map[xxh3.Uint128]cacheEntry{}}
}

func (c *CachedResolver) Resolve(ctx context.Context, key schema.NaturalKey) (schema.Target, bool, error) {
	h := hashKey(key)
	if e, ok := c.entries[h]; ok && e.key == key {
		c.Hits++
		return e.target, e.ok, nil
	}
	c.Misses++
	t, ok, err := c.Next.Resolve(ctx, key)
	if err != nil {
		return schema.Target{}, false, err
	}
	c.entries[h] = cacheEntry{key: key, target: t, ok: ok}
	return t, ok, nil
}

func hashKey(k schema.NaturalKey) xxh3.Uint128 {
	b := make([]byte, 0, len(k.Title)+len(k.Artist)+18)
	b = binary.LittleEndian.AppendUint64(b, uint64(len(k.Title)))
	b = append(b, k.Title...)
	b = append(b, k.Artist...)
	b = binary.LittleEndian.AppendUint64(b, math.Float64bits(k.Duration))
	return xxh3.Hash128(b)
}
