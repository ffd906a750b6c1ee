package backend

import (
	"context"
	"sync"

	"trastes/internal/cache"
	"trastes/internal/core"
)

const allRecordsKey = "records"

// CachedBackend serves ReadAll from a short-lived cache and drops the
// cache on every Append, so a redirect after a write sees the new rows.
// A read that overlaps an Append is returned but not cached.
type CachedBackend struct {
	next  Backend
	cache *cache.LRUCache[[]core.Record]

	mu         sync.Mutex
	generation uint64
}

func NewCachedBackend(next Backend, c *cache.LRUCache[[]core.Record]) *CachedBackend {
	return &CachedBackend{next: next, cache: c}
}

func (b *CachedBackend) Append(ctx context.Context, records ...core.Record) (string, error) {
	b.invalidate()
	ref, err := b.next.Append(ctx, records...)
	b.invalidate()
	return ref, err
}

func (b *CachedBackend) ReadAll(ctx context.Context) ([]core.Record, error) {
	if recs, ok := b.cache.Get(allRecordsKey); ok {
		return clone(recs), nil
	}

	b.mu.Lock()
	gen := b.generation
	b.mu.Unlock()

	recs, err := b.next.ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	if gen == b.generation {
		b.cache.Set(allRecordsKey, clone(recs))
	}
	b.mu.Unlock()
	return recs, nil
}

func (b *CachedBackend) invalidate() {
	b.mu.Lock()
	b.generation++
	b.cache.Delete(allRecordsKey)
	b.mu.Unlock()
}

func clone(recs []core.Record) []core.Record {
	return append(make([]core.Record, 0, len(recs)), recs...)
}
