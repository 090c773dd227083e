// Package caching memoizes audit results by input fingerprint with a TTL.
package caching

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dtnitsch/geo-audit/internal/common"
	"github.com/dtnitsch/geo-audit/pkg/db"
)

// Entry is a stored value and the moment it stops being served.
type Entry struct {
	Value     []byte
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Store persists entries. Implementations must be safe for concurrent use.
type Store interface {
	Get(key string) (Entry, bool, error)
	Set(key string, e Entry) error
	Delete(key string) error
}

// Fingerprint hashes the parts that identify an audit input.
// Parts are length-prefixed so ("ab","c") and ("a","bc") differ.
func Fingerprint(parts ...string) string {
	var b []byte
	for _, p := range parts {
		b = fmt.Appendf(b, "%d:%s|", len(p), p)
	}
	return common.ContentHash(b)
}

// Cache serves a stored value for ttl after it was computed.
type Cache struct {
	store Store
	ttl   time.Duration
	now   func() time.Time

	mu       sync.Mutex
	inflight map[string]*call
}

type call struct {
	done  chan struct{}
	value []byte
	err   error
}

// New creates a Cache over store. A ttl of zero or less disables memoization.
func New(store Store, ttl time.Duration) *Cache {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Cache{
		store:    store,
		ttl:      ttl,
		now:      time.Now,
		inflight: make(map[string]*call),
	}
}

// WithClock replaces the time source, for tests.
func (c *Cache) WithClock(now func() time.Time) *Cache {
	c.now = now
	return c
}

// TTL returns the memoization window.
func (c *Cache) TTL() time.Duration { return c.ttl }

// GetOrCompute returns the stored value for key while it is fresh, otherwise
// runs compute and stores its result. Failed computations are never stored.
// Concurrent callers with the same key wait for one computation and take its
// value only when it succeeded; after a failure each waiter computes with its
// own context. The bool reports whether the value came from the store or from
// another caller's computation.
func (c *Cache) GetOrCompute(ctx context.Context, key string, compute func(context.Context) ([]byte, error)) ([]byte, bool, error) {
	if c.ttl <= 0 {
		v, err := compute(ctx)
		return v, false, err
	}

	for {
		c.mu.Lock()
		if cl, ok := c.inflight[key]; ok {
			c.mu.Unlock()
			select {
			case <-cl.done:
				if cl.err == nil {
					return cl.value, true, nil
				}
				continue
			case <-ctx.Done():
				return nil, false, ctx.Err()
			}
		}
		e, ok, err := c.store.Get(key)
		if err != nil {
			c.mu.Unlock()
			return nil, false, fmt.Errorf("cache lookup: %w", err)
		}
		if ok {
			if c.now().Before(e.ExpiresAt) {
				c.mu.Unlock()
				return e.Value, true, nil
			}
			_ = c.store.Delete(key) // stale; a failed delete is overwritten on next Set
		}
		cl := &call{done: make(chan struct{})}
		c.inflight[key] = cl
		c.mu.Unlock()

		return c.lead(ctx, key, cl, compute)
	}
}

func (c *Cache) lead(ctx context.Context, key string, cl *call, compute func(context.Context) ([]byte, error)) ([]byte, bool, error) {
	defer func() {
		c.mu.Lock()
		delete(c.inflight, key)
		c.mu.Unlock()
		close(cl.done)
	}()

	cl.value, cl.err = compute(ctx)
	if cl.err != nil {
		return nil, false, cl.err
	}
	now := c.now()
	if err := c.store.Set(key, Entry{Value: cl.value, CreatedAt: now, ExpiresAt: now.Add(c.ttl)}); err != nil {
		cl.err = fmt.Errorf("cache store: %w", err)
		return nil, false, cl.err
	}
	return cl.value, false, nil
}

// MemoryStore keeps entries in a map for the life of the process.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

func (m *MemoryStore) Get(key string) (Entry, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[key]
	return e, ok, nil
}

func (m *MemoryStore) Set(key string, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = e
	return nil
}

func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// SQLStore keeps entries in the audit_cache table so they survive restarts.
type SQLStore struct {
	db *db.DB
}

func NewSQLStore(database *db.DB) (*SQLStore, error) {
	if database == nil {
		return nil, errors.New("nil database")
	}
	return &SQLStore{db: database}, nil
}

func (s *SQLStore) Get(key string) (Entry, bool, error) {
	row, found, err := s.db.GetCacheEntry(key)
	if err != nil || !found {
		return Entry{}, false, err
	}
	return Entry{Value: row.Payload, CreatedAt: row.CreatedAt, ExpiresAt: row.ExpiresAt}, true, nil
}

func (s *SQLStore) Set(key string, e Entry) error {
	return s.db.PutCacheEntry(key, e.Value, e.CreatedAt, e.ExpiresAt)
}

func (s *SQLStore) Delete(key string) error {
	return s.db.DeleteCacheEntry(key)
}

// Purge removes expired rows.
func (s *SQLStore) Purge(now time.Time) (int64, error) {
	return s.db.PurgeExpired(now)
}
