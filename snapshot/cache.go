// Package snapshot serves intelligence snapshots, recomputing them only when the
// corpus changes.
package snapshot

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mtheuszin1/adscale-deploy/models"
)

var ErrCacheMiss = errors.New("snapshot: cache miss")

// Cache stores snapshots by corpus fingerprint.
type Cache interface {
	Get(ctx context.Context, key string) (*models.LibraryIntelligence, error)
	Put(ctx context.Context, key string, intel *models.LibraryIntelligence) error
	// Invalidate drops every stored snapshot.
	Invalidate(ctx context.Context) error
}

type memoryEntry struct {
	intel   *models.LibraryIntelligence
	expires time.Time
}

// MemoryCache is a process-local Cache. A zero TTL never expires entries.
type MemoryCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]memoryEntry
	Now     func() time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{ttl: ttl, entries: make(map[string]memoryEntry), Now: time.Now}
}

func (c *MemoryCache) Get(_ context.Context, key string) (*models.LibraryIntelligence, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, ErrCacheMiss
	}
	if !e.expires.IsZero() && !c.Now().Before(e.expires) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, ErrCacheMiss
	}
	return e.intel, nil
}

func (c *MemoryCache) Put(_ context.Context, key string, intel *models.LibraryIntelligence) error {
	e := memoryEntry{intel: intel}
	if c.ttl > 0 {
		e.expires = c.Now().Add(c.ttl)
	}
	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Invalidate(context.Context) error {
	c.mu.Lock()
	c.entries = make(map[string]memoryEntry)
	c.mu.Unlock()
	return nil
}
