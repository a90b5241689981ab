package loader

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/spektr-org/needsradar/engine"
	"github.com/spektr-org/needsradar/internal/logging"
)

// ============================================================================
// DATASET CACHE — content-addressed, two tiers
// ============================================================================
// Key: sha256(source bytes, ordinal scale) + "#" + sheet. The scale is
// part of the key because label cells decode through it.
//
//   1. In-process map of decoded *engine.Dataset (shared, immutable)
//   2. Optional Store holding decoded records (Redis in production)
//   3. Decode, then fill both tiers
//
// Concurrent loads of the same key decode once (singleflight). Store
// failures are logged and fall through to decoding.
// ============================================================================

// Store persists decoded records by cache key.
type Store interface {
	Get(ctx context.Context, key string) ([]engine.Record, bool, error)
	Set(ctx context.Context, key string, records []engine.Record) error
}

// CacheStats are cumulative lookup counters.
type CacheStats struct {
	MemoryHits uint64
	StoreHits  uint64
	Misses     uint64
}

// Cache shares decoded datasets across sessions.
type Cache struct {
	mu     sync.RWMutex
	mem    map[string]*engine.Dataset
	group  singleflight.Group
	store  Store
	logger logging.Logger

	memoryHits atomic.Uint64
	storeHits  atomic.Uint64
	misses     atomic.Uint64
}

// NewCache creates a cache. store may be nil for memory only.
func NewCache(store Store, logger logging.Logger) *Cache {
	return &Cache{
		mem:    make(map[string]*engine.Dataset),
		store:  store,
		logger: logging.OrDefault(logger).Named("cache"),
	}
}

// CacheKey content-addresses a source decoded with scale.
func CacheKey(data []byte, sheet string, scale engine.OrdinalScale) string {
	h := sha256.New()
	h.Write(data)
	h.Write([]byte{0})
	h.Write([]byte(scale.String()))
	return hex.EncodeToString(h.Sum(nil)) + "#" + sheet
}

// Load returns the dataset for key, decoding it at most once.
func (c *Cache) Load(ctx context.Context, key, source string, decode func() (*engine.Dataset, error)) (*engine.Dataset, error) {
	if ds, ok := c.lookup(key); ok {
		c.memoryHits.Add(1)
		return ds, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		if ds, ok := c.lookup(key); ok {
			c.memoryHits.Add(1)
			return ds, nil
		}

		if c.store != nil {
			records, found, err := c.store.Get(ctx, key)
			switch {
			case err != nil:
				c.logger.Warn("cache store get failed", logging.String("key", key), logging.Err(err))
			case found:
				ds, err := engine.NewDataset(records, source)
				if err == nil {
					c.storeHits.Add(1)
					c.remember(key, ds)
					return ds, nil
				}
				c.logger.Warn("cached records rejected", logging.String("key", key), logging.Err(err))
			}
		}

		c.misses.Add(1)
		ds, err := decode()
		if err != nil {
			return nil, err
		}
		c.remember(key, ds)
		if c.store != nil {
			if err := c.store.Set(ctx, key, ds.Records()); err != nil {
				c.logger.Warn("cache store set failed", logging.String("key", key), logging.Err(err))
			}
		}
		return ds, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*engine.Dataset), nil
}

func (c *Cache) lookup(key string) (*engine.Dataset, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ds, ok := c.mem[key]
	return ds, ok
}

func (c *Cache) remember(key string, ds *engine.Dataset) {
	c.mu.Lock()
	c.mem[key] = ds
	c.mu.Unlock()
}

// Len returns the number of datasets held in memory.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.mem)
}

// Purge drops the in-memory tier.
func (c *Cache) Purge() {
	c.mu.Lock()
	c.mem = make(map[string]*engine.Dataset)
	c.mu.Unlock()
}

// Stats returns the lookup counters.
func (c *Cache) Stats() CacheStats {
	return CacheStats{
		MemoryHits: c.memoryHits.Load(),
		StoreHits:  c.storeHits.Load(),
		Misses:     c.misses.Load(),
	}
}
