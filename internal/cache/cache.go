// Package cache keeps recently resolved product records in memory.
package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	urlutil "github.com/law-makers/goodscrawl/internal/utils/url"
	"github.com/law-makers/goodscrawl/pkg/models"
	"github.com/rs/zerolog/log"
)

// Cache stores product records by key.
//
// Records are copied on the way in and on the way out, so a caller never
// shares a record with the cache or with another caller.
type Cache interface {
	// Get returns a copy of the cached record and whether it was found.
	Get(key string) (*models.ProductRecord, bool)

	// Set stores a copy of rec with the given TTL, replacing any previous entry.
	Set(key string, rec *models.ProductRecord, ttl time.Duration)

	// Close stops background cleanup.
	Close()
}

type cacheEntry struct {
	Record    *models.ProductRecord
	ExpiresAt time.Time
	Key       string
}

// MemoryCache is an entry-bounded LRU with per-entry expiry
type MemoryCache struct {
	store      map[string]*list.Element
	lruList    *list.List
	mu         sync.Mutex
	maxEntries int
	now        func() time.Time
	ctx        context.Context
	cancel     context.CancelFunc
	hits       uint64
	misses     uint64
}

// NewMemoryCache creates a cache holding at most maxEntries records
func NewMemoryCache(maxEntries int) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = 500
	}
	ctx, cancel := context.WithCancel(context.Background())
	mc := &MemoryCache{
		store:      make(map[string]*list.Element),
		lruList:    list.New(),
		maxEntries: maxEntries,
		now:        time.Now,
		ctx:        ctx,
		cancel:     cancel,
	}
	go mc.cleanupExpired(time.Minute)
	return mc
}

// Key derives the cache key of a product page: site plus canonical URL
func Key(site, rawURL string) string {
	return site + "::" + urlutil.Canonical(rawURL)
}

// Get retrieves a cached record and marks it most recently used
func (mc *MemoryCache) Get(key string) (*models.ProductRecord, bool) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	element, exists := mc.store[key]
	if !exists {
		mc.misses++
		return nil, false
	}
	entry := element.Value.(*cacheEntry)
	if mc.now().After(entry.ExpiresAt) {
		mc.misses++
		mc.remove(element)
		return nil, false
	}

	mc.lruList.MoveToFront(element)
	mc.hits++
	log.Debug().Str("key", key).Msg("Cache hit")
	return entry.Record.Clone(), true
}

// Set stores a copy of rec
func (mc *MemoryCache) Set(key string, rec *models.ProductRecord, ttl time.Duration) {
	if rec == nil {
		return
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	entry := &cacheEntry{Record: rec.Clone(), ExpiresAt: mc.now().Add(ttl), Key: key}
	if element, exists := mc.store[key]; exists {
		element.Value = entry
		mc.lruList.MoveToFront(element)
		log.Debug().Str("key", key).Dur("ttl", ttl).Msg("Updated cache entry")
		return
	}

	for mc.lruList.Len() >= mc.maxEntries {
		mc.evictLRU()
	}
	mc.store[key] = mc.lruList.PushFront(entry)
	log.Debug().Str("key", key).Dur("ttl", ttl).Msg("Cached record")
}

// Close stops the background cleanup goroutine
func (mc *MemoryCache) Close() {
	mc.cancel()
}

// Len is the number of stored entries, expired ones included
func (mc *MemoryCache) Len() int {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.lruList.Len()
}

// remove must be called with the lock held
func (mc *MemoryCache) remove(element *list.Element) {
	entry := element.Value.(*cacheEntry)
	mc.lruList.Remove(element)
	delete(mc.store, entry.Key)
}

// evictLRU drops the least recently used entry (lock held)
func (mc *MemoryCache) evictLRU() {
	element := mc.lruList.Back()
	if element == nil {
		return
	}
	log.Debug().Str("key", element.Value.(*cacheEntry).Key).Msg("Evicted from cache (LRU)")
	mc.remove(element)
}

func (mc *MemoryCache) purgeExpired() int {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	now := mc.now()
	purged := 0
	var next *list.Element
	for element := mc.lruList.Front(); element != nil; element = next {
		next = element.Next()
		if now.After(element.Value.(*cacheEntry).ExpiresAt) {
			mc.remove(element)
			purged++
		}
	}
	return purged
}

func (mc *MemoryCache) cleanupExpired(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := mc.purgeExpired(); n > 0 {
				log.Debug().Int("purged", n).Msg("Expired cache entries removed")
			}
		case <-mc.ctx.Done():
			return
		}
	}
}

// Stats returns cache statistics including hit rate
func (mc *MemoryCache) Stats() map[string]interface{} {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	hitRate := 0.0
	total := mc.hits + mc.misses
	if total > 0 {
		hitRate = float64(mc.hits) / float64(total) * 100
	}
	return map[string]interface{}{
		"entries":     mc.lruList.Len(),
		"max_entries": mc.maxEntries,
		"hits":        mc.hits,
		"misses":      mc.misses,
		"hit_rate":    hitRate,
	}
}
