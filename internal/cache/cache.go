// Package cache implements the bounded testcase content cache
// (component H): a map from seed id to in-memory bytes, bounded by a
// byte budget and an entry-count budget, evicting uniformly at random
// rather than by recency.
package cache

import (
	"fmt"
	"math/rand"

	"github.com/fluxqueue/fluxqueue/internal/memory"
)

// Loader reads a seed's full on-disk contents, used on a cache miss.
type Loader interface {
	Load(id int) ([]byte, error)
}

// Cache is the bounded, randomly-evicting testcase content cache.
type Cache struct {
	maxBytes   int64
	maxEntries int

	slots        map[int][]byte
	currentBytes int64

	smallestFree int // hint: lowest id known not to be cached (lowered by Evict)
	maxCount     int // high-water mark of entries ever held at once

	loader Loader
	pool   *memory.ByteSlicePool
	rng    *rand.Rand
}

// New constructs a Cache bounded by maxBytes and maxEntries, reading
// misses through loader.
func New(maxBytes int64, maxEntries int, loader Loader) *Cache {
	return &Cache{
		maxBytes:     maxBytes,
		maxEntries:   maxEntries,
		slots:        make(map[int][]byte),
		smallestFree: 0,
		loader:       loader,
		pool:         memory.NewByteSlicePool(),
		rng:          rand.New(rand.NewSource(1)),
	}
}

// Get returns id's bytes, loading from disk on a miss and evicting a
// uniformly-random non-current slot first if the budget would be
// exceeded.
func (c *Cache) Get(id int, current int) ([]byte, error) {
	if b, ok := c.slots[id]; ok {
		return b, nil
	}

	data, err := c.loader.Load(id)
	if err != nil {
		return nil, fmt.Errorf("cache: load seed %d: %w", id, err)
	}

	c.makeRoom(int64(len(data)), current)
	c.install(id, data)
	return data, nil
}

// StoreMem writes data into id's slot if the budget permits; otherwise
// it is dropped silently and the next Get reloads from disk.
func (c *Cache) StoreMem(id int, data []byte) {
	if int64(len(data)) > c.maxBytes {
		return
	}
	if _, ok := c.slots[id]; !ok && len(c.slots) >= c.maxEntries {
		return
	}
	if c.currentBytes+int64(len(data)) > c.maxBytes {
		return
	}
	c.install(id, data)
}

// RetakeAfterTrim reshapes the cached bytes for id to match a new,
// shorter length (a seed whose input was trimmed in place).
func (c *Cache) RetakeAfterTrim(id int, newLen int) {
	b, ok := c.slots[id]
	if !ok || newLen > len(b) {
		return
	}
	reshaped := c.pool.Get(newLen)
	copy(reshaped, b[:newLen])
	c.currentBytes += int64(len(reshaped)) - int64(len(b))
	c.slots[id] = reshaped
}

// Evict drops id's slot, if present, freeing its budget.
func (c *Cache) Evict(id int) {
	b, ok := c.slots[id]
	if !ok {
		return
	}
	c.currentBytes -= int64(len(b))
	delete(c.slots, id)
	if id < c.smallestFree {
		c.smallestFree = id
	}
}

// Len returns the number of currently-cached entries.
func (c *Cache) Len() int { return len(c.slots) }

// MaxCount returns the high-water mark of entries ever cached at once.
func (c *Cache) MaxCount() int { return c.maxCount }

func (c *Cache) install(id int, data []byte) {
	if old, ok := c.slots[id]; ok {
		c.currentBytes -= int64(len(old))
	}
	c.slots[id] = data
	c.currentBytes += int64(len(data))
	if len(c.slots) > c.maxCount {
		c.maxCount = len(c.slots)
	}
	if id == c.smallestFree {
		c.smallestFree++
	}
}

func (c *Cache) makeRoom(need int64, current int) {
	for c.currentBytes+need > c.maxBytes || len(c.slots) >= c.maxEntries {
		victim, ok := c.randomVictim(current)
		if !ok {
			return
		}
		c.Evict(victim)
	}
}

func (c *Cache) randomVictim(current int) (int, bool) {
	if len(c.slots) == 0 {
		return 0, false
	}
	ids := make([]int, 0, len(c.slots))
	for id := range c.slots {
		if id != current {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return 0, false
	}
	return ids[c.rng.Intn(len(ids))], true
}
