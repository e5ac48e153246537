// Package sixel encodes cell-row image runs as DECSIXEL sequences, with an
// LRU cache keyed by image content so unchanged rows cost a map lookup
// instead of a re-encode.
package sixel

import (
	"encoding/binary"
	"hash/fnv"

	"github.com/Gaurav-Gosain/gridterm/pkg/cell"
)

// DefaultCacheCapacity is sized for roughly ten full screens of image rows.
const DefaultCacheCapacity = 240

// Cache is a bounded LRU map from content keys to encoded sixel payloads.
// It is not safe for concurrent use; the renderer owns it.
type Cache struct {
	capacity int
	entries  map[uint64]*cacheEntry
	clock    uint64
}

type cacheEntry struct {
	payload  string
	lastUsed uint64
}

// NewCache creates a cache holding at most capacity payloads. A capacity
// of zero or less falls back to DefaultCacheCapacity.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &Cache{
		capacity: capacity,
		entries:  make(map[uint64]*cacheEntry, capacity),
	}
}

// Len returns the number of cached payloads.
func (c *Cache) Len() int { return len(c.entries) }

// Get returns the payload for key and marks it most recently used.
func (c *Cache) Get(key uint64) (string, bool) {
	e, ok := c.entries[key]
	if !ok {
		return "", false
	}
	c.clock++
	e.lastUsed = c.clock
	return e.payload, true
}

// Put stores a payload, evicting the least recently used entry when the
// cache is full.
func (c *Cache) Put(key uint64, payload string) {
	if e, ok := c.entries[key]; ok {
		c.clock++
		e.payload = payload
		e.lastUsed = c.clock
		return
	}
	if len(c.entries) >= c.capacity {
		var (
			oldestKey uint64
			oldest    uint64 = ^uint64(0)
		)
		for k, e := range c.entries {
			if e.lastUsed < oldest {
				oldest = e.lastUsed
				oldestKey = k
			}
		}
		delete(c.entries, oldestKey)
	}
	c.clock++
	c.entries[key] = &cacheEntry{payload: payload, lastUsed: c.clock}
}

// Key fingerprints a run of image cells. Two runs share a key only when
// every cell's bitmap content matches, so a hit can safely reuse the
// encoded payload at a different screen position.
func Key(run []cell.Cell) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(len(run)))
	h.Write(buf[:])
	for i := range run {
		if img := run[i].Image; img != nil {
			binary.LittleEndian.PutUint64(buf[:], img.Fingerprint())
			h.Write(buf[:])
		}
	}
	return h.Sum64()
}
