package client

import (
	"sync"

	"github.com/lumenmap/candles/internal/domain/model"
)

// Cache is the client-local candle collection: loaded in full at
// startup, then maintained by appending the session's own creations
// and removing its deletions. There is no live merge of other
// sessions' candles; the next full reload picks those up.
type Cache struct {
	mu      sync.RWMutex
	candles []model.Candle
	byID    map[string]int
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{byID: make(map[string]int)}
}

// SetAll replaces the collection, e.g. after a full reload.
func (c *Cache) SetAll(candles []model.Candle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.candles = append([]model.Candle{}, candles...)
	c.byID = make(map[string]int, len(c.candles))
	for i, candle := range c.candles {
		c.byID[candle.ID] = i
	}
}

// Add appends a newly created candle. Duplicate IDs are ignored, which
// makes late-success deliveries after a cancel idempotent.
func (c *Cache) Add(candle model.Candle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.byID[candle.ID]; ok {
		return
	}
	c.byID[candle.ID] = len(c.candles)
	c.candles = append(c.candles, candle)
}

// Remove drops a deleted candle. Unknown IDs are a no-op.
func (c *Cache) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx, ok := c.byID[id]
	if !ok {
		return
	}
	c.candles = append(c.candles[:idx], c.candles[idx+1:]...)
	delete(c.byID, id)
	for i := idx; i < len(c.candles); i++ {
		c.byID[c.candles[i].ID] = i
	}
}

// All returns a copy of the collection.
func (c *Cache) All() []model.Candle {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.Candle{}, c.candles...)
}

// Len reports the cached candle count.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.candles)
}

// TallyEmotion counts cached candles with exactly this emotion name.
// Feeds the success screen's "others felt this too" figure.
func (c *Cache) TallyEmotion(name string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, candle := range c.candles {
		if candle.Emotion == name {
			n++
		}
	}
	return n
}
