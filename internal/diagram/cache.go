package diagram

import (
	"strings"
	"sync"
)

// minWordOverlap is how many words a placeholder description must share
// with a cached one before the cached image is reused for it.
const minWordOverlap = 2

// Cache holds the figures rendered for a single document build, keyed
// by placeholder description. Lookup tries an exact match first and
// then the cached description with the largest word overlap, so "the
// right triangle from question 4" still finds "right triangle ABC".
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	words map[string]bool
	png   []byte
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]*cacheEntry)}
}

func (c *Cache) Put(description string, png []byte) {
	key := normalize(description)
	if key == "" || len(png) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = &cacheEntry{words: wordSet(key), png: png}
}

// Resolve returns the PNG for a description, or false when nothing
// cached is close enough.
func (c *Cache) Resolve(description string) ([]byte, bool) {
	key := normalize(description)
	if key == "" {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	if e, ok := c.entries[key]; ok {
		return e.png, true
	}

	words := wordSet(key)
	var best *cacheEntry
	bestOverlap := 0
	for _, e := range c.entries {
		n := overlap(words, e.words)
		if n > bestOverlap {
			best, bestOverlap = e, n
		}
	}
	if bestOverlap >= minWordOverlap {
		return best.png, true
	}
	return nil, false
}

// Len reports how many figures rendered successfully.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func wordSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(s) {
		set[strings.Trim(w, ".,;:()[]")] = true
	}
	delete(set, "")
	return set
}

func overlap(a, b map[string]bool) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for w := range a {
		if b[w] {
			n++
		}
	}
	return n
}
