package formula

import (
	"slices"
	"sync"

	"petab-hq/petab/pkg/formula/parser"
)

// Cache stores parse results keyed by formula text. Identical formulas are
// common across table rows. It is safe for concurrent use. When full, the
// oldest entry is evicted.
type Cache struct {
	mu         sync.RWMutex
	entries    map[string]parser.Result
	order      []string
	maxEntries int
}

// NewCache creates a cache holding at most maxEntries results. A
// non-positive maxEntries means unbounded.
func NewCache(maxEntries int) *Cache {
	return &Cache{
		entries:    make(map[string]parser.Result),
		maxEntries: maxEntries,
	}
}

// Get returns the cached result for text. The diagnostics are a copy the
// caller may modify; the tree is shared and must not be.
func (c *Cache) Get(text string) (parser.Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	res, ok := c.entries[text]
	if !ok {
		return parser.Result{}, false
	}
	return parser.Result{Root: res.Root, Diagnostics: res.Diagnostics.Clone()}, true
}

// Put stores a parse result. Storing an existing key keeps the first result.
func (c *Cache) Put(text string, res parser.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[text]; ok {
		return
	}
	if c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		delete(c.entries, c.order[0])
		c.order = slices.Delete(c.order, 0, 1)
	}
	c.entries[text] = parser.Result{Root: res.Root, Diagnostics: res.Diagnostics.Clone()}
	c.order = append(c.order, text)
}

// Len returns the number of cached results.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
