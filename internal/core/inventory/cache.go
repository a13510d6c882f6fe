package inventory

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/vasii/catalog/internal/core/domain"
)

const defaultCacheEntries = 32

// ContentHash identifies an inventory blob.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Cache memoizes ParseInventory by content hash. It is owned by its caller;
// nothing is shared between instances. Oldest entries are evicted first.
type Cache struct {
	mu      sync.Mutex
	max     int
	entries map[string]domain.ParseReport
	order   []string
}

func NewCache(maxEntries int) *Cache {
	if maxEntries <= 0 {
		maxEntries = defaultCacheEntries
	}
	return &Cache{
		max:     maxEntries,
		entries: make(map[string]domain.ParseReport, maxEntries),
	}
}

// Parse returns the report for text, parsing it on a miss. The second
// result reports a cache hit.
func (c *Cache) Parse(text string) (domain.ParseReport, bool) {
	hash := ContentHash(text)

	c.mu.Lock()
	report, hit := c.entries[hash]
	c.mu.Unlock()
	if hit {
		return cloneReport(report), true
	}

	report = ParseInventory(text)

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[hash]; !exists {
		if len(c.order) >= c.max {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
		c.order = append(c.order, hash)
	}
	c.entries[hash] = report
	return cloneReport(report), false
}

func (c *Cache) Invalidate(hash string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[hash]; !ok {
		return
	}
	delete(c.entries, hash)
	for i, h := range c.order {
		if h == hash {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]domain.ParseReport, c.max)
	c.order = nil
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func cloneReport(r domain.ParseReport) domain.ParseReport {
	out := r
	out.Products = make([]domain.Product, len(r.Products))
	copy(out.Products, r.Products)
	if r.DuplicateIDs != nil {
		out.DuplicateIDs = append([]int64(nil), r.DuplicateIDs...)
	}
	return out
}
