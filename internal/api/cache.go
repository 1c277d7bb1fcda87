package api

import (
	"encoding/json"
	"os"
	"strconv"
	"sync"
)

// DecisionCache is a thread-safe LRU cache of archived decisions by run ID.
type DecisionCache struct {
	mu      sync.Mutex
	maxSize int
	entries map[string]json.RawMessage
	order   []string // oldest first
}

// NewDecisionCache creates a cache with the given maximum number of entries.
// If maxSize <= 0, it defaults to 100.
func NewDecisionCache(maxSize int) *DecisionCache {
	if maxSize <= 0 {
		maxSize = 100
	}
	return &DecisionCache{
		maxSize: maxSize,
		entries: make(map[string]json.RawMessage),
	}
}

// NewDecisionCacheFromEnv creates a cache with size from DECISION_CACHE_SIZE env var.
func NewDecisionCacheFromEnv() *DecisionCache {
	size := 100
	if v := os.Getenv("DECISION_CACHE_SIZE"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			size = parsed
		}
	}
	return NewDecisionCache(size)
}

// Len returns the number of cached decisions.
func (c *DecisionCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Get retrieves a decision from the cache, or nil if not found.
func (c *DecisionCache) Get(runID string) json.RawMessage {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.entries[runID]
	if !ok {
		return nil
	}

	// Move to end (most recently used)
	c.moveToEnd(runID)
	return data
}

// Put adds a decision to the cache, evicting the oldest if full.
func (c *DecisionCache) Put(runID string, data json.RawMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[runID]; ok {
		c.entries[runID] = data
		c.moveToEnd(runID)
		return
	}

	for len(c.entries) >= c.maxSize && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[runID] = data
	c.order = append(c.order, runID)
}

func (c *DecisionCache) moveToEnd(runID string) {
	for i, k := range c.order {
		if k == runID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			c.order = append(c.order, runID)
			return
		}
	}
}
