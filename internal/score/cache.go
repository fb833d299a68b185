package score

import (
	"sync"
	"time"

	"github.com/uoscommunity/scorebot/internal/domain"
)

const cacheTTL = 30 * time.Second

type cacheEntry struct {
	score     domain.Score
	expiresAt time.Time
}

type scoreCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

func newScoreCache() *scoreCache {
	return &scoreCache{
		entries: make(map[string]cacheEntry),
	}
}

func (c *scoreCache) get(account string) (domain.Score, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[account]
	if !ok || time.Now().After(entry.expiresAt) {
		return domain.Score{}, false
	}
	return entry.score, true
}

func (c *scoreCache) set(account string, score domain.Score) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[account] = cacheEntry{
		score:     score,
		expiresAt: time.Now().Add(cacheTTL),
	}
}
