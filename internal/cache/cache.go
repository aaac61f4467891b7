// Package cache keeps extracted articles keyed by URL with TTL expiry so
// repeat requests for the same page skip re-fetching and re-extraction.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/readableweb/goarticle/internal/article"
)

// DefaultMemoryTTL matches the conservative in-process default; durable
// backends typically configure a longer one.
const DefaultMemoryTTL = 10 * time.Minute

// Cache stores one article per URL. Keys compare case-insensitively. A zero
// ttl means the implementation default.
type Cache interface {
	Get(ctx context.Context, url string) (*article.Content, bool)
	Set(ctx context.Context, url string, a *article.Content, ttl time.Duration)
}

type memoryItem struct {
	content   *article.Content
	expiresAt time.Time
}

// Memory is a process-local TTL cache. Expired entries are evicted lazily on
// read. Safe for concurrent use.
type Memory struct {
	mu         sync.Mutex
	items      map[string]memoryItem
	defaultTTL time.Duration
}

func NewMemory(defaultTTL time.Duration) *Memory {
	if defaultTTL <= 0 {
		defaultTTL = DefaultMemoryTTL
	}
	return &Memory{items: make(map[string]memoryItem), defaultTTL: defaultTTL}
}

func (m *Memory) Get(_ context.Context, url string) (*article.Content, bool) {
	key := strings.ToLower(url)
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(item.expiresAt) {
		delete(m.items, key)
		return nil, false
	}
	return item.content, true
}

func (m *Memory) Set(_ context.Context, url string, a *article.Content, ttl time.Duration) {
	if ttl <= 0 {
		ttl = m.defaultTTL
	}
	key := strings.ToLower(url)
	m.mu.Lock()
	m.items[key] = memoryItem{content: a, expiresAt: time.Now().Add(ttl)}
	m.mu.Unlock()
}

var _ Cache = (*Memory)(nil)
