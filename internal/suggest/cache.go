// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package suggest

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/tchap/go-patricia/v2/patricia"
)

// Cache memoises a Suggester by lowercased prefix. Entries expire after ttl
// and the oldest entry is evicted once size entries are held. Errors are not
// cached. Cache is safe for concurrent use.
//
// With a limit set, an answer shorter than the limit is complete for its
// prefix, so a longer prefix that misses is answered from the longest
// complete ancestor in the trie without asking the provider.
type Cache struct {
	next  Suggester
	size  int
	ttl   time.Duration
	limit int
	now   func() time.Time
	mu    sync.Mutex
	trie  *patricia.Trie
	order []string
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithLimit tells the cache how many words the provider returns at most.
// Zero disables answering from ancestors.
func WithLimit(n int) CacheOption {
	return func(c *Cache) { c.limit = n }
}

type cacheEntry struct {
	words  []string
	stored time.Time
}

// NewCache wraps next. size <= 0 returns next unwrapped.
func NewCache(next Suggester, size int, ttl time.Duration, opts ...CacheOption) Suggester {
	if size <= 0 {
		return next
	}
	c := &Cache{
		next: next,
		size: size,
		ttl:  ttl,
		now:  time.Now,
		trie: patricia.NewTrie(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Suggest returns the cached completions for prefix or asks the wrapped
// Suggester with the cache key, so every caller sharing a key gets the
// provider's answer for exactly that key.
func (c *Cache) Suggest(ctx context.Context, prefix string) ([]string, error) {
	if strings.TrimSpace(prefix) == "" {
		return nil, nil
	}
	key := cacheKey(prefix)
	if words, ok := c.lookup(key); ok {
		return words, nil
	}
	if words, ok := c.fromAncestor(key); ok {
		return words, nil
	}

	words, err := c.next.Suggest(ctx, key)
	if err != nil {
		return nil, err
	}
	c.store(key, words)
	return clone(words), nil
}

// Len reports the number of cached prefixes.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order)
}

func (c *Cache) lookup(key string) ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item := c.trie.Get(patricia.Prefix(key))
	if item == nil {
		return nil, false
	}
	e := item.(cacheEntry)
	if c.ttl > 0 && c.now().Sub(e.stored) > c.ttl {
		c.trie.Delete(patricia.Prefix(key))
		c.dropOrder(key)
		return nil, false
	}
	return clone(e.words), true
}

func (c *Cache) store(key string, words []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry := cacheEntry{words: clone(words), stored: c.now()}
	if c.trie.Get(patricia.Prefix(key)) != nil {
		c.trie.Set(patricia.Prefix(key), entry)
		c.dropOrder(key)
		c.order = append(c.order, key)
		return
	}
	for len(c.order) >= c.size {
		oldest := c.order[0]
		c.order = c.order[1:]
		c.trie.Delete(patricia.Prefix(oldest))
	}
	c.trie.Insert(patricia.Prefix(key), entry)
	c.order = append(c.order, key)
}

// fromAncestor filters the longest fresh, complete entry whose key is a
// prefix of key. Only words that start with key are kept.
func (c *Cache) fromAncestor(key string) ([]string, bool) {
	if c.limit <= 0 {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	var best *cacheEntry
	bestLen := -1
	now := c.now()
	c.trie.VisitPrefixes(patricia.Prefix(key), func(p patricia.Prefix, item patricia.Item) error {
		e := item.(cacheEntry)
		if len(p) >= len(key) || len(p) <= bestLen || len(e.words) >= c.limit {
			return nil
		}
		if c.ttl > 0 && now.Sub(e.stored) > c.ttl {
			return nil
		}
		best, bestLen = &e, len(p)
		return nil
	})
	if best == nil {
		return nil, false
	}

	var out []string
	for _, w := range best.words {
		if strings.HasPrefix(strings.ToLower(w), key) {
			out = append(out, w)
		}
	}
	return out, true
}

func (c *Cache) dropOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

// cacheKey keeps surrounding spaces: "new " starts a phrase and is a
// different question from "new".
func cacheKey(p string) string {
	return strings.ToLower(p)
}

func clone(words []string) []string {
	if words == nil {
		return nil
	}
	return append([]string(nil), words...)
}
