package audio

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/heartmarshall/vocfr-backend/internal/domain"
)

type memoKey struct {
	wordID    string
	sectionID string
}

type memoEntry struct {
	ref Reference
	ok  bool
}

// CachingResolver memoizes another resolver per (word id, section id). Results
// for different context sections are kept apart, so a word shared by two
// sections may resolve differently in each. Misses are cached too. Safe for
// concurrent use.
type CachingResolver struct {
	inner WordResolver
	cache *lru.Cache[memoKey, memoEntry]
}

// NewCachingResolver wraps inner with a bounded LRU of the given size.
func NewCachingResolver(inner WordResolver, size int) (*CachingResolver, error) {
	c, err := lru.New[memoKey, memoEntry](size)
	if err != nil {
		return nil, err
	}
	return &CachingResolver{inner: inner, cache: c}, nil
}

// Resolve returns the memoized result or delegates to the wrapped resolver.
// A nil section is keyed by the word's first section, which is what the
// wrapped resolver falls back to.
func (c *CachingResolver) Resolve(word *domain.Word, section *domain.Section) (Reference, bool) {
	if word == nil {
		return Reference{}, false
	}

	key := memoKey{wordID: word.ID}
	if s := section; s != nil {
		key.sectionID = s.ID
	} else if s := word.FirstSection(); s != nil {
		key.sectionID = s.ID
	}

	if e, ok := c.cache.Get(key); ok {
		return e.ref, e.ok
	}
	ref, ok := c.inner.Resolve(word, section)
	c.cache.Add(key, memoEntry{ref: ref, ok: ok})
	return ref, ok
}

// Purge drops every memoized result, e.g. after the asset bundle changes.
func (c *CachingResolver) Purge() { c.cache.Purge() }

// Len returns the number of memoized results.
func (c *CachingResolver) Len() int { return c.cache.Len() }
