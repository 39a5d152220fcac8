package assembler

import "github.com/heartmarshall/vocfr-backend/internal/domain"

// WordCache maps a canonical spelling (exact, case-sensitive) to the single
// Word built for it during one assembly run. It is not safe for concurrent use
// and must not outlive the run that created it.
type WordCache struct {
	byCanonical map[string]*domain.Word
	order       []*domain.Word
}

// NewWordCache returns an empty cache.
func NewWordCache() *WordCache {
	return &WordCache{byCanonical: make(map[string]*domain.Word)}
}

// LookupOrCreate returns the cached Word for spelling, or calls factory once,
// stores the result and returns it.
func (c *WordCache) LookupOrCreate(spelling string, factory func() *domain.Word) *domain.Word {
	if w, ok := c.byCanonical[spelling]; ok {
		return w
	}
	w := factory()
	c.byCanonical[spelling] = w
	c.order = append(c.order, w)
	return w
}

// Len returns the number of distinct spellings seen.
func (c *WordCache) Len() int { return len(c.order) }

// Words returns the cached Words in first-seen order.
func (c *WordCache) Words() []*domain.Word {
	return c.order
}
