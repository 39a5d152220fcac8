package assembler

import (
	"testing"

	"github.com/heartmarshall/vocfr-backend/internal/domain"
)

func TestWordCache_LookupOrCreate(t *testing.T) {
	t.Parallel()

	c := NewWordCache()
	calls := 0
	factory := func(id string) func() *domain.Word {
		return func() *domain.Word {
			calls++
			return &domain.Word{ID: id, Canonical: id}
		}
	}

	first := c.LookupOrCreate("orange", factory("orange"))
	second := c.LookupOrCreate("orange", factory("orange"))
	if first != second {
		t.Fatal("same spelling must return the same Word")
	}
	if calls != 1 {
		t.Fatalf("factory called %d times, want 1", calls)
	}

	// Case-sensitive.
	upper := c.LookupOrCreate("Orange", factory("Orange"))
	if upper == first {
		t.Fatal("lookup must be case-sensitive")
	}
	if calls != 2 || c.Len() != 2 {
		t.Fatalf("calls=%d len=%d, want 2/2", calls, c.Len())
	}

	words := c.Words()
	if words[0].ID != "orange" || words[1].ID != "Orange" {
		t.Fatalf("unexpected order: %s, %s", words[0].ID, words[1].ID)
	}
}
