package orgchart

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/turtacn/CohortMap/internal/domain/hierarchy"
)

// Memo caches build results by key.  Implementations must be safe for
// concurrent use.  A miss is reported with ok=false and a nil error.
type Memo interface {
	Get(ctx context.Context, key string) (res *hierarchy.Result, ok bool, err error)
	Set(ctx context.Context, key string, res *hierarchy.Result) error
	Invalidate(ctx context.Context, key string) error
}

// LRUMemo is an in-process Memo bounded by size with per-entry expiry.
type LRUMemo struct {
	cache *expirable.LRU[string, *hierarchy.Result]
}

// NewLRUMemo returns a memo holding at most size results for ttl each.  A
// zero ttl keeps entries until they are evicted by size.
func NewLRUMemo(size int, ttl time.Duration) *LRUMemo {
	if size < 1 {
		size = 1
	}
	return &LRUMemo{cache: expirable.NewLRU[string, *hierarchy.Result](size, nil, ttl)}
}

func (m *LRUMemo) Get(_ context.Context, key string) (*hierarchy.Result, bool, error) {
	res, ok := m.cache.Get(key)
	return res, ok, nil
}

func (m *LRUMemo) Set(_ context.Context, key string, res *hierarchy.Result) error {
	m.cache.Add(key, res)
	return nil
}

func (m *LRUMemo) Invalidate(_ context.Context, key string) error {
	m.cache.Remove(key)
	return nil
}

// Len returns the number of live entries.
func (m *LRUMemo) Len() int { return m.cache.Len() }

//Personal.AI order the ending
