package catalog

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/rsned/waitlist-fitting-server/pkg/fitting"
)

// DefaultCacheSize is the number of entries held by each cache.
const DefaultCacheSize = 8192

// Cached wraps a catalog with LRU caches. Misses are de-duplicated and sent
// to the underlying catalog in one batch; unknown keys are cached too.
type Cached struct {
	next  Catalog
	items *lru.Cache[fitting.ItemID, *fitting.Item]
	names *lru.Cache[string, fitting.ItemID]
	metas *lru.Cache[fitting.ItemID, map[fitting.ItemID]int]
	maxID fitting.ItemID
}

var _ Catalog = (*Cached)(nil)

// NewCached creates a caching catalog. A positive maxID rejects larger ids
// without consulting next.
func NewCached(next Catalog, size int, maxID fitting.ItemID) (*Cached, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	items, err := lru.New[fitting.ItemID, *fitting.Item](size)
	if err != nil {
		return nil, fmt.Errorf("creating item cache: %w", err)
	}
	names, err := lru.New[string, fitting.ItemID](size)
	if err != nil {
		return nil, fmt.Errorf("creating name cache: %w", err)
	}
	metas, err := lru.New[fitting.ItemID, map[fitting.ItemID]int](max(size/8, 16))
	if err != nil {
		return nil, fmt.Errorf("creating meta cache: %w", err)
	}
	return &Cached{next: next, items: items, names: names, metas: metas, maxID: maxID}, nil
}

func (c *Cached) Items(ctx context.Context, ids []fitting.ItemID) (map[fitting.ItemID]*fitting.Item, error) {
	result := make(map[fitting.ItemID]*fitting.Item, len(ids))
	var missing []fitting.ItemID
	queued := make(map[fitting.ItemID]bool)

	for _, id := range ids {
		if id <= 0 || (c.maxID > 0 && id > c.maxID) {
			continue
		}
		if item, ok := c.items.Get(id); ok {
			if item != nil {
				result[id] = item
			}
			continue
		}
		if !queued[id] {
			queued[id] = true
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return result, nil
	}

	loaded, err := c.next.Items(ctx, missing)
	if err != nil {
		return nil, err
	}
	for _, id := range missing {
		item := loaded[id]
		c.items.Add(id, item)
		if item != nil {
			result[id] = item
		}
	}

	return result, nil
}

func (c *Cached) IDsOf(ctx context.Context, names []string) (map[string]fitting.ItemID, error) {
	result := make(map[string]fitting.ItemID, len(names))
	var missing []string
	queued := make(map[string]bool)

	for _, name := range names {
		if id, ok := c.names.Get(name); ok {
			if id > 0 {
				result[name] = id
			}
			continue
		}
		if !queued[name] {
			queued[name] = true
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return result, nil
	}

	loaded, err := c.next.IDsOf(ctx, missing)
	if err != nil {
		return nil, err
	}
	for _, name := range missing {
		id := loaded[name]
		c.names.Add(name, id)
		if id > 0 {
			result[name] = id
		}
	}

	return result, nil
}

func (c *Cached) MetaVariants(ctx context.Context, id fitting.ItemID) (map[fitting.ItemID]int, error) {
	if variants, ok := c.metas.Get(id); ok {
		return copyTiers(variants), nil
	}
	variants, err := c.next.MetaVariants(ctx, id)
	if err != nil {
		return nil, err
	}
	c.metas.Add(id, copyTiers(variants))
	return variants, nil
}

// Len reports the number of cached item entries.
func (c *Cached) Len() int {
	return c.items.Len()
}

func copyTiers(m map[fitting.ItemID]int) map[fitting.ItemID]int {
	out := make(map[fitting.ItemID]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
