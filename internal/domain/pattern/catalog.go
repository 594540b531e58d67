package pattern

import (
	"context"
	"sort"
	"sync"

	"github.com/andrescamacho/craftplan-go/internal/domain/resource"
)

// Catalog is the read-only index of production rules consumed by the planner.
//
// PatternsProducing returns every pattern with an output equal to key, ordered
// by declared priority (lower Priority first, then declaration order).
// An empty result is not an error.
type Catalog interface {
	PatternsProducing(ctx context.Context, key resource.Key) ([]*Details, error)
}

// Lookup resolves a pattern by its catalog ID
type Lookup interface {
	Get(ctx context.Context, id ID) (*Details, error)
}

// Source is a catalog that can also be browsed, as the CLI and daemon need
type Source interface {
	Catalog
	Lookup
	List(ctx context.Context) ([]*Details, error)
}

// MemoryCatalog is an in-memory Catalog indexed by output key
type MemoryCatalog struct {
	mu       sync.RWMutex
	byID     map[ID]*Details
	order    []ID
	byOutput map[resource.Key][]*Details
}

var _ Source = (*MemoryCatalog)(nil)

// NewMemoryCatalog creates an empty in-memory catalog
func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		byID:     make(map[ID]*Details),
		byOutput: make(map[resource.Key][]*Details),
	}
}

// NewMemoryCatalogWith creates a catalog pre-populated with patterns
func NewMemoryCatalogWith(patterns ...*Details) (*MemoryCatalog, error) {
	c := NewMemoryCatalog()
	for _, p := range patterns {
		if err := c.Register(p); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Register adds a pattern to the catalog
func (c *MemoryCatalog) Register(p *Details) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.byID[p.ID()]; exists {
		return &ErrDuplicatePattern{ID: p.ID()}
	}

	c.byID[p.ID()] = p
	c.order = append(c.order, p.ID())
	for _, out := range p.outputs {
		list := append(c.byOutput[out.Key], p)
		// Stable sort keeps registration order among equal priorities
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].priority < list[j].priority
		})
		c.byOutput[out.Key] = list
	}
	return nil
}

// PatternsProducing implements Catalog
func (c *MemoryCatalog) PatternsProducing(ctx context.Context, key resource.Key) ([]*Details, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	list := c.byOutput[key]
	result := make([]*Details, len(list))
	copy(result, list)
	return result, nil
}

// Get implements Lookup
func (c *MemoryCatalog) Get(ctx context.Context, id ID) (*Details, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.byID[id]
	if !ok {
		return nil, &ErrPatternNotFound{ID: id}
	}
	return p, nil
}

// All returns every pattern in registration order
func (c *MemoryCatalog) All() []*Details {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]*Details, 0, len(c.order))
	for _, id := range c.order {
		result = append(result, c.byID[id])
	}
	return result
}

// List returns every pattern in registration order
func (c *MemoryCatalog) List(ctx context.Context) ([]*Details, error) {
	return c.All(), nil
}

// OutputKeys returns every key some pattern produces, sorted
func (c *MemoryCatalog) OutputKeys() []resource.Key {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]resource.Key, 0, len(c.byOutput))
	for key := range c.byOutput {
		keys = append(keys, key)
	}
	resource.SortKeys(keys)
	return keys
}

// Len returns the number of registered patterns
func (c *MemoryCatalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}
