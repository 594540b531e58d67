package storage

import (
	"context"

	"github.com/andrescamacho/craftplan-go/internal/domain/resource"
)

// CompositeStorage aggregates one sub-store per resource family behind a
// single Storage. Every call is dispatched by the key's type family.
type CompositeStorage struct {
	stores map[resource.TypeFamily]Storage
}

// NewCompositeStorage creates a composite from family-scoped sub-stores
func NewCompositeStorage(stores map[resource.TypeFamily]Storage) *CompositeStorage {
	copied := make(map[resource.TypeFamily]Storage, len(stores))
	for family, s := range stores {
		if s != nil {
			copied[family] = s
		}
	}
	return &CompositeStorage{stores: copied}
}

// Families returns the families with a registered sub-store, in fixed order
func (c *CompositeStorage) Families() []resource.TypeFamily {
	result := make([]resource.TypeFamily, 0, len(c.stores))
	for _, family := range resource.Families() {
		if _, ok := c.stores[family]; ok {
			result = append(result, family)
		}
	}
	return result
}

// IsEmpty returns true if no sub-store is registered
func (c *CompositeStorage) IsEmpty() bool {
	return len(c.stores) == 0
}

// Peek implements Storage; keys of an unregistered family have nothing available
func (c *CompositeStorage) Peek(ctx context.Context, key resource.Key) (int64, error) {
	s, ok := c.stores[key.Type]
	if !ok {
		return 0, nil
	}
	return s.Peek(ctx, key)
}

// Extract implements Storage
func (c *CompositeStorage) Extract(ctx context.Context, key resource.Key, amount int64, mode resource.Mode, src ActionSource) (int64, error) {
	s, ok := c.stores[key.Type]
	if !ok {
		return 0, nil
	}
	return s.Extract(ctx, key, amount, mode, src)
}

// Insert implements Storage
func (c *CompositeStorage) Insert(ctx context.Context, key resource.Key, amount int64, mode resource.Mode, src ActionSource) (int64, error) {
	s, ok := c.stores[key.Type]
	if !ok {
		return 0, nil
	}
	return s.Insert(ctx, key, amount, mode, src)
}

// AvailableStacks implements Storage.
// Sub-store contents are merged per key, so a key reported by two stores
// appears once with the summed amount.
func (c *CompositeStorage) AvailableStacks(ctx context.Context) ([]resource.GenericStack, error) {
	merged := resource.NewKeyCounter()
	for _, family := range c.Families() {
		stacks, err := c.stores[family].AvailableStacks(ctx)
		if err != nil {
			return nil, err
		}
		for _, stack := range stacks {
			merged.Add(stack.Key, stack.Amount)
		}
	}
	return merged.Stacks(), nil
}
