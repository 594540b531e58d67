package provider

import (
	"context"

	"github.com/andrescamacho/craftplan-go/internal/domain/resource"
	"github.com/andrescamacho/craftplan-go/internal/domain/storage"
)

// StorageTarget exposes a storage as a pattern-provider target.
// Every insert is attributed to the configured action source.
type StorageTarget struct {
	storage storage.Storage
	source  storage.ActionSource
}

// NewStorageTarget wraps a storage
func NewStorageTarget(s storage.Storage, source storage.ActionSource) *StorageTarget {
	return &StorageTarget{storage: s, source: source}
}

// Storage returns the wrapped storage
func (t *StorageTarget) Storage() storage.Storage {
	return t.storage
}

// Insert implements PatternProviderTarget
func (t *StorageTarget) Insert(ctx context.Context, key resource.Key, amount int64, mode resource.Mode) (int64, error) {
	return t.storage.Insert(ctx, key, amount, mode, t.source)
}

// ContainsPatternInput implements PatternProviderTarget
func (t *StorageTarget) ContainsPatternInput(ctx context.Context, candidates []resource.Key) (bool, error) {
	wanted := make(map[resource.Key]bool, len(candidates))
	for _, c := range candidates {
		wanted[c.DropSecondary()] = true
	}

	stacks, err := t.storage.AvailableStacks(ctx)
	if err != nil {
		return false, err
	}
	for _, s := range stacks {
		if s.IsPresent() && wanted[s.Key.DropSecondary()] {
			return true, nil
		}
	}
	return false, nil
}
