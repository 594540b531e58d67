package storage

import (
	"context"

	"github.com/andrescamacho/craftplan-go/internal/domain/resource"
)

// CheckedStorage wraps a Storage and verifies every insert/extract result
// against the storage contract. A result outside [0, requested] becomes a
// *StorageMutationMismatchError.
type CheckedStorage struct {
	inner Storage
}

// NewCheckedStorage wraps inner with contract verification
func NewCheckedStorage(inner Storage) *CheckedStorage {
	return &CheckedStorage{inner: inner}
}

// Unwrap returns the wrapped storage
func (c *CheckedStorage) Unwrap() Storage {
	return c.inner
}

// Peek implements Storage
func (c *CheckedStorage) Peek(ctx context.Context, key resource.Key) (int64, error) {
	return c.inner.Peek(ctx, key)
}

// Extract implements Storage
func (c *CheckedStorage) Extract(ctx context.Context, key resource.Key, amount int64, mode resource.Mode, src ActionSource) (int64, error) {
	removed, err := c.inner.Extract(ctx, key, amount, mode, src)
	if err != nil {
		return 0, err
	}
	if err := verify("extract", key, amount, removed, mode); err != nil {
		return 0, err
	}
	return removed, nil
}

// Insert implements Storage
func (c *CheckedStorage) Insert(ctx context.Context, key resource.Key, amount int64, mode resource.Mode, src ActionSource) (int64, error) {
	accepted, err := c.inner.Insert(ctx, key, amount, mode, src)
	if err != nil {
		return 0, err
	}
	if err := verify("insert", key, amount, accepted, mode); err != nil {
		return 0, err
	}
	return accepted, nil
}

// AvailableStacks implements Storage
func (c *CheckedStorage) AvailableStacks(ctx context.Context) ([]resource.GenericStack, error) {
	return c.inner.AvailableStacks(ctx)
}

func verify(operation string, key resource.Key, requested, returned int64, mode resource.Mode) error {
	limit := requested
	if limit < 0 {
		limit = 0
	}
	if returned < 0 || returned > limit {
		return &StorageMutationMismatchError{
			Operation: operation,
			Key:       key,
			Requested: requested,
			Returned:  returned,
			Mode:      mode,
		}
	}
	return nil
}
