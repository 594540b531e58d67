package storage

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/andrescamacho/craftplan-go/internal/domain/resource"
)

// MemoryStorage is an in-memory store, the default "internal network storage".
//
// Thread-Safety:
// All operations are guarded by a mutex. Planning itself is single-threaded,
// but UI previews and CLI queries may peek concurrently.
//
// Invariants:
// - Stored amounts are always positive (zero entries are removed)
// - Total stored units never exceed capacity (when capacity > 0)
// - Only keys of accepted families are stored (when a family filter is set)
type MemoryStorage struct {
	mu sync.RWMutex

	capacity  int64 // 0 means unlimited
	families  map[resource.TypeFamily]bool
	inventory map[resource.Key]int64
	total     int64
}

// NewMemoryStorage creates an empty store.
// A capacity of 0 means unlimited; with no families every family is accepted.
func NewMemoryStorage(capacity int64, families ...resource.TypeFamily) (*MemoryStorage, error) {
	if capacity < 0 {
		return nil, &ErrInvalidCapacity{Capacity: capacity}
	}

	var accepted map[resource.TypeFamily]bool
	if len(families) > 0 {
		accepted = make(map[resource.TypeFamily]bool, len(families))
		for _, f := range families {
			if !f.IsValid() {
				return nil, fmt.Errorf("unknown resource type family: %q", f)
			}
			accepted[f] = true
		}
	}

	return &MemoryStorage{
		capacity:  capacity,
		families:  accepted,
		inventory: make(map[resource.Key]int64),
	}, nil
}

// NewUnboundedMemoryStorage creates an unlimited store accepting every family
func NewUnboundedMemoryStorage() *MemoryStorage {
	s, _ := NewMemoryStorage(0)
	return s
}

// Capacity returns the configured capacity (0 = unlimited)
func (s *MemoryStorage) Capacity() int64 { return s.capacity }

// Accepts returns true if the store can hold keys of this family
func (s *MemoryStorage) Accepts(family resource.TypeFamily) bool {
	return s.families == nil || s.families[family]
}

// TotalUnits returns the sum of all stored amounts
func (s *MemoryStorage) TotalUnits() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}

// Peek implements Storage
func (s *MemoryStorage) Peek(ctx context.Context, key resource.Key) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inventory[key], nil
}

// Insert implements Storage
func (s *MemoryStorage) Insert(ctx context.Context, key resource.Key, amount int64, mode resource.Mode, src ActionSource) (int64, error) {
	if amount <= 0 || !s.Accepts(key.Type) {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// an unlimited store still cannot hold more than math.MaxInt64 units
	limit := int64(math.MaxInt64)
	if s.capacity > 0 {
		limit = s.capacity
	}
	space := limit - s.total
	if space <= 0 {
		return 0, nil
	}
	accepted := amount
	if accepted > space {
		accepted = space
	}

	if mode == resource.Modulate {
		s.inventory[key] += accepted
		s.total += accepted
	}
	return accepted, nil
}

// Extract implements Storage
func (s *MemoryStorage) Extract(ctx context.Context, key resource.Key, amount int64, mode resource.Mode, src ActionSource) (int64, error) {
	if amount <= 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	held := s.inventory[key]
	removed := amount
	if removed > held {
		removed = held
	}
	if removed == 0 {
		return 0, nil
	}

	if mode == resource.Modulate {
		s.inventory[key] = held - removed
		s.total -= removed
		if s.inventory[key] == 0 {
			delete(s.inventory, key)
		}
	}
	return removed, nil
}

// AvailableStacks implements Storage
func (s *MemoryStorage) AvailableStacks(ctx context.Context) ([]resource.GenericStack, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]resource.Key, 0, len(s.inventory))
	for key := range s.inventory {
		keys = append(keys, key)
	}
	resource.SortKeys(keys)

	stacks := make([]resource.GenericStack, 0, len(keys))
	for _, key := range keys {
		stacks = append(stacks, resource.GenericStack{Key: key, Amount: s.inventory[key]})
	}
	return stacks, nil
}

// Snapshot returns a copy of the inventory as a key counter
func (s *MemoryStorage) Snapshot() *resource.KeyCounter {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := resource.NewKeyCounter()
	for key, amount := range s.inventory {
		c.Add(key, amount)
	}
	return c
}

func (s *MemoryStorage) String() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return fmt.Sprintf("MemoryStorage[keys=%d, units=%d, capacity=%d]", len(s.inventory), s.total, s.capacity)
}
