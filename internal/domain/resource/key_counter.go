package resource

import (
	"math"
	"sort"
)

// KeyCounter accumulates amounts per resource key.
//
// Invariants:
// - Stored amounts are always positive; a key that reaches zero is removed
// - An absent key means zero
type KeyCounter struct {
	amounts map[Key]int64
}

// NewKeyCounter creates an empty counter
func NewKeyCounter() *KeyCounter {
	return &KeyCounter{amounts: make(map[Key]int64)}
}

// Add increases the amount for key, saturating at math.MaxInt64.
// Non-positive amounts are ignored.
func (c *KeyCounter) Add(key Key, amount int64) {
	if amount <= 0 {
		return
	}
	c.amounts[key] = saturatingAdd(c.amounts[key], amount)
}

// AddAll adds every entry of other into this counter
func (c *KeyCounter) AddAll(other *KeyCounter) {
	if other == nil {
		return
	}
	for key, amount := range other.amounts {
		c.Add(key, amount)
	}
}

// Remove decreases the amount for key, clamping at zero.
// Returns the amount actually removed.
func (c *KeyCounter) Remove(key Key, amount int64) int64 {
	if amount <= 0 {
		return 0
	}
	current := c.amounts[key]
	if current <= amount {
		delete(c.amounts, key)
		return current
	}
	c.amounts[key] = current - amount
	return amount
}

// Get returns the amount for key (zero if absent)
func (c *KeyCounter) Get(key Key) int64 {
	return c.amounts[key]
}

// Len returns the number of keys with a positive amount
func (c *KeyCounter) Len() int {
	return len(c.amounts)
}

// IsEmpty returns true if no key has a positive amount
func (c *KeyCounter) IsEmpty() bool {
	return len(c.amounts) == 0
}

// Total returns the sum of all amounts, saturating at math.MaxInt64
func (c *KeyCounter) Total() int64 {
	var total int64
	for _, amount := range c.amounts {
		total = saturatingAdd(total, amount)
	}
	return total
}

// saturatingAdd adds two non-negative amounts
func saturatingAdd(a, b int64) int64 {
	if a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}

// Keys returns the keys sorted by their string form
func (c *KeyCounter) Keys() []Key {
	keys := make([]Key, 0, len(c.amounts))
	for key := range c.amounts {
		keys = append(keys, key)
	}
	SortKeys(keys)
	return keys
}

// Stacks returns the counter contents as stacks in key order
func (c *KeyCounter) Stacks() []GenericStack {
	keys := c.Keys()
	stacks := make([]GenericStack, 0, len(keys))
	for _, key := range keys {
		stacks = append(stacks, GenericStack{Key: key, Amount: c.amounts[key]})
	}
	return stacks
}

// Clone returns an independent copy
func (c *KeyCounter) Clone() *KeyCounter {
	clone := NewKeyCounter()
	for key, amount := range c.amounts {
		clone.amounts[key] = amount
	}
	return clone
}

// Equal returns true if both counters hold the same amounts
func (c *KeyCounter) Equal(other *KeyCounter) bool {
	if other == nil {
		return c.IsEmpty()
	}
	if len(c.amounts) != len(other.amounts) {
		return false
	}
	for key, amount := range c.amounts {
		if other.amounts[key] != amount {
			return false
		}
	}
	return true
}

// ToMap returns a copy keyed by the string form of each key
func (c *KeyCounter) ToMap() map[string]int64 {
	result := make(map[string]int64, len(c.amounts))
	for key, amount := range c.amounts {
		result[key.String()] = amount
	}
	return result
}

// SortKeys sorts keys in place by their string form
func SortKeys(keys []Key) {
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
}
