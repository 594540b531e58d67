package provider

import (
	"context"

	"github.com/andrescamacho/craftplan-go/internal/domain/resource"
	"github.com/andrescamacho/craftplan-go/internal/domain/storage"
)

// PatternProviderTarget is whatever sits on the far side of a provider face
// and can receive pattern inputs.
type PatternProviderTarget interface {
	// Insert offers amount of key; under Simulate nothing changes
	Insert(ctx context.Context, key resource.Key, amount int64, mode resource.Mode) (int64, error)

	// ContainsPatternInput reports whether the target already holds any of the
	// candidate keys, ignoring secondary data on both sides
	ContainsPatternInput(ctx context.Context, candidates []resource.Key) (bool, error)
}

// World answers loaded-ness of block positions
type World interface {
	IsLoaded(pos Position) bool
}

// CapabilityLookup finds a native storage capability exposed by the block at
// pos on face dir
type CapabilityLookup interface {
	Find(pos Position, dir Direction) (storage.Storage, bool)
}

// ExternalStorageStrategy adapts a foreign block to a storage of one family
type ExternalStorageStrategy interface {
	Family() resource.TypeFamily
	Wrap(pos Position, dir Direction) (storage.Storage, bool)
}
