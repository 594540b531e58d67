package services

import (
	"context"
	"sync"

	"github.com/andrescamacho/craftplan-go/internal/application/common"
	"github.com/andrescamacho/craftplan-go/internal/domain/provider"
	"github.com/andrescamacho/craftplan-go/internal/domain/resource"
	"github.com/andrescamacho/craftplan-go/internal/domain/storage"
)

type targetCacheKey struct {
	pos provider.Position
	dir provider.Direction
}

// TargetResolver finds the storage a pattern provider faces.
//
// Resolution order for (pos, dir):
//  1. the native capability exposed by the block at pos
//  2. every external storage strategy that can wrap the block, combined into
//     one composite storage
//
// Results are cached per (pos, dir) until Invalidate or InvalidateAll is
// called. Unloaded positions never resolve and drop their cache entries.
type TargetResolver struct {
	world      provider.World
	native     provider.CapabilityLookup
	strategies []provider.ExternalStorageStrategy
	source     storage.ActionSource

	mu    sync.Mutex
	cache map[targetCacheKey]provider.PatternProviderTarget
}

// NewTargetResolver creates a resolver. native may be nil.
func NewTargetResolver(
	world provider.World,
	native provider.CapabilityLookup,
	strategies []provider.ExternalStorageStrategy,
	source storage.ActionSource,
) *TargetResolver {
	return &TargetResolver{
		world:      world,
		native:     native,
		strategies: strategies,
		source:     source,
		cache:      make(map[targetCacheKey]provider.PatternProviderTarget),
	}
}

// Resolve returns the target at pos facing dir, or false when nothing can
// receive pattern inputs there
func (r *TargetResolver) Resolve(ctx context.Context, pos provider.Position, dir provider.Direction) (provider.PatternProviderTarget, bool) {
	key := targetCacheKey{pos: pos, dir: dir}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.world.IsLoaded(pos) {
		delete(r.cache, key)
		return nil, false
	}

	if target, ok := r.cache[key]; ok {
		return target, true
	}

	target, via := r.lookup(pos, dir)
	if target == nil {
		common.LoggerFromContext(ctx).Log("DEBUG", "No pattern provider target", map[string]interface{}{
			"position":  pos.String(),
			"direction": string(dir),
		})
		return nil, false
	}

	common.LoggerFromContext(ctx).Log("DEBUG", "Pattern provider target resolved", map[string]interface{}{
		"position":  pos.String(),
		"direction": string(dir),
		"via":       via,
	})
	r.cache[key] = target
	return target, true
}

func (r *TargetResolver) lookup(pos provider.Position, dir provider.Direction) (provider.PatternProviderTarget, string) {
	if r.native != nil {
		if s, ok := r.native.Find(pos, dir); ok && s != nil {
			return provider.NewStorageTarget(s, r.source), "native"
		}
	}

	stores := make(map[resource.TypeFamily]storage.Storage)
	for _, strategy := range r.strategies {
		if _, taken := stores[strategy.Family()]; taken {
			continue
		}
		if s, ok := strategy.Wrap(pos, dir); ok && s != nil {
			stores[strategy.Family()] = s
		}
	}
	if len(stores) == 0 {
		return nil, ""
	}
	return provider.NewStorageTarget(storage.NewCompositeStorage(stores), r.source), "external"
}

// Invalidate drops every cached target at pos (an adjacency change there)
func (r *TargetResolver) Invalidate(pos provider.Position) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key := range r.cache {
		if key.pos == pos {
			delete(r.cache, key)
		}
	}
}

// InvalidateAll clears the whole cache
func (r *TargetResolver) InvalidateAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[targetCacheKey]provider.PatternProviderTarget)
}

// CachedTargets returns the number of cached targets
func (r *TargetResolver) CachedTargets() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cache)
}
