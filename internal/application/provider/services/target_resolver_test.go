package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/craftplan-go/internal/application/provider/services"
	"github.com/andrescamacho/craftplan-go/internal/domain/pattern"
	"github.com/andrescamacho/craftplan-go/internal/domain/provider"
	"github.com/andrescamacho/craftplan-go/internal/domain/resource"
	"github.com/andrescamacho/craftplan-go/internal/domain/storage"
	"github.com/andrescamacho/craftplan-go/test/helpers"
)

var (
	origin   = provider.Position{X: 0, Y: 64, Z: 0}
	above    = origin.Offset(provider.Up)
	source   = storage.ActionSource{Actor: "provider", Machine: "pattern-provider"}
	ironKey  = resource.Item("iron_ingot")
	waterKey = resource.Fluid("water")
)

type resolverFixture struct {
	world  *helpers.MockWorld
	native *helpers.MockCapabilityLookup
	items  *helpers.MockExternalStrategy
	fluids *helpers.MockExternalStrategy
}

func newResolverFixture() (*resolverFixture, *services.TargetResolver) {
	f := &resolverFixture{
		world:  helpers.NewMockWorld(),
		native: helpers.NewMockCapabilityLookup(),
		items:  helpers.NewMockExternalStrategy(resource.FamilyItem),
		fluids: helpers.NewMockExternalStrategy(resource.FamilyFluid),
	}
	resolver := services.NewTargetResolver(
		f.world,
		f.native,
		[]provider.ExternalStorageStrategy{f.items, f.fluids},
		source,
	)
	return f, resolver
}

func TestTargetResolver_PrefersNativeCapability(t *testing.T) {
	f, resolver := newResolverFixture()
	native := storage.NewUnboundedMemoryStorage()
	external := storage.NewUnboundedMemoryStorage()
	f.native.Expose(above, provider.Down, native)
	f.items.Attach(above, provider.Down, external)

	target, ok := resolver.Resolve(context.Background(), above, provider.Down)
	require.True(t, ok)

	_, err := target.Insert(context.Background(), ironKey, 3, resource.Modulate)
	require.NoError(t, err)
	assert.Equal(t, int64(3), native.TotalUnits())
	assert.Equal(t, int64(0), external.TotalUnits())
}

func TestTargetResolver_CombinesExternalStrategies(t *testing.T) {
	f, resolver := newResolverFixture()
	chest := storage.NewUnboundedMemoryStorage()
	tank := storage.NewUnboundedMemoryStorage()
	f.items.Attach(above, provider.Down, chest)
	f.fluids.Attach(above, provider.Down, tank)

	target, ok := resolver.Resolve(context.Background(), above, provider.Down)
	require.True(t, ok)

	ctx := context.Background()
	_, err := target.Insert(ctx, ironKey, 2, resource.Modulate)
	require.NoError(t, err)
	_, err = target.Insert(ctx, waterKey, 1000, resource.Modulate)
	require.NoError(t, err)

	assert.Equal(t, int64(2), chest.TotalUnits())
	assert.Equal(t, int64(1000), tank.TotalUnits())
}

func TestTargetResolver_NoTarget(t *testing.T) {
	_, resolver := newResolverFixture()

	target, ok := resolver.Resolve(context.Background(), above, provider.Down)

	assert.False(t, ok)
	assert.Nil(t, target)
	assert.Equal(t, 0, resolver.CachedTargets())
}

func TestTargetResolver_CachesUntilInvalidated(t *testing.T) {
	f, resolver := newResolverFixture()
	f.native.Expose(above, provider.Down, storage.NewUnboundedMemoryStorage())
	ctx := context.Background()

	_, ok := resolver.Resolve(ctx, above, provider.Down)
	require.True(t, ok)
	f.native.Remove(above, provider.Down)

	// Still cached: the cache is event-invalidated, not polled
	_, ok = resolver.Resolve(ctx, above, provider.Down)
	assert.True(t, ok)
	assert.Equal(t, 1, f.native.Calls())

	resolver.Invalidate(above)
	_, ok = resolver.Resolve(ctx, above, provider.Down)
	assert.False(t, ok)
}

func TestTargetResolver_InvalidateAll(t *testing.T) {
	f, resolver := newResolverFixture()
	below := origin.Offset(provider.Down)
	f.native.Expose(above, provider.Down, storage.NewUnboundedMemoryStorage())
	f.native.Expose(below, provider.Up, storage.NewUnboundedMemoryStorage())
	ctx := context.Background()

	resolver.Resolve(ctx, above, provider.Down)
	resolver.Resolve(ctx, below, provider.Up)
	require.Equal(t, 2, resolver.CachedTargets())

	resolver.InvalidateAll()
	assert.Equal(t, 0, resolver.CachedTargets())
}

func TestTargetResolver_UnloadedPositionDropsCache(t *testing.T) {
	f, resolver := newResolverFixture()
	f.native.Expose(above, provider.Down, storage.NewUnboundedMemoryStorage())
	ctx := context.Background()

	_, ok := resolver.Resolve(ctx, above, provider.Down)
	require.True(t, ok)

	f.world.Unload(above)
	_, ok = resolver.Resolve(ctx, above, provider.Down)
	assert.False(t, ok)
	assert.Equal(t, 0, resolver.CachedTargets())

	f.world.Load(above)
	_, ok = resolver.Resolve(ctx, above, provider.Down)
	assert.True(t, ok)
	assert.Equal(t, 2, f.native.Calls())
}

func ingotPattern() *pattern.Details {
	return pattern.MustNewDetails("gear", 0,
		[]pattern.InputSlot{{Candidates: []resource.Key{ironKey}, Amount: 4}},
		[]resource.GenericStack{{Key: resource.Item("gear"), Amount: 1}}, 0)
}

func TestPatternPusher_UsesFirstSideThatFits(t *testing.T) {
	f, resolver := newResolverFixture()
	small, err := storage.NewMemoryStorage(2)
	require.NoError(t, err)
	roomy := storage.NewUnboundedMemoryStorage()
	f.native.Expose(origin.Offset(provider.Down), provider.Up, small)
	f.native.Expose(origin.Offset(provider.North), provider.South, roomy)

	p, err := provider.NewPatternProvider("assembler", origin, false, provider.Down, provider.North)
	require.NoError(t, err)

	side, err := services.NewPatternPusher(resolver).Push(context.Background(), p, ingotPattern(), nil)

	require.NoError(t, err)
	assert.Equal(t, provider.North, side)
	assert.Equal(t, int64(0), small.TotalUnits(), "a side that cannot take everything receives nothing")
	assert.Equal(t, int64(4), roomy.TotalUnits())
}

func TestPatternPusher_BlockingSkipsBusyTarget(t *testing.T) {
	f, resolver := newResolverFixture()
	busy := storage.NewUnboundedMemoryStorage()
	ctx := context.Background()
	_, err := busy.Insert(ctx, resource.Key{Type: resource.FamilyItem, ID: "iron_ingot", Secondary: "lot=7"}, 1, resource.Modulate, source)
	require.NoError(t, err)
	idle := storage.NewUnboundedMemoryStorage()
	f.native.Expose(origin.Offset(provider.East), provider.West, busy)
	f.native.Expose(origin.Offset(provider.West), provider.East, idle)

	p, err := provider.NewPatternProvider("assembler", origin, true, provider.East, provider.West)
	require.NoError(t, err)
	pusher := services.NewPatternPusher(resolver)

	side, err := pusher.Push(ctx, p, ingotPattern(), nil)
	require.NoError(t, err)
	assert.Equal(t, provider.West, side)

	// Non-blocking providers push into busy targets too
	p.SetBlocking(false)
	side, err = pusher.Push(ctx, p, ingotPattern(), nil)
	require.NoError(t, err)
	assert.Equal(t, provider.East, side)
}

func TestPatternPusher_NoSideAccepts(t *testing.T) {
	_, resolver := newResolverFixture()
	p, err := provider.NewPatternProvider("assembler", origin, false)
	require.NoError(t, err)

	_, err = services.NewPatternPusher(resolver).Push(context.Background(), p, ingotPattern(), nil)

	var none *provider.ErrNoTargetAccepted
	assert.True(t, errors.As(err, &none))
}

func TestPatternPusher_ExplicitInputsAreAggregated(t *testing.T) {
	f, resolver := newResolverFixture()
	target, err := storage.NewMemoryStorage(5)
	require.NoError(t, err)
	f.native.Expose(origin.Offset(provider.Up), provider.Down, target)
	p, err := provider.NewPatternProvider("assembler", origin, false, provider.Up)
	require.NoError(t, err)

	// 3 + 3 exceeds the capacity of 5 once aggregated
	inputs := []resource.GenericStack{{Key: ironKey, Amount: 3}, {Key: ironKey, Amount: 3}}
	_, err = services.NewPatternPusher(resolver).Push(context.Background(), p, ingotPattern(), inputs)

	var none *provider.ErrNoTargetAccepted
	assert.True(t, errors.As(err, &none))
	assert.Equal(t, int64(0), target.TotalUnits())
}

// greedyStorage claims to take twice what a committed insert asks for
type greedyStorage struct {
	*storage.MemoryStorage
}

func (g *greedyStorage) Insert(ctx context.Context, key resource.Key, amount int64, mode resource.Mode, src storage.ActionSource) (int64, error) {
	accepted, err := g.MemoryStorage.Insert(ctx, key, amount, mode, src)
	if mode == resource.Modulate {
		return accepted * 2, err
	}
	return accepted, err
}

func TestPatternPusher_OverReportingTargetIsAContractViolation(t *testing.T) {
	f, resolver := newResolverFixture()
	f.native.Expose(above, provider.Down, &greedyStorage{MemoryStorage: storage.NewUnboundedMemoryStorage()})
	p, err := provider.NewPatternProvider("assembler", origin, false, provider.Up)
	require.NoError(t, err)

	_, err = services.NewPatternPusher(resolver).Push(context.Background(), p, ingotPattern(), nil)

	var mismatch *storage.StorageMutationMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, "insert", mismatch.Operation)
	assert.Equal(t, int64(4), mismatch.Requested)
	assert.Equal(t, int64(8), mismatch.Returned)
}
