package storage_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/craftplan-go/internal/domain/resource"
	"github.com/andrescamacho/craftplan-go/internal/domain/storage"
)

var testSource = storage.ActionSource{Actor: "tester"}

func TestMemoryStorage_SimulateDoesNotMutate(t *testing.T) {
	ctx := context.Background()
	s := storage.NewUnboundedMemoryStorage()
	_, err := s.Insert(ctx, resource.Item("a"), 5, resource.Modulate, testSource)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		removed, err := s.Extract(ctx, resource.Item("a"), 4, resource.Simulate, testSource)
		require.NoError(t, err)
		assert.Equal(t, int64(4), removed)

		accepted, err := s.Insert(ctx, resource.Item("b"), 9, resource.Simulate, testSource)
		require.NoError(t, err)
		assert.Equal(t, int64(9), accepted)
	}

	amount, err := s.Peek(ctx, resource.Item("a"))
	require.NoError(t, err)
	assert.Equal(t, int64(5), amount)

	amount, err = s.Peek(ctx, resource.Item("b"))
	require.NoError(t, err)
	assert.Equal(t, int64(0), amount)
}

func TestMemoryStorage_ExtractIsClampedToInventory(t *testing.T) {
	ctx := context.Background()
	s := storage.NewUnboundedMemoryStorage()
	_, err := s.Insert(ctx, resource.Item("a"), 3, resource.Modulate, testSource)
	require.NoError(t, err)

	removed, err := s.Extract(ctx, resource.Item("a"), 10, resource.Modulate, testSource)

	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)
	stacks, err := s.AvailableStacks(ctx)
	require.NoError(t, err)
	assert.Empty(t, stacks)
	assert.Equal(t, int64(0), s.TotalUnits())
}

func TestMemoryStorage_CapacityLimitsInsert(t *testing.T) {
	ctx := context.Background()
	s, err := storage.NewMemoryStorage(10)
	require.NoError(t, err)

	accepted, err := s.Insert(ctx, resource.Item("a"), 7, resource.Modulate, testSource)
	require.NoError(t, err)
	assert.Equal(t, int64(7), accepted)

	accepted, err = s.Insert(ctx, resource.Fluid("water"), 7, resource.Modulate, testSource)
	require.NoError(t, err)
	assert.Equal(t, int64(3), accepted)

	accepted, err = s.Insert(ctx, resource.Item("a"), 1, resource.Modulate, testSource)
	require.NoError(t, err)
	assert.Equal(t, int64(0), accepted)
}

func TestMemoryStorage_FamilyFilter(t *testing.T) {
	ctx := context.Background()
	s, err := storage.NewMemoryStorage(0, resource.FamilyFluid)
	require.NoError(t, err)

	accepted, err := s.Insert(ctx, resource.Item("a"), 5, resource.Modulate, testSource)
	require.NoError(t, err)
	assert.Equal(t, int64(0), accepted)
	assert.False(t, s.Accepts(resource.FamilyItem))
	assert.True(t, s.Accepts(resource.FamilyFluid))
}

func TestMemoryStorage_RejectsInvalidConfiguration(t *testing.T) {
	_, err := storage.NewMemoryStorage(-1)
	assert.Error(t, err)

	_, err = storage.NewMemoryStorage(0, resource.TypeFamily("energy"))
	assert.Error(t, err)
}

func TestMemoryStorage_NonPositiveRequestsAreNoOps(t *testing.T) {
	ctx := context.Background()
	s := storage.NewUnboundedMemoryStorage()

	accepted, err := s.Insert(ctx, resource.Item("a"), 0, resource.Modulate, testSource)
	require.NoError(t, err)
	assert.Equal(t, int64(0), accepted)

	removed, err := s.Extract(ctx, resource.Item("a"), -2, resource.Modulate, testSource)
	require.NoError(t, err)
	assert.Equal(t, int64(0), removed)
}

func TestMemoryStorage_UnlimitedInsertStopsAtMaxInt64(t *testing.T) {
	ctx := context.Background()
	s := storage.NewUnboundedMemoryStorage()
	oak := resource.Item("oak_log")
	birch := resource.Item("birch_log")

	first, err := s.Insert(ctx, oak, math.MaxInt64-10, resource.Modulate, testSource)
	require.NoError(t, err)
	second, err := s.Insert(ctx, birch, 25, resource.Modulate, testSource)
	require.NoError(t, err)
	third, err := s.Insert(ctx, oak, 1, resource.Simulate, testSource)
	require.NoError(t, err)

	assert.Equal(t, int64(math.MaxInt64-10), first)
	assert.Equal(t, int64(10), second)
	assert.Equal(t, int64(0), third)
	assert.Equal(t, int64(math.MaxInt64), s.TotalUnits())
}
