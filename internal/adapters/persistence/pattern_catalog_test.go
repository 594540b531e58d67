package persistence_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/craftplan-go/internal/adapters/persistence"
	"github.com/andrescamacho/craftplan-go/internal/domain/pattern"
	"github.com/andrescamacho/craftplan-go/internal/domain/resource"
	"github.com/andrescamacho/craftplan-go/internal/domain/shared"
	"github.com/andrescamacho/craftplan-go/test/helpers"
)

func newCatalog(t *testing.T) *persistence.GormPatternCatalog {
	clock := shared.NewMockClock(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	return persistence.NewGormPatternCatalog(helpers.NewTestDB(t), clock)
}

func planksPattern(priority int) *pattern.Details {
	return pattern.MustNewDetails("planks", priority,
		[]pattern.InputSlot{{Candidates: []resource.Key{resource.Item("oak_log"), resource.Item("birch_log")}, Amount: 1}},
		[]resource.GenericStack{{Key: resource.Item("oak_planks"), Amount: 4}},
		20)
}

func TestGormPatternCatalog_RegisterAndGet(t *testing.T) {
	// Arrange
	ctx := context.Background()
	catalog := newCatalog(t)

	// Act
	require.NoError(t, catalog.Register(ctx, planksPattern(0)))
	found, err := catalog.Get(ctx, "planks")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, pattern.ID("planks"), found.ID())
	assert.Equal(t, int64(20), found.ProcessingTime())
	assert.Equal(t, []resource.Key{resource.Item("oak_log"), resource.Item("birch_log")}, found.InputKeys())
	assert.Equal(t, int64(4), found.OutputAmount(resource.Item("oak_planks")))
}

func TestGormPatternCatalog_RegisterRejectsDuplicate(t *testing.T) {
	ctx := context.Background()
	catalog := newCatalog(t)
	require.NoError(t, catalog.Register(ctx, planksPattern(0)))

	err := catalog.Register(ctx, planksPattern(0))

	var dup *pattern.ErrDuplicatePattern
	assert.True(t, errors.As(err, &dup))
}

func TestGormPatternCatalog_GetMissing(t *testing.T) {
	_, err := newCatalog(t).Get(context.Background(), "nope")

	var notFound *pattern.ErrPatternNotFound
	assert.True(t, errors.As(err, &notFound))
}

func TestGormPatternCatalog_PatternsProducingOrdersByPriorityThenRegistration(t *testing.T) {
	ctx := context.Background()
	catalog := newCatalog(t)
	b := resource.Item("b")
	out := []resource.GenericStack{{Key: b, Amount: 1}}

	require.NoError(t, catalog.Register(ctx, pattern.MustNewDetails("late", 5, nil, out, 0)))
	require.NoError(t, catalog.Register(ctx, pattern.MustNewDetails("first", 0, nil, out, 0)))
	require.NoError(t, catalog.Register(ctx, pattern.MustNewDetails("second", 0, nil, out, 0)))

	patterns, err := catalog.PatternsProducing(ctx, b)
	require.NoError(t, err)

	require.Len(t, patterns, 3)
	assert.Equal(t, pattern.ID("first"), patterns[0].ID())
	assert.Equal(t, pattern.ID("second"), patterns[1].ID())
	assert.Equal(t, pattern.ID("late"), patterns[2].ID())
}

func TestGormPatternCatalog_PatternsProducingIndexesByproducts(t *testing.T) {
	ctx := context.Background()
	catalog := newCatalog(t)
	smelt := pattern.MustNewDetails("smelt", 0, nil, []resource.GenericStack{
		{Key: resource.Item("iron"), Amount: 1},
		{Key: resource.Item("slag"), Amount: 2},
	}, 0)
	require.NoError(t, catalog.Register(ctx, smelt))

	bySlag, err := catalog.PatternsProducing(ctx, resource.Item("slag"))
	require.NoError(t, err)
	none, err := catalog.PatternsProducing(ctx, resource.Item("gold"))
	require.NoError(t, err)

	require.Len(t, bySlag, 1)
	assert.Equal(t, pattern.ID("smelt"), bySlag[0].ID())
	assert.Empty(t, none)
}

func TestGormPatternCatalog_ImportReplacesDefinitions(t *testing.T) {
	ctx := context.Background()
	catalog := newCatalog(t)
	require.NoError(t, catalog.Register(ctx, planksPattern(0)))
	stick := pattern.MustNewDetails("stick", 0,
		[]pattern.InputSlot{{Candidates: []resource.Key{resource.Item("oak_planks")}, Amount: 2}},
		[]resource.GenericStack{{Key: resource.Item("stick"), Amount: 4}}, 0)

	// planks now yields birch planks instead of oak planks
	replaced := pattern.MustNewDetails("planks", 3,
		[]pattern.InputSlot{{Candidates: []resource.Key{resource.Item("birch_log")}, Amount: 1}},
		[]resource.GenericStack{{Key: resource.Item("birch_planks"), Amount: 4}}, 10)

	n, err := catalog.Import(ctx, []*pattern.Details{stick, replaced})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	count, err := catalog.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	oak, err := catalog.PatternsProducing(ctx, resource.Item("oak_planks"))
	require.NoError(t, err)
	assert.Empty(t, oak)

	birch, err := catalog.PatternsProducing(ctx, resource.Item("birch_planks"))
	require.NoError(t, err)
	require.Len(t, birch, 1)
	assert.Equal(t, 3, birch[0].Priority())

	all, err := catalog.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, pattern.ID("stick"), all[0].ID())
	assert.Equal(t, pattern.ID("planks"), all[1].ID())
}
