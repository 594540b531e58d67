package provider_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/craftplan-go/internal/domain/provider"
	"github.com/andrescamacho/craftplan-go/internal/domain/resource"
	"github.com/andrescamacho/craftplan-go/internal/domain/storage"
)

func TestDirection_OppositeAndOffset(t *testing.T) {
	origin := provider.Position{X: 1, Y: 2, Z: 3}

	for _, d := range provider.Directions() {
		assert.Equal(t, d, d.Opposite().Opposite())
		assert.Equal(t, origin, origin.Offset(d).Offset(d.Opposite()))
	}
	assert.Equal(t, provider.Position{X: 1, Y: 1, Z: 3}, origin.Offset(provider.Down))
	assert.Equal(t, provider.Position{X: 2, Y: 2, Z: 3}, origin.Offset(provider.East))
}

func TestParseDirection(t *testing.T) {
	d, err := provider.ParseDirection(" North ")
	require.NoError(t, err)
	assert.Equal(t, provider.North, d)

	_, err = provider.ParseDirection("sideways")
	assert.Error(t, err)
}

func TestNewPatternProvider_DefaultsToAllSides(t *testing.T) {
	p, err := provider.NewPatternProvider("assembler", provider.Position{}, false)
	require.NoError(t, err)
	assert.Equal(t, provider.Directions(), p.Sides())

	p, err = provider.NewPatternProvider("assembler", provider.Position{}, true, provider.Up, provider.Up, provider.West)
	require.NoError(t, err)
	assert.Equal(t, []provider.Direction{provider.Up, provider.West}, p.Sides())
	assert.True(t, p.Blocking())

	_, err = provider.NewPatternProvider("", provider.Position{}, false)
	assert.Error(t, err)
}

func TestStorageTarget_ContainsPatternInputIgnoresSecondary(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewUnboundedMemoryStorage()
	source := storage.ActionSource{Actor: "provider"}
	tagged := resource.Key{Type: resource.FamilyItem, ID: "pickaxe", Secondary: "damage=3"}
	_, err := mem.Insert(ctx, tagged, 1, resource.Modulate, source)
	require.NoError(t, err)

	target := provider.NewStorageTarget(mem, source)

	found, err := target.ContainsPatternInput(ctx, []resource.Key{resource.Item("pickaxe")})
	require.NoError(t, err)
	assert.True(t, found)

	found, err = target.ContainsPatternInput(ctx, []resource.Key{resource.Item("shovel")})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStorageTarget_InsertRespectsMode(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewUnboundedMemoryStorage()
	target := provider.NewStorageTarget(mem, storage.ActionSource{Actor: "provider"})

	inserted, err := target.Insert(ctx, resource.Item("iron"), 8, resource.Simulate)
	require.NoError(t, err)
	assert.Equal(t, int64(8), inserted)
	assert.Equal(t, int64(0), mem.TotalUnits())

	_, err = target.Insert(ctx, resource.Item("iron"), 8, resource.Modulate)
	require.NoError(t, err)
	assert.Equal(t, int64(8), mem.TotalUnits())
}
