package resource_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/craftplan-go/internal/domain/resource"
)

func TestParseKey_RoundTripsNamespacedIDs(t *testing.T) {
	key, err := resource.ParseKey("item:minecraft:stick#nbt=7")

	require.NoError(t, err)
	assert.Equal(t, resource.FamilyItem, key.Type)
	assert.Equal(t, "minecraft:stick", key.ID)
	assert.Equal(t, "nbt=7", key.Secondary)
	assert.Equal(t, "item:minecraft:stick#nbt=7", key.String())
}

func TestParseKey_RejectsUnknownFamily(t *testing.T) {
	_, err := resource.ParseKey("energy:fe")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown resource type family")
}

func TestParseKey_RejectsMissingID(t *testing.T) {
	_, err := resource.ParseKey("fluid:")
	assert.Error(t, err)

	_, err = resource.ParseKey("water")
	assert.Error(t, err)
}

func TestKey_DropSecondary(t *testing.T) {
	tagged := resource.Key{Type: resource.FamilyItem, ID: "sword", Secondary: "damage=3"}

	assert.NotEqual(t, resource.Item("sword"), tagged)
	assert.Equal(t, resource.Item("sword"), tagged.DropSecondary())
	assert.False(t, tagged.DropSecondary().HasSecondary())
}

func TestGenericStack_RejectsNonPositiveAmounts(t *testing.T) {
	_, err := resource.NewGenericStack(resource.Item("a"), 0)
	assert.Error(t, err)

	_, err = resource.NewGenericStack(resource.Item("a"), -3)
	assert.Error(t, err)

	stack, err := resource.NewGenericStack(resource.Item("a"), 3)
	require.NoError(t, err)
	assert.True(t, stack.IsPresent())
}

func TestParseMode(t *testing.T) {
	mode, err := resource.ParseMode("simulate")
	require.NoError(t, err)
	assert.True(t, mode.IsSimulate())

	mode, err = resource.ParseMode("MODULATE")
	require.NoError(t, err)
	assert.Equal(t, resource.Modulate, mode)

	_, err = resource.ParseMode("commit")
	assert.Error(t, err)
}
