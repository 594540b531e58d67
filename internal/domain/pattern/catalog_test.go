package pattern_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/craftplan-go/internal/domain/pattern"
	"github.com/andrescamacho/craftplan-go/internal/domain/resource"
)

func slot(amount int64, keys ...resource.Key) pattern.InputSlot {
	return pattern.InputSlot{Candidates: keys, Amount: amount}
}

func out(key resource.Key, amount int64) resource.GenericStack {
	return resource.GenericStack{Key: key, Amount: amount}
}

func TestNewDetails_Validation(t *testing.T) {
	tests := []struct {
		name    string
		id      pattern.ID
		inputs  []pattern.InputSlot
		outputs []resource.GenericStack
		time    int64
		reason  string
	}{
		{"empty id", "", nil, []resource.GenericStack{out(resource.Item("b"), 1)}, 0, "id cannot be empty"},
		{"no outputs", "p", nil, nil, 0, "at least one output"},
		{"zero output", "p", nil, []resource.GenericStack{out(resource.Item("b"), 0)}, 0, "positive amount"},
		{"duplicate output", "p", nil, []resource.GenericStack{out(resource.Item("b"), 1), out(resource.Item("b"), 2)}, 0, "declared twice"},
		{"empty slot", "p", []pattern.InputSlot{slot(1)}, []resource.GenericStack{out(resource.Item("b"), 1)}, 0, "no candidates"},
		{"zero slot", "p", []pattern.InputSlot{slot(0, resource.Item("a"))}, []resource.GenericStack{out(resource.Item("b"), 1)}, 0, "positive amount"},
		{"negative time", "p", nil, []resource.GenericStack{out(resource.Item("b"), 1)}, -1, "negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := pattern.NewDetails(tt.id, 0, tt.inputs, tt.outputs, tt.time)

			var invalid *pattern.ErrInvalidPattern
			require.True(t, errors.As(err, &invalid))
			assert.Contains(t, err.Error(), tt.reason)
		})
	}
}

func TestDetails_GettersReturnCopies(t *testing.T) {
	p := pattern.MustNewDetails("planks", 0,
		[]pattern.InputSlot{slot(1, resource.Item("oak_log"), resource.Item("birch_log"))},
		[]resource.GenericStack{out(resource.Item("planks"), 4)}, 20)

	inputs := p.Inputs()
	inputs[0].Candidates[0] = resource.Item("mutated")

	assert.Equal(t, resource.Item("oak_log"), p.Inputs()[0].Primary())
	assert.Equal(t, int64(4), p.OutputAmount(resource.Item("planks")))
	assert.Equal(t, int64(0), p.OutputAmount(resource.Item("stick")))
	assert.Equal(t, []resource.Key{resource.Item("oak_log"), resource.Item("birch_log")}, p.InputKeys())
}

func TestMemoryCatalog_OrdersByPriorityThenRegistration(t *testing.T) {
	b := resource.Item("b")
	late := pattern.MustNewDetails("late", 5, nil, []resource.GenericStack{out(b, 1)}, 0)
	first := pattern.MustNewDetails("first", 0, nil, []resource.GenericStack{out(b, 1)}, 0)
	second := pattern.MustNewDetails("second", 0, nil, []resource.GenericStack{out(b, 1)}, 0)

	catalog, err := pattern.NewMemoryCatalogWith(late, first, second)
	require.NoError(t, err)

	patterns, err := catalog.PatternsProducing(context.Background(), b)
	require.NoError(t, err)

	require.Len(t, patterns, 3)
	assert.Equal(t, pattern.ID("first"), patterns[0].ID())
	assert.Equal(t, pattern.ID("second"), patterns[1].ID())
	assert.Equal(t, pattern.ID("late"), patterns[2].ID())
}

func TestMemoryCatalog_IndexesByproducts(t *testing.T) {
	p := pattern.MustNewDetails("smelt", 0, nil,
		[]resource.GenericStack{out(resource.Item("iron"), 1), out(resource.Item("slag"), 1)}, 0)
	catalog, err := pattern.NewMemoryCatalogWith(p)
	require.NoError(t, err)

	patterns, err := catalog.PatternsProducing(context.Background(), resource.Item("slag"))
	require.NoError(t, err)
	assert.Len(t, patterns, 1)
	assert.Equal(t, []resource.Key{resource.Item("iron"), resource.Item("slag")}, catalog.OutputKeys())
}

func TestMemoryCatalog_RejectsDuplicates(t *testing.T) {
	p := pattern.MustNewDetails("p", 0, nil, []resource.GenericStack{out(resource.Item("b"), 1)}, 0)
	catalog := pattern.NewMemoryCatalog()
	require.NoError(t, catalog.Register(p))

	err := catalog.Register(p)

	var dup *pattern.ErrDuplicatePattern
	assert.True(t, errors.As(err, &dup))
}

func TestMemoryCatalog_EmptyLookupIsNotAnError(t *testing.T) {
	catalog := pattern.NewMemoryCatalog()

	patterns, err := catalog.PatternsProducing(context.Background(), resource.Item("nothing"))

	assert.NoError(t, err)
	assert.Empty(t, patterns)

	_, err = catalog.Get(context.Background(), "missing")
	var notFound *pattern.ErrPatternNotFound
	assert.True(t, errors.As(err, &notFound))
}
