package catalogfile_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/craftplan-go/internal/adapters/catalogfile"
	"github.com/andrescamacho/craftplan-go/internal/domain/pattern"
	"github.com/andrescamacho/craftplan-go/internal/domain/resource"
	"github.com/andrescamacho/craftplan-go/internal/domain/storage"
)

const woodCatalog = `
patterns:
  - id: oak_planks
    processing_time: 20
    inputs:
      - candidates: [item:oak_log]
        amount: 1
    outputs:
      - key: item:oak_planks
        amount: 4
  - id: stick
    priority: 1
    inputs:
      - candidates: [item:oak_planks, item:birch_planks]
        amount: 2
    outputs:
      - key: item:stick
        amount: 4
`

func TestParseCatalog_Valid(t *testing.T) {
	patterns, err := catalogfile.ParseCatalog("wood.yaml", []byte(woodCatalog))
	require.NoError(t, err)

	require.Len(t, patterns, 2)
	assert.Equal(t, pattern.ID("oak_planks"), patterns[0].ID())
	assert.Equal(t, int64(20), patterns[0].ProcessingTime())
	assert.Equal(t, 1, patterns[1].Priority())
	assert.Equal(t, []resource.Key{resource.Item("oak_planks"), resource.Item("birch_planks")}, patterns[1].InputKeys())
}

func TestParseCatalog_SchemaViolations(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		location string
	}{
		{"missing outputs", "patterns:\n  - id: a\n", "/patterns/0"},
		{"zero amount", "patterns:\n  - id: a\n    outputs:\n      - key: item:a\n        amount: 0\n", "/patterns/0/outputs/0/amount"},
		{"unknown family", "patterns:\n  - id: a\n    outputs:\n      - key: ore:iron\n        amount: 1\n", "/patterns/0/outputs/0/key"},
		{"unknown field", "patterns:\n  - id: a\n    colour: red\n    outputs:\n      - key: item:a\n        amount: 1\n", "/patterns/0"},
		{"empty candidates", "patterns:\n  - id: a\n    inputs:\n      - candidates: []\n        amount: 1\n    outputs:\n      - key: item:a\n        amount: 1\n", "/patterns/0/inputs/0/candidates"},
		{"no patterns key", "recipes: []\n", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := catalogfile.ParseCatalog("bad.yaml", []byte(tt.doc))

			var invalid *catalogfile.ErrInvalidDocument
			require.True(t, errors.As(err, &invalid))
			assert.NotEmpty(t, invalid.Problems)
			assert.Contains(t, err.Error(), tt.location)
		})
	}
}

func TestParseCatalog_ReportsDuplicateIDs(t *testing.T) {
	doc := `
patterns:
  - id: a
    outputs: [{key: "item:a", amount: 1}]
  - id: a
    outputs: [{key: "item:b", amount: 1}]
`
	_, err := catalogfile.ParseCatalog("dup.yaml", []byte(doc))

	var invalid *catalogfile.ErrInvalidDocument
	require.True(t, errors.As(err, &invalid))
	require.Len(t, invalid.Problems, 1)
	assert.Contains(t, invalid.Problems[0], `duplicate pattern id "a"`)
}

func TestParseCatalog_ReportsDuplicateOutputs(t *testing.T) {
	doc := `
patterns:
  - id: a
    outputs: [{key: "item:a", amount: 1}, {key: "item:a", amount: 2}]
`
	_, err := catalogfile.ParseCatalog("dup.yaml", []byte(doc))

	var invalid *catalogfile.ErrInvalidDocument
	require.True(t, errors.As(err, &invalid))
	assert.Contains(t, err.Error(), "declared twice")
}

func TestLoadCatalog_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wood.yaml")
	require.NoError(t, os.WriteFile(path, []byte(woodCatalog), 0o644))

	catalog, err := catalogfile.LoadCatalog(path)
	require.NoError(t, err)

	assert.Equal(t, 2, catalog.Len())
	producing, err := catalog.PatternsProducing(context.Background(), resource.Item("stick"))
	require.NoError(t, err)
	assert.Len(t, producing, 1)
}

func TestMarshalCatalog_ParsesBack(t *testing.T) {
	patterns, err := catalogfile.ParseCatalog("wood.yaml", []byte(woodCatalog))
	require.NoError(t, err)

	data, err := catalogfile.MarshalCatalog(patterns)
	require.NoError(t, err)
	again, err := catalogfile.ParseCatalog("out.yaml", data)
	require.NoError(t, err)

	require.Len(t, again, 2)
	assert.Equal(t, patterns[1].Inputs(), again[1].Inputs())
	assert.Equal(t, patterns[0].Outputs(), again[0].Outputs())
}

func TestParseStock_SumsRepeatedKeys(t *testing.T) {
	doc := `
stock:
  - {key: "item:oak_log", amount: 3}
  - {key: "fluid:water", amount: 1000}
  - {key: "item:oak_log", amount: 2}
`
	stacks, err := catalogfile.ParseStock("stock.yaml", []byte(doc))
	require.NoError(t, err)

	assert.Equal(t, []resource.GenericStack{
		{Key: resource.Fluid("water"), Amount: 1000},
		{Key: resource.Item("oak_log"), Amount: 5},
	}, stacks)
}

func TestParseStock_RejectsNegativeAmount(t *testing.T) {
	_, err := catalogfile.ParseStock("stock.yaml", []byte("stock:\n  - {key: \"item:a\", amount: -1}\n"))

	var invalid *catalogfile.ErrInvalidDocument
	assert.True(t, errors.As(err, &invalid))
}

func TestSeedStorage(t *testing.T) {
	ctx := context.Background()
	stacks := []resource.GenericStack{{Key: resource.Item("a"), Amount: 3}, {Key: resource.Item("b"), Amount: 4}}
	src := storage.ActionSource{Actor: "seed"}

	roomy := storage.NewUnboundedMemoryStorage()
	require.NoError(t, catalogfile.SeedStorage(ctx, roomy, stacks, src))
	held, err := roomy.Peek(ctx, resource.Item("b"))
	require.NoError(t, err)
	assert.Equal(t, int64(4), held)

	tight, err := storage.NewMemoryStorage(5)
	require.NoError(t, err)
	err = catalogfile.SeedStorage(ctx, tight, stacks, src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepted 2 of 4")
}
