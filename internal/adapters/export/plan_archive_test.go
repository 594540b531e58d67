package export_test

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/craftplan-go/internal/adapters/export"
	"github.com/andrescamacho/craftplan-go/internal/domain/crafting"
	"github.com/andrescamacho/craftplan-go/internal/domain/resource"
)

func sampleRecords() []*crafting.PlanRecord {
	at := time.Date(2025, 5, 1, 9, 30, 0, 0, time.UTC)
	return []*crafting.PlanRecord{
		{
			ID:          "plan-oak_planks-1",
			FinalOutput: resource.GenericStack{Key: resource.Item("oak_planks"), Amount: 8},
			Mode:        resource.Simulate,
			Outcome:     crafting.OutcomeSatisfied,
			Bytes:       2,
			Simulation:  true,
			PlannedAt:   at,
			Debug:       map[string]any{"bytes": int64(2)},
		},
		{
			ID:           "plan-stick-2",
			FinalOutput:  resource.GenericStack{Key: resource.Item("stick"), Amount: 4},
			Mode:         resource.Modulate,
			Outcome:      crafting.OutcomePartial,
			MissingTotal: 3,
			PlannedAt:    at.Add(time.Minute),
		},
	}
}

func TestArchive_WriteThenRead(t *testing.T) {
	var buf bytes.Buffer
	exportedAt := time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC)

	require.NoError(t, export.WriteArchive(&buf, sampleRecords(), exportedAt))
	header, plans, err := export.ReadArchive(&buf)
	require.NoError(t, err)

	assert.Equal(t, 2, header.Count)
	assert.True(t, exportedAt.Equal(header.ExportedAt))
	require.Len(t, plans, 2)
	assert.Equal(t, "item:oak_planks", plans[0].FinalKey)
	assert.Equal(t, float64(2), plans[0].Debug["bytes"])
	assert.Equal(t, "PARTIAL", plans[1].Outcome)
	assert.Equal(t, int64(3), plans[1].MissingTotal)
	assert.Nil(t, plans[1].Debug)
}

func TestArchive_FileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "plans.zst")

	require.NoError(t, export.WriteArchiveFile(path, sampleRecords()[:1], time.Now()))
	_, plans, err := export.ReadArchiveFile(path)
	require.NoError(t, err)

	require.Len(t, plans, 1)
	assert.Equal(t, "plan-oak_planks-1", plans[0].ID)
}

func TestReadArchive_RejectsUncompressedInput(t *testing.T) {
	_, _, err := export.ReadArchive(bytes.NewBufferString(`{"format":"craftplan-plans"}`))

	assert.Error(t, err)
}
