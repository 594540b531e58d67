package crafting_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/craftplan-go/internal/domain/crafting"
	"github.com/andrescamacho/craftplan-go/internal/domain/pattern"
	"github.com/andrescamacho/craftplan-go/internal/domain/resource"
)

var (
	plankKey = resource.Item("planks")
	logKey   = resource.Item("oak_log")
	barkKey  = resource.Item("bark")
)

func plankPattern() *pattern.Details {
	return pattern.MustNewDetails("planks", 0,
		[]pattern.InputSlot{{Candidates: []resource.Key{logKey}, Amount: 1}},
		[]resource.GenericStack{{Key: plankKey, Amount: 4}, {Key: barkKey, Amount: 1}},
		10)
}

func request(key resource.Key, amount int64) resource.GenericStack {
	return resource.GenericStack{Key: key, Amount: amount}
}

func TestPlanBuilder_RecordInvocationsSplitsSurplusAndByproducts(t *testing.T) {
	b := crafting.NewPlanBuilder(request(plankKey, 6), resource.Simulate, 0, 1)

	require.NoError(t, b.Charge(2))
	require.NoError(t, b.RecordInvocations(plankPattern(), 2, plankKey, 6))
	b.RecordUsed(logKey, 2)
	b.RecordConsumed(logKey, 2)

	plan := b.Freeze(false, time.Time{})

	assert.Equal(t, int64(2), plan.EmittedItems().Get(plankKey))
	assert.Equal(t, int64(2), plan.EmittedItems().Get(barkKey))
	assert.Equal(t, int64(8), plan.ProducedItems().Get(plankKey))
	assert.Equal(t, int64(2), plan.ConsumedItems().Get(logKey))
	assert.Equal(t, map[pattern.ID]int64{"planks": 2}, plan.PatternTimes())
	assert.Equal(t, int64(2), plan.Bytes())
	assert.Equal(t, int64(20), plan.TotalProcessingTime())
	assert.Empty(t, plan.Balance())
	assert.True(t, plan.IsSatisfied())
	assert.True(t, plan.Simulation())
}

func TestPlanBuilder_CeilingExceeded(t *testing.T) {
	b := crafting.NewPlanBuilder(request(plankKey, 40), resource.Simulate, 5, 1)

	err := b.Charge(10)

	var tooComplex *crafting.PlanTooComplexError
	require.True(t, errors.As(err, &tooComplex))
	assert.Equal(t, int64(10), tooComplex.Bytes)
	assert.Equal(t, int64(5), tooComplex.Ceiling)
	assert.Contains(t, err.Error(), "exceeds ceiling of 5")
}

func TestPlanBuilder_CeilingEqualIsAllowed(t *testing.T) {
	b := crafting.NewPlanBuilder(request(plankKey, 4), resource.Simulate, 1, 1)

	assert.NoError(t, b.Charge(1))
	assert.Equal(t, int64(1), b.Bytes())
}

func TestPlanBuilder_OverflowIsTooComplex(t *testing.T) {
	b := crafting.NewPlanBuilder(request(plankKey, 4), resource.Simulate, 0, 1<<62)

	err := b.Charge(4)

	var tooComplex *crafting.PlanTooComplexError
	require.True(t, errors.As(err, &tooComplex))
	assert.Contains(t, err.Error(), "overflowed")
}

func TestPlanBuilder_RestoreRewindsButKeepsMultiplePaths(t *testing.T) {
	b := crafting.NewPlanBuilder(request(plankKey, 4), resource.Simulate, 0, 1)
	b.RecordUsed(logKey, 1)
	snapshot := b.Snapshot()

	b.MarkMultiplePaths()
	b.RecordMissing(logKey, 3)
	require.NoError(t, b.Charge(1))
	require.NoError(t, b.RecordInvocations(plankPattern(), 1, plankKey, 4))

	b.Restore(snapshot)
	assert.Equal(t, int64(0), b.MissingTotal())
	assert.Equal(t, int64(0), b.Bytes())
	assert.Equal(t, int64(1), b.Used(logKey))

	// The snapshot can be restored more than once
	b.RecordUsed(logKey, 5)
	b.Restore(snapshot)
	assert.Equal(t, int64(1), b.Used(logKey))

	plan := b.Freeze(false, time.Time{})
	assert.True(t, plan.MultiplePaths())
	assert.Empty(t, plan.PatternTimes())
}

func TestPlanBuilder_MoveUsedToMissingKeepsBalance(t *testing.T) {
	b := crafting.NewPlanBuilder(request(logKey, 5), resource.Modulate, 0, 1)
	b.RecordUsed(logKey, 5)

	b.MoveUsedToMissing(logKey, 2)
	plan := b.Freeze(true, time.Time{})

	assert.Equal(t, int64(3), plan.UsedItems().Get(logKey))
	assert.Equal(t, int64(2), plan.MissingItems().Get(logKey))
	assert.Equal(t, crafting.OutcomePartial, plan.Outcome())
	assert.False(t, plan.Simulation())
	assert.Empty(t, plan.Balance())
}

func TestCraftingPlan_GettersReturnCopies(t *testing.T) {
	b := crafting.NewPlanBuilder(request(logKey, 2), resource.Simulate, 0, 1)
	b.RecordUsed(logKey, 2)
	plan := b.Freeze(false, time.Time{})

	plan.UsedItems().Add(logKey, 10)
	plan.PatternTimes()["injected"] = 1

	assert.Equal(t, int64(2), plan.UsedItems().Get(logKey))
	assert.Empty(t, plan.PatternTimes())
}

func TestCraftingPlan_EqualIgnoresTimestamp(t *testing.T) {
	build := func(at time.Time) *crafting.CraftingPlan {
		b := crafting.NewPlanBuilder(request(plankKey, 4), resource.Simulate, 0, 1)
		require.NoError(t, b.RecordInvocations(plankPattern(), 1, plankKey, 4))
		b.RecordMissing(logKey, 1)
		b.RecordConsumed(logKey, 1)
		return b.Freeze(false, at)
	}

	first := build(time.Unix(0, 0))
	second := build(time.Unix(1000, 0))

	assert.True(t, first.Equal(second))
	assert.False(t, first.Equal(nil))
}

func TestCraftingPlan_ExportDebug(t *testing.T) {
	b := crafting.NewPlanBuilder(request(plankKey, 4), resource.Simulate, 0, 3)
	require.NoError(t, b.Charge(1))
	require.NoError(t, b.RecordInvocations(plankPattern(), 1, plankKey, 4))
	b.RecordMissing(logKey, 1)
	b.RecordConsumed(logKey, 1)
	plan := b.Freeze(false, time.Time{})

	tree := plan.ExportDebug()

	assert.Equal(t, int64(3), tree["bytes"])
	assert.Equal(t, "PARTIAL", tree["outcome"])
	assert.Equal(t, map[string]any{"item:oak_log": int64(1)}, tree["missing"])
	assert.Equal(t, map[string]any{"item:bark": int64(1)}, tree["emitted"])

	patterns := tree["patterns"].(map[string]any)
	entry := patterns["planks"].(map[string]any)
	assert.Equal(t, int64(1), entry["times"])
	assert.Equal(t, int64(10), entry["processing_time"])
	assert.Equal(t, []any{
		map[string]any{"candidates": []any{"item:oak_log"}, "amount": int64(1)},
	}, entry["inputs"])
}
