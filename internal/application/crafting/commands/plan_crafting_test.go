package commands_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/craftplan-go/internal/application/crafting/commands"
	"github.com/andrescamacho/craftplan-go/internal/application/crafting/queries"
	"github.com/andrescamacho/craftplan-go/internal/application/crafting/services"
	"github.com/andrescamacho/craftplan-go/internal/application/mediator"
	"github.com/andrescamacho/craftplan-go/internal/domain/crafting"
	"github.com/andrescamacho/craftplan-go/internal/domain/pattern"
	"github.com/andrescamacho/craftplan-go/internal/domain/resource"
	"github.com/andrescamacho/craftplan-go/internal/domain/storage"
	"github.com/andrescamacho/craftplan-go/test/helpers"
)

func newMediator(t *testing.T, repo crafting.PlanRepository) mediator.Mediator {
	t.Helper()
	catalog, err := pattern.NewMemoryCatalogWith(pattern.MustNewDetails("P1", 0,
		[]pattern.InputSlot{{Candidates: []resource.Key{resource.Item("a")}, Amount: 2}},
		[]resource.GenericStack{{Key: resource.Item("b"), Amount: 1}}, 0))
	require.NoError(t, err)

	planner := services.NewCraftingPlanner(catalog, storage.NewUnboundedMemoryStorage(), nil)
	m := mediator.NewMediator()
	m.RegisterMiddleware(mediator.LoggingMiddleware())
	require.NoError(t, mediator.RegisterHandler[*commands.PlanCraftingCommand](m, commands.NewPlanCraftingHandler(planner, repo, nil)))
	require.NoError(t, mediator.RegisterHandler[*queries.GetPlanQuery](m, queries.NewGetPlanHandler(repo)))
	require.NoError(t, mediator.RegisterHandler[*queries.ListPlansQuery](m, queries.NewListPlansHandler(repo)))
	return m
}

func TestPlanCraftingCommand_StoresPlan(t *testing.T) {
	repo := helpers.NewMockPlanRepository()
	m := newMediator(t, repo)
	ctx := context.Background()

	resp, err := m.Send(ctx, &commands.PlanCraftingCommand{
		Key:     resource.Item("b"),
		Amount:  1,
		Mode:    resource.Simulate,
		Ceiling: 1000,
	})
	require.NoError(t, err)
	planned := resp.(*commands.PlanCraftingResponse)
	assert.Equal(t, int64(2), planned.Plan.MissingItems().Get(resource.Item("a")))

	found, err := m.Send(ctx, &queries.GetPlanQuery{PlanID: planned.PlanID})
	require.NoError(t, err)
	record := found.(*queries.GetPlanResponse).Record
	assert.Equal(t, crafting.OutcomePartial, record.Outcome)
	assert.Equal(t, int64(2), record.MissingTotal)

	listed, err := m.Send(ctx, &queries.ListPlansQuery{})
	require.NoError(t, err)
	assert.Len(t, listed.(*queries.ListPlansResponse).Records, 1)
}

func TestPlanCraftingCommand_TooComplexIsNotStored(t *testing.T) {
	repo := helpers.NewMockPlanRepository()
	m := newMediator(t, repo)

	_, err := m.Send(context.Background(), &commands.PlanCraftingCommand{
		Key:     resource.Item("b"),
		Amount:  2,
		Mode:    resource.Simulate,
		Ceiling: 1,
	})

	var tooComplex *crafting.PlanTooComplexError
	assert.True(t, errors.As(err, &tooComplex))
	assert.Equal(t, 0, repo.Count())
}

func TestPlanCraftingCommand_StoreFailureStillReturnsPlan(t *testing.T) {
	repo := helpers.NewMockPlanRepository()
	repo.SetSaveError(errors.New("disk full"))
	m := newMediator(t, repo)

	resp, err := m.Send(context.Background(), &commands.PlanCraftingCommand{
		Key:    resource.Item("b"),
		Amount: 1,
		Mode:   resource.Simulate,
	})

	require.NoError(t, err)
	assert.NotNil(t, resp.(*commands.PlanCraftingResponse).Plan)
}

func TestGetPlanQuery_NotFound(t *testing.T) {
	m := newMediator(t, helpers.NewMockPlanRepository())

	_, err := m.Send(context.Background(), &queries.GetPlanQuery{PlanID: "plan-b-deadbeef"})

	var notFound *crafting.ErrPlanNotFound
	assert.True(t, errors.As(err, &notFound))
}
