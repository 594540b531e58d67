package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/andrescamacho/craftplan-go/internal/adapters/metrics"
	"github.com/andrescamacho/craftplan-go/internal/application/common"
	"github.com/andrescamacho/craftplan-go/internal/application/crafting/services"
	"github.com/andrescamacho/craftplan-go/internal/application/mediator"
	"github.com/andrescamacho/craftplan-go/internal/domain/crafting"
	"github.com/andrescamacho/craftplan-go/internal/domain/resource"
	"github.com/andrescamacho/craftplan-go/internal/domain/shared"
	"github.com/andrescamacho/craftplan-go/internal/domain/storage"
	"github.com/andrescamacho/craftplan-go/pkg/utils"
)

// PlanCraftingCommand requests a crafting plan for Amount units of Key
type PlanCraftingCommand struct {
	Key     resource.Key
	Amount  int64
	Mode    resource.Mode
	Ceiling int64
}

// PlanCraftingResponse carries the frozen plan and the ID it was stored under
type PlanCraftingResponse struct {
	PlanID string
	Plan   *crafting.CraftingPlan
}

// PlanCraftingHandler runs the planner and records the result.
//
// Failures (too complex, storage contract violations) return no plan and are
// not stored. Every plan that is produced is saved, partial or not.
type PlanCraftingHandler struct {
	planner  *services.CraftingPlanner
	planRepo crafting.PlanRepository
	clock    shared.Clock
}

// NewPlanCraftingHandler creates a new plan crafting handler
func NewPlanCraftingHandler(
	planner *services.CraftingPlanner,
	planRepo crafting.PlanRepository,
	clock shared.Clock,
) *PlanCraftingHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &PlanCraftingHandler{
		planner:  planner,
		planRepo: planRepo,
		clock:    clock,
	}
}

// Handle executes the plan crafting command
func (h *PlanCraftingHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*PlanCraftingCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *PlanCraftingCommand, got %T", request)
	}

	logger := common.LoggerFromContext(ctx)
	start := h.clock.Now()

	plan, err := h.planner.Plan(ctx, cmd.Key, cmd.Amount, cmd.Mode, cmd.Ceiling)
	if err != nil {
		metrics.RecordPlanFailure(string(cmd.Mode), failureReason(err))
		return nil, fmt.Errorf("failed to plan %d %s: %w", cmd.Amount, cmd.Key, err)
	}

	metrics.RecordPlan(metrics.PlanSummary{
		Mode:          string(cmd.Mode),
		Outcome:       string(plan.Outcome()),
		Bytes:         plan.Bytes(),
		Invocations:   totalInvocations(plan),
		MissingUnits:  plan.MissingItems().Total(),
		MultiplePaths: plan.MultiplePaths(),
		Committed:     !plan.Simulation(),
		Duration:      h.clock.Now().Sub(start).Seconds(),
	})

	planID := utils.GenerateRunID("plan", cmd.Key.String())
	if h.planRepo != nil {
		if err := h.planRepo.Save(ctx, crafting.NewPlanRecord(planID, plan)); err != nil {
			// A failed history write does not fail the request
			logger.Log("ERROR", "Failed to store crafting plan", map[string]interface{}{
				"action":  "plan_store_failed",
				"plan_id": planID,
				"error":   err.Error(),
			})
		}
	}

	return &PlanCraftingResponse{PlanID: planID, Plan: plan}, nil
}

func failureReason(err error) string {
	var tooComplex *crafting.PlanTooComplexError
	var mismatch *storage.StorageMutationMismatchError
	var invalid *crafting.ErrInvalidRequest
	switch {
	case errors.As(err, &tooComplex):
		return "too_complex"
	case errors.As(err, &mismatch):
		return "storage_mismatch"
	case errors.As(err, &invalid):
		return "invalid_request"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "error"
	}
}

func totalInvocations(plan *crafting.CraftingPlan) int64 {
	var total int64
	for _, times := range plan.PatternTimes() {
		total += times
	}
	return total
}
