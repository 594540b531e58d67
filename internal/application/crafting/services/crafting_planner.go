package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/andrescamacho/craftplan-go/internal/application/common"
	"github.com/andrescamacho/craftplan-go/internal/domain/crafting"
	"github.com/andrescamacho/craftplan-go/internal/domain/pattern"
	"github.com/andrescamacho/craftplan-go/internal/domain/resource"
	"github.com/andrescamacho/craftplan-go/internal/domain/shared"
	"github.com/andrescamacho/craftplan-go/internal/domain/storage"
	"github.com/andrescamacho/craftplan-go/pkg/utils"
)

// CraftingPlanner resolves a requested output against a pattern catalog and a
// storage into an immutable CraftingPlan.
//
// Planning is single-threaded and deterministic: for a fixed catalog and
// storage snapshot the same request yields an equal plan. Callers must
// serialize MODULATE runs against one storage.
type CraftingPlanner struct {
	catalog pattern.Catalog
	storage storage.Storage
	options PlannerOptions
	clock   shared.Clock
}

// NewCraftingPlanner creates a planner with default options
func NewCraftingPlanner(catalog pattern.Catalog, store storage.Storage, clock shared.Clock) *CraftingPlanner {
	return NewCraftingPlannerWithOptions(catalog, store, clock, DefaultPlannerOptions())
}

// NewCraftingPlannerWithOptions creates a planner with explicit options
func NewCraftingPlannerWithOptions(
	catalog pattern.Catalog,
	store storage.Storage,
	clock shared.Clock,
	options PlannerOptions,
) *CraftingPlanner {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &CraftingPlanner{
		catalog: catalog,
		storage: store,
		options: options.withDefaults(),
		clock:   clock,
	}
}

// Options returns the effective planner options
func (p *CraftingPlanner) Options() PlannerOptions {
	return p.options
}

// Plan computes a plan for amount units of key.
//
// SIMULATE never mutates storage. MODULATE first runs the same simulation
// (so the cost ceiling is enforced before anything is touched) and then
// extracts the used items. A ceiling <= 0 disables the cost ceiling.
//
// Returns *crafting.PlanTooComplexError when the ceiling is exceeded and
// *storage.StorageMutationMismatchError when storage breaks its contract
// during commit; no plan is returned with either.
func (p *CraftingPlanner) Plan(
	ctx context.Context,
	key resource.Key,
	amount int64,
	mode resource.Mode,
	ceiling int64,
) (*crafting.CraftingPlan, error) {
	logger := common.LoggerFromContext(ctx)

	request, err := validateRequest(key, amount, mode)
	if err != nil {
		return nil, err
	}

	state := crafting.NewRunState(p.clock)
	if err := state.Begin(); err != nil {
		return nil, err
	}

	logger.Log("INFO", "Crafting plan started", map[string]interface{}{
		"action":  "plan_started",
		"request": request.String(),
		"mode":    string(mode),
		"ceiling": ceiling,
	})

	run := &planningRun{
		planner: p,
		builder: crafting.NewPlanBuilder(request, mode, ceiling, p.options.BytesPerInvocation),
		memo:    make(map[resource.Key][]*pattern.Details),
		path:    make(map[resource.Key]bool),
	}

	if err := run.resolve(ctx, key, amount); err != nil {
		_ = state.Fail()
		_ = state.Freeze()
		logger.Log("ERROR", "Crafting plan failed", map[string]interface{}{
			"action":  "plan_failed",
			"request": request.String(),
			"bytes":   run.builder.Bytes(),
			"error":   err.Error(),
		})
		return nil, err
	}

	committed := false
	if mode == resource.Modulate {
		committed, err = run.commit(ctx)
		if err != nil {
			_ = state.Fail()
			_ = state.Freeze()
			logger.Log("ERROR", "Crafting plan commit aborted", map[string]interface{}{
				"action":  "commit_aborted",
				"request": request.String(),
				"error":   err.Error(),
			})
			return nil, err
		}
	}

	if err := state.Resolve(run.builder.HasMissing()); err != nil {
		return nil, err
	}
	plan := run.builder.Freeze(committed, p.clock.Now())
	if err := state.Freeze(); err != nil {
		return nil, err
	}

	logger.Log("INFO", "Crafting plan completed", map[string]interface{}{
		"action":         "plan_completed",
		"request":        request.String(),
		"outcome":        string(plan.Outcome()),
		"bytes":          plan.Bytes(),
		"simulation":     plan.Simulation(),
		"multiple_paths": plan.MultiplePaths(),
		"missing":        plan.MissingItems().Total(),
		"patterns":       len(plan.PatternTimes()),
		"duration_ms":    state.Duration().Milliseconds(),
	})

	return plan, nil
}

func validateRequest(key resource.Key, amount int64, mode resource.Mode) (resource.GenericStack, error) {
	if key.IsZero() {
		return resource.GenericStack{}, &crafting.ErrInvalidRequest{Reason: "resource key is required"}
	}
	if !key.Type.IsValid() {
		return resource.GenericStack{}, &crafting.ErrInvalidRequest{Reason: fmt.Sprintf("unknown resource type %q", key.Type)}
	}
	if mode != resource.Simulate && mode != resource.Modulate {
		return resource.GenericStack{}, &crafting.ErrInvalidRequest{Reason: fmt.Sprintf("unknown mode %q", mode)}
	}
	request, err := resource.NewGenericStack(key, amount)
	if err != nil {
		return resource.GenericStack{}, &crafting.ErrInvalidRequest{Reason: err.Error()}
	}
	return request, nil
}

// planningRun holds the per-run working state: the plan accumulator, the
// memoized catalog lookups and the keys on the active expansion path.
type planningRun struct {
	planner *CraftingPlanner
	builder *crafting.PlanBuilder
	memo    map[resource.Key][]*pattern.Details
	path    map[resource.Key]bool
}

// resolve covers amount of key from leftovers, then stock, then patterns.
// Whatever remains uncovered is recorded as missing.
func (r *planningRun) resolve(ctx context.Context, key resource.Key, amount int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	remaining := amount - r.builder.TakeLeftover(key, amount)
	if remaining == 0 {
		return nil
	}

	fromStock, err := r.reserveStock(ctx, key, remaining)
	if err != nil {
		return err
	}
	remaining -= fromStock
	if remaining == 0 {
		return nil
	}

	// A key already being expanded upstream is only served from stock
	if r.path[key] {
		r.builder.RecordMissing(key, remaining)
		return nil
	}

	patterns, err := r.patternsProducing(ctx, key)
	if err != nil {
		return err
	}
	if len(patterns) == 0 {
		r.builder.RecordMissing(key, remaining)
		return nil
	}
	if len(patterns) > 1 {
		r.builder.MarkMultiplePaths()
	}

	r.path[key] = true
	defer delete(r.path, key)

	if r.planner.options.PathStrategy == PathStrategyBacktrack && len(patterns) > 1 {
		return r.craftWithBacktracking(ctx, key, remaining, patterns)
	}
	return r.craft(ctx, patterns[0], key, remaining)
}

// craftWithBacktracking applies the first pattern and, when it leaves missing
// items, tries each alternate from the same starting state. The first
// alternate that adds nothing to missing wins; otherwise the first pattern's
// result is kept.
func (r *planningRun) craftWithBacktracking(ctx context.Context, key resource.Key, needed int64, patterns []*pattern.Details) error {
	start := r.builder.Snapshot()

	if err := r.craft(ctx, patterns[0], key, needed); err != nil {
		return err
	}
	if !r.builder.MissingChangedSince(start) {
		return nil
	}
	firstResult := r.builder.Snapshot()

	for _, alternate := range patterns[1:] {
		r.builder.Restore(start)
		err := r.craft(ctx, alternate, key, needed)
		var tooComplex *crafting.PlanTooComplexError
		if errors.As(err, &tooComplex) {
			continue
		}
		if err != nil {
			return err
		}
		if !r.builder.MissingChangedSince(start) {
			return nil
		}
	}

	r.builder.Restore(firstResult)
	return nil
}

// craft covers needed units of key with whole invocations of p
func (r *planningRun) craft(ctx context.Context, p *pattern.Details, key resource.Key, needed int64) error {
	perInvocation := p.OutputAmount(key)
	if perInvocation <= 0 {
		r.builder.RecordMissing(key, needed)
		return nil
	}
	invocations := utils.CeilDiv(needed, perInvocation)

	// Charged before expanding inputs so runaway trees stop early
	if err := r.builder.Charge(invocations); err != nil {
		return err
	}

	for _, slot := range p.Inputs() {
		required, err := r.builder.Scale(slot.Amount, invocations)
		if err != nil {
			return err
		}
		candidate, err := r.chooseCandidate(ctx, slot)
		if err != nil {
			return err
		}
		r.builder.RecordConsumed(candidate, required)
		if err := r.resolve(ctx, candidate, required); err != nil {
			return err
		}
	}

	return r.builder.RecordInvocations(p, invocations, key, needed)
}

// chooseCandidate applies the slot policy
func (r *planningRun) chooseCandidate(ctx context.Context, slot pattern.InputSlot) (resource.Key, error) {
	if r.planner.options.SlotPolicy == SlotPolicyDeclaredOrder || len(slot.Candidates) == 1 {
		return slot.Primary(), nil
	}

	for _, candidate := range slot.Candidates {
		if r.builder.Leftover(candidate) > 0 {
			return candidate, nil
		}
		free, err := r.freeStock(ctx, candidate)
		if err != nil {
			return resource.Key{}, err
		}
		if free > 0 {
			return candidate, nil
		}
	}
	return slot.Primary(), nil
}

// freeStock is what storage holds minus what this run already reserved
func (r *planningRun) freeStock(ctx context.Context, key resource.Key) (int64, error) {
	available, err := r.planner.storage.Peek(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("failed to peek %s: %w", key, err)
	}
	return utils.Max(available-r.builder.Used(key), 0), nil
}

func (r *planningRun) reserveStock(ctx context.Context, key resource.Key, amount int64) (int64, error) {
	free, err := r.freeStock(ctx, key)
	if err != nil {
		return 0, err
	}
	taken := utils.Min(free, amount)
	r.builder.RecordUsed(key, taken)
	return taken, nil
}

func (r *planningRun) patternsProducing(ctx context.Context, key resource.Key) ([]*pattern.Details, error) {
	if cached, ok := r.memo[key]; ok {
		return cached, nil
	}
	patterns, err := r.planner.catalog.PatternsProducing(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to look up patterns producing %s: %w", key, err)
	}
	r.memo[key] = patterns
	return patterns, nil
}

// commit extracts the used items in key order. A short extract turns the
// shortfall into missing items. Plans with missing items are only committed
// when CommitPartial is set.
func (r *planningRun) commit(ctx context.Context) (bool, error) {
	if r.builder.HasMissing() && !r.planner.options.CommitPartial {
		common.LoggerFromContext(ctx).Log("WARNING", "Plan has missing items, storage left untouched", map[string]interface{}{
			"action":  "commit_skipped",
			"request": r.builder.Request().String(),
			"missing": r.builder.MissingTotal(),
		})
		return false, nil
	}

	checked := storage.NewCheckedStorage(r.planner.storage)
	source := storage.PlannerSource(r.planner.options.Actor)
	used := r.builder.UsedItems()

	committed := false
	for _, key := range used.Keys() {
		requested := used.Get(key)
		extracted, err := checked.Extract(ctx, key, requested, resource.Modulate, source)
		if err != nil {
			return committed, err
		}
		if extracted > 0 {
			committed = true
		}
		if extracted < requested {
			r.builder.MoveUsedToMissing(key, requested-extracted)
		}
	}
	return committed, nil
}
