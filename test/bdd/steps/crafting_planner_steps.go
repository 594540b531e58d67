package steps

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/craftplan-go/internal/application/crafting/commands"
	"github.com/andrescamacho/craftplan-go/internal/application/crafting/queries"
	"github.com/andrescamacho/craftplan-go/internal/application/crafting/services"
	"github.com/andrescamacho/craftplan-go/internal/application/mediator"
	"github.com/andrescamacho/craftplan-go/internal/domain/crafting"
	"github.com/andrescamacho/craftplan-go/internal/domain/pattern"
	"github.com/andrescamacho/craftplan-go/internal/domain/resource"
	"github.com/andrescamacho/craftplan-go/internal/domain/shared"
	"github.com/andrescamacho/craftplan-go/internal/domain/storage"
	"github.com/andrescamacho/craftplan-go/test/helpers"
)

// craftingPlannerContext holds state for crafting planner scenarios.
//
// Patterns and stock are collected first; the backend is built on the first
// request so a scenario can pick the memory or database backend in any order.
type craftingPlannerContext struct {
	backend  string
	patterns []*pattern.Details
	stock    *resource.KeyCounter
	options  services.PlannerOptions
	clock    *shared.MockClock

	med   mediator.Mediator
	store storage.Storage

	planID string
	plan   *crafting.CraftingPlan
	err    error
}

func (pc *craftingPlannerContext) reset() {
	pc.backend = "memory"
	pc.patterns = nil
	pc.stock = resource.NewKeyCounter()
	pc.options = services.DefaultPlannerOptions()
	pc.clock = shared.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	pc.med = nil
	pc.store = nil
	pc.planID = ""
	pc.plan = nil
	pc.err = nil
}

// InitializeCraftingPlannerScenario registers crafting planner steps
func InitializeCraftingPlannerScenario(ctx *godog.ScenarioContext) {
	pc := &craftingPlannerContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		pc.reset()
		if helpers.SharedTestDB != nil {
			if err := helpers.TruncateAllTables(); err != nil {
				return ctx, err
			}
		}
		return ctx, nil
	})

	ctx.Step(`^the pattern catalog:$`, pc.thePatternCatalog)
	ctx.Step(`^the network storage contains:$`, pc.theNetworkStorageContains)
	ctx.Step(`^the planner runs against the "(memory|database)" backend$`, pc.thePlannerRunsAgainstBackend)
	ctx.Step(`^the planner uses the "([^"]*)" slot policy$`, pc.thePlannerUsesSlotPolicy)
	ctx.Step(`^the planner uses the "([^"]*)" path strategy$`, pc.thePlannerUsesPathStrategy)
	ctx.Step(`^partial plans may be committed$`, pc.partialPlansMayBeCommitted)
	ctx.Step(`^each pattern invocation costs (\d+) bytes$`, pc.eachInvocationCosts)

	ctx.Step(`^I request (\d+) "([^"]*)" in "([^"]*)" mode$`, pc.iRequest)
	ctx.Step(`^I request (\d+) "([^"]*)" in "([^"]*)" mode with a ceiling of (\d+)$`, pc.iRequestWithCeiling)
	ctx.Step(`^I request (-?\d+) "([^"]*)"$`, pc.iRequestRaw)

	ctx.Step(`^the plan is "(SATISFIED|PARTIAL)"$`, pc.thePlanOutcomeIs)
	ctx.Step(`^the plan uses:$`, pc.thePlanUses)
	ctx.Step(`^the plan uses nothing from storage$`, pc.thePlanUsesNothing)
	ctx.Step(`^the plan is missing:$`, pc.thePlanIsMissing)
	ctx.Step(`^the plan is missing nothing$`, pc.thePlanIsMissingNothing)
	ctx.Step(`^the plan emits:$`, pc.thePlanEmits)
	ctx.Step(`^the plan emits nothing$`, pc.thePlanEmitsNothing)
	ctx.Step(`^the plan runs patterns:$`, pc.thePlanRunsPatterns)
	ctx.Step(`^the plan costs (\d+) bytes$`, pc.thePlanCosts)
	ctx.Step(`^the plan reports multiple paths$`, pc.thePlanReportsMultiplePaths)
	ctx.Step(`^the plan is a simulation$`, pc.thePlanIsASimulation)
	ctx.Step(`^the plan was committed$`, pc.thePlanWasCommitted)
	ctx.Step(`^every resource in the plan balances$`, pc.everyResourceBalances)
	ctx.Step(`^the network storage now holds (\d+) "([^"]*)"$`, pc.theNetworkStorageNowHolds)
	ctx.Step(`^repeating the request yields an equal plan$`, pc.repeatingYieldsEqualPlan)
	ctx.Step(`^the plan is recorded in the plan history$`, pc.thePlanIsRecorded)

	ctx.Step(`^planning fails because the plan is too complex$`, pc.planningFailsTooComplex)
	ctx.Step(`^planning is rejected as invalid$`, pc.planningIsRejected)
	ctx.Step(`^no plan is recorded$`, pc.noPlanIsRecorded)
}

func (pc *craftingPlannerContext) thePatternCatalog(table *godog.Table) error {
	for _, row := range dataRows(table) {
		id := pattern.ID(cellValue(table, row, "id"))

		priority := 0
		if raw := cellValue(table, row, "priority"); raw != "" {
			p, err := strconv.Atoi(raw)
			if err != nil {
				return fmt.Errorf("pattern %s: bad priority: %w", id, err)
			}
			priority = p
		}

		inputs, err := parseSlots(cellValue(table, row, "inputs"))
		if err != nil {
			return fmt.Errorf("pattern %s: %w", id, err)
		}
		outputs, err := parseStacks(cellValue(table, row, "outputs"))
		if err != nil {
			return fmt.Errorf("pattern %s: %w", id, err)
		}

		details, err := pattern.NewDetails(id, priority, inputs, outputs, 5)
		if err != nil {
			return err
		}
		pc.patterns = append(pc.patterns, details)
	}
	return nil
}

func (pc *craftingPlannerContext) theNetworkStorageContains(table *godog.Table) error {
	stock, err := counterFromTable(table)
	if err != nil {
		return err
	}
	pc.stock.AddAll(stock)
	return nil
}

func (pc *craftingPlannerContext) thePlannerRunsAgainstBackend(backend string) error {
	if backend == "database" && helpers.SharedTestDB == nil {
		return fmt.Errorf("shared test database is not initialized")
	}
	pc.backend = backend
	return nil
}

func (pc *craftingPlannerContext) thePlannerUsesSlotPolicy(raw string) error {
	policy, err := services.ParseSlotPolicy(raw)
	if err != nil {
		return err
	}
	pc.options.SlotPolicy = policy
	return nil
}

func (pc *craftingPlannerContext) thePlannerUsesPathStrategy(raw string) error {
	strategy, err := services.ParsePathStrategy(raw)
	if err != nil {
		return err
	}
	pc.options.PathStrategy = strategy
	return nil
}

func (pc *craftingPlannerContext) partialPlansMayBeCommitted() error {
	pc.options.CommitPartial = true
	return nil
}

func (pc *craftingPlannerContext) eachInvocationCosts(bytes int64) error {
	pc.options.BytesPerInvocation = bytes
	return nil
}

// build wires catalog, storage, planner and history into a mediator
func (pc *craftingPlannerContext) build(ctx context.Context) error {
	if pc.med != nil {
		return nil
	}

	var (
		catalog  pattern.Catalog
		store    storage.Storage
		planRepo crafting.PlanRepository
	)

	switch pc.backend {
	case "database":
		repos, err := helpers.NewTestRepositories("bdd-network", 0, pc.clock)
		if err != nil {
			return err
		}
		if _, err := repos.Catalog.Import(ctx, pc.patterns); err != nil {
			return err
		}
		catalog, store, planRepo = repos.Catalog, repos.Storage, repos.PlanRepo
	default:
		memCatalog, err := pattern.NewMemoryCatalogWith(pc.patterns...)
		if err != nil {
			return err
		}
		catalog, store, planRepo = memCatalog, storage.NewUnboundedMemoryStorage(), helpers.NewMockPlanRepository()
	}

	for _, stack := range pc.stock.Stacks() {
		if _, err := store.Insert(ctx, stack.Key, stack.Amount, resource.Modulate, bddSource); err != nil {
			return err
		}
	}

	planner := services.NewCraftingPlannerWithOptions(catalog, store, pc.clock, pc.options)

	med := mediator.NewMediator()
	if err := mediator.RegisterHandler[*commands.PlanCraftingCommand](med, commands.NewPlanCraftingHandler(planner, planRepo, pc.clock)); err != nil {
		return err
	}
	if err := mediator.RegisterHandler[*queries.GetPlanQuery](med, queries.NewGetPlanHandler(planRepo)); err != nil {
		return err
	}
	if err := mediator.RegisterHandler[*queries.ListPlansQuery](med, queries.NewListPlansHandler(planRepo)); err != nil {
		return err
	}

	pc.med = med
	pc.store = store
	return nil
}

func (pc *craftingPlannerContext) send(amount int64, rawKey string, mode resource.Mode, ceiling int64) error {
	ctx := context.Background()
	if err := pc.build(ctx); err != nil {
		return err
	}

	key, err := resource.ParseKey(rawKey)
	if err != nil {
		return err
	}

	pc.plan, pc.planID, pc.err = nil, "", nil
	resp, err := pc.med.Send(ctx, &commands.PlanCraftingCommand{
		Key:     key,
		Amount:  amount,
		Mode:    mode,
		Ceiling: ceiling,
	})
	if err != nil {
		pc.err = err
		return nil
	}

	result, ok := resp.(*commands.PlanCraftingResponse)
	if !ok {
		return fmt.Errorf("unexpected response type %T", resp)
	}
	pc.plan, pc.planID = result.Plan, result.PlanID
	return nil
}

func (pc *craftingPlannerContext) iRequest(amount int64, rawKey, rawMode string) error {
	mode, err := resource.ParseMode(rawMode)
	if err != nil {
		return err
	}
	return pc.send(amount, rawKey, mode, 0)
}

func (pc *craftingPlannerContext) iRequestWithCeiling(amount int64, rawKey, rawMode string, ceiling int64) error {
	mode, err := resource.ParseMode(rawMode)
	if err != nil {
		return err
	}
	return pc.send(amount, rawKey, mode, ceiling)
}

func (pc *craftingPlannerContext) iRequestRaw(amount int64, rawKey string) error {
	return pc.send(amount, rawKey, resource.Simulate, 0)
}

func (pc *craftingPlannerContext) requirePlan() error {
	if pc.err != nil {
		return fmt.Errorf("planning failed: %w", pc.err)
	}
	if pc.plan == nil {
		return fmt.Errorf("no plan was produced")
	}
	return nil
}

func (pc *craftingPlannerContext) thePlanOutcomeIs(outcome string) error {
	if err := pc.requirePlan(); err != nil {
		return err
	}
	if got := string(pc.plan.Outcome()); got != outcome {
		return fmt.Errorf("expected outcome %s, got %s (missing %s)", outcome, got, describeCounter(pc.plan.MissingItems()))
	}
	return nil
}

func (pc *craftingPlannerContext) compareLedger(name string, got *resource.KeyCounter, table *godog.Table) error {
	if err := pc.requirePlan(); err != nil {
		return err
	}
	want := resource.NewKeyCounter()
	if table != nil {
		parsed, err := counterFromTable(table)
		if err != nil {
			return err
		}
		want = parsed
	}
	if !want.Equal(got) {
		return fmt.Errorf("%s: expected %s, got %s", name, describeCounter(want), describeCounter(got))
	}
	return nil
}

func (pc *craftingPlannerContext) thePlanUses(table *godog.Table) error {
	if err := pc.requirePlan(); err != nil {
		return err
	}
	return pc.compareLedger("used", pc.plan.UsedItems(), table)
}

func (pc *craftingPlannerContext) thePlanUsesNothing() error {
	if err := pc.requirePlan(); err != nil {
		return err
	}
	return pc.compareLedger("used", pc.plan.UsedItems(), nil)
}

func (pc *craftingPlannerContext) thePlanIsMissing(table *godog.Table) error {
	if err := pc.requirePlan(); err != nil {
		return err
	}
	return pc.compareLedger("missing", pc.plan.MissingItems(), table)
}

func (pc *craftingPlannerContext) thePlanIsMissingNothing() error {
	if err := pc.requirePlan(); err != nil {
		return err
	}
	return pc.compareLedger("missing", pc.plan.MissingItems(), nil)
}

func (pc *craftingPlannerContext) thePlanEmits(table *godog.Table) error {
	if err := pc.requirePlan(); err != nil {
		return err
	}
	return pc.compareLedger("emitted", pc.plan.EmittedItems(), table)
}

func (pc *craftingPlannerContext) thePlanEmitsNothing() error {
	if err := pc.requirePlan(); err != nil {
		return err
	}
	return pc.compareLedger("emitted", pc.plan.EmittedItems(), nil)
}

func (pc *craftingPlannerContext) thePlanRunsPatterns(table *godog.Table) error {
	if err := pc.requirePlan(); err != nil {
		return err
	}
	want := make(map[pattern.ID]int64)
	for _, row := range dataRows(table) {
		times, err := strconv.ParseInt(cellValue(table, row, "times"), 10, 64)
		if err != nil {
			return err
		}
		want[pattern.ID(cellValue(table, row, "pattern"))] = times
	}

	got := pc.plan.PatternTimes()
	if len(got) != len(want) {
		return fmt.Errorf("expected patterns %v, got %v", want, got)
	}
	for id, times := range want {
		if got[id] != times {
			return fmt.Errorf("pattern %s: expected %d invocations, got %d", id, times, got[id])
		}
	}
	return nil
}

func (pc *craftingPlannerContext) thePlanCosts(bytes int64) error {
	if err := pc.requirePlan(); err != nil {
		return err
	}
	if pc.plan.Bytes() != bytes {
		return fmt.Errorf("expected %d bytes, got %d", bytes, pc.plan.Bytes())
	}
	return nil
}

func (pc *craftingPlannerContext) thePlanReportsMultiplePaths() error {
	if err := pc.requirePlan(); err != nil {
		return err
	}
	if !pc.plan.MultiplePaths() {
		return fmt.Errorf("expected the plan to report multiple paths")
	}
	return nil
}

func (pc *craftingPlannerContext) thePlanIsASimulation() error {
	if err := pc.requirePlan(); err != nil {
		return err
	}
	if !pc.plan.Simulation() {
		return fmt.Errorf("expected a simulated plan, but storage was modified")
	}
	return nil
}

func (pc *craftingPlannerContext) thePlanWasCommitted() error {
	if err := pc.requirePlan(); err != nil {
		return err
	}
	if pc.plan.Simulation() {
		return fmt.Errorf("expected the plan to be committed to storage")
	}
	return nil
}

func (pc *craftingPlannerContext) everyResourceBalances() error {
	if err := pc.requirePlan(); err != nil {
		return err
	}
	if balance := pc.plan.Balance(); len(balance) > 0 {
		return fmt.Errorf("unbalanced keys: %v", balance)
	}
	return nil
}

func (pc *craftingPlannerContext) theNetworkStorageNowHolds(expected int64, rawKey string) error {
	key, err := resource.ParseKey(rawKey)
	if err != nil {
		return err
	}
	if err := pc.build(context.Background()); err != nil {
		return err
	}
	held, err := pc.store.Peek(context.Background(), key)
	if err != nil {
		return err
	}
	if held != expected {
		return fmt.Errorf("expected storage to hold %d %s, got %d", expected, key, held)
	}
	return nil
}

func (pc *craftingPlannerContext) repeatingYieldsEqualPlan() error {
	if err := pc.requirePlan(); err != nil {
		return err
	}
	first := pc.plan
	request := first.FinalOutput()
	if err := pc.send(request.Amount, request.Key.String(), first.Mode(), 0); err != nil {
		return err
	}
	if err := pc.requirePlan(); err != nil {
		return err
	}
	if !first.Equal(pc.plan) {
		return fmt.Errorf("repeated plan differs:\nfirst:  %s\nsecond: %s", first, pc.plan)
	}
	return nil
}

func (pc *craftingPlannerContext) thePlanIsRecorded() error {
	if err := pc.requirePlan(); err != nil {
		return err
	}
	resp, err := pc.med.Send(context.Background(), &queries.GetPlanQuery{PlanID: pc.planID})
	if err != nil {
		return err
	}
	record := resp.(*queries.GetPlanResponse).Record
	if record.Outcome != pc.plan.Outcome() {
		return fmt.Errorf("recorded outcome %s, plan outcome %s", record.Outcome, pc.plan.Outcome())
	}
	if record.Bytes != pc.plan.Bytes() {
		return fmt.Errorf("recorded %d bytes, plan costs %d", record.Bytes, pc.plan.Bytes())
	}
	return nil
}

func (pc *craftingPlannerContext) planningFailsTooComplex() error {
	var tooComplex *crafting.PlanTooComplexError
	if !errors.As(pc.err, &tooComplex) {
		return fmt.Errorf("expected PlanTooComplexError, got %v", pc.err)
	}
	if pc.plan != nil {
		return fmt.Errorf("no plan should accompany a too-complex failure")
	}
	return nil
}

func (pc *craftingPlannerContext) planningIsRejected() error {
	var invalid *crafting.ErrInvalidRequest
	if !errors.As(pc.err, &invalid) {
		return fmt.Errorf("expected ErrInvalidRequest, got %v", pc.err)
	}
	return nil
}

func (pc *craftingPlannerContext) noPlanIsRecorded() error {
	if pc.med == nil {
		return nil
	}
	resp, err := pc.med.Send(context.Background(), &queries.ListPlansQuery{Limit: 10})
	if err != nil {
		return err
	}
	if records := resp.(*queries.ListPlansResponse).Records; len(records) != 0 {
		return fmt.Errorf("expected no recorded plans, found %d", len(records))
	}
	return nil
}
