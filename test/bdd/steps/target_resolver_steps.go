package steps

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/craftplan-go/internal/application/mediator"
	providercmd "github.com/andrescamacho/craftplan-go/internal/application/provider/commands"
	"github.com/andrescamacho/craftplan-go/internal/application/provider/services"
	"github.com/andrescamacho/craftplan-go/internal/domain/pattern"
	"github.com/andrescamacho/craftplan-go/internal/domain/provider"
	"github.com/andrescamacho/craftplan-go/internal/domain/resource"
	"github.com/andrescamacho/craftplan-go/internal/domain/storage"
	"github.com/andrescamacho/craftplan-go/test/helpers"
)

var providerSource = storage.ActionSource{Actor: "bdd", Machine: "pattern-provider"}

// targetResolverContext holds state for pattern provider scenarios
type targetResolverContext struct {
	origin      provider.Position
	world       *helpers.MockWorld
	native      *helpers.MockCapabilityLookup
	strategies  map[resource.TypeFamily]*helpers.MockExternalStrategy
	inventories map[string]*storage.MemoryStorage
	resolver    *services.TargetResolver

	catalog  *pattern.MemoryCatalog
	blocking bool
	sides    []provider.Direction

	target provider.PatternProviderTarget
	found  bool
	side   provider.Direction
	err    error
}

func (tc *targetResolverContext) reset() {
	tc.origin = provider.Position{X: 0, Y: 64, Z: 0}
	tc.world = helpers.NewMockWorld()
	tc.native = helpers.NewMockCapabilityLookup()
	tc.strategies = map[resource.TypeFamily]*helpers.MockExternalStrategy{
		resource.FamilyItem:  helpers.NewMockExternalStrategy(resource.FamilyItem),
		resource.FamilyFluid: helpers.NewMockExternalStrategy(resource.FamilyFluid),
	}
	tc.inventories = make(map[string]*storage.MemoryStorage)
	tc.resolver = services.NewTargetResolver(
		tc.world,
		tc.native,
		[]provider.ExternalStorageStrategy{
			tc.strategies[resource.FamilyItem],
			tc.strategies[resource.FamilyFluid],
		},
		providerSource,
	)
	tc.catalog = pattern.NewMemoryCatalog()
	tc.blocking = false
	tc.sides = nil
	tc.target = nil
	tc.found = false
	tc.side = ""
	tc.err = nil
}

// InitializeTargetResolverScenario registers target resolution and pattern push steps
func InitializeTargetResolverScenario(ctx *godog.ScenarioContext) {
	tc := &targetResolverContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	ctx.Step(`^a pattern provider at (-?\d+), (-?\d+), (-?\d+)$`, tc.aPatternProviderAt)
	ctx.Step(`^a native inventory "([^"]*)" of capacity (\d+) on the "(\w+)" side$`, tc.aNativeInventory)
	ctx.Step(`^an external (item|fluid) inventory "([^"]*)" of capacity (\d+) on the "(\w+)" side$`, tc.anExternalInventory)
	ctx.Step(`^inventory "([^"]*)" holds (\d+) "([^"]*)"$`, tc.inventoryHolds)
	ctx.Step(`^the block on the "(\w+)" side is unloaded$`, tc.theBlockIsUnloaded)
	ctx.Step(`^the block on the "(\w+)" side is loaded again$`, tc.theBlockIsLoaded)
	ctx.Step(`^the native inventory on the "(\w+)" side is removed$`, tc.theNativeInventoryIsRemoved)
	ctx.Step(`^the neighbours on the "(\w+)" side change$`, tc.theNeighboursChange)
	ctx.Step(`^every cached target is invalidated$`, tc.everyCachedTargetIsInvalidated)

	ctx.Step(`^I resolve the target on the "(\w+)" side$`, tc.iResolveTheTarget)
	ctx.Step(`^a target is found$`, tc.aTargetIsFound)
	ctx.Step(`^no target is found$`, tc.noTargetIsFound)
	ctx.Step(`^the target accepts (\d+) of (\d+) "([^"]*)"$`, tc.theTargetAccepts)
	ctx.Step(`^the target reports holding a pattern input among "([^"]*)"$`, tc.theTargetHoldsPatternInput)
	ctx.Step(`^the target reports no pattern input among "([^"]*)"$`, tc.theTargetHoldsNoPatternInput)
	ctx.Step(`^(\d+) targets? (?:is|are) cached$`, tc.targetsAreCached)
	ctx.Step(`^inventory "([^"]*)" now holds (\d+) "([^"]*)"$`, tc.inventoryNowHolds)

	ctx.Step(`^the provider knows pattern "([^"]*)" with inputs "([^"]*)"$`, tc.theProviderKnowsPattern)
	ctx.Step(`^the provider is blocking$`, tc.theProviderIsBlocking)
	ctx.Step(`^the provider only pushes to sides "([^"]*)"$`, tc.theProviderOnlyPushesTo)
	ctx.Step(`^the provider pushes pattern "([^"]*)"$`, tc.theProviderPushesPattern)
	ctx.Step(`^the inputs went out on the "(\w+)" side$`, tc.theInputsWentOutOn)
	ctx.Step(`^no side accepted the inputs$`, tc.noSideAcceptedTheInputs)
}

func (tc *targetResolverContext) aPatternProviderAt(x, y, z int) error {
	tc.origin = provider.Position{X: x, Y: y, Z: z}
	return nil
}

// face returns the neighbouring position on side and the face of that block
// which looks back at the provider
func (tc *targetResolverContext) face(side string) (provider.Position, provider.Direction, error) {
	dir, err := provider.ParseDirection(side)
	if err != nil {
		return provider.Position{}, "", err
	}
	return tc.origin.Offset(dir), dir.Opposite(), nil
}

func (tc *targetResolverContext) newInventory(name string, capacity int64) (*storage.MemoryStorage, error) {
	if _, exists := tc.inventories[name]; exists {
		return nil, fmt.Errorf("inventory %q already exists", name)
	}
	inv, err := storage.NewMemoryStorage(capacity)
	if err != nil {
		return nil, err
	}
	tc.inventories[name] = inv
	return inv, nil
}

func (tc *targetResolverContext) aNativeInventory(name string, capacity int64, side string) error {
	pos, facing, err := tc.face(side)
	if err != nil {
		return err
	}
	inv, err := tc.newInventory(name, capacity)
	if err != nil {
		return err
	}
	tc.native.Expose(pos, facing, inv)
	return nil
}

func (tc *targetResolverContext) anExternalInventory(family, name string, capacity int64, side string) error {
	pos, facing, err := tc.face(side)
	if err != nil {
		return err
	}
	inv, err := storage.NewMemoryStorage(capacity, resource.TypeFamily(family))
	if err != nil {
		return err
	}
	if _, exists := tc.inventories[name]; exists {
		return fmt.Errorf("inventory %q already exists", name)
	}
	tc.inventories[name] = inv
	tc.strategies[resource.TypeFamily(family)].Attach(pos, facing, inv)
	return nil
}

func (tc *targetResolverContext) inventory(name string) (*storage.MemoryStorage, error) {
	inv, ok := tc.inventories[name]
	if !ok {
		return nil, fmt.Errorf("unknown inventory %q", name)
	}
	return inv, nil
}

func (tc *targetResolverContext) inventoryHolds(name string, amount int64, rawKey string) error {
	inv, err := tc.inventory(name)
	if err != nil {
		return err
	}
	key, err := resource.ParseKey(rawKey)
	if err != nil {
		return err
	}
	inserted, err := inv.Insert(context.Background(), key, amount, resource.Modulate, bddSource)
	if err != nil {
		return err
	}
	if inserted != amount {
		return fmt.Errorf("inventory %q only took %d of %d %s", name, inserted, amount, key)
	}
	return nil
}

func (tc *targetResolverContext) theBlockIsUnloaded(side string) error {
	pos, _, err := tc.face(side)
	if err != nil {
		return err
	}
	tc.world.Unload(pos)
	return nil
}

func (tc *targetResolverContext) theBlockIsLoaded(side string) error {
	pos, _, err := tc.face(side)
	if err != nil {
		return err
	}
	tc.world.Load(pos)
	return nil
}

func (tc *targetResolverContext) theNativeInventoryIsRemoved(side string) error {
	pos, facing, err := tc.face(side)
	if err != nil {
		return err
	}
	tc.native.Remove(pos, facing)
	return nil
}

func (tc *targetResolverContext) theNeighboursChange(side string) error {
	pos, _, err := tc.face(side)
	if err != nil {
		return err
	}
	tc.resolver.Invalidate(pos)
	return nil
}

func (tc *targetResolverContext) everyCachedTargetIsInvalidated() error {
	tc.resolver.InvalidateAll()
	return nil
}

func (tc *targetResolverContext) iResolveTheTarget(side string) error {
	pos, facing, err := tc.face(side)
	if err != nil {
		return err
	}
	tc.target, tc.found = tc.resolver.Resolve(context.Background(), pos, facing)
	return nil
}

func (tc *targetResolverContext) aTargetIsFound() error {
	if !tc.found || tc.target == nil {
		return fmt.Errorf("expected a target to resolve")
	}
	return nil
}

func (tc *targetResolverContext) noTargetIsFound() error {
	if tc.found {
		return fmt.Errorf("expected no target, got %v", tc.target)
	}
	return nil
}

func (tc *targetResolverContext) theTargetAccepts(expected, amount int64, rawKey string) error {
	if err := tc.aTargetIsFound(); err != nil {
		return err
	}
	key, err := resource.ParseKey(rawKey)
	if err != nil {
		return err
	}
	accepted, err := tc.target.Insert(context.Background(), key, amount, resource.Modulate)
	if err != nil {
		return err
	}
	if accepted != expected {
		return fmt.Errorf("expected target to accept %d of %d %s, accepted %d", expected, amount, key, accepted)
	}
	return nil
}

func parseKeyList(raw string) ([]resource.Key, error) {
	var keys []resource.Key
	for _, part := range strings.Split(raw, ",") {
		key, err := resource.ParseKey(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func (tc *targetResolverContext) containsPatternInput(raw string) (bool, error) {
	if err := tc.aTargetIsFound(); err != nil {
		return false, err
	}
	keys, err := parseKeyList(raw)
	if err != nil {
		return false, err
	}
	return tc.target.ContainsPatternInput(context.Background(), keys)
}

func (tc *targetResolverContext) theTargetHoldsPatternInput(raw string) error {
	busy, err := tc.containsPatternInput(raw)
	if err != nil {
		return err
	}
	if !busy {
		return fmt.Errorf("expected the target to hold one of %s", raw)
	}
	return nil
}

func (tc *targetResolverContext) theTargetHoldsNoPatternInput(raw string) error {
	busy, err := tc.containsPatternInput(raw)
	if err != nil {
		return err
	}
	if busy {
		return fmt.Errorf("expected the target to hold none of %s", raw)
	}
	return nil
}

func (tc *targetResolverContext) targetsAreCached(expected int) error {
	if got := tc.resolver.CachedTargets(); got != expected {
		return fmt.Errorf("expected %d cached targets, got %d", expected, got)
	}
	return nil
}

func (tc *targetResolverContext) inventoryNowHolds(name string, expected int64, rawKey string) error {
	inv, err := tc.inventory(name)
	if err != nil {
		return err
	}
	key, err := resource.ParseKey(rawKey)
	if err != nil {
		return err
	}
	held, err := inv.Peek(context.Background(), key)
	if err != nil {
		return err
	}
	if held != expected {
		return fmt.Errorf("expected inventory %q to hold %d %s, got %d", name, expected, key, held)
	}
	return nil
}

func (tc *targetResolverContext) theProviderKnowsPattern(id, rawInputs string) error {
	inputs, err := parseSlots(rawInputs)
	if err != nil {
		return err
	}
	details, err := pattern.NewDetails(
		pattern.ID(id),
		0,
		inputs,
		[]resource.GenericStack{{Key: resource.Item(id), Amount: 1}},
		5,
	)
	if err != nil {
		return err
	}
	return tc.catalog.Register(details)
}

func (tc *targetResolverContext) theProviderIsBlocking() error {
	tc.blocking = true
	return nil
}

func (tc *targetResolverContext) theProviderOnlyPushesTo(raw string) error {
	tc.sides = nil
	for _, part := range strings.Split(raw, ",") {
		dir, err := provider.ParseDirection(part)
		if err != nil {
			return err
		}
		tc.sides = append(tc.sides, dir)
	}
	return nil
}

func (tc *targetResolverContext) theProviderPushesPattern(id string) error {
	med := mediator.NewMediator()
	handler := providercmd.NewPushPatternHandler(tc.catalog, services.NewPatternPusher(tc.resolver))
	if err := mediator.RegisterHandler[*providercmd.PushPatternCommand](med, handler); err != nil {
		return err
	}

	tc.side, tc.err = "", nil
	resp, err := med.Send(context.Background(), &providercmd.PushPatternCommand{
		ProviderName: "bdd-provider",
		Position:     tc.origin,
		Sides:        tc.sides,
		Blocking:     tc.blocking,
		PatternID:    pattern.ID(id),
	})
	if err != nil {
		tc.err = err
		return nil
	}
	tc.side = resp.(*providercmd.PushPatternResponse).Side
	return nil
}

func (tc *targetResolverContext) theInputsWentOutOn(side string) error {
	if tc.err != nil {
		return fmt.Errorf("push failed: %w", tc.err)
	}
	if string(tc.side) != side {
		return fmt.Errorf("expected inputs to go out on the %s side, went out on %s", side, tc.side)
	}
	return nil
}

func (tc *targetResolverContext) noSideAcceptedTheInputs() error {
	var none *provider.ErrNoTargetAccepted
	if !errors.As(tc.err, &none) {
		return fmt.Errorf("expected ErrNoTargetAccepted, got %v (side %q)", tc.err, tc.side)
	}
	return nil
}
