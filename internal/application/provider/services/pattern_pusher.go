package services

import (
	"context"
	"fmt"

	"github.com/andrescamacho/craftplan-go/internal/application/common"
	"github.com/andrescamacho/craftplan-go/internal/domain/pattern"
	"github.com/andrescamacho/craftplan-go/internal/domain/provider"
	"github.com/andrescamacho/craftplan-go/internal/domain/resource"
	"github.com/andrescamacho/craftplan-go/internal/domain/storage"
)

// PatternPusher moves the inputs of one pattern invocation out of a pattern
// provider into the first adjacent target that takes all of them.
type PatternPusher struct {
	resolver *TargetResolver
}

// NewPatternPusher creates a pusher over a target resolver
func NewPatternPusher(resolver *TargetResolver) *PatternPusher {
	return &PatternPusher{resolver: resolver}
}

// Push delivers inputs for details through p. With no inputs given, the
// primary candidate of every slot is pushed.
//
// Each side is tried in the provider's order. A side is skipped when nothing
// resolves there, when the provider is blocking and the target still holds a
// pattern input, or when a simulated insert of any input falls short. Inputs
// are only committed to a side that accepts all of them.
func (pp *PatternPusher) Push(
	ctx context.Context,
	p *provider.PatternProvider,
	details *pattern.Details,
	inputs []resource.GenericStack,
) (provider.Direction, error) {
	logger := common.LoggerFromContext(ctx)

	load := resource.NewKeyCounter()
	if len(inputs) == 0 {
		for _, slot := range details.Inputs() {
			load.Add(slot.Primary(), slot.Amount)
		}
	}
	for _, stack := range inputs {
		load.Add(stack.Key, stack.Amount)
	}

	for _, side := range p.Sides() {
		target, ok := pp.resolver.Resolve(ctx, p.Position().Offset(side), side.Opposite())
		if !ok {
			continue
		}

		if p.Blocking() {
			busy, err := target.ContainsPatternInput(ctx, details.InputKeys())
			if err != nil {
				return "", fmt.Errorf("failed to inspect target on %s side: %w", side, err)
			}
			if busy {
				logger.Log("DEBUG", "Blocking provider skipped busy target", map[string]interface{}{
					"provider": p.Name(),
					"side":     string(side),
					"pattern":  string(details.ID()),
				})
				continue
			}
		}

		fits, err := acceptsAll(ctx, target, load)
		if err != nil {
			return "", fmt.Errorf("failed to simulate push on %s side: %w", side, err)
		}
		if !fits {
			continue
		}

		for _, key := range load.Keys() {
			amount := load.Get(key)
			accepted, err := checkedInsert(ctx, target, key, amount, resource.Modulate)
			if err != nil {
				return "", fmt.Errorf("failed to push %d %s on %s side: %w", amount, key, side, err)
			}
			if accepted != amount {
				return "", fmt.Errorf("target on %s side accepted %d of %d %s after simulating a full insert", side, accepted, amount, key)
			}
		}

		logger.Log("INFO", "Pattern inputs pushed", map[string]interface{}{
			"provider": p.Name(),
			"side":     string(side),
			"pattern":  string(details.ID()),
			"units":    load.Total(),
		})
		return side, nil
	}

	return "", &provider.ErrNoTargetAccepted{Provider: p.Name(), Pattern: string(details.ID())}
}

func acceptsAll(ctx context.Context, target provider.PatternProviderTarget, load *resource.KeyCounter) (bool, error) {
	for _, key := range load.Keys() {
		amount := load.Get(key)
		accepted, err := checkedInsert(ctx, target, key, amount, resource.Simulate)
		if err != nil {
			return false, err
		}
		if accepted < amount {
			return false, nil
		}
	}
	return true, nil
}

// checkedInsert rejects a target reporting an amount outside [0, amount]
func checkedInsert(ctx context.Context, target provider.PatternProviderTarget, key resource.Key, amount int64, mode resource.Mode) (int64, error) {
	accepted, err := target.Insert(ctx, key, amount, mode)
	if err != nil {
		return 0, err
	}
	if accepted < 0 || accepted > amount {
		return 0, &storage.StorageMutationMismatchError{
			Operation: "insert",
			Key:       key,
			Requested: amount,
			Returned:  accepted,
			Mode:      mode,
		}
	}
	return accepted, nil
}
