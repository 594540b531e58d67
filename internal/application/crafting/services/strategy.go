package services

import "fmt"

// SlotPolicy decides which candidate key of a multi-key input slot is resolved
type SlotPolicy string

const (
	// SlotPolicyFirstAvailable picks the first declared candidate that has stock
	// or leftovers, falling back to the first declared candidate (default)
	SlotPolicyFirstAvailable SlotPolicy = "first-available"

	// SlotPolicyDeclaredOrder always resolves the first declared candidate
	SlotPolicyDeclaredOrder SlotPolicy = "declared-order"
)

// PathStrategy decides what happens when several patterns produce one key
type PathStrategy string

const (
	// PathStrategyFirst uses the highest-priority pattern only (default)
	PathStrategyFirst PathStrategy = "first"

	// PathStrategyBacktrack retries lower-priority patterns when the first one
	// leaves missing items, keeping the first alternate that covers the request
	PathStrategyBacktrack PathStrategy = "backtrack"
)

// ParseSlotPolicy converts a config value into a SlotPolicy
func ParseSlotPolicy(s string) (SlotPolicy, error) {
	switch SlotPolicy(s) {
	case SlotPolicyFirstAvailable, SlotPolicyDeclaredOrder:
		return SlotPolicy(s), nil
	case "":
		return SlotPolicyFirstAvailable, nil
	default:
		return "", fmt.Errorf("unknown slot policy: %q (expected %s or %s)", s, SlotPolicyFirstAvailable, SlotPolicyDeclaredOrder)
	}
}

// ParsePathStrategy converts a config value into a PathStrategy
func ParsePathStrategy(s string) (PathStrategy, error) {
	switch PathStrategy(s) {
	case PathStrategyFirst, PathStrategyBacktrack:
		return PathStrategy(s), nil
	case "":
		return PathStrategyFirst, nil
	default:
		return "", fmt.Errorf("unknown path strategy: %q (expected %s or %s)", s, PathStrategyFirst, PathStrategyBacktrack)
	}
}

// PlannerOptions tunes a CraftingPlanner
type PlannerOptions struct {
	// BytesPerInvocation is the cost charged for every pattern invocation
	BytesPerInvocation int64

	SlotPolicy   SlotPolicy
	PathStrategy PathStrategy

	// CommitPartial allows MODULATE runs to extract stock even when the plan
	// still has missing items
	CommitPartial bool

	// Actor is recorded as the source of every storage mutation
	Actor string
}

// DefaultPlannerOptions returns the options used when none are given
func DefaultPlannerOptions() PlannerOptions {
	return PlannerOptions{
		BytesPerInvocation: 1,
		SlotPolicy:         SlotPolicyFirstAvailable,
		PathStrategy:       PathStrategyFirst,
		CommitPartial:      false,
		Actor:              "planner",
	}
}

func (o PlannerOptions) withDefaults() PlannerOptions {
	defaults := DefaultPlannerOptions()
	if o.BytesPerInvocation <= 0 {
		o.BytesPerInvocation = defaults.BytesPerInvocation
	}
	if o.SlotPolicy == "" {
		o.SlotPolicy = defaults.SlotPolicy
	}
	if o.PathStrategy == "" {
		o.PathStrategy = defaults.PathStrategy
	}
	if o.Actor == "" {
		o.Actor = defaults.Actor
	}
	return o
}
