package storage

import (
	"context"

	"github.com/andrescamacho/craftplan-go/internal/domain/resource"
)

// Storage is the abstraction over every backing store the planner can draw from
// or push into (internal network storage, adjacent external inventories).
//
// Contract:
// - Simulate never mutates state and is repeatable
// - Under Modulate the returned amount is authoritative: exactly that much was
//   inserted/removed, never more than requested
// - Non-positive requested amounts return 0 without error
type Storage interface {
	// Peek returns how much of key is currently available
	Peek(ctx context.Context, key resource.Key) (int64, error)

	// Extract removes up to amount of key and returns the amount removed
	Extract(ctx context.Context, key resource.Key, amount int64, mode resource.Mode, src ActionSource) (int64, error)

	// Insert stores up to amount of key and returns the amount accepted
	Insert(ctx context.Context, key resource.Key, amount int64, mode resource.Mode, src ActionSource) (int64, error)

	// AvailableStacks lists every key with a positive amount, in key order
	AvailableStacks(ctx context.Context) ([]resource.GenericStack, error)
}

// ActionSource attributes a storage mutation to an actor and the machine acting on its behalf
type ActionSource struct {
	Actor   string
	Machine string
}

// PlannerSource is the attribution used by the crafting planner itself
func PlannerSource(actor string) ActionSource {
	return ActionSource{Actor: actor, Machine: "crafting-planner"}
}

func (s ActionSource) String() string {
	if s.Machine == "" {
		return s.Actor
	}
	return s.Actor + "@" + s.Machine
}
