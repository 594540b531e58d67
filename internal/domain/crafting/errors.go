package crafting

import (
	"fmt"

	"github.com/andrescamacho/craftplan-go/internal/domain/resource"
)

// PlanTooComplexError indicates a planning run exceeded its cost ceiling.
// No partial plan is returned alongside this error.
type PlanTooComplexError struct {
	Request resource.GenericStack
	Bytes   int64
	Ceiling int64
}

func (e *PlanTooComplexError) Error() string {
	if e.Ceiling <= 0 {
		return fmt.Sprintf("plan for %s is too complex: cost arithmetic overflowed", e.Request)
	}
	return fmt.Sprintf("plan for %s is too complex: %d bytes exceeds ceiling of %d", e.Request, e.Bytes, e.Ceiling)
}

// ErrInvalidRunTransition indicates an attempt to move a planning run into a
// state it cannot reach from its current state
type ErrInvalidRunTransition struct {
	From RunStatus
	To   RunStatus
}

func (e *ErrInvalidRunTransition) Error() string {
	return fmt.Sprintf("cannot move planning run from %s to %s", e.From, e.To)
}

// ErrInvalidRequest indicates a planning request was rejected before expansion
type ErrInvalidRequest struct {
	Reason string
}

func (e *ErrInvalidRequest) Error() string {
	return fmt.Sprintf("invalid crafting request: %s", e.Reason)
}
