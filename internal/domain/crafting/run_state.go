package crafting

import (
	"time"

	"github.com/andrescamacho/craftplan-go/internal/domain/shared"
)

// RunStatus is the state of one planning run
type RunStatus string

const (
	RunStatusInit      RunStatus = "INIT"
	RunStatusExpanding RunStatus = "EXPANDING"
	RunStatusSatisfied RunStatus = "SATISFIED"
	RunStatusPartial   RunStatus = "PARTIAL"
	RunStatusFailed    RunStatus = "FAILED"
	RunStatusFrozen    RunStatus = "FROZEN"
)

var allowedTransitions = map[RunStatus][]RunStatus{
	RunStatusInit:      {RunStatusExpanding},
	RunStatusExpanding: {RunStatusSatisfied, RunStatusPartial, RunStatusFailed},
	RunStatusSatisfied: {RunStatusFrozen},
	RunStatusPartial:   {RunStatusFrozen},
	RunStatusFailed:    {RunStatusFrozen},
}

// RunState tracks INIT → EXPANDING → (SATISFIED | PARTIAL | FAILED) → FROZEN
// for a single planning run.
//
// Invariants:
// - Transitions must follow the graph above
// - The status reached before FROZEN is remembered as the outcome
type RunState struct {
	status    RunStatus
	outcome   RunStatus
	startedAt time.Time
	endedAt   *time.Time
	clock     shared.Clock
}

// NewRunState creates a run in INIT state
func NewRunState(clock shared.Clock) *RunState {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &RunState{
		status: RunStatusInit,
		clock:  clock,
	}
}

// Status returns the current run status
func (r *RunState) Status() RunStatus { return r.status }

// Outcome returns SATISFIED, PARTIAL or FAILED once resolved (empty before)
func (r *RunState) Outcome() RunStatus { return r.outcome }

// StartedAt returns when expansion began (zero before)
func (r *RunState) StartedAt() time.Time { return r.startedAt }

// EndedAt returns when the run was frozen (nil before)
func (r *RunState) EndedAt() *time.Time { return r.endedAt }

// Begin moves INIT → EXPANDING
func (r *RunState) Begin() error {
	if err := r.transition(RunStatusExpanding); err != nil {
		return err
	}
	r.startedAt = r.clock.Now()
	return nil
}

// Resolve moves EXPANDING → SATISFIED or PARTIAL depending on missing items
func (r *RunState) Resolve(hasMissing bool) error {
	target := RunStatusSatisfied
	if hasMissing {
		target = RunStatusPartial
	}
	if err := r.transition(target); err != nil {
		return err
	}
	r.outcome = target
	return nil
}

// Fail moves EXPANDING → FAILED
func (r *RunState) Fail() error {
	if err := r.transition(RunStatusFailed); err != nil {
		return err
	}
	r.outcome = RunStatusFailed
	return nil
}

// Freeze moves a resolved run to FROZEN
func (r *RunState) Freeze() error {
	if err := r.transition(RunStatusFrozen); err != nil {
		return err
	}
	now := r.clock.Now()
	r.endedAt = &now
	return nil
}

// Duration returns how long the run took (zero until frozen)
func (r *RunState) Duration() time.Duration {
	if r.endedAt == nil || r.startedAt.IsZero() {
		return 0
	}
	return r.endedAt.Sub(r.startedAt)
}

func (r *RunState) transition(to RunStatus) error {
	for _, allowed := range allowedTransitions[r.status] {
		if allowed == to {
			r.status = to
			return nil
		}
	}
	return &ErrInvalidRunTransition{From: r.status, To: to}
}
