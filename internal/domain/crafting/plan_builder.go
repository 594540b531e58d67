package crafting

import (
	"math"
	"time"

	"github.com/andrescamacho/craftplan-go/internal/domain/pattern"
	"github.com/andrescamacho/craftplan-go/internal/domain/resource"
)

// PlanBuilder is the mutable accumulator a planning run writes into.
// It is frozen into an immutable CraftingPlan at the end of the run.
type PlanBuilder struct {
	request            resource.GenericStack
	mode               resource.Mode
	ceiling            int64
	bytesPerInvocation int64

	bytes         int64
	multiplePaths bool

	used     *resource.KeyCounter
	emitted  *resource.KeyCounter
	missing  *resource.KeyCounter
	produced *resource.KeyCounter
	consumed *resource.KeyCounter

	patternTimes map[pattern.ID]int64
	patterns     map[pattern.ID]*pattern.Details
}

// NewPlanBuilder creates an accumulator for one request.
// A ceiling <= 0 disables the cost ceiling.
func NewPlanBuilder(request resource.GenericStack, mode resource.Mode, ceiling, bytesPerInvocation int64) *PlanBuilder {
	return &PlanBuilder{
		request:            request,
		mode:               mode,
		ceiling:            ceiling,
		bytesPerInvocation: bytesPerInvocation,
		used:               resource.NewKeyCounter(),
		emitted:            resource.NewKeyCounter(),
		missing:            resource.NewKeyCounter(),
		produced:           resource.NewKeyCounter(),
		consumed:           resource.NewKeyCounter(),
		patternTimes:       make(map[pattern.ID]int64),
		patterns:           make(map[pattern.ID]*pattern.Details),
	}
}

// Request returns the requested output
func (b *PlanBuilder) Request() resource.GenericStack { return b.request }

// Bytes returns the running cost
func (b *PlanBuilder) Bytes() int64 { return b.bytes }

// Used returns how much of key this run already reserved from storage
func (b *PlanBuilder) Used(key resource.Key) int64 { return b.used.Get(key) }

// Leftover returns surplus of key produced earlier in this run
func (b *PlanBuilder) Leftover(key resource.Key) int64 { return b.emitted.Get(key) }

// MissingTotal returns the total missing amount across all keys, saturated
func (b *PlanBuilder) MissingTotal() int64 { return b.missing.Total() }

// HasMissing reports whether any key could not be covered
func (b *PlanBuilder) HasMissing() bool { return !b.missing.IsEmpty() }

// MissingChangedSince reports whether missing items were recorded after s was taken
func (b *PlanBuilder) MissingChangedSince(s *BuilderSnapshot) bool {
	return !b.missing.Equal(s.missing)
}

// UsedItems returns a copy of the used ledger
func (b *PlanBuilder) UsedItems() *resource.KeyCounter { return b.used.Clone() }

// MarkMultiplePaths records that some key had more than one producing pattern
func (b *PlanBuilder) MarkMultiplePaths() { b.multiplePaths = true }

// RecordUsed records an amount taken from storage
func (b *PlanBuilder) RecordUsed(key resource.Key, amount int64) { b.used.Add(key, amount) }

// RecordMissing records an amount that could not be covered
func (b *PlanBuilder) RecordMissing(key resource.Key, amount int64) { b.missing.Add(key, amount) }

// TakeLeftover consumes up to amount of earlier surplus and returns what was taken
func (b *PlanBuilder) TakeLeftover(key resource.Key, amount int64) int64 {
	return b.emitted.Remove(key, amount)
}

// RecordConsumed records pattern input demand
func (b *PlanBuilder) RecordConsumed(key resource.Key, amount int64) { b.consumed.Add(key, amount) }

// RecordInvocations records n invocations of p and their outputs: target is
// the key being resolved and needed the amount of it the caller still
// requires. Surplus of target and every byproduct become leftovers.
// The cost is charged separately through Charge.
func (b *PlanBuilder) RecordInvocations(p *pattern.Details, n int64, target resource.Key, needed int64) error {
	b.patternTimes[p.ID()] += n
	b.patterns[p.ID()] = p

	for _, out := range p.Outputs() {
		total, err := b.Scale(out.Amount, n)
		if err != nil {
			return err
		}
		b.produced.Add(out.Key, total)
		if out.Key == target {
			b.emitted.Add(out.Key, total-needed)
			continue
		}
		b.emitted.Add(out.Key, total)
	}
	return nil
}

// Scale multiplies a per-invocation amount by an invocation count
func (b *PlanBuilder) Scale(amount, n int64) (int64, error) {
	total, ok := mulInt64(amount, n)
	if !ok {
		return 0, b.tooComplex(0)
	}
	return total, nil
}

// Charge adds the cost of n invocations and enforces the ceiling
func (b *PlanBuilder) Charge(n int64) error {
	cost, ok := mulInt64(n, b.bytesPerInvocation)
	if !ok {
		return b.tooComplex(0)
	}
	next := b.bytes + cost
	if next < b.bytes {
		return b.tooComplex(0)
	}
	b.bytes = next
	if b.ceiling > 0 && b.bytes > b.ceiling {
		return b.tooComplex(b.ceiling)
	}
	return nil
}

// MoveUsedToMissing converts a commit shortfall into missing items
func (b *PlanBuilder) MoveUsedToMissing(key resource.Key, amount int64) {
	moved := b.used.Remove(key, amount)
	b.missing.Add(key, moved)
}

func (b *PlanBuilder) tooComplex(ceiling int64) error {
	return &PlanTooComplexError{Request: b.request, Bytes: b.bytes, Ceiling: ceiling}
}

// BuilderSnapshot is an opaque copy of a builder's accumulated state
type BuilderSnapshot struct {
	bytes         int64
	multiplePaths bool
	used          *resource.KeyCounter
	emitted       *resource.KeyCounter
	missing       *resource.KeyCounter
	produced      *resource.KeyCounter
	consumed      *resource.KeyCounter
	patternTimes  map[pattern.ID]int64
	patterns      map[pattern.ID]*pattern.Details
}

// Snapshot captures the current state so an alternative path can be tried
func (b *PlanBuilder) Snapshot() *BuilderSnapshot {
	current := &BuilderSnapshot{
		bytes:         b.bytes,
		multiplePaths: b.multiplePaths,
		used:          b.used,
		emitted:       b.emitted,
		missing:       b.missing,
		produced:      b.produced,
		consumed:      b.consumed,
		patternTimes:  b.patternTimes,
		patterns:      b.patterns,
	}
	return current.clone()
}

// Restore rewinds the builder to a snapshot. The snapshot stays reusable.
// The multiple-paths flag is sticky: once observed it stays set.
func (b *PlanBuilder) Restore(s *BuilderSnapshot) {
	restored := s.clone()
	b.bytes = restored.bytes
	b.multiplePaths = b.multiplePaths || restored.multiplePaths
	b.used = restored.used
	b.emitted = restored.emitted
	b.missing = restored.missing
	b.produced = restored.produced
	b.consumed = restored.consumed
	b.patternTimes = restored.patternTimes
	b.patterns = restored.patterns
}

func (s *BuilderSnapshot) clone() *BuilderSnapshot {
	times := make(map[pattern.ID]int64, len(s.patternTimes))
	for id, n := range s.patternTimes {
		times[id] = n
	}
	patterns := make(map[pattern.ID]*pattern.Details, len(s.patterns))
	for id, p := range s.patterns {
		patterns[id] = p
	}
	return &BuilderSnapshot{
		bytes:         s.bytes,
		multiplePaths: s.multiplePaths,
		used:          s.used.Clone(),
		emitted:       s.emitted.Clone(),
		missing:       s.missing.Clone(),
		produced:      s.produced.Clone(),
		consumed:      s.consumed.Clone(),
		patternTimes:  times,
		patterns:      patterns,
	}
}

// Freeze snapshots the accumulated state into an immutable plan.
// committed reports whether a commit pass applied any storage mutation.
func (b *PlanBuilder) Freeze(committed bool, plannedAt time.Time) *CraftingPlan {
	outcome := OutcomeSatisfied
	if !b.missing.IsEmpty() {
		outcome = OutcomePartial
	}

	s := b.Snapshot()
	return &CraftingPlan{
		finalOutput:   b.request,
		mode:          b.mode,
		bytes:         s.bytes,
		simulation:    !committed,
		multiplePaths: s.multiplePaths,
		outcome:       outcome,
		used:          s.used,
		emitted:       s.emitted,
		missing:       s.missing,
		produced:      s.produced,
		consumed:      s.consumed,
		patternTimes:  s.patternTimes,
		patterns:      s.patterns,
		plannedAt:     plannedAt,
	}
}

// mulInt64 multiplies two non-negative values, reporting overflow
func mulInt64(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if a > math.MaxInt64/b {
		return 0, false
	}
	return a * b, true
}
