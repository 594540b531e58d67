package crafting

import (
	"fmt"
	"sort"
	"time"

	"github.com/andrescamacho/craftplan-go/internal/domain/pattern"
	"github.com/andrescamacho/craftplan-go/internal/domain/resource"
)

// Outcome summarises whether a plan covers its request
type Outcome string

const (
	// OutcomeSatisfied means nothing is missing
	OutcomeSatisfied Outcome = "SATISFIED"

	// OutcomePartial means some resources are missing
	OutcomePartial Outcome = "PARTIAL"
)

// CraftingPlan is the immutable result of one planning run.
//
// The three ledgers are disjoint by meaning:
// - used: withdrawn (or to be withdrawn) from existing storage
// - emitted: produced by patterns but not consumed by the plan (surplus, byproducts)
// - missing: needed but neither stored nor producible
//
// Getters return copies; a plan never changes after Freeze.
type CraftingPlan struct {
	finalOutput   resource.GenericStack
	mode          resource.Mode
	bytes         int64
	simulation    bool
	multiplePaths bool
	outcome       Outcome

	used     *resource.KeyCounter
	emitted  *resource.KeyCounter
	missing  *resource.KeyCounter
	produced *resource.KeyCounter
	consumed *resource.KeyCounter

	patternTimes map[pattern.ID]int64
	patterns     map[pattern.ID]*pattern.Details

	plannedAt time.Time
}

// Getters

func (p *CraftingPlan) FinalOutput() resource.GenericStack { return p.finalOutput }
func (p *CraftingPlan) Mode() resource.Mode                 { return p.mode }
func (p *CraftingPlan) Bytes() int64                        { return p.bytes }
func (p *CraftingPlan) Simulation() bool                    { return p.simulation }
func (p *CraftingPlan) MultiplePaths() bool                 { return p.multiplePaths }
func (p *CraftingPlan) Outcome() Outcome                    { return p.outcome }
func (p *CraftingPlan) PlannedAt() time.Time                { return p.plannedAt }

func (p *CraftingPlan) UsedItems() *resource.KeyCounter     { return p.used.Clone() }
func (p *CraftingPlan) EmittedItems() *resource.KeyCounter  { return p.emitted.Clone() }
func (p *CraftingPlan) MissingItems() *resource.KeyCounter  { return p.missing.Clone() }
func (p *CraftingPlan) ProducedItems() *resource.KeyCounter { return p.produced.Clone() }
func (p *CraftingPlan) ConsumedItems() *resource.KeyCounter { return p.consumed.Clone() }

// IsSatisfied returns true if nothing is missing
func (p *CraftingPlan) IsSatisfied() bool {
	return p.outcome == OutcomeSatisfied
}

// PatternTimes returns a copy of the invocation count per pattern
func (p *CraftingPlan) PatternTimes() map[pattern.ID]int64 {
	result := make(map[pattern.ID]int64, len(p.patternTimes))
	for id, times := range p.patternTimes {
		result[id] = times
	}
	return result
}

// PatternIDs returns the IDs of every invoked pattern, sorted
func (p *CraftingPlan) PatternIDs() []pattern.ID {
	ids := make([]pattern.ID, 0, len(p.patternTimes))
	for id := range p.patternTimes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Pattern returns the details of an invoked pattern
func (p *CraftingPlan) Pattern(id pattern.ID) (*pattern.Details, bool) {
	d, ok := p.patterns[id]
	return d, ok
}

// TotalProcessingTime sums invocations × processing time over every pattern
func (p *CraftingPlan) TotalProcessingTime() int64 {
	var total int64
	for id, times := range p.patternTimes {
		if d, ok := p.patterns[id]; ok {
			total += times * d.ProcessingTime()
		}
	}
	return total
}

// Balance returns, per key, produced + used + missing - consumed - emitted - final.
// Every entry is zero for a consistent plan; only non-zero entries are returned.
func (p *CraftingPlan) Balance() map[resource.Key]int64 {
	keys := make(map[resource.Key]bool)
	for _, c := range []*resource.KeyCounter{p.used, p.emitted, p.missing, p.produced, p.consumed} {
		for _, k := range c.Keys() {
			keys[k] = true
		}
	}
	keys[p.finalOutput.Key] = true

	result := make(map[resource.Key]int64)
	for k := range keys {
		delta := p.produced.Get(k) + p.used.Get(k) + p.missing.Get(k) - p.consumed.Get(k) - p.emitted.Get(k)
		if k == p.finalOutput.Key {
			delta -= p.finalOutput.Amount
		}
		if delta != 0 {
			result[k] = delta
		}
	}
	return result
}

// Equal compares every planned quantity (timestamps are ignored)
func (p *CraftingPlan) Equal(other *CraftingPlan) bool {
	if other == nil {
		return false
	}
	if p.finalOutput != other.finalOutput ||
		p.mode != other.mode ||
		p.bytes != other.bytes ||
		p.simulation != other.simulation ||
		p.multiplePaths != other.multiplePaths ||
		p.outcome != other.outcome {
		return false
	}
	if !p.used.Equal(other.used) || !p.emitted.Equal(other.emitted) || !p.missing.Equal(other.missing) ||
		!p.produced.Equal(other.produced) || !p.consumed.Equal(other.consumed) {
		return false
	}
	if len(p.patternTimes) != len(other.patternTimes) {
		return false
	}
	for id, times := range p.patternTimes {
		if other.patternTimes[id] != times {
			return false
		}
	}
	return true
}

func (p *CraftingPlan) String() string {
	return fmt.Sprintf("CraftingPlan[%s, outcome=%s, bytes=%d, simulation=%t, used=%d, emitted=%d, missing=%d, patterns=%d]",
		p.finalOutput, p.outcome, p.bytes, p.simulation, p.used.Len(), p.emitted.Len(), p.missing.Len(), len(p.patternTimes))
}
