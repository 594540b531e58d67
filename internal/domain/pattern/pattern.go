package pattern

import (
	"fmt"

	"github.com/andrescamacho/craftplan-go/internal/domain/resource"
)

// ID is the stable, catalog-issued identifier of a pattern.
// The catalog guarantees the same definition keeps the same ID.
type ID string

// InputSlot is one ingredient position of a pattern.
// Any of the candidate keys satisfies the slot (OR-matching); candidates are
// listed in declared preference order.
type InputSlot struct {
	Candidates []resource.Key
	Amount     int64
}

// Primary returns the first declared candidate
func (s InputSlot) Primary() resource.Key {
	return s.Candidates[0]
}

// Accepts returns true if key is one of the slot's candidates
func (s InputSlot) Accepts(key resource.Key) bool {
	for _, candidate := range s.Candidates {
		if candidate == key {
			return true
		}
	}
	return false
}

// Details is an immutable production rule: inputs multiset to outputs multiset.
type Details struct {
	id             ID
	priority       int
	inputs         []InputSlot
	outputs        []resource.GenericStack
	processingTime int64
}

// NewDetails creates validated pattern details.
// The first output is the primary output; any further outputs are byproducts.
func NewDetails(
	id ID,
	priority int,
	inputs []InputSlot,
	outputs []resource.GenericStack,
	processingTime int64,
) (*Details, error) {
	if id == "" {
		return nil, &ErrInvalidPattern{Reason: "pattern id cannot be empty"}
	}
	if len(outputs) == 0 {
		return nil, &ErrInvalidPattern{ID: id, Reason: "pattern must have at least one output"}
	}
	if processingTime < 0 {
		return nil, &ErrInvalidPattern{ID: id, Reason: "processing time cannot be negative"}
	}

	seen := make(map[resource.Key]bool, len(outputs))
	outs := make([]resource.GenericStack, len(outputs))
	for i, out := range outputs {
		if out.Key.IsZero() {
			return nil, &ErrInvalidPattern{ID: id, Reason: fmt.Sprintf("output %d has no key", i)}
		}
		if out.Amount <= 0 {
			return nil, &ErrInvalidPattern{ID: id, Reason: fmt.Sprintf("output %s must have a positive amount", out.Key)}
		}
		if seen[out.Key] {
			return nil, &ErrInvalidPattern{ID: id, Reason: fmt.Sprintf("output %s is declared twice", out.Key)}
		}
		seen[out.Key] = true
		outs[i] = out
	}

	ins := make([]InputSlot, len(inputs))
	for i, slot := range inputs {
		if len(slot.Candidates) == 0 {
			return nil, &ErrInvalidPattern{ID: id, Reason: fmt.Sprintf("input slot %d has no candidates", i)}
		}
		if slot.Amount <= 0 {
			return nil, &ErrInvalidPattern{ID: id, Reason: fmt.Sprintf("input slot %d must have a positive amount", i)}
		}
		candidates := make([]resource.Key, len(slot.Candidates))
		for j, candidate := range slot.Candidates {
			if candidate.IsZero() {
				return nil, &ErrInvalidPattern{ID: id, Reason: fmt.Sprintf("input slot %d candidate %d has no key", i, j)}
			}
			candidates[j] = candidate
		}
		ins[i] = InputSlot{Candidates: candidates, Amount: slot.Amount}
	}

	return &Details{
		id:             id,
		priority:       priority,
		inputs:         ins,
		outputs:        outs,
		processingTime: processingTime,
	}, nil
}

// MustNewDetails creates pattern details and panics on error (fixtures and tests)
func MustNewDetails(id ID, priority int, inputs []InputSlot, outputs []resource.GenericStack, processingTime int64) *Details {
	d, err := NewDetails(id, priority, inputs, outputs, processingTime)
	if err != nil {
		panic(err)
	}
	return d
}

// Getters

func (d *Details) ID() ID                { return d.id }
func (d *Details) Priority() int         { return d.priority }
func (d *Details) ProcessingTime() int64 { return d.processingTime }

// Inputs returns a copy of the input slots
func (d *Details) Inputs() []InputSlot {
	result := make([]InputSlot, len(d.inputs))
	for i, slot := range d.inputs {
		candidates := make([]resource.Key, len(slot.Candidates))
		copy(candidates, slot.Candidates)
		result[i] = InputSlot{Candidates: candidates, Amount: slot.Amount}
	}
	return result
}

// Outputs returns a copy of the outputs
func (d *Details) Outputs() []resource.GenericStack {
	result := make([]resource.GenericStack, len(d.outputs))
	copy(result, d.outputs)
	return result
}

// PrimaryOutput returns the first declared output
func (d *Details) PrimaryOutput() resource.GenericStack {
	return d.outputs[0]
}

// OutputAmount returns how much of key one invocation produces
func (d *Details) OutputAmount(key resource.Key) int64 {
	for _, out := range d.outputs {
		if out.Key == key {
			return out.Amount
		}
	}
	return 0
}

// Produces returns true if any output has the given key
func (d *Details) Produces(key resource.Key) bool {
	return d.OutputAmount(key) > 0
}

// InputKeys returns every candidate key of every slot, in declaration order
func (d *Details) InputKeys() []resource.Key {
	keys := make([]resource.Key, 0, len(d.inputs))
	for _, slot := range d.inputs {
		keys = append(keys, slot.Candidates...)
	}
	return keys
}

func (d *Details) String() string {
	return fmt.Sprintf("Pattern[%s, inputs=%d, outputs=%d, time=%d]", d.id, len(d.inputs), len(d.outputs), d.processingTime)
}
