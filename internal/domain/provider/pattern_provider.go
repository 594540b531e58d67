package provider

import (
	"fmt"
)

// PatternProvider is a block that pushes pattern inputs into whatever it faces.
//
// Sides are tried in the configured order. In blocking mode the provider will
// not push into a target that still holds inputs of a previous push.
type PatternProvider struct {
	name     string
	position Position
	sides    []Direction
	blocking bool
}

// NewPatternProvider creates a provider. With no sides given it pushes to all six.
func NewPatternProvider(name string, position Position, blocking bool, sides ...Direction) (*PatternProvider, error) {
	if name == "" {
		return nil, fmt.Errorf("pattern provider name cannot be empty")
	}
	if len(sides) == 0 {
		sides = Directions()
	}

	seen := make(map[Direction]bool, len(sides))
	ordered := make([]Direction, 0, len(sides))
	for _, side := range sides {
		if _, err := ParseDirection(string(side)); err != nil {
			return nil, err
		}
		if seen[side] {
			continue
		}
		seen[side] = true
		ordered = append(ordered, side)
	}

	return &PatternProvider{
		name:     name,
		position: position,
		sides:    ordered,
		blocking: blocking,
	}, nil
}

func (p *PatternProvider) Name() string       { return p.name }
func (p *PatternProvider) Position() Position { return p.position }
func (p *PatternProvider) Blocking() bool     { return p.blocking }

// Sides returns a copy of the push order
func (p *PatternProvider) Sides() []Direction {
	result := make([]Direction, len(p.sides))
	copy(result, p.sides)
	return result
}

// SetBlocking toggles blocking mode
func (p *PatternProvider) SetBlocking(blocking bool) {
	p.blocking = blocking
}

func (p *PatternProvider) String() string {
	return fmt.Sprintf("PatternProvider[%s at %s, blocking=%t]", p.name, p.position, p.blocking)
}
