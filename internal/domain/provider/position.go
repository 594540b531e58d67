package provider

import (
	"fmt"
	"strings"
)

// Direction is one of the six faces of a block position
type Direction string

const (
	Down  Direction = "down"
	Up    Direction = "up"
	North Direction = "north"
	South Direction = "south"
	West  Direction = "west"
	East  Direction = "east"
)

// Directions returns every direction in canonical order
func Directions() []Direction {
	return []Direction{Down, Up, North, South, West, East}
}

// ParseDirection parses a direction name (case-insensitive)
func ParseDirection(s string) (Direction, error) {
	d := Direction(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Directions() {
		if d == known {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown direction: %q", s)
}

// Opposite returns the facing direction
func (d Direction) Opposite() Direction {
	switch d {
	case Down:
		return Up
	case Up:
		return Down
	case North:
		return South
	case South:
		return North
	case West:
		return East
	case East:
		return West
	default:
		return d
	}
}

func (d Direction) delta() (int, int, int) {
	switch d {
	case Down:
		return 0, -1, 0
	case Up:
		return 0, 1, 0
	case North:
		return 0, 0, -1
	case South:
		return 0, 0, 1
	case West:
		return -1, 0, 0
	case East:
		return 1, 0, 0
	default:
		return 0, 0, 0
	}
}

// Position is an integer block coordinate
type Position struct {
	X int
	Y int
	Z int
}

// Offset returns the neighbouring position in direction d
func (p Position) Offset(d Direction) Position {
	dx, dy, dz := d.delta()
	return Position{X: p.X + dx, Y: p.Y + dy, Z: p.Z + dz}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d, %d, %d)", p.X, p.Y, p.Z)
}
