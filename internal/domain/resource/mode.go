package resource

import "fmt"

// Mode selects between a dry run and an applied mutation
type Mode string

const (
	// Simulate reports what would happen without mutating anything
	Simulate Mode = "SIMULATE"

	// Modulate applies the mutation
	Modulate Mode = "MODULATE"
)

// ParseMode accepts "simulate"/"modulate" in any case
func ParseMode(s string) (Mode, error) {
	switch s {
	case "simulate", "SIMULATE", "Simulate":
		return Simulate, nil
	case "modulate", "MODULATE", "Modulate":
		return Modulate, nil
	default:
		return "", fmt.Errorf("invalid mode %q: expected simulate or modulate", s)
	}
}

// IsSimulate returns true for the dry-run mode
func (m Mode) IsSimulate() bool {
	return m == Simulate
}
