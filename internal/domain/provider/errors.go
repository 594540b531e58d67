package provider

import "fmt"

// ErrNoTargetAccepted indicates no side of a provider could take a full push
type ErrNoTargetAccepted struct {
	Provider string
	Pattern  string
}

func (e *ErrNoTargetAccepted) Error() string {
	return fmt.Sprintf("pattern provider %s: no adjacent target accepts inputs of %s", e.Provider, e.Pattern)
}
