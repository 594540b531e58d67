package pattern

import "fmt"

// ErrInvalidPattern indicates a pattern definition failed validation
type ErrInvalidPattern struct {
	ID     ID
	Reason string
}

func (e *ErrInvalidPattern) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("invalid pattern: %s", e.Reason)
	}
	return fmt.Sprintf("invalid pattern %s: %s", e.ID, e.Reason)
}

// ErrDuplicatePattern indicates a pattern ID was registered twice
type ErrDuplicatePattern struct {
	ID ID
}

func (e *ErrDuplicatePattern) Error() string {
	return fmt.Sprintf("pattern already registered: %s", e.ID)
}

// ErrPatternNotFound indicates a pattern ID is not in the catalog
type ErrPatternNotFound struct {
	ID ID
}

func (e *ErrPatternNotFound) Error() string {
	return fmt.Sprintf("pattern not found: %s", e.ID)
}
