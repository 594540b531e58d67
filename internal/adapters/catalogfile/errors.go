package catalogfile

import (
	"fmt"
	"strings"
)

// ErrInvalidDocument reports every problem found in a catalog or stock file
type ErrInvalidDocument struct {
	Path     string
	Problems []string
}

func (e *ErrInvalidDocument) Error() string {
	return fmt.Sprintf("invalid document %s:\n  %s", e.Path, strings.Join(e.Problems, "\n  "))
}
