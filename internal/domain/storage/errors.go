package storage

import (
	"fmt"

	"github.com/andrescamacho/craftplan-go/internal/domain/resource"
)

// StorageMutationMismatchError indicates a storage returned an amount outside
// [0, requested]. This is a contract violation and aborts any commit in progress.
type StorageMutationMismatchError struct {
	Operation string // "insert" or "extract"
	Key       resource.Key
	Requested int64
	Returned  int64
	Mode      resource.Mode
}

func (e *StorageMutationMismatchError) Error() string {
	return fmt.Sprintf("storage contract violation: %s %s of %d %s returned %d",
		e.Mode, e.Operation, e.Requested, e.Key, e.Returned)
}

// ErrInvalidCapacity indicates a storage was configured with a negative capacity
type ErrInvalidCapacity struct {
	Capacity int64
}

func (e *ErrInvalidCapacity) Error() string {
	return fmt.Sprintf("storage capacity cannot be negative: %d", e.Capacity)
}
