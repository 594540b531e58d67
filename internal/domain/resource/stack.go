package resource

import "fmt"

// GenericStack pairs a resource key with an amount
type GenericStack struct {
	Key    Key
	Amount int64
}

// NewGenericStack creates a stack, rejecting non-positive amounts
func NewGenericStack(key Key, amount int64) (GenericStack, error) {
	if key.IsZero() {
		return GenericStack{}, fmt.Errorf("stack key cannot be empty")
	}
	if amount <= 0 {
		return GenericStack{}, fmt.Errorf("stack amount must be positive, got %d for %s", amount, key)
	}
	return GenericStack{Key: key, Amount: amount}, nil
}

// IsPresent returns true if the stack holds a positive amount
func (s GenericStack) IsPresent() bool {
	return s.Amount > 0
}

func (s GenericStack) String() string {
	return fmt.Sprintf("%dx %s", s.Amount, s.Key)
}
