package catalogfile

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/andrescamacho/craftplan-go/internal/domain/resource"
	"github.com/andrescamacho/craftplan-go/internal/domain/storage"
)

type stockDocument struct {
	Stock []StackDef `yaml:"stock"`
}

// ReadStock reads and validates a YAML stock file.
// Repeated keys are summed.
func ReadStock(path string) ([]resource.GenericStack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stock: %w", err)
	}
	return ParseStock(path, data)
}

// ParseStock validates stock YAML and returns its stacks in key order
func ParseStock(path string, data []byte) ([]resource.GenericStack, error) {
	if err := validateDocument(stockSchema, path, data); err != nil {
		return nil, err
	}

	var doc stockDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse stock: %w", err)
	}

	var problems []string
	counter := resource.NewKeyCounter()
	for i, def := range doc.Stock {
		stack, err := def.toStack()
		if err != nil {
			problems = append(problems, fmt.Sprintf("/stock/%d: %v", i, err))
			continue
		}
		counter.Add(stack.Key, stack.Amount)
	}
	if len(problems) > 0 {
		return nil, &ErrInvalidDocument{Path: path, Problems: problems}
	}
	return counter.Stacks(), nil
}

// SeedStorage inserts every stack into store, failing if any is only partly accepted
func SeedStorage(ctx context.Context, store storage.Storage, stacks []resource.GenericStack, src storage.ActionSource) error {
	for _, stack := range stacks {
		accepted, err := store.Insert(ctx, stack.Key, stack.Amount, resource.Modulate, src)
		if err != nil {
			return fmt.Errorf("seed %s: %w", stack.Key, err)
		}
		if accepted != stack.Amount {
			return fmt.Errorf("seed %s: storage accepted %d of %d", stack.Key, accepted, stack.Amount)
		}
	}
	return nil
}
