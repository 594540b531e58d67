package steps

import (
	"context"
	"errors"
	"fmt"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/craftplan-go/internal/domain/resource"
	"github.com/andrescamacho/craftplan-go/internal/domain/storage"
)

var bddSource = storage.ActionSource{Actor: "bdd", Machine: "storage-steps"}

// storageContext holds state for memory storage scenarios
type storageContext struct {
	store   *storage.MemoryStorage
	checked *storage.CheckedStorage
	moved   int64
	err     error
}

func (sc *storageContext) reset() {
	sc.store = nil
	sc.checked = nil
	sc.moved = 0
	sc.err = nil
}

// InitializeStorageScenario registers memory storage steps
func InitializeStorageScenario(ctx *godog.ScenarioContext) {
	sc := &storageContext{}

	ctx.Before(func(ctx context.Context, s *godog.Scenario) (context.Context, error) {
		sc.reset()
		return ctx, nil
	})

	ctx.Step(`^a memory storage with capacity (\d+)$`, sc.aMemoryStorageWithCapacity)
	ctx.Step(`^a memory storage with capacity (\d+) accepting only "([^"]*)"$`, sc.aMemoryStorageAcceptingOnly)
	ctx.Step(`^the storage holds:$`, sc.theStorageHolds)
	ctx.Step(`^I insert (\d+) of "([^"]*)" in "([^"]*)" mode$`, sc.iInsert)
	ctx.Step(`^I extract (\d+) of "([^"]*)" in "([^"]*)" mode$`, sc.iExtract)
	ctx.Step(`^the storage reports (\d+) moved$`, sc.theStorageReportsMoved)
	ctx.Step(`^the storage holds (\d+) of "([^"]*)"$`, sc.theStorageHoldsAmount)
	ctx.Step(`^the storage holds (\d+) units in total$`, sc.theStorageHoldsInTotal)
	ctx.Step(`^the storage lists stacks in key order:$`, sc.theStorageListsStacks)
	ctx.Step(`^the storage reports (\d+) extracted for every request$`, sc.theStorageOverReports)
	ctx.Step(`^the extraction fails with a storage mismatch$`, sc.theExtractionFailsWithMismatch)
}

func (sc *storageContext) aMemoryStorageWithCapacity(capacity int64) error {
	store, err := storage.NewMemoryStorage(capacity)
	if err != nil {
		return err
	}
	sc.store = store
	sc.checked = storage.NewCheckedStorage(store)
	return nil
}

func (sc *storageContext) aMemoryStorageAcceptingOnly(capacity int64, family string) error {
	store, err := storage.NewMemoryStorage(capacity, resource.TypeFamily(family))
	if err != nil {
		return err
	}
	sc.store = store
	sc.checked = storage.NewCheckedStorage(store)
	return nil
}

func (sc *storageContext) theStorageHolds(table *godog.Table) error {
	stock, err := counterFromTable(table)
	if err != nil {
		return err
	}
	for _, stack := range stock.Stacks() {
		if _, err := sc.store.Insert(context.Background(), stack.Key, stack.Amount, resource.Modulate, bddSource); err != nil {
			return err
		}
	}
	return nil
}

func (sc *storageContext) iInsert(amount int64, rawKey, rawMode string) error {
	key, mode, err := parseKeyAndMode(rawKey, rawMode)
	if err != nil {
		return err
	}
	sc.moved, sc.err = sc.checked.Insert(context.Background(), key, amount, mode, bddSource)
	return nil
}

func (sc *storageContext) iExtract(amount int64, rawKey, rawMode string) error {
	key, mode, err := parseKeyAndMode(rawKey, rawMode)
	if err != nil {
		return err
	}
	sc.moved, sc.err = sc.checked.Extract(context.Background(), key, amount, mode, bddSource)
	return nil
}

func (sc *storageContext) theStorageReportsMoved(expected int64) error {
	if sc.err != nil {
		return fmt.Errorf("unexpected storage error: %w", sc.err)
	}
	if sc.moved != expected {
		return fmt.Errorf("expected %d moved, got %d", expected, sc.moved)
	}
	return nil
}

func (sc *storageContext) theStorageHoldsAmount(expected int64, rawKey string) error {
	key, err := resource.ParseKey(rawKey)
	if err != nil {
		return err
	}
	held, err := sc.store.Peek(context.Background(), key)
	if err != nil {
		return err
	}
	if held != expected {
		return fmt.Errorf("expected %d of %s, storage holds %d", expected, key, held)
	}
	return nil
}

func (sc *storageContext) theStorageHoldsInTotal(expected int64) error {
	if total := sc.store.TotalUnits(); total != expected {
		return fmt.Errorf("expected %d units in total, got %d", expected, total)
	}
	return nil
}

func (sc *storageContext) theStorageListsStacks(table *godog.Table) error {
	stacks, err := sc.store.AvailableStacks(context.Background())
	if err != nil {
		return err
	}
	rows := dataRows(table)
	if len(stacks) != len(rows) {
		return fmt.Errorf("expected %d stacks, got %d: %v", len(rows), len(stacks), stacks)
	}
	for i, row := range rows {
		want := cellValue(table, row, "key")
		if stacks[i].Key.String() != want {
			return fmt.Errorf("stack %d: expected %s, got %s", i, want, stacks[i].Key)
		}
		if got := fmt.Sprint(stacks[i].Amount); got != cellValue(table, row, "amount") {
			return fmt.Errorf("stack %d (%s): expected amount %s, got %s", i, want, cellValue(table, row, "amount"), got)
		}
	}
	return nil
}

func (sc *storageContext) theStorageOverReports(extra int64) error {
	sc.checked = storage.NewCheckedStorage(&overReportingStorage{MemoryStorage: sc.store, reported: extra})
	return nil
}

func (sc *storageContext) theExtractionFailsWithMismatch() error {
	var mismatch *storage.StorageMutationMismatchError
	if !errors.As(sc.err, &mismatch) {
		return fmt.Errorf("expected StorageMutationMismatchError, got %v", sc.err)
	}
	return nil
}

// overReportingStorage claims a fixed amount for every extraction
type overReportingStorage struct {
	*storage.MemoryStorage
	reported int64
}

func (s *overReportingStorage) Extract(ctx context.Context, key resource.Key, amount int64, mode resource.Mode, src storage.ActionSource) (int64, error) {
	return s.reported, nil
}

func parseKeyAndMode(rawKey, rawMode string) (resource.Key, resource.Mode, error) {
	key, err := resource.ParseKey(rawKey)
	if err != nil {
		return resource.Key{}, "", err
	}
	mode, err := resource.ParseMode(rawMode)
	if err != nil {
		return resource.Key{}, "", err
	}
	return key, mode, nil
}
