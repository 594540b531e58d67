package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/andrescamacho/craftplan-go/internal/domain/resource"
	"github.com/andrescamacho/craftplan-go/internal/domain/shared"
	"github.com/andrescamacho/craftplan-go/internal/domain/storage"
)

// GormStorage is a database-backed network storage.
//
// Every Modulate mutation runs in a transaction together with its audit row;
// Simulate only reads.
type GormStorage struct {
	db        *gorm.DB
	storageID string
	capacity  int64 // 0 means unlimited
	clock     shared.Clock
}

var _ storage.Storage = (*GormStorage)(nil)

// NewGormStorage creates a storage view over the rows of storageID.
// If clock is nil, uses RealClock.
func NewGormStorage(db *gorm.DB, storageID string, capacity int64, clock shared.Clock) (*GormStorage, error) {
	if storageID == "" {
		return nil, fmt.Errorf("storage id cannot be empty")
	}
	if capacity < 0 {
		return nil, &storage.ErrInvalidCapacity{Capacity: capacity}
	}
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GormStorage{db: db, storageID: storageID, capacity: capacity, clock: clock}, nil
}

// StorageID returns the storage network identifier
func (s *GormStorage) StorageID() string {
	return s.storageID
}

// Peek implements storage.Storage
func (s *GormStorage) Peek(ctx context.Context, key resource.Key) (int64, error) {
	return s.amountOf(s.db.WithContext(ctx), key)
}

// Insert implements storage.Storage
func (s *GormStorage) Insert(ctx context.Context, key resource.Key, amount int64, mode resource.Mode, src storage.ActionSource) (int64, error) {
	if amount <= 0 {
		return 0, nil
	}

	var accepted int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		accepted = amount
		if s.capacity > 0 {
			total, err := s.totalUnits(tx)
			if err != nil {
				return err
			}
			space := s.capacity - total
			if space <= 0 {
				accepted = 0
				return nil
			}
			if accepted > space {
				accepted = space
			}
		}

		if mode != resource.Modulate {
			return nil
		}
		held, err := s.amountOf(tx, key)
		if err != nil {
			return err
		}
		return s.write(tx, key, held, held+accepted, src)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to insert %s: %w", key, err)
	}
	return accepted, nil
}

// Extract implements storage.Storage
func (s *GormStorage) Extract(ctx context.Context, key resource.Key, amount int64, mode resource.Mode, src storage.ActionSource) (int64, error) {
	if amount <= 0 {
		return 0, nil
	}

	var removed int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		held, err := s.amountOf(tx, key)
		if err != nil {
			return err
		}
		removed = amount
		if removed > held {
			removed = held
		}
		if removed == 0 || mode != resource.Modulate {
			return nil
		}
		return s.write(tx, key, held, held-removed, src)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to extract %s: %w", key, err)
	}
	return removed, nil
}

// AvailableStacks implements storage.Storage
func (s *GormStorage) AvailableStacks(ctx context.Context) ([]resource.GenericStack, error) {
	var models []StoredStackModel
	result := s.db.WithContext(ctx).
		Where("storage_id = ? AND amount > 0", s.storageID).
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list stored stacks: %w", result.Error)
	}

	amounts := make(map[resource.Key]int64, len(models))
	keys := make([]resource.Key, 0, len(models))
	for _, model := range models {
		key, err := resource.ParseKey(model.ResourceKey)
		if err != nil {
			return nil, fmt.Errorf("stored stack %q: %w", model.ResourceKey, err)
		}
		amounts[key] = model.Amount
		keys = append(keys, key)
	}
	resource.SortKeys(keys)

	stacks := make([]resource.GenericStack, len(keys))
	for i, key := range keys {
		stacks[i] = resource.GenericStack{Key: key, Amount: amounts[key]}
	}
	return stacks, nil
}

// Actions returns the audit trail of committed mutations, oldest first
func (s *GormStorage) Actions(ctx context.Context) ([]StorageActionModel, error) {
	var actions []StorageActionModel
	result := s.db.WithContext(ctx).
		Where("storage_id = ?", s.storageID).
		Order("id ASC").
		Find(&actions)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list storage actions: %w", result.Error)
	}
	return actions, nil
}

func (s *GormStorage) amountOf(db *gorm.DB, key resource.Key) (int64, error) {
	var model StoredStackModel
	result := db.Where("storage_id = ? AND resource_key = ?", s.storageID, key.String()).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read stored stack: %w", result.Error)
	}
	return model.Amount, nil
}

func (s *GormStorage) totalUnits(db *gorm.DB) (int64, error) {
	var total int64
	row := db.Model(&StoredStackModel{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("storage_id = ?", s.storageID).
		Row()
	if err := row.Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum stored units: %w", err)
	}
	return total, nil
}

// write moves the stored amount of key from held to next and records the delta
func (s *GormStorage) write(tx *gorm.DB, key resource.Key, held, next int64, src storage.ActionSource) error {
	now := s.clock.Now()
	where := tx.Where("storage_id = ? AND resource_key = ?", s.storageID, key.String())

	switch {
	case next == 0:
		if err := where.Delete(&StoredStackModel{}).Error; err != nil {
			return fmt.Errorf("failed to delete stored stack: %w", err)
		}
	case held == 0:
		row := &StoredStackModel{StorageID: s.storageID, ResourceKey: key.String(), Amount: next, UpdatedAt: now}
		if err := tx.Create(row).Error; err != nil {
			return fmt.Errorf("failed to create stored stack: %w", err)
		}
	default:
		update := map[string]interface{}{"amount": next, "updated_at": now}
		if err := where.Model(&StoredStackModel{}).Updates(update).Error; err != nil {
			return fmt.Errorf("failed to update stored stack: %w", err)
		}
	}

	action := &StorageActionModel{
		StorageID:   s.storageID,
		ResourceKey: key.String(),
		Delta:       next - held,
		Actor:       src.Actor,
		Machine:     src.Machine,
		PerformedAt: now,
	}
	if err := tx.Create(action).Error; err != nil {
		return fmt.Errorf("failed to record storage action: %w", err)
	}
	return nil
}
