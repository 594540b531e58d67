package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/andrescamacho/craftplan-go/internal/domain/crafting"
	"github.com/andrescamacho/craftplan-go/internal/domain/resource"
)

// GormPlanRepository implements crafting.PlanRepository using GORM
type GormPlanRepository struct {
	db *gorm.DB
}

var _ crafting.PlanRepository = (*GormPlanRepository)(nil)

// NewGormPlanRepository creates a new GORM plan repository
func NewGormPlanRepository(db *gorm.DB) *GormPlanRepository {
	return &GormPlanRepository{db: db}
}

// Save persists a plan record, replacing any record with the same ID
func (r *GormPlanRepository) Save(ctx context.Context, record *crafting.PlanRecord) error {
	model, err := r.recordToModel(record)
	if err != nil {
		return fmt.Errorf("failed to convert plan to model: %w", err)
	}

	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return fmt.Errorf("failed to save plan: %w", err)
	}
	return nil
}

// FindByID retrieves a plan record by ID
func (r *GormPlanRepository) FindByID(ctx context.Context, id string) (*crafting.PlanRecord, error) {
	var model CraftingPlanModel
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, &crafting.ErrPlanNotFound{ID: id}
		}
		return nil, fmt.Errorf("failed to find plan: %w", result.Error)
	}

	return r.modelToRecord(&model)
}

// ListRecent returns up to limit records, newest first
func (r *GormPlanRepository) ListRecent(ctx context.Context, limit int) ([]*crafting.PlanRecord, error) {
	var models []CraftingPlanModel
	result := r.db.WithContext(ctx).
		Order("planned_at DESC, id ASC").
		Limit(limit).
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list plans: %w", result.Error)
	}

	records := make([]*crafting.PlanRecord, 0, len(models))
	for i := range models {
		record, err := r.modelToRecord(&models[i])
		if err != nil {
			continue // Skip unreadable rows
		}
		records = append(records, record)
	}
	return records, nil
}

func (r *GormPlanRepository) recordToModel(record *crafting.PlanRecord) (*CraftingPlanModel, error) {
	var debug string
	if len(record.Debug) > 0 {
		data, err := json.Marshal(record.Debug)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal debug export: %w", err)
		}
		debug = string(data)
	}

	return &CraftingPlanModel{
		ID:            record.ID,
		FinalKey:      record.FinalOutput.Key.String(),
		FinalAmount:   record.FinalOutput.Amount,
		Mode:          string(record.Mode),
		Outcome:       string(record.Outcome),
		Bytes:         record.Bytes,
		Simulation:    record.Simulation,
		MultiplePaths: record.MultiplePaths,
		MissingTotal:  record.MissingTotal,
		Debug:         debug,
		PlannedAt:     record.PlannedAt,
	}, nil
}

func (r *GormPlanRepository) modelToRecord(model *CraftingPlanModel) (*crafting.PlanRecord, error) {
	key, err := resource.ParseKey(model.FinalKey)
	if err != nil {
		return nil, fmt.Errorf("plan %s: %w", model.ID, err)
	}

	var debug map[string]any
	if model.Debug != "" {
		if err := json.Unmarshal([]byte(model.Debug), &debug); err != nil {
			return nil, fmt.Errorf("failed to unmarshal debug export of %s: %w", model.ID, err)
		}
	}

	return &crafting.PlanRecord{
		ID:            model.ID,
		FinalOutput:   resource.GenericStack{Key: key, Amount: model.FinalAmount},
		Mode:          resource.Mode(model.Mode),
		Outcome:       crafting.Outcome(model.Outcome),
		Bytes:         model.Bytes,
		Simulation:    model.Simulation,
		MultiplePaths: model.MultiplePaths,
		MissingTotal:  model.MissingTotal,
		Debug:         debug,
		PlannedAt:     model.PlannedAt,
	}, nil
}
