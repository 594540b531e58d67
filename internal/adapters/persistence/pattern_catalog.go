package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/andrescamacho/craftplan-go/internal/domain/pattern"
	"github.com/andrescamacho/craftplan-go/internal/domain/resource"
	"github.com/andrescamacho/craftplan-go/internal/domain/shared"
)

type inputSlotJSON struct {
	Candidates []string `json:"candidates"`
	Amount     int64    `json:"amount"`
}

type stackJSON struct {
	Key    string `json:"key"`
	Amount int64  `json:"amount"`
}

// GormPatternCatalog is a database-backed pattern catalog.
// It implements pattern.Catalog and pattern.Lookup.
type GormPatternCatalog struct {
	db    *gorm.DB
	clock shared.Clock
}

var _ pattern.Source = (*GormPatternCatalog)(nil)

// NewGormPatternCatalog creates a new catalog over db.
// If clock is nil, uses RealClock.
func NewGormPatternCatalog(db *gorm.DB, clock shared.Clock) *GormPatternCatalog {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GormPatternCatalog{db: db, clock: clock}
}

// PatternsProducing implements pattern.Catalog
func (c *GormPatternCatalog) PatternsProducing(ctx context.Context, key resource.Key) ([]*pattern.Details, error) {
	var models []PatternModel
	result := c.db.WithContext(ctx).
		Joins("JOIN pattern_output_keys ON pattern_output_keys.pattern_id = patterns.id").
		Where("pattern_output_keys.output_key = ?", key.String()).
		Order("patterns.priority ASC, patterns.sequence ASC").
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to find patterns producing %s: %w", key, result.Error)
	}

	return c.modelsToDetails(models)
}

// Get implements pattern.Lookup
func (c *GormPatternCatalog) Get(ctx context.Context, id pattern.ID) (*pattern.Details, error) {
	var model PatternModel
	result := c.db.WithContext(ctx).Where("id = ?", string(id)).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, &pattern.ErrPatternNotFound{ID: id}
		}
		return nil, fmt.Errorf("failed to find pattern: %w", result.Error)
	}

	return modelToDetails(&model)
}

// List returns every pattern in priority then registration order
func (c *GormPatternCatalog) List(ctx context.Context) ([]*pattern.Details, error) {
	var models []PatternModel
	result := c.db.WithContext(ctx).Order("priority ASC, sequence ASC").Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list patterns: %w", result.Error)
	}

	return c.modelsToDetails(models)
}

// Register adds a single new pattern; an existing ID is an ErrDuplicatePattern
func (c *GormPatternCatalog) Register(ctx context.Context, p *pattern.Details) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&PatternModel{}).Where("id = ?", string(p.ID())).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check pattern: %w", err)
		}
		if count > 0 {
			return &pattern.ErrDuplicatePattern{ID: p.ID()}
		}
		return c.insert(tx, p)
	})
}

// Import replaces the definitions of the given patterns in one transaction.
// Patterns already present keep their registration order.
func (c *GormPatternCatalog) Import(ctx context.Context, patterns []*pattern.Details) (int, error) {
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, p := range patterns {
			var existing PatternModel
			result := tx.Where("id = ?", string(p.ID())).Limit(1).Find(&existing)
			if result.Error != nil {
				return fmt.Errorf("failed to check pattern %s: %w", p.ID(), result.Error)
			}
			if result.RowsAffected == 0 {
				if err := c.insert(tx, p); err != nil {
					return err
				}
				continue
			}

			model, err := detailsToModel(p)
			if err != nil {
				return err
			}
			model.Sequence = existing.Sequence
			model.ImportedAt = c.clock.Now()
			if err := tx.Save(model).Error; err != nil {
				return fmt.Errorf("failed to update pattern %s: %w", p.ID(), err)
			}
			if err := replaceOutputKeys(tx, p); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(patterns), nil
}

// Count returns the number of stored patterns
func (c *GormPatternCatalog) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := c.db.WithContext(ctx).Model(&PatternModel{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count patterns: %w", err)
	}
	return count, nil
}

func (c *GormPatternCatalog) insert(tx *gorm.DB, p *pattern.Details) error {
	model, err := detailsToModel(p)
	if err != nil {
		return err
	}

	var maxSeq int64
	if err := tx.Model(&PatternModel{}).Select("COALESCE(MAX(sequence), -1)").Row().Scan(&maxSeq); err != nil {
		return fmt.Errorf("failed to read pattern sequence: %w", err)
	}
	model.Sequence = maxSeq + 1
	model.ImportedAt = c.clock.Now()

	if err := tx.Create(model).Error; err != nil {
		return fmt.Errorf("failed to create pattern %s: %w", p.ID(), err)
	}
	return replaceOutputKeys(tx, p)
}

func replaceOutputKeys(tx *gorm.DB, p *pattern.Details) error {
	if err := tx.Where("pattern_id = ?", string(p.ID())).Delete(&PatternOutputKeyModel{}).Error; err != nil {
		return fmt.Errorf("failed to clear output keys of %s: %w", p.ID(), err)
	}

	outputs := p.Outputs()
	rows := make([]PatternOutputKeyModel, len(outputs))
	for i, out := range outputs {
		rows[i] = PatternOutputKeyModel{PatternID: string(p.ID()), OutputKey: out.Key.String()}
	}
	if err := tx.Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to index outputs of %s: %w", p.ID(), err)
	}
	return nil
}

func (c *GormPatternCatalog) modelsToDetails(models []PatternModel) ([]*pattern.Details, error) {
	patterns := make([]*pattern.Details, 0, len(models))
	for i := range models {
		p, err := modelToDetails(&models[i])
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}
	return patterns, nil
}

func detailsToModel(p *pattern.Details) (*PatternModel, error) {
	slots := p.Inputs()
	inputs := make([]inputSlotJSON, len(slots))
	for i, slot := range slots {
		candidates := make([]string, len(slot.Candidates))
		for j, candidate := range slot.Candidates {
			candidates[j] = candidate.String()
		}
		inputs[i] = inputSlotJSON{Candidates: candidates, Amount: slot.Amount}
	}

	stacks := p.Outputs()
	outputs := make([]stackJSON, len(stacks))
	for i, out := range stacks {
		outputs[i] = stackJSON{Key: out.Key.String(), Amount: out.Amount}
	}

	inputsJSON, err := json.Marshal(inputs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal inputs of %s: %w", p.ID(), err)
	}
	outputsJSON, err := json.Marshal(outputs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal outputs of %s: %w", p.ID(), err)
	}

	return &PatternModel{
		ID:             string(p.ID()),
		Priority:       p.Priority(),
		ProcessingTime: p.ProcessingTime(),
		Inputs:         string(inputsJSON),
		Outputs:        string(outputsJSON),
	}, nil
}

func modelToDetails(model *PatternModel) (*pattern.Details, error) {
	var inputs []inputSlotJSON
	if err := json.Unmarshal([]byte(model.Inputs), &inputs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal inputs of %s: %w", model.ID, err)
	}
	var outputs []stackJSON
	if err := json.Unmarshal([]byte(model.Outputs), &outputs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal outputs of %s: %w", model.ID, err)
	}

	slots := make([]pattern.InputSlot, len(inputs))
	for i, in := range inputs {
		candidates := make([]resource.Key, len(in.Candidates))
		for j, raw := range in.Candidates {
			key, err := resource.ParseKey(raw)
			if err != nil {
				return nil, fmt.Errorf("pattern %s: %w", model.ID, err)
			}
			candidates[j] = key
		}
		slots[i] = pattern.InputSlot{Candidates: candidates, Amount: in.Amount}
	}

	stacks := make([]resource.GenericStack, len(outputs))
	for i, out := range outputs {
		key, err := resource.ParseKey(out.Key)
		if err != nil {
			return nil, fmt.Errorf("pattern %s: %w", model.ID, err)
		}
		stacks[i] = resource.GenericStack{Key: key, Amount: out.Amount}
	}

	return pattern.NewDetails(pattern.ID(model.ID), model.Priority, slots, stacks, model.ProcessingTime)
}
