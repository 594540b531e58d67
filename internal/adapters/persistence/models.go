package persistence

import (
	"time"
)

// PatternModel represents the patterns table
type PatternModel struct {
	ID             string    `gorm:"column:id;primaryKey"`
	Priority       int       `gorm:"column:priority;not null;default:0"`
	Sequence       int64     `gorm:"column:sequence;not null;index"` // registration order among equal priorities
	ProcessingTime int64     `gorm:"column:processing_time;not null;default:0"`
	Inputs         string    `gorm:"column:inputs;type:text;not null"`  // JSON array of input slots
	Outputs        string    `gorm:"column:outputs;type:text;not null"` // JSON array of output stacks
	ImportedAt     time.Time `gorm:"column:imported_at;not null"`
}

func (PatternModel) TableName() string {
	return "patterns"
}

// PatternOutputKeyModel indexes patterns by every key they produce
type PatternOutputKeyModel struct {
	PatternID string `gorm:"column:pattern_id;primaryKey"`
	OutputKey string `gorm:"column:output_key;primaryKey;index"`
}

func (PatternOutputKeyModel) TableName() string {
	return "pattern_output_keys"
}

// StoredStackModel represents the stored_stacks table
// Primary key is (storage_id, resource_key); rows never hold a zero amount
type StoredStackModel struct {
	StorageID   string    `gorm:"column:storage_id;primaryKey"`
	ResourceKey string    `gorm:"column:resource_key;primaryKey"`
	Amount      int64     `gorm:"column:amount;not null"`
	UpdatedAt   time.Time `gorm:"column:updated_at;not null"`
}

func (StoredStackModel) TableName() string {
	return "stored_stacks"
}

// StorageActionModel is the audit trail of committed storage mutations
type StorageActionModel struct {
	ID          int       `gorm:"column:id;primaryKey;autoIncrement"`
	StorageID   string    `gorm:"column:storage_id;not null;index"`
	ResourceKey string    `gorm:"column:resource_key;not null"`
	Delta       int64     `gorm:"column:delta;not null"` // positive for insert, negative for extract
	Actor       string    `gorm:"column:actor"`
	Machine     string    `gorm:"column:machine"`
	PerformedAt time.Time `gorm:"column:performed_at;not null"`
}

func (StorageActionModel) TableName() string {
	return "storage_actions"
}

// CraftingPlanModel represents the crafting_plans table
type CraftingPlanModel struct {
	ID            string    `gorm:"column:id;primaryKey"`
	FinalKey      string    `gorm:"column:final_key;not null;index"`
	FinalAmount   int64     `gorm:"column:final_amount;not null"`
	Mode          string    `gorm:"column:mode;not null"`
	Outcome       string    `gorm:"column:outcome;not null"`
	Bytes         int64     `gorm:"column:bytes;not null"`
	Simulation    bool      `gorm:"column:simulation;not null"`
	MultiplePaths bool      `gorm:"column:multiple_paths;not null"`
	MissingTotal  int64     `gorm:"column:missing_total;not null;default:0"`
	Debug         string    `gorm:"column:debug;type:text"` // JSON debug export tree
	PlannedAt     time.Time `gorm:"column:planned_at;not null;index"`
}

func (CraftingPlanModel) TableName() string {
	return "crafting_plans"
}

// AllModels lists every model for auto-migration
func AllModels() []interface{} {
	return []interface{}{
		&PatternModel{},
		&PatternOutputKeyModel{},
		&StoredStackModel{},
		&StorageActionModel{},
		&CraftingPlanModel{},
	}
}
