package crafting

import (
	"context"
	"fmt"
	"time"

	"github.com/andrescamacho/craftplan-go/internal/domain/resource"
)

// PlanRecord is the stored summary of a frozen plan.
// The full breakdown is kept as the debug export tree.
type PlanRecord struct {
	ID            string
	FinalOutput   resource.GenericStack
	Mode          resource.Mode
	Outcome       Outcome
	Bytes         int64
	Simulation    bool
	MultiplePaths bool
	MissingTotal  int64
	Debug         map[string]any
	PlannedAt     time.Time
}

// NewPlanRecord captures a plan under id
func NewPlanRecord(id string, plan *CraftingPlan) *PlanRecord {
	return &PlanRecord{
		ID:            id,
		FinalOutput:   plan.FinalOutput(),
		Mode:          plan.Mode(),
		Outcome:       plan.Outcome(),
		Bytes:         plan.Bytes(),
		Simulation:    plan.Simulation(),
		MultiplePaths: plan.MultiplePaths(),
		MissingTotal:  plan.MissingItems().Total(),
		Debug:         plan.ExportDebug(),
		PlannedAt:     plan.PlannedAt(),
	}
}

// PlanRepository stores plan records
type PlanRepository interface {
	Save(ctx context.Context, record *PlanRecord) error
	FindByID(ctx context.Context, id string) (*PlanRecord, error)
	ListRecent(ctx context.Context, limit int) ([]*PlanRecord, error)
}

// ErrPlanNotFound indicates no plan record exists under an ID
type ErrPlanNotFound struct {
	ID string
}

func (e *ErrPlanNotFound) Error() string {
	return fmt.Sprintf("crafting plan not found: %s", e.ID)
}
