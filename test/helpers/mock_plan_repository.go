package helpers

import (
	"context"
	"sort"
	"sync"

	"github.com/andrescamacho/craftplan-go/internal/domain/crafting"
)

// MockPlanRepository is an in-memory crafting.PlanRepository
type MockPlanRepository struct {
	mu      sync.Mutex
	records map[string]*crafting.PlanRecord
	saveErr error
}

// NewMockPlanRepository creates an empty repository
func NewMockPlanRepository() *MockPlanRepository {
	return &MockPlanRepository{records: make(map[string]*crafting.PlanRecord)}
}

// Save implements crafting.PlanRepository
func (m *MockPlanRepository) Save(ctx context.Context, record *crafting.PlanRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.records[record.ID] = record
	return nil
}

// FindByID implements crafting.PlanRepository
func (m *MockPlanRepository) FindByID(ctx context.Context, id string) (*crafting.PlanRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[id]
	if !ok {
		return nil, &crafting.ErrPlanNotFound{ID: id}
	}
	return record, nil
}

// ListRecent implements crafting.PlanRepository
func (m *MockPlanRepository) ListRecent(ctx context.Context, limit int) ([]*crafting.PlanRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*crafting.PlanRecord, 0, len(m.records))
	for _, r := range m.records {
		result = append(result, r)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].PlannedAt.Equal(result[j].PlannedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].PlannedAt.After(result[j].PlannedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// SetSaveError makes every Save fail with err
func (m *MockPlanRepository) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}

// Count returns the number of stored records
func (m *MockPlanRepository) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

var _ crafting.PlanRepository = (*MockPlanRepository)(nil)
