package helpers

import (
	"gorm.io/gorm"

	"github.com/andrescamacho/craftplan-go/internal/adapters/persistence"
	"github.com/andrescamacho/craftplan-go/internal/domain/shared"
)

// TestRepositories holds real repository instances over the shared test DB
type TestRepositories struct {
	DB       *gorm.DB
	Catalog  *persistence.GormPatternCatalog
	Storage  *persistence.GormStorage
	PlanRepo *persistence.GormPlanRepository
}

// NewTestRepositories creates the repositories for one storage network.
// clock is usually a MockClock in tests.
func NewTestRepositories(storageID string, capacity int64, clock shared.Clock) (*TestRepositories, error) {
	db := SharedTestDB

	store, err := persistence.NewGormStorage(db, storageID, capacity, clock)
	if err != nil {
		return nil, err
	}

	return &TestRepositories{
		DB:       db,
		Catalog:  persistence.NewGormPatternCatalog(db, clock),
		Storage:  store,
		PlanRepo: persistence.NewGormPlanRepository(db),
	}, nil
}
