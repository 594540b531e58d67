package helpers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/andrescamacho/craftplan-go/internal/adapters/persistence"
	"github.com/andrescamacho/craftplan-go/internal/domain/resource"
	"github.com/andrescamacho/craftplan-go/internal/domain/shared"
	"github.com/andrescamacho/craftplan-go/internal/domain/storage"
	"github.com/andrescamacho/craftplan-go/internal/infrastructure/database"
)

// SeedSource attributes stock inserted by test fixtures
var SeedSource = storage.ActionSource{Actor: "fixture", Machine: "seed"}

// NewTestDB opens a migrated in-memory SQLite database closed at test cleanup
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.NewTestConnection()
	require.NoError(t, err, "failed to create test database")
	t.Cleanup(func() {
		_ = database.Close(db)
	})
	return db
}

// NewTestStorage creates a database-backed storage network on a fresh database
// and inserts the given stock
func NewTestStorage(t *testing.T, storageID string, capacity int64, clock shared.Clock, stock ...resource.GenericStack) *persistence.GormStorage {
	t.Helper()

	s, err := persistence.NewGormStorage(NewTestDB(t), storageID, capacity, clock)
	require.NoError(t, err)
	for _, stack := range stock {
		inserted, err := s.Insert(context.Background(), stack.Key, stack.Amount, resource.Modulate, SeedSource)
		require.NoError(t, err)
		require.Equal(t, stack.Amount, inserted, "seed %s did not fit", stack)
	}
	return s
}
