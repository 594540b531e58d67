package helpers

import (
	"sync"

	"github.com/andrescamacho/craftplan-go/internal/domain/provider"
	"github.com/andrescamacho/craftplan-go/internal/domain/resource"
	"github.com/andrescamacho/craftplan-go/internal/domain/storage"
)

// MockWorld is a test double for provider.World.
// Every position is loaded unless explicitly unloaded.
type MockWorld struct {
	mu       sync.Mutex
	unloaded map[provider.Position]bool
}

// NewMockWorld creates a world where every position is loaded
func NewMockWorld() *MockWorld {
	return &MockWorld{unloaded: make(map[provider.Position]bool)}
}

// IsLoaded implements provider.World
func (w *MockWorld) IsLoaded(pos provider.Position) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return !w.unloaded[pos]
}

// Unload marks a position as no longer ticking
func (w *MockWorld) Unload(pos provider.Position) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.unloaded[pos] = true
}

// Load marks a position as ticking again
func (w *MockWorld) Load(pos provider.Position) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.unloaded, pos)
}

type faceKey struct {
	pos provider.Position
	dir provider.Direction
}

// MockCapabilityLookup is a test double for provider.CapabilityLookup
type MockCapabilityLookup struct {
	mu      sync.Mutex
	storage map[faceKey]storage.Storage
	calls   int
}

// NewMockCapabilityLookup creates a lookup with no capabilities
func NewMockCapabilityLookup() *MockCapabilityLookup {
	return &MockCapabilityLookup{storage: make(map[faceKey]storage.Storage)}
}

// Find implements provider.CapabilityLookup
func (m *MockCapabilityLookup) Find(pos provider.Position, dir provider.Direction) (storage.Storage, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	s, ok := m.storage[faceKey{pos, dir}]
	return s, ok
}

// Expose registers a native capability on one face of a block
func (m *MockCapabilityLookup) Expose(pos provider.Position, dir provider.Direction, s storage.Storage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.storage[faceKey{pos, dir}] = s
}

// Remove drops a native capability
func (m *MockCapabilityLookup) Remove(pos provider.Position, dir provider.Direction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.storage, faceKey{pos, dir})
}

// Calls returns how many lookups were made
func (m *MockCapabilityLookup) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockExternalStrategy is a test double for provider.ExternalStorageStrategy
type MockExternalStrategy struct {
	family resource.TypeFamily

	mu      sync.Mutex
	storage map[faceKey]storage.Storage
}

// NewMockExternalStrategy creates a strategy for one family that wraps nothing
func NewMockExternalStrategy(family resource.TypeFamily) *MockExternalStrategy {
	return &MockExternalStrategy{family: family, storage: make(map[faceKey]storage.Storage)}
}

// Family implements provider.ExternalStorageStrategy
func (m *MockExternalStrategy) Family() resource.TypeFamily {
	return m.family
}

// Wrap implements provider.ExternalStorageStrategy
func (m *MockExternalStrategy) Wrap(pos provider.Position, dir provider.Direction) (storage.Storage, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.storage[faceKey{pos, dir}]
	return s, ok
}

// Attach makes the strategy able to wrap one face of a block
func (m *MockExternalStrategy) Attach(pos provider.Position, dir provider.Direction, s storage.Storage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.storage[faceKey{pos, dir}] = s
}

// Ensure the mocks implement the provider ports
var (
	_ provider.World                   = (*MockWorld)(nil)
	_ provider.CapabilityLookup        = (*MockCapabilityLookup)(nil)
	_ provider.ExternalStorageStrategy = (*MockExternalStrategy)(nil)
)
