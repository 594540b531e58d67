package config

// StorageConfig selects the network storage backend the planner draws from
type StorageConfig struct {
	// Backend: "memory" (seeded from a stock file) or "database"
	Backend string `mapstructure:"backend" yaml:"backend" validate:"required,oneof=memory database"`

	// YAML stock file loaded into memory storage at startup
	SeedPath string `mapstructure:"seed_path" yaml:"seed_path"`

	// Storage network identifier for the database backend
	StorageID string `mapstructure:"storage_id" yaml:"storage_id" validate:"required_if=Backend database"`

	// Unit capacity of memory storage; zero means unbounded
	Capacity int64 `mapstructure:"capacity" yaml:"capacity" validate:"min=0"`
}
