package config

// PlannerConfig holds the defaults applied to every planning run
type PlannerConfig struct {
	// Cost ceiling in bytes; zero or negative means unlimited
	CostCeiling int64 `mapstructure:"cost_ceiling" yaml:"cost_ceiling"`

	// Bytes charged per pattern invocation
	BytesPerInvocation int64 `mapstructure:"bytes_per_invocation" yaml:"bytes_per_invocation" validate:"min=1"`

	// Input candidate selection: first-available or declared-order
	SlotPolicy string `mapstructure:"slot_policy" yaml:"slot_policy" validate:"required,oneof=first-available declared-order"`

	// Alternate pattern handling: first or backtrack
	PathStrategy string `mapstructure:"path_strategy" yaml:"path_strategy" validate:"required,oneof=first backtrack"`

	// Commit MODULATE runs even when some inputs are missing
	CommitPartial bool `mapstructure:"commit_partial" yaml:"commit_partial"`

	// Actor recorded on storage mutations
	Actor string `mapstructure:"actor" yaml:"actor"`
}
