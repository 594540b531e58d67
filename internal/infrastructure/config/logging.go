package config

// LoggingConfig selects where planner and daemon log lines go
type LoggingConfig struct {
	// debug adds provider target resolution and per-request traces
	Level  string `mapstructure:"level" yaml:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"required,oneof=json text"`
	Output string `mapstructure:"output" yaml:"output" validate:"required,oneof=stdout stderr file"`

	// FilePath is appended to, never truncated
	FilePath string `mapstructure:"file_path" yaml:"file_path" validate:"required_if=Output file"`
}
