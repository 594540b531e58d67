package config

// CatalogConfig selects where pattern definitions come from
type CatalogConfig struct {
	// Source: "file" reads a YAML catalog, "database" reads imported patterns
	Source string `mapstructure:"source" yaml:"source" validate:"required,oneof=file database"`

	// YAML catalog path (required when source is "file")
	Path string `mapstructure:"path" yaml:"path" validate:"required_if=Source file"`
}
