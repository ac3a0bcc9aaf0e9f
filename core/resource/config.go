package resource

// Config holds configuration for the local resource tree.
type Config struct {
	// Root is the directory holding source-language resource files.
	Root string `mapstructure:"root" default:"."`
	// Patterns select resource files by relative path or base name.
	Patterns []string `mapstructure:"patterns" default:"*.properties,*.json,*.yml,*.yaml,*.toml,*.po"`
	// OutputPattern places downloaded translations, relative to OutputRoot.
	OutputPattern string `mapstructure:"output_pattern" default:"%locale%/%original_path%"`
	// OutputRoot is the directory translations are written under and the bundle is built from.
	OutputRoot string `mapstructure:"output_root" default:"build/translations"`
}
