// Package config defines the options the core pipeline consumes, as
// documented by the CLI contract: visibility, enum handling, OData
// optionality overrides, format customization, and operation filtering.
package config

// Visibility controls the access modifier applied uniformly to generated
// items. Go has no true file-private scope, so File only affects which
// generated file an item lands in, not its Go-level visibility.
type Visibility int

const (
	// VisibilityPublic exports every generated identifier.
	VisibilityPublic Visibility = iota
	// VisibilityCrate renders identifiers package-private (Go stand-in for "crate-visible").
	VisibilityCrate
	// VisibilityFile renders identifiers package-private and places them in their own file.
	VisibilityFile
)

// EnumMode selects the case policy used by the enum converter.
type EnumMode int

const (
	// EnumModeMerge collapses sanitization collisions into one canonical variant (default).
	EnumModeMerge EnumMode = iota
	// EnumModePreserve keeps every wire value as a distinct variant, suffixing on collision.
	EnumModePreserve
	// EnumModeRelaxed behaves like Merge but matches incoming wire values case-insensitively.
	EnumModeRelaxed
)

// GeneratorConfig configures one [Generator] run. Construct with
// [DefaultConfig] and [Option] functions, or build the struct directly.
type GeneratorConfig struct {
	// InputPath is the path to the OpenAPI document (JSON or YAML, auto-detected).
	InputPath string

	// OutputPath is a file (for types/client) or directory (for client-mod/server-mod).
	OutputPath string

	// Visibility is applied uniformly to generated items.
	Visibility Visibility

	// EnumMode selects Merge, Preserve, or Relaxed per §4.3.4.
	EnumMode EnumMode

	// Helpers, when true, emits enum helper constructors.
	Helpers bool

	// ODataSupport enables the per-field optionality override for @odata.* keys.
	ODataSupport bool

	// Customize maps a format key (e.g. "date_time") to a target-language type
	// path used for serde-as, overriding the default primitive mapping.
	Customize map[string]string

	// Only restricts generation to these operation ids. Mutually exclusive with Exclude.
	Only []string

	// Exclude removes these operation ids from generation. Mutually exclusive with Only.
	Exclude []string

	// AllSchemas, when true, emits schemas unreachable from any selected operation.
	AllSchemas bool

	// AllHeaders, when true, emits header-name constants for every component-level
	// header, not only those referenced by a selected operation.
	AllHeaders bool

	// Builders, when true, emits builder-style constructors for record types.
	Builders bool

	// ValidateMetaSchema records that the raw input document is to be checked
	// against an OpenAPI 3.1 meta-schema before parsing. The Generator does
	// not read it; the check itself is document.ValidateMetaSchema, which the
	// CLI calls before loading.
	ValidateMetaSchema bool
}

// DefaultConfig returns the default generator configuration.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Visibility: VisibilityPublic,
		EnumMode:   EnumModeMerge,
		Customize:  map[string]string{},
	}
}

// Option configures a [GeneratorConfig] in place.
type Option func(*GeneratorConfig)

// WithInput sets the input document path.
func WithInput(path string) Option {
	return func(c *GeneratorConfig) { c.InputPath = path }
}

// WithOutput sets the output path.
func WithOutput(path string) Option {
	return func(c *GeneratorConfig) { c.OutputPath = path }
}

// WithVisibility sets the visibility applied to generated items.
func WithVisibility(v Visibility) Option {
	return func(c *GeneratorConfig) { c.Visibility = v }
}

// WithEnumMode sets the enum case policy.
func WithEnumMode(m EnumMode) Option {
	return func(c *GeneratorConfig) { c.EnumMode = m }
}

// WithHelpers enables enum helper constructors.
func WithHelpers(enabled bool) Option {
	return func(c *GeneratorConfig) { c.Helpers = enabled }
}

// WithODataSupport enables the @odata.* optionality override.
func WithODataSupport(enabled bool) Option {
	return func(c *GeneratorConfig) { c.ODataSupport = enabled }
}

// WithCustomize sets a format-key to type-path override.
func WithCustomize(formatKey, typePath string) Option {
	return func(c *GeneratorConfig) {
		if c.Customize == nil {
			c.Customize = map[string]string{}
		}
		c.Customize[formatKey] = typePath
	}
}

// WithOnly restricts generation to the given operation ids.
func WithOnly(ids ...string) Option {
	return func(c *GeneratorConfig) { c.Only = ids }
}

// WithExclude removes the given operation ids from generation.
func WithExclude(ids ...string) Option {
	return func(c *GeneratorConfig) { c.Exclude = ids }
}

// WithAllSchemas emits schemas unreachable from any selected operation.
func WithAllSchemas(enabled bool) Option {
	return func(c *GeneratorConfig) { c.AllSchemas = enabled }
}

// WithAllHeaders emits header constants for every component-level header.
func WithAllHeaders(enabled bool) Option {
	return func(c *GeneratorConfig) { c.AllHeaders = enabled }
}

// WithBuilders emits builder-style constructors for record types.
func WithBuilders(enabled bool) Option {
	return func(c *GeneratorConfig) { c.Builders = enabled }
}

// WithValidateMetaSchema sets ValidateMetaSchema; the Generator itself
// performs no meta-schema validation.
func WithValidateMetaSchema(enabled bool) Option {
	return func(c *GeneratorConfig) { c.ValidateMetaSchema = enabled }
}

// New builds a [GeneratorConfig] from [DefaultConfig] plus opts.
func New(opts ...Option) GeneratorConfig {
	c := DefaultConfig()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Merge layers overrides on top of base: zero-valued fields in overrides
// keep the base value, everything else wins. Bool fields are ORed. Only and
// Exclude are replaced wholesale when non-empty in overrides; Customize
// entries from overrides are added to base's, replacing same-key entries.
func Merge(base, overrides GeneratorConfig) GeneratorConfig {
	result := base

	if overrides.InputPath != "" {
		result.InputPath = overrides.InputPath
	}
	if overrides.OutputPath != "" {
		result.OutputPath = overrides.OutputPath
	}
	if overrides.Visibility != VisibilityPublic {
		result.Visibility = overrides.Visibility
	}
	if overrides.EnumMode != EnumModeMerge {
		result.EnumMode = overrides.EnumMode
	}
	result.Helpers = overrides.Helpers || base.Helpers
	result.ODataSupport = overrides.ODataSupport || base.ODataSupport
	if len(overrides.Customize) > 0 {
		if result.Customize == nil {
			result.Customize = map[string]string{}
		}
		for k, v := range overrides.Customize {
			result.Customize[k] = v
		}
	}
	if len(overrides.Only) > 0 {
		result.Only = overrides.Only
	}
	if len(overrides.Exclude) > 0 {
		result.Exclude = overrides.Exclude
	}
	result.AllSchemas = overrides.AllSchemas || base.AllSchemas
	result.AllHeaders = overrides.AllHeaders || base.AllHeaders
	result.Builders = overrides.Builders || base.Builders
	result.ValidateMetaSchema = overrides.ValidateMetaSchema || base.ValidateMetaSchema

	return result
}
