// Package config holds the pluggable strategies of the mapping engine and the
// immutable Configuration bundling them.
package config

import (
	"slices"

	"property-mapper/internal/codec"
)

// Configuration bundles the strategies used to map a type. It is immutable
// and safe for concurrent use.
type Configuration struct {
	access     AccessStrategy
	transience TransienceStrategy
	hierarchy  HierarchyScanStrategy
	transient  map[string]struct{}
	codecs     *codec.Registry
}

// Default returns the default configuration: fields and accessors, opt-out
// transience, full hierarchy scan, the default transient property names and
// the built-in codecs.
func Default() *Configuration {
	return NewBuilder().Build()
}

// AccessStrategy returns the strategy scanning and accessing members.
func (c *Configuration) AccessStrategy() AccessStrategy { return c.access }

// TransienceStrategy returns the strategy excluding properties.
func (c *Configuration) TransienceStrategy() TransienceStrategy { return c.transience }

// HierarchyScanStrategy returns the strategy selecting the scanned ancestors.
func (c *Configuration) HierarchyScanStrategy() HierarchyScanStrategy { return c.hierarchy }

// Codecs returns the registry custom codecs are instantiated from.
func (c *Configuration) Codecs() *codec.Registry { return c.codecs }

// IsTransientProperty reports whether name is in the transient property set.
func (c *Configuration) IsTransientProperty(name string) bool {
	_, ok := c.transient[name]
	return ok
}

// TransientProperties returns the transient property set, sorted.
func (c *Configuration) TransientProperties() []string {
	names := make([]string, 0, len(c.transient))
	for name := range c.transient {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// Builder assembles a Configuration. Nil arguments keep the defaults.
type Builder struct {
	access     AccessStrategy
	transience TransienceStrategy
	hierarchy  HierarchyScanStrategy
	transient  []string
	codecs     *codec.Registry
}

// NewBuilder creates a builder initialized with the defaults.
func NewBuilder() *Builder {
	return &Builder{
		access:     NewDefaultAccess(),
		transience: OptOut(),
		hierarchy:  NewHierarchyScan(),
		transient:  DefaultTransientProperties(),
		codecs:     codec.Builtin(),
	}
}

// WithAccessStrategy sets the access strategy.
func (b *Builder) WithAccessStrategy(s AccessStrategy) *Builder {
	if s != nil {
		b.access = s
	}

	return b
}

// WithTransienceStrategy sets a custom transience strategy.
func (b *Builder) WithTransienceStrategy(s TransienceStrategy) *Builder {
	if s != nil {
		b.transience = s
	}

	return b
}

// WithMappingStrategy selects a built-in transience strategy.
func (b *Builder) WithMappingStrategy(s MappingStrategy) *Builder {
	b.transience = s.Transience()
	return b
}

// WithHierarchyScanStrategy sets the hierarchy scan strategy.
func (b *Builder) WithHierarchyScanStrategy(s HierarchyScanStrategy) *Builder {
	if s != nil {
		b.hierarchy = s
	}

	return b
}

// WithCodecs replaces the codec registry.
func (b *Builder) WithCodecs(r *codec.Registry) *Builder {
	if r != nil {
		b.codecs = r
	}

	return b
}

// WithTransientProperties replaces the transient property set.
func (b *Builder) WithTransientProperties(names ...string) *Builder {
	b.transient = slices.Clone(names)
	return b
}

// AddTransientProperties extends the transient property set.
func (b *Builder) AddTransientProperties(names ...string) *Builder {
	b.transient = append(b.transient, names...)
	return b
}

// Build creates the Configuration. The builder may be reused.
func (b *Builder) Build() *Configuration {
	set := make(map[string]struct{}, len(b.transient))
	for _, name := range b.transient {
		set[name] = struct{}{}
	}

	return &Configuration{
		access:     b.access,
		transience: b.transience,
		hierarchy:  b.hierarchy,
		transient:  set,
		codecs:     b.codecs,
	}
}
