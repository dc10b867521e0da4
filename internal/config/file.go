package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"property-mapper/internal/codec"
	"property-mapper/internal/diagnostic"
	"property-mapper/internal/introspect"
)

// CurrentVersion is the only supported configuration file version.
const CurrentVersion = "1"

// File is the YAML representation of a Configuration.
type File struct {
	Version          string `yaml:"version"`
	Access           string `yaml:"access,omitempty"`
	UnexportedFields bool   `yaml:"unexported_fields,omitempty"`
	Strategy         string `yaml:"strategy,omitempty"`
	// TransientProperties replaces the default set when present.
	TransientProperties []string      `yaml:"transient_properties,omitempty"`
	Hierarchy           HierarchyFile `yaml:"hierarchy,omitempty"`
}

// HierarchyFile configures the hierarchy scan.
type HierarchyFile struct {
	Enabled                *bool  `yaml:"enabled,omitempty"`
	HighestAncestor        string `yaml:"highest_ancestor,omitempty"`
	IncludeHighestAncestor bool   `yaml:"include_highest_ancestor,omitempty"`
}

// LoadFile loads and parses a YAML configuration file from the given path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses YAML data into a File.
func Parse(data []byte) (*File, error) {
	var f File

	err := yaml.Unmarshal(data, &f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	applyDefaults(&f)

	return &f, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(f *File) {
	if f.Version == "" {
		f.Version = CurrentVersion
	}

	if f.Access == "" {
		f.Access = AccessBoth.String()
	}

	if f.Strategy == "" {
		f.Strategy = OptOutStrategy.String()
	}

	if f.Hierarchy.Enabled == nil {
		enabled := true
		f.Hierarchy.Enabled = &enabled
	}
}

// Marshal serializes a File to YAML.
func Marshal(f *File) ([]byte, error) {
	return yaml.Marshal(f)
}

// WriteFile writes a File to the given path.
func WriteFile(f *File, path string) error {
	data, err := Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}

	return nil
}

// Validate checks the settings without building anything.
func (f *File) Validate() *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}

	if f.Version != CurrentVersion {
		res.AddError(diagnostic.CodeInvalidConfig,
			fmt.Sprintf("unsupported version %q", f.Version), "", "version", CurrentVersion)
	}

	if _, err := ParseAccessMode(f.Access); err != nil {
		res.AddError(diagnostic.CodeInvalidConfig, err.Error(), "", "access",
			AccessBoth.String(), AccessFields.String(), AccessAccessors.String())
	}

	if _, err := ParseMappingStrategy(f.Strategy); err != nil {
		res.AddError(diagnostic.CodeInvalidConfig, err.Error(), "", "strategy",
			OptOutStrategy.String(), OptInStrategy.String())
	}

	for i, name := range f.TransientProperties {
		if strings.TrimSpace(name) == "" {
			res.AddError(diagnostic.CodeInvalidConfig,
				fmt.Sprintf("entry %d is empty", i), "", "transient_properties")
		}
	}

	h := f.Hierarchy
	if h.Enabled != nil && !*h.Enabled && h.HighestAncestor != "" {
		res.AddWarning(diagnostic.CodeInvalidConfig,
			"highest_ancestor is ignored when the hierarchy scan is disabled", "", "hierarchy.highest_ancestor")
	}

	if h.IncludeHighestAncestor && h.HighestAncestor == "" {
		res.AddWarning(diagnostic.CodeInvalidConfig,
			"include_highest_ancestor has no effect without highest_ancestor", "", "hierarchy.include_highest_ancestor")
	}

	return res
}

// Configuration builds the Configuration described by f. A nil registry
// selects the built-in codecs.
func (f *File) Configuration(codecs *codec.Registry) (*Configuration, error) {
	if err := f.Validate().Error(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	mode, _ := ParseAccessMode(f.Access)
	strategy, _ := ParseMappingStrategy(f.Strategy)

	accessOpts := []AccessOption{WithAccessMode(mode)}
	if f.UnexportedFields {
		accessOpts = append(accessOpts, WithUnexportedFields())
	}

	b := NewBuilder().
		WithAccessStrategy(NewDefaultAccess(accessOpts...)).
		WithMappingStrategy(strategy).
		WithHierarchyScanStrategy(f.hierarchyScan()).
		WithCodecs(codecs)

	if f.TransientProperties != nil {
		b.WithTransientProperties(f.TransientProperties...)
	}

	return b.Build(), nil
}

func (f *File) hierarchyScan() *HierarchyScan {
	h := f.Hierarchy

	if h.Enabled != nil && !*h.Enabled {
		return DisabledHierarchyScan()
	}

	if h.HighestAncestor == "" {
		return NewHierarchyScan()
	}

	return NewHierarchyScan(WithHighestAncestor(introspect.ParseTypeID(h.HighestAncestor), h.IncludeHighestAncestor))
}
