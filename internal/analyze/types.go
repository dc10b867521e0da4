package analyze

import (
	"go/types"
	"slices"
	"strings"

	"property-mapper/internal/common"
	"property-mapper/internal/diagnostic"
	"property-mapper/internal/introspect"
	"property-mapper/internal/match"
)

// maxSuggestions bounds the "did you mean" hints of an unresolved name.
const maxSuggestions = 3

// SourceType is a struct or interface described from source. Its slots and
// methods carry no bindings, so Get, Set and Call report
// introspect.ErrNoBinding.
type SourceType struct {
	id        introspect.TypeID
	named     *types.Named
	iface     bool
	ancestor  *SourceType
	embed     *types.Var // Field embedding the ancestor
	contracts []introspect.Type
	slots     []introspect.Slot
	methods   []introspect.Method

	// err is reported by Slots and Methods. Malformed metadata only fails
	// the types that are actually mapped.
	err error
}

func (t *SourceType) ID() introspect.TypeID        { return t.id }
func (t *SourceType) IsInterface() bool            { return t.iface }
func (t *SourceType) Contracts() []introspect.Type { return t.contracts }

func (t *SourceType) Ancestor() (introspect.Type, bool) {
	if t.ancestor == nil {
		return nil, false
	}

	return t.ancestor, true
}

// Slots returns the fields declared by the type.
func (t *SourceType) Slots() ([]introspect.Slot, error) {
	if t.err != nil {
		return nil, t.err
	}

	return t.slots, nil
}

// Methods returns the exported methods of the pointer method set.
func (t *SourceType) Methods() ([]introspect.Method, error) {
	if t.err != nil {
		return nil, t.err
	}

	return t.methods, nil
}

// AncestorField returns the embedded field holding the ancestor.
func (t *SourceType) AncestorField() (*types.Var, bool) {
	return t.embed, t.embed != nil
}

// Named returns the underlying go/types definition.
func (t *SourceType) Named() *types.Named {
	return t.named
}

// Graph holds the exported structs and interfaces of loaded packages.
type Graph struct {
	// Types maps TypeID to the source description.
	Types map[introspect.TypeID]*SourceType
	// Packages maps package paths to their package info.
	Packages map[string]*PackageInfo
}

// NewGraph creates a new empty Graph.
func NewGraph() *Graph {
	return &Graph{
		Types:    make(map[introspect.TypeID]*SourceType),
		Packages: make(map[string]*PackageInfo),
	}
}

// PackageInfo holds information about a loaded package.
type PackageInfo struct {
	Path  string              // Import path
	Name  string              // Package name
	Dir   string              // Directory of the package sources
	Types []introspect.TypeID // Exported structs and interfaces
}

// GetType returns the type for a given TypeID, or nil if not found.
func (g *Graph) GetType(id introspect.TypeID) *SourceType {
	return g.Types[id]
}

// Structs returns the loaded struct types ordered by TypeID.
func (g *Graph) Structs() []*SourceType {
	var out []*SourceType

	for _, t := range g.Types {
		if !t.iface {
			out = append(out, t)
		}
	}

	slices.SortFunc(out, func(a, b *SourceType) int {
		return strings.Compare(a.id.String(), b.id.String())
	})

	return out
}

// Resolve finds the struct types named by names. A name is either a bare
// type name, which must be unique across loaded packages, or a qualified
// "pkg/path.Name". Unresolved names are reported as errors with suggestions.
func (g *Graph) Resolve(names ...string) ([]*SourceType, *diagnostic.Diagnostics) {
	diags := &diagnostic.Diagnostics{}

	var out []*SourceType

	for _, name := range names {
		id := introspect.ParseTypeID(name)

		var found []*SourceType

		for _, t := range g.Structs() {
			if t.id.Name == id.Name && (id.PkgPath == "" || t.id.PkgPath == id.PkgPath) {
				found = append(found, t)
			}
		}

		switch {
		case common.IsSingle(found):
			out = append(out, found[0])
		case common.IsEmpty(found):
			g.reportMissing(diags, name, id)
		default:
			var ids []string
			for _, t := range found {
				ids = append(ids, t.id.String())
			}

			diags.AddError(diagnostic.CodeAmbiguousType, "type name matches several packages", name, "", ids...)
		}
	}

	return out, diags
}

func (g *Graph) reportMissing(diags *diagnostic.Diagnostics, name string, id introspect.TypeID) {
	for _, t := range g.Types {
		if t.iface && t.id.Name == id.Name && (id.PkgPath == "" || t.id.PkgPath == id.PkgPath) {
			diags.AddError(diagnostic.CodeNotAStruct, "interfaces cannot be mapped", name, "")
			return
		}
	}

	var known []string

	for _, t := range g.Structs() {
		if id.PkgPath == "" {
			known = append(known, t.id.Name)
		} else {
			known = append(known, t.id.String())
		}
	}

	diags.AddError(diagnostic.CodeTypeNotFound, "type not found", name, "", match.Suggest(name, known, maxSuggestions)...)
}
