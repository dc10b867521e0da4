package gen

import (
	"go/types"
	"sort"

	"property-mapper/internal/common"
)

// Packages referenced by every generated file.
const (
	introspectPkg = "property-mapper/internal/introspect"
	metaPkg       = "property-mapper/internal/meta"
)

// importSpec represents an import statement.
type importSpec struct {
	Alias string
	Path  string
}

// typeFormatter renders types as seen from the generated package and
// records the imports they need.
type typeFormatter struct {
	pkgPath string
	imports map[string]importSpec
}

func newTypeFormatter(pkgPath string) *typeFormatter {
	f := &typeFormatter{pkgPath: pkgPath, imports: make(map[string]importSpec)}
	f.addImport(introspectPkg, "introspect")

	return f
}

// typeString renders t, e.g. "uuid.UUID" or "map[string]*Product".
func (f *typeFormatter) typeString(t types.Type) string {
	return types.TypeString(t, f.qualifier)
}

func (f *typeFormatter) qualifier(pkg *types.Package) string {
	if pkg == nil || pkg.Path() == f.pkgPath {
		return ""
	}

	f.addImport(pkg.Path(), pkg.Name())

	return pkg.Name()
}

// addImport adds an import. The alias is kept only when the package name
// differs from the last path element.
func (f *typeFormatter) addImport(pkgPath, name string) {
	if pkgPath == "" || pkgPath == f.pkgPath {
		return
	}

	spec := importSpec{Path: pkgPath}
	if name != common.PkgAlias(pkgPath) {
		spec.Alias = name
	}

	f.imports[pkgPath] = spec
}

// sortedImports returns the recorded imports ordered by path.
func (f *typeFormatter) sortedImports() []importSpec {
	out := make([]importSpec, 0, len(f.imports))
	for _, imp := range f.imports {
		out = append(out, imp)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Path < out[j].Path
	})

	return out
}
