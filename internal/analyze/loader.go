package analyze

import (
	"fmt"
	"go/ast"
	"go/types"
	"path/filepath"
	"reflect"
	"strings"

	"golang.org/x/tools/go/packages"

	"property-mapper/internal/common"
	"property-mapper/internal/introspect"
	"property-mapper/internal/mapperr"
	"property-mapper/internal/meta"
)

// LoadMode specifies what information to load from packages.
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedImports

// Analyzer loads Go packages and builds a type graph.
type Analyzer struct {
	graph      *Graph
	typeCache  map[*types.TypeName]*SourceType // Cache to handle recursive types
	directives map[types.Object][]string       // "//cql:" lines by method
	contracts  []*SourceType                   // Loaded non-empty interfaces
}

// NewAnalyzer creates a new Analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		graph:      NewGraph(),
		typeCache:  make(map[*types.TypeName]*SourceType),
		directives: make(map[types.Object][]string),
	}
}

// LoadPackages loads the specified packages and builds the type graph.
// Patterns are standard Go package patterns (e.g., "./inventory",
// "property-mapper/examples/inventory").
func (a *Analyzer) LoadPackages(patterns ...string) (*Graph, error) {
	where := strings.Join(patterns, " ")

	cfg := &packages.Config{
		Mode: LoadMode,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, mapperr.Introspection(where, fmt.Errorf("failed to load packages: %w", err))
	}

	// Check for package errors
	var errs []error
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			errs = append(errs, e)
		}
	}
	if len(errs) > 0 {
		return nil, mapperr.Introspection(where, fmt.Errorf("package errors: %v", errs))
	}

	var structs, ifaces []*types.Named

	for _, pkg := range pkgs {
		a.collectDirectives(pkg)

		s, i := a.processPackage(pkg)
		structs = append(structs, s...)
		ifaces = append(ifaces, i...)
	}

	// Interfaces first: struct contracts are matched against them.
	for _, named := range ifaces {
		t, err := a.typeFor(named)
		if err != nil {
			return nil, err
		}

		a.graph.Types[t.id] = t

		if named.Underlying().(*types.Interface).NumMethods() > 0 {
			a.contracts = append(a.contracts, t)
		}
	}

	for _, named := range structs {
		t, err := a.typeFor(named)
		if err != nil {
			return nil, err
		}

		a.graph.Types[t.id] = t
	}

	return a.graph, nil
}

// Graph returns the current type graph.
func (a *Analyzer) Graph() *Graph {
	return a.graph
}

// processPackage records the package and returns its exported, non-generic
// structs and interfaces.
func (a *Analyzer) processPackage(pkg *packages.Package) (structs, ifaces []*types.Named) {
	pkgInfo := &PackageInfo{
		Path: pkg.PkgPath,
		Name: pkg.Name,
	}

	if len(pkg.GoFiles) > 0 {
		pkgInfo.Dir = filepath.Dir(pkg.GoFiles[0])
	}

	scope := pkg.Types.Scope()
	for _, name := range scope.Names() {
		// Only process exported type names (not variables, constants, functions)
		typeName, ok := scope.Lookup(name).(*types.TypeName)
		if !ok || !typeName.Exported() || typeName.IsAlias() {
			continue
		}

		named, ok := typeName.Type().(*types.Named)
		if !ok || named.TypeParams().Len() > 0 {
			continue
		}

		switch named.Underlying().(type) {
		case *types.Struct:
			structs = append(structs, named)
		case *types.Interface:
			ifaces = append(ifaces, named)
		default:
			continue
		}

		pkgInfo.Types = append(pkgInfo.Types, typeID(typeName))
	}

	a.graph.Packages[pkg.PkgPath] = pkgInfo

	return structs, ifaces
}

// collectDirectives indexes the "//cql:" doc comment lines of methods and
// interface methods.
func (a *Analyzer) collectDirectives(pkg *packages.Package) {
	add := func(ident *ast.Ident, doc *ast.CommentGroup) {
		if doc == nil {
			return
		}

		obj := pkg.TypesInfo.Defs[ident]
		if obj == nil {
			return
		}

		for _, c := range doc.List {
			if strings.HasPrefix(c.Text, meta.DirectivePrefix) {
				a.directives[obj] = append(a.directives[obj], c.Text)
			}
		}
	}

	for _, file := range pkg.Syntax {
		ast.Inspect(file, func(n ast.Node) bool {
			switch n := n.(type) {
			case *ast.FuncDecl:
				if n.Recv != nil {
					add(n.Name, n.Doc)
				}
			case *ast.InterfaceType:
				for _, m := range n.Methods.List {
					for _, name := range m.Names {
						add(name, m.Doc)
					}
				}
			}

			return true
		})
	}
}

// typeFor describes named, which may come from a package that was not
// loaded (e.g. an embedded ancestor from a dependency).
func (a *Analyzer) typeFor(named *types.Named) (*SourceType, error) {
	obj := named.Obj()

	// Check cache to handle recursive types
	if cached, ok := a.typeCache[obj]; ok {
		return cached, nil
	}

	t := &SourceType{id: typeID(obj), named: named}

	// Pre-cache to handle recursive types (we'll fill in details)
	a.typeCache[obj] = t

	switch ut := named.Underlying().(type) {
	case *types.Interface:
		t.iface = true
		t.methods, t.err = a.methodsOf(t, methodSet(named))

	case *types.Struct:
		if err := a.analyzeStruct(t, ut); err != nil {
			return nil, err
		}

	default:
		delete(a.typeCache, obj)
		return nil, mapperr.Introspection(t.id.String(), fmt.Errorf("%s is not a struct or interface", ut))
	}

	return t, nil
}

// analyzeStruct fills in the ancestor, slots, contracts and methods of t.
// The first embedded struct is the ancestor; embedded interfaces are
// contracts.
func (a *Analyzer) analyzeStruct(t *SourceType, st *types.Struct) error {
	ancestorIndex := -1

	for i := 0; i < st.NumFields(); i++ {
		field := st.Field(i)
		if !field.Embedded() {
			continue
		}

		named, ok := namedOf(field.Type())
		if !ok {
			continue
		}

		if _, isStruct := named.Underlying().(*types.Struct); !isStruct {
			continue
		}

		ancestorIndex = i

		anc, err := a.typeFor(named)
		if err != nil {
			return err
		}

		if anc != t {
			t.ancestor, t.embed = anc, field
		}

		break
	}

	for i := 0; i < st.NumFields(); i++ {
		if i == ancestorIndex {
			continue
		}

		field := st.Field(i)

		if named, ok := namedOf(field.Type()); ok && field.Embedded() && types.IsInterface(named) {
			c, err := a.typeFor(named)
			if err != nil {
				return err
			}

			t.contracts = append(t.contracts, c)

			continue
		}

		anns, skip, err := meta.ParseStructTag(reflect.StructTag(st.Tag(i)))
		if err != nil {
			t.err = mapperr.Introspection(t.id.String(), fmt.Errorf("field %s: %w", field.Name(), err))
			return nil
		}

		t.slots = append(t.slots, introspect.Slot{
			Name:      field.Name(),
			Type:      introspect.GoTypeRef(field.Type(), qualifier),
			Declarer:  t.id,
			Exported:  field.Exported(),
			Synthetic: field.Name() == "_",
			Transient: skip,
			Metadata:  anns,
		})
	}

	ptr := types.NewPointer(t.named)

	for _, c := range a.contracts {
		if hasContract(t, c.id) {
			continue
		}

		if types.Implements(ptr, c.named.Underlying().(*types.Interface)) {
			t.contracts = append(t.contracts, c)
		}
	}

	methods, err := a.methodsOf(t, declaredMethods(t.named))
	if err != nil {
		t.err = err
		return nil
	}

	t.methods = methods

	return nil
}

// methodsOf describes the exported funcs among fns.
func (a *Analyzer) methodsOf(t *SourceType, fns []*types.Func) ([]introspect.Method, error) {
	var methods []introspect.Method

	for _, fn := range fns {
		if !fn.Exported() {
			continue
		}

		sig := fn.Type().(*types.Signature)

		anns, err := meta.ParseDirectives(a.directives[fn.Origin()])
		if err != nil {
			return nil, mapperr.Introspection(t.id.String(), fmt.Errorf("method %s: %w", fn.Name(), err))
		}

		methods = append(methods, introspect.Method{
			Name:     fn.Name(),
			Params:   typeRefs(sig.Params()),
			Results:  typeRefs(sig.Results()),
			Declarer: t.id,
			Metadata: anns,
		})
	}

	return methods, nil
}

// declaredMethods returns the methods declared on named itself, in source
// order. Methods promoted from embedded fields belong to their declarers.
func declaredMethods(named *types.Named) []*types.Func {
	fns := make([]*types.Func, 0, named.NumMethods())
	for i := 0; i < named.NumMethods(); i++ {
		fns = append(fns, named.Method(i))
	}

	return fns
}

// methodSet returns the funcs in the method set of typ, embedded interface
// methods included.
func methodSet(typ types.Type) []*types.Func {
	mset := types.NewMethodSet(typ)

	fns := make([]*types.Func, 0, mset.Len())
	for i := 0; i < mset.Len(); i++ {
		if fn, ok := mset.At(i).Obj().(*types.Func); ok {
			fns = append(fns, fn)
		}
	}

	return fns
}

func hasContract(t *SourceType, id introspect.TypeID) bool {
	for _, c := range t.contracts {
		if c.ID() == id {
			return true
		}
	}

	return false
}

func typeRefs(tuple *types.Tuple) []introspect.TypeRef {
	refs := make([]introspect.TypeRef, 0, tuple.Len())
	for i := 0; i < tuple.Len(); i++ {
		refs = append(refs, introspect.GoTypeRef(tuple.At(i).Type(), qualifier))
	}

	return refs
}

// namedOf returns the named type of t or of the type t points to.
func namedOf(t types.Type) (*types.Named, bool) {
	if ptr, ok := t.(*types.Pointer); ok {
		t = ptr.Elem()
	}

	named, ok := t.(*types.Named)

	return named, ok
}

func typeID(obj *types.TypeName) introspect.TypeID {
	if obj.Pkg() == nil {
		return introspect.TypeID{Name: obj.Name()}
	}

	return introspect.TypeID{PkgPath: obj.Pkg().Path(), Name: obj.Name()}
}

// qualifier renders package-qualified names with the package alias, as
// reflect does (e.g. "uuid.UUID").
func qualifier(pkg *types.Package) string {
	return common.PkgAlias(pkg.Path())
}
