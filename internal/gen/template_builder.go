package gen

import (
	"fmt"
	"go/types"
	"sort"
	"strings"
	"unicode"

	"property-mapper/internal/analyze"
	"property-mapper/internal/common"
	"property-mapper/internal/introspect"
	"property-mapper/internal/meta"
)

// descriptorData is the template input for one descriptor function.
type descriptorData struct {
	Func     string
	TypeName string
	Levels   []levelData // Deepest ancestor first
	Result   string      // Variable holding the described type
}

// levelData describes one type of the ancestor chain.
type levelData struct {
	Var       string
	PkgPath   string
	Name      string
	Ancestor  string   // Variable of the ancestor level, if any
	Contracts []string // Calls building the contracts
	Slots     []string // Rendered introspect.Slot expressions
	Methods   []string // Rendered introspect.Method expressions
}

// contractData is the template input for one contract function.
type contractData struct {
	Func    string
	PkgPath string
	Name    string
	Methods []string
}

// accessPath is the way from the described type to one of its ancestors.
type accessPath struct {
	expr   string   // e.g. "Mid.Base."
	guards []string // Allocations of nil embedded pointers, outermost first
}

// templateBuilder turns source types into template data for one package.
type templateBuilder struct {
	fm        *typeFormatter
	pkgPath   string
	suffix    string
	contracts map[introspect.TypeID]contractData
}

func newTemplateBuilder(pkgPath, suffix string) *templateBuilder {
	return &templateBuilder{
		fm:        newTypeFormatter(pkgPath),
		pkgPath:   pkgPath,
		suffix:    suffix,
		contracts: make(map[introspect.TypeID]contractData),
	}
}

// descriptor builds the data of the descriptor function of t, walking its
// ancestor chain.
func (b *templateBuilder) descriptor(t *analyze.SourceType) (descriptorData, error) {
	root := t.Named().Obj().Name()
	data := descriptorData{Func: root + b.suffix, TypeName: root}

	var (
		levels []levelData
		path   accessPath
	)

	for i, cur := 0, t; cur != nil; i++ {
		level, err := b.level(cur, root, fmt.Sprintf("l%d", i), path)
		if err != nil {
			return descriptorData{}, err
		}

		anc, ok := cur.Ancestor()
		if !ok {
			levels = append(levels, level)
			break
		}

		field, _ := cur.AncestorField()
		path = path.extend(b.fm, field)
		level.Ancestor = fmt.Sprintf("l%d", i+1)
		levels = append(levels, level)

		cur = anc.(*analyze.SourceType)
	}

	for i := len(levels) - 1; i >= 0; i-- {
		data.Levels = append(data.Levels, levels[i])
	}

	data.Result = levels[0].Var

	return data, nil
}

// extend appends the embedded field to the path. Pointer embeds get a guard
// so writes allocate the missing ancestor.
func (p accessPath) extend(fm *typeFormatter, field *types.Var) accessPath {
	next := accessPath{expr: p.expr + field.Name() + ".", guards: append([]string(nil), p.guards...)}

	if ptr, ok := field.Type().(*types.Pointer); ok {
		target := "e." + p.expr + field.Name()
		next.guards = append(next.guards,
			fmt.Sprintf("if %s == nil {\n%s = new(%s)\n}\n", target, target, fm.typeString(ptr.Elem())))
	}

	return next
}

func (p accessPath) guard() string {
	return strings.Join(p.guards, "")
}

func (b *templateBuilder) level(t *analyze.SourceType, root, name string, path accessPath) (levelData, error) {
	id := t.ID()
	level := levelData{Var: name, PkgPath: id.PkgPath, Name: id.Name}

	for _, c := range t.Contracts() {
		call, err := b.contract(c.(*analyze.SourceType))
		if err != nil {
			return levelData{}, err
		}

		level.Contracts = append(level.Contracts, call)
	}

	slots, err := t.Slots()
	if err != nil {
		return levelData{}, err
	}

	for _, slot := range slots {
		if s, ok := b.slot(slot, id, root, path); ok {
			level.Slots = append(level.Slots, s)
		}
	}

	methods, err := t.Methods()
	if err != nil {
		return levelData{}, err
	}

	byName := make(map[string]introspect.Method, len(methods))
	for _, m := range methods {
		byName[m.Name] = m
	}

	mset := types.NewMethodSet(types.NewPointer(t.Named()))

	for i := 0; i < mset.Len(); i++ {
		fn, ok := mset.At(i).Obj().(*types.Func)
		if !ok {
			continue
		}

		m, ok := byName[fn.Name()]
		if !ok {
			continue
		}

		if s, ok := b.method(fn.Type().(*types.Signature), m, root, path); ok {
			level.Methods = append(level.Methods, s)
		}
	}

	return level, nil
}

// slot renders a FieldSlot call. Unexported fields of other packages and
// blank fields cannot be accessed and are left out.
func (b *templateBuilder) slot(slot introspect.Slot, declarer introspect.TypeID, root string, path accessPath) (string, bool) {
	if slot.Synthetic || (!slot.Exported && declarer.PkgPath != b.pkgPath) {
		return "", false
	}

	typ := slot.Type.Go()
	if typ == nil || !b.accessible(typ) {
		return "", false
	}

	v := b.fm.typeString(typ)
	field := "e." + path.expr + slot.Name

	s := fmt.Sprintf("introspect.FieldSlot(%q, func(e *%s) %s {\nreturn %s\n}, func(e *%s, v %s) {\n%s%s = v\n}%s)",
		slot.Name, root, v, field, root, v, path.guard(), field, b.annotations(slot.Metadata))

	if slot.Transient {
		s += ".Skipped()"
	}

	return s, true
}

// method renders an accessor-shaped method. Other shapes are never getters
// or setters and are left out.
func (b *templateBuilder) method(sig *types.Signature, m introspect.Method, root string, path accessPath) (string, bool) {
	if sig.Variadic() {
		return "", false
	}

	for _, tuple := range []*types.Tuple{sig.Params(), sig.Results()} {
		for i := 0; i < tuple.Len(); i++ {
			if !b.accessible(tuple.At(i).Type()) {
				return "", false
			}
		}
	}

	call := "e." + path.expr + m.Name
	anns := b.annotations(m.Metadata)
	params, results := sig.Params(), sig.Results()

	switch {
	case params.Len() == 0 && results.Len() == 1 && !m.ReturnsError():
		v := b.fm.typeString(results.At(0).Type())

		return fmt.Sprintf("introspect.GetterMethod(%q, func(e *%s) %s {\nreturn %s()\n}%s)",
			m.Name, root, v, call, anns), true

	case params.Len() == 0 && results.Len() == 2 && m.ReturnsError():
		v := b.fm.typeString(results.At(0).Type())

		return fmt.Sprintf("introspect.GetterMethodE(%q, func(e *%s) (%s, error) {\nreturn %s()\n}%s)",
			m.Name, root, v, call, anns), true

	case params.Len() == 1 && results.Len() == 0:
		p := b.fm.typeString(params.At(0).Type())

		return fmt.Sprintf("introspect.SetterMethod(%q, func(e *%s, v %s) {\n%s%s(v)\n}%s)",
			m.Name, root, p, path.guard(), call, anns), true

	case params.Len() == 1 && results.Len() == 1 && m.ReturnsError():
		p := b.fm.typeString(params.At(0).Type())

		return fmt.Sprintf("introspect.SetterMethodE(%q, func(e *%s, v %s) error {\n%sreturn %s(v)\n}%s)",
			m.Name, root, p, path.guard(), call, anns), true

	case params.Len() == 1 && results.Len() == 1:
		p, r := b.fm.typeString(params.At(0).Type()), b.fm.typeString(results.At(0).Type())

		return fmt.Sprintf("introspect.ChainSetterMethod(%q, func(e *%s, v %s) %s {\n%sreturn %s(v)\n}%s)",
			m.Name, root, p, r, path.guard(), call, anns), true

	default:
		return "", false
	}
}

// contract registers the contract function of c and returns its call.
func (b *templateBuilder) contract(c *analyze.SourceType) (string, error) {
	if data, ok := b.contracts[c.ID()]; ok {
		return data.Func + "()", nil
	}

	methods, err := c.Methods()
	if err != nil {
		return "", err
	}

	data := contractData{Func: contractFunc(c.ID()), PkgPath: c.ID().PkgPath, Name: c.ID().Name}

	for _, m := range methods {
		data.Methods = append(data.Methods, b.contractMethod(m))
	}

	b.contracts[c.ID()] = data

	return data.Func + "()", nil
}

func (b *templateBuilder) contractMethod(m introspect.Method) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "introspect.Method{\nName: %q,\n", m.Name)

	if refs := typeRefList(m.Params); refs != "" {
		fmt.Fprintf(&sb, "Params: %s,\n", refs)
	}

	if refs := typeRefList(m.Results); refs != "" {
		fmt.Fprintf(&sb, "Results: %s,\n", refs)
	}

	if len(m.Metadata) > 0 {
		b.fm.addImport(metaPkg, "meta")
		fmt.Fprintf(&sb, "Metadata: []meta.Annotation{%s},\n", b.annotationList(m.Metadata))
	}

	sb.WriteString("}")

	return sb.String()
}

func typeRefList(refs []introspect.TypeRef) string {
	if len(refs) == 0 {
		return ""
	}

	parts := make([]string, 0, len(refs))
	for _, r := range refs {
		parts = append(parts, fmt.Sprintf("introspect.NamedTypeRef(%q)", r.String()))
	}

	return "[]introspect.TypeRef{" + strings.Join(parts, ", ") + "}"
}

// sortedContracts returns the registered contracts ordered by function name.
func (b *templateBuilder) sortedContracts() []contractData {
	out := make([]contractData, 0, len(b.contracts))
	for _, c := range b.contracts {
		out = append(out, c)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Func < out[j].Func
	})

	return out
}

// annotations renders trailing variadic annotation arguments.
func (b *templateBuilder) annotations(anns []meta.Annotation) string {
	if len(anns) == 0 {
		return ""
	}

	b.fm.addImport(metaPkg, "meta")

	return ", " + b.annotationList(anns)
}

func (b *templateBuilder) annotationList(anns []meta.Annotation) string {
	parts := make([]string, 0, len(anns))
	for _, a := range anns {
		parts = append(parts, fmt.Sprintf("%#v", a))
	}

	return strings.Join(parts, ", ")
}

// accessible reports whether t can be spelled from the generated package.
func (b *templateBuilder) accessible(t types.Type) bool {
	switch t := t.(type) {
	case *types.Named:
		obj := t.Obj()
		if obj.Pkg() != nil && obj.Pkg().Path() != b.pkgPath && !obj.Exported() {
			return false
		}

		for i := 0; i < t.TypeArgs().Len(); i++ {
			if !b.accessible(t.TypeArgs().At(i)) {
				return false
			}
		}

		return true
	case *types.Pointer:
		return b.accessible(t.Elem())
	case *types.Slice:
		return b.accessible(t.Elem())
	case *types.Array:
		return b.accessible(t.Elem())
	case *types.Chan:
		return b.accessible(t.Elem())
	case *types.Map:
		return b.accessible(t.Key()) && b.accessible(t.Elem())
	default:
		return true
	}
}

// contractFunc names the function building a contract, e.g.
// "inventoryNamedContract".
func contractFunc(id introspect.TypeID) string {
	alias := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}

		return -1
	}, common.PkgAlias(id.PkgPath))

	if alias == "" {
		return lowerFirst(id.Name) + "Contract"
	}

	return alias + id.Name + "Contract"
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}

	r := []rune(s)
	r[0] = unicode.ToLower(r[0])

	return string(r)
}
