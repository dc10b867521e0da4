package introspect

import (
	"errors"
	"fmt"
	"go/types"
	"reflect"
	"strings"

	"property-mapper/internal/meta"
)

// ErrNoBinding is returned when a slot or method has no runtime binding,
// as is the case for types loaded from source.
var ErrNoBinding = errors.New("no runtime binding")

// TypeID uniquely identifies a type by its package path and name.
type TypeID struct {
	PkgPath string // e.g., "property-mapper/examples/inventory"
	Name    string // e.g., "Product"
}

// String returns a human-readable representation of the TypeID.
func (t TypeID) String() string {
	if t.PkgPath == "" {
		return t.Name
	}

	return t.PkgPath + "." + t.Name
}

// IsZero reports whether the TypeID is empty.
func (t TypeID) IsZero() bool {
	return t.PkgPath == "" && t.Name == ""
}

// ParseTypeID parses "pkg/path.Name". A string without a dot is a bare name.
func ParseTypeID(s string) TypeID {
	slash := strings.LastIndexByte(s, '/')

	dot := strings.LastIndexByte(s, '.')
	if dot <= slash {
		return TypeID{Name: s}
	}

	return TypeID{PkgPath: s[:dot], Name: s[dot+1:]}
}

// TypeRef is the declared type of a slot, parameter or result.
// It wraps a reflect.Type, a go/types type, or only a name.
type TypeRef struct {
	name string
	rt   reflect.Type
	gt   types.Type
}

var (
	boolType  = reflect.TypeFor[bool]()
	errorType = reflect.TypeFor[error]()
)

// ReflectTypeRef wraps a reflect.Type.
func ReflectTypeRef(rt reflect.Type) TypeRef {
	return TypeRef{name: rt.String(), rt: rt}
}

// GoTypeRef wraps a go/types type, rendered with qualifier.
func GoTypeRef(t types.Type, qualifier types.Qualifier) TypeRef {
	return TypeRef{name: types.TypeString(t, qualifier), gt: t}
}

// NamedTypeRef creates a reference known only by name.
func NamedTypeRef(name string) TypeRef {
	return TypeRef{name: name}
}

// String returns the type name.
func (r TypeRef) String() string {
	return r.name
}

// Reflect returns the wrapped reflect.Type, or nil.
func (r TypeRef) Reflect() reflect.Type {
	return r.rt
}

// Go returns the wrapped go/types type, or nil.
func (r TypeRef) Go() types.Type {
	return r.gt
}

// IsZero reports whether the reference is empty.
func (r TypeRef) IsZero() bool {
	return r.name == "" && r.rt == nil && r.gt == nil
}

// Identical reports whether r and o denote the same type.
func (r TypeRef) Identical(o TypeRef) bool {
	switch {
	case r.rt != nil && o.rt != nil:
		return r.rt == o.rt
	case r.gt != nil && o.gt != nil:
		return types.Identical(r.gt, o.gt)
	default:
		return r.name == o.name
	}
}

// IsBool reports whether the type is the predeclared bool.
func (r TypeRef) IsBool() bool {
	switch {
	case r.rt != nil:
		return r.rt == boolType
	case r.gt != nil:
		return types.Identical(r.gt, types.Typ[types.Bool])
	default:
		return r.name == "bool"
	}
}

// IsError reports whether the type is the predeclared error interface.
func (r TypeRef) IsError() bool {
	switch {
	case r.rt != nil:
		return r.rt == errorType
	case r.gt != nil:
		return types.Identical(r.gt, types.Universe.Lookup("error").Type())
	default:
		return r.name == "error"
	}
}

// Slot is a declared storage slot (struct field).
type Slot struct {
	Name      string  // Go field name
	Type      TypeRef // Declared field type
	Declarer  TypeID  // Type declaring the field
	Exported  bool    // Whether the field is exported
	Synthetic bool    // Blank fields, never mapped
	Transient bool    // Tagged `cql:"-"`
	Metadata  []meta.Annotation

	ReadFunc  func(entity any) (any, error)
	WriteFunc func(entity, value any) error
}

// Bound reports whether the slot can be read and written at runtime.
func (s *Slot) Bound() bool {
	return s.ReadFunc != nil && s.WriteFunc != nil
}

// Get reads the slot from entity.
func (s *Slot) Get(entity any) (any, error) {
	if s.ReadFunc == nil {
		return nil, fmt.Errorf("field %s of %s: %w", s.Name, s.Declarer, ErrNoBinding)
	}

	return s.ReadFunc(entity)
}

// Set writes value into the slot of entity.
func (s *Slot) Set(entity, value any) error {
	if s.WriteFunc == nil {
		return fmt.Errorf("field %s of %s: %w", s.Name, s.Declarer, ErrNoBinding)
	}

	return s.WriteFunc(entity, value)
}

// Method is a declared method. Params and Results exclude the receiver.
type Method struct {
	Name     string
	Params   []TypeRef
	Results  []TypeRef
	Declarer TypeID
	Metadata []meta.Annotation

	CallFunc func(entity any, args []any) ([]any, error)
}

// Bound reports whether the method can be called at runtime.
func (m *Method) Bound() bool {
	return m.CallFunc != nil
}

// Call invokes the method on entity.
func (m *Method) Call(entity any, args ...any) ([]any, error) {
	if m.CallFunc == nil {
		return nil, fmt.Errorf("method %s of %s: %w", m.Name, m.Declarer, ErrNoBinding)
	}

	return m.CallFunc(entity, args)
}

// ReturnsError reports whether the last result is an error.
func (m *Method) ReturnsError() bool {
	return len(m.Results) > 0 && m.Results[len(m.Results)-1].IsError()
}

// ValueResults returns the results without a trailing error.
func (m *Method) ValueResults() []TypeRef {
	if m.ReturnsError() {
		return m.Results[:len(m.Results)-1]
	}

	return m.Results
}

// SameSignature reports whether o has the same name and parameter types.
func (m *Method) SameSignature(o *Method) bool {
	return m.Name == o.Name && sameParams(m.Params, o.Params)
}

func sameParams(a, b []TypeRef) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if !a[i].Identical(b[i]) {
			return false
		}
	}

	return true
}

// Type describes a mapped type.
type Type interface {
	// ID identifies the type.
	ID() TypeID
	// IsInterface reports whether the type is a contract.
	IsInterface() bool
	// Ancestor returns the direct ancestor, if any.
	Ancestor() (Type, bool)
	// Contracts returns the interfaces the type directly implements.
	Contracts() []Type
	// Slots returns the slots declared by the type itself.
	Slots() ([]Slot, error)
	// Methods returns the accessor-like methods of the type.
	Methods() ([]Method, error)
}

// Chain returns t followed by its ancestors, most specific first.
// A type is never returned twice.
func Chain(t Type) []Type {
	var chain []Type

	seen := make(map[TypeID]bool)

	for cur, ok := t, t != nil; ok; cur, ok = cur.Ancestor() {
		if seen[cur.ID()] {
			break
		}

		seen[cur.ID()] = true
		chain = append(chain, cur)
	}

	return chain
}

// FindMethod looks up a method by name and parameter types in t and then in
// its ancestors.
func FindMethod(t Type, name string, params []TypeRef) (*Method, error) {
	for _, cur := range Chain(t) {
		m, err := DeclaredMethod(cur, name, params)
		if err != nil || m != nil {
			return m, err
		}
	}

	return nil, nil
}

// DeclaredMethod looks up a method by name and parameter types in t only.
func DeclaredMethod(t Type, name string, params []TypeRef) (*Method, error) {
	methods, err := t.Methods()
	if err != nil {
		return nil, err
	}

	for i := range methods {
		if methods[i].Name == name && sameParams(methods[i].Params, params) {
			return &methods[i], nil
		}
	}

	return nil, nil
}
