package introspect

import (
	"fmt"
	"reflect"

	"property-mapper/internal/meta"
)

// StaticType is a Type described by hand or by generated code. Slots and
// methods carry their own closures, so no reflection happens at access time.
// Build it fully before sharing it.
type StaticType struct {
	id        TypeID
	iface     bool
	ancestor  Type
	contracts []Type
	slots     []Slot
	methods   []Method
}

// NewStatic starts the description of a struct type.
func NewStatic(id TypeID) *StaticType {
	return &StaticType{id: id}
}

// NewStaticInterface starts the description of a contract.
func NewStaticInterface(id TypeID) *StaticType {
	return &StaticType{id: id, iface: true}
}

// WithAncestor sets the direct ancestor.
func (s *StaticType) WithAncestor(t Type) *StaticType {
	s.ancestor = t
	return s
}

// WithContracts appends implemented contracts.
func (s *StaticType) WithContracts(ts ...Type) *StaticType {
	s.contracts = append(s.contracts, ts...)
	return s
}

// WithSlots appends slots. A zero Declarer is set to the type's ID.
func (s *StaticType) WithSlots(slots ...Slot) *StaticType {
	for _, slot := range slots {
		if slot.Declarer.IsZero() {
			slot.Declarer = s.id
		}

		s.slots = append(s.slots, slot)
	}

	return s
}

// WithMethods appends methods. A zero Declarer is set to the type's ID.
func (s *StaticType) WithMethods(methods ...Method) *StaticType {
	for _, m := range methods {
		if m.Declarer.IsZero() {
			m.Declarer = s.id
		}

		s.methods = append(s.methods, m)
	}

	return s
}

func (s *StaticType) ID() TypeID                 { return s.id }
func (s *StaticType) IsInterface() bool          { return s.iface }
func (s *StaticType) Contracts() []Type          { return s.contracts }
func (s *StaticType) Slots() ([]Slot, error)     { return s.slots, nil }
func (s *StaticType) Methods() ([]Method, error) { return s.methods, nil }

func (s *StaticType) Ancestor() (Type, bool) {
	return s.ancestor, s.ancestor != nil
}

// FieldSlot describes a field of E with typed accessors.
func FieldSlot[E, V any](name string, get func(*E) V, set func(*E, V), anns ...meta.Annotation) Slot {
	return Slot{
		Name:     name,
		Type:     ReflectTypeRef(reflect.TypeFor[V]()),
		Exported: isExported(name),
		Metadata: anns,
		ReadFunc: func(entity any) (out any, err error) {
			defer recoverInto(&err)

			e, err := entityOf[E](entity, false)
			if err != nil {
				return nil, err
			}

			return get(e), nil
		},
		WriteFunc: func(entity, value any) (err error) {
			defer recoverInto(&err)

			e, err := entityOf[E](entity, true)
			if err != nil {
				return err
			}

			v, err := valueOf[V](value)
			if err != nil {
				return err
			}

			set(e, v)

			return nil
		},
	}
}

// Skipped marks the slot as tagged `cql:"-"`.
func (s Slot) Skipped() Slot {
	s.Transient = true
	return s
}

// GetterMethod describes a getter of E.
func GetterMethod[E, V any](name string, get func(*E) V, anns ...meta.Annotation) Method {
	return Method{
		Name:     name,
		Results:  []TypeRef{ReflectTypeRef(reflect.TypeFor[V]())},
		Metadata: anns,
		CallFunc: getterCall(name, func(e *E) ([]any, error) {
			return []any{get(e)}, nil
		}),
	}
}

// GetterMethodE describes a getter of E that can fail.
func GetterMethodE[E, V any](name string, get func(*E) (V, error), anns ...meta.Annotation) Method {
	return Method{
		Name:     name,
		Results:  []TypeRef{ReflectTypeRef(reflect.TypeFor[V]()), ReflectTypeRef(errorType)},
		Metadata: anns,
		CallFunc: getterCall(name, func(e *E) ([]any, error) {
			v, err := get(e)
			return []any{v, err}, nil
		}),
	}
}

// SetterMethod describes a conventional setter of E.
func SetterMethod[E, V any](name string, set func(*E, V), anns ...meta.Annotation) Method {
	return Method{
		Name:     name,
		Params:   []TypeRef{ReflectTypeRef(reflect.TypeFor[V]())},
		Metadata: anns,
		CallFunc: setterCall(name, func(e *E, v V) []any {
			set(e, v)
			return nil
		}),
	}
}

// SetterMethodE describes a setter of E that can fail.
func SetterMethodE[E, V any](name string, set func(*E, V) error, anns ...meta.Annotation) Method {
	return ChainSetterMethod(name, set, anns...)
}

// ChainSetterMethod describes a setter of E returning a value, such as the
// receiver for chained calls.
func ChainSetterMethod[E, V, R any](name string, set func(*E, V) R, anns ...meta.Annotation) Method {
	return Method{
		Name:     name,
		Params:   []TypeRef{ReflectTypeRef(reflect.TypeFor[V]())},
		Results:  []TypeRef{ReflectTypeRef(reflect.TypeFor[R]())},
		Metadata: anns,
		CallFunc: setterCall(name, func(e *E, v V) []any {
			return []any{set(e, v)}
		}),
	}
}

func getterCall[E any](name string, call func(*E) ([]any, error)) func(any, []any) ([]any, error) {
	return func(entity any, args []any) (out []any, err error) {
		defer recoverInto(&err)

		if len(args) != 0 {
			return nil, fmt.Errorf("getter %s takes no arguments", name)
		}

		e, err := entityOf[E](entity, false)
		if err != nil {
			return nil, err
		}

		return call(e)
	}
}

func setterCall[E, V any](name string, call func(*E, V) []any) func(any, []any) ([]any, error) {
	return func(entity any, args []any) (out []any, err error) {
		defer recoverInto(&err)

		if len(args) != 1 {
			return nil, fmt.Errorf("setter %s takes one argument", name)
		}

		e, err := entityOf[E](entity, true)
		if err != nil {
			return nil, err
		}

		v, err := valueOf[V](args[0])
		if err != nil {
			return nil, err
		}

		return call(e, v), nil
	}
}

func entityOf[E any](entity any, write bool) (*E, error) {
	switch e := entity.(type) {
	case *E:
		if e == nil {
			return nil, fmt.Errorf("nil entity")
		}

		return e, nil
	case E:
		if write {
			return nil, fmt.Errorf("entity of type %T must be passed by pointer to be written", entity)
		}

		return &e, nil
	default:
		return nil, fmt.Errorf("entity of type %T is not a %s", entity, reflect.TypeFor[E]())
	}
}

func valueOf[V any](value any) (V, error) {
	var zero V

	if value == nil {
		_, err := ValueFor(nil, reflect.TypeFor[V]())
		return zero, err
	}

	v, ok := value.(V)
	if !ok {
		return zero, fmt.Errorf("cannot assign %T to %s", value, reflect.TypeFor[V]())
	}

	return v, nil
}
