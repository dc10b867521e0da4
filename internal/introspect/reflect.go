package introspect

import (
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"unsafe"

	"property-mapper/internal/mapperr"
	"property-mapper/internal/meta"
)

// Reflector builds Types from reflect.Type values. A Reflector is immutable
// once created and safe for concurrent use.
type Reflector struct {
	methodTags map[reflect.Type]map[string]string
	contracts  map[reflect.Type][]reflect.Type
}

// ReflectorOption configures a Reflector.
type ReflectorOption func(*Reflector)

// WithMethodTags attaches cql metadata to methods of t, keyed by method name.
// Go has no method tags; this is the runtime counterpart of //cql: directives.
func WithMethodTags(t reflect.Type, tags map[string]string) ReflectorOption {
	return func(r *Reflector) {
		t = indirect(t)

		if r.methodTags[t] == nil {
			r.methodTags[t] = make(map[string]string, len(tags))
		}

		for name, tag := range tags {
			r.methodTags[t][name] = tag
		}
	}
}

// WithContracts declares interfaces implemented by t in addition to its
// embedded interface fields.
func WithContracts(t reflect.Type, ifaces ...reflect.Type) ReflectorOption {
	return func(r *Reflector) {
		t = indirect(t)
		r.contracts[t] = append(r.contracts[t], ifaces...)
	}
}

// NewReflector creates a Reflector.
func NewReflector(opts ...ReflectorOption) *Reflector {
	r := &Reflector{
		methodTags: make(map[reflect.Type]map[string]string),
		contracts:  make(map[reflect.Type][]reflect.Type),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

var defaultReflector = NewReflector()

// Reflect describes the dynamic type of v with the default Reflector.
func Reflect(v any) (Type, error) {
	return defaultReflector.TypeOf(reflect.TypeOf(v))
}

// ReflectType describes rt with the default Reflector.
func ReflectType(rt reflect.Type) (Type, error) {
	return defaultReflector.TypeOf(rt)
}

// TypeFor describes T with the default Reflector.
func TypeFor[T any]() (Type, error) {
	return defaultReflector.TypeOf(reflect.TypeFor[T]())
}

// TypeOf describes rt. Pointer types are described by their element type.
func (r *Reflector) TypeOf(rt reflect.Type) (Type, error) {
	if rt == nil {
		return nil, mapperr.Introspection("<nil>", errors.New("nil type"))
	}

	rt = indirect(rt)

	switch rt.Kind() {
	case reflect.Interface:
		return r.interfaceType(rt)
	case reflect.Struct:
		return r.structType(rt, rt, nil, make(map[reflect.Type]bool))
	default:
		return nil, mapperr.Introspection(rt.String(), fmt.Errorf("unsupported kind %s", rt.Kind()))
	}
}

func typeID(rt reflect.Type) TypeID {
	if rt.Name() == "" {
		return TypeID{Name: rt.String()}
	}

	return TypeID{PkgPath: rt.PkgPath(), Name: rt.Name()}
}

func indirect(rt reflect.Type) reflect.Type {
	for rt != nil && rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}

	return rt
}

// reflectType is a struct or interface described through reflection.
// For structs, path is the field index chain from root to this type.
type reflectType struct {
	id        TypeID
	rt        reflect.Type
	root      reflect.Type
	path      []int
	ancestor  *reflectType
	contracts []Type
	slots     []Slot
	methods   []Method
}

func (t *reflectType) ID() TypeID        { return t.id }
func (t *reflectType) IsInterface() bool { return t.rt.Kind() == reflect.Interface }
func (t *reflectType) Contracts() []Type { return t.contracts }

func (t *reflectType) Ancestor() (Type, bool) {
	if t.ancestor == nil {
		return nil, false
	}

	return t.ancestor, true
}

func (t *reflectType) Slots() ([]Slot, error)     { return t.slots, nil }
func (t *reflectType) Methods() ([]Method, error) { return t.methods, nil }

func (r *Reflector) structType(rt, root reflect.Type, path []int, visiting map[reflect.Type]bool) (*reflectType, error) {
	visiting[rt] = true

	t := &reflectType{id: typeID(rt), rt: rt, root: root, path: path}

	ancestorIndex := -1

	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.Anonymous {
			continue
		}

		ft := indirect(f.Type)
		if ft.Kind() != reflect.Struct {
			continue
		}

		ancestorIndex = i

		if !visiting[ft] {
			sub := append(append([]int(nil), path...), i)

			anc, err := r.structType(ft, root, sub, visiting)
			if err != nil {
				return nil, err
			}

			t.ancestor = anc
		}

		break
	}

	for i := 0; i < rt.NumField(); i++ {
		if i == ancestorIndex {
			continue
		}

		f := rt.Field(i)

		if f.Anonymous && f.Type.Kind() == reflect.Interface {
			c, err := r.interfaceType(f.Type)
			if err != nil {
				return nil, err
			}

			t.contracts = append(t.contracts, c)

			continue
		}

		anns, skip, err := meta.ParseStructTag(f.Tag)
		if err != nil {
			return nil, mapperr.Introspection(t.id.String(), fmt.Errorf("field %s: %w", f.Name, err))
		}

		t.slots = append(t.slots, Slot{
			Name:      f.Name,
			Type:      ReflectTypeRef(f.Type),
			Declarer:  t.id,
			Exported:  f.IsExported(),
			Synthetic: f.Name == "_",
			Transient: skip,
			Metadata:  anns,
			ReadFunc:  t.fieldReader(i),
			WriteFunc: t.fieldWriter(i),
		})
	}

	for _, it := range r.contracts[rt] {
		c, err := r.interfaceType(it)
		if err != nil {
			return nil, err
		}

		t.contracts = append(t.contracts, c)
	}

	methods, err := r.methodsOf(t, reflect.PointerTo(rt))
	if err != nil {
		return nil, err
	}

	t.methods = methods

	return t, nil
}

func (r *Reflector) interfaceType(rt reflect.Type) (*reflectType, error) {
	if rt.Kind() != reflect.Interface {
		return nil, mapperr.Introspection(rt.String(), errors.New("contract is not an interface"))
	}

	t := &reflectType{id: typeID(rt), rt: rt}

	methods, err := r.methodsOf(t, rt)
	if err != nil {
		return nil, err
	}

	t.methods = methods

	return t, nil
}

// methodsOf lists the exported methods of mt. For a pointer-to-struct, the
// first parameter of each method type is the receiver and methods promoted
// from embedded fields are left to their declarers.
func (r *Reflector) methodsOf(t *reflectType, mt reflect.Type) ([]Method, error) {
	tags := r.methodTags[t.rt]
	skipReceiver := mt.Kind() != reflect.Interface

	var methods []Method

	for i := 0; i < mt.NumMethod(); i++ {
		m := mt.Method(i)
		if !m.IsExported() || (skipReceiver && promoted(t.rt, m)) {
			continue
		}

		ft := m.Type

		from := 0
		if skipReceiver {
			from = 1
		}

		params := make([]TypeRef, 0, ft.NumIn()-from)
		for j := from; j < ft.NumIn(); j++ {
			params = append(params, ReflectTypeRef(ft.In(j)))
		}

		results := make([]TypeRef, 0, ft.NumOut())
		for j := 0; j < ft.NumOut(); j++ {
			results = append(results, ReflectTypeRef(ft.Out(j)))
		}

		var anns []meta.Annotation

		if tag, ok := tags[m.Name]; ok {
			parsed, err := meta.Parse(tag)
			if err != nil {
				return nil, mapperr.Introspection(t.id.String(), fmt.Errorf("method %s: %w", m.Name, err))
			}

			anns = parsed
		}

		method := Method{
			Name:     m.Name,
			Params:   params,
			Results:  results,
			Declarer: t.id,
			Metadata: anns,
		}

		if skipReceiver {
			method.CallFunc = t.methodCaller(m.Name)
		}

		methods = append(methods, method)
	}

	return methods, nil
}

// promoted reports whether m, a method of *rt, is promoted from an embedded
// field of rt rather than declared on rt.
func promoted(rt reflect.Type, m reflect.Method) bool {
	if !embedsMethod(rt, m.Name) || !wrapper(m) {
		return false
	}

	// A value receiver method declared on rt is wrapped in *rt too.
	vm, ok := rt.MethodByName(m.Name)

	return !ok || wrapper(vm)
}

// embedsMethod reports whether an embedded field of rt provides name.
func embedsMethod(rt reflect.Type, name string) bool {
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.Anonymous {
			continue
		}

		ft := f.Type
		if ft.Kind() != reflect.Interface {
			ft = reflect.PointerTo(indirect(ft))
		}

		if _, ok := ft.MethodByName(name); ok {
			return true
		}
	}

	return false
}

// wrapper reports whether the code of m was generated by the compiler.
func wrapper(m reflect.Method) bool {
	fn := runtime.FuncForPC(m.Func.Pointer())
	if fn == nil {
		return false
	}

	file, _ := fn.FileLine(fn.Entry())

	return file == "<autogenerated>"
}

// locate returns the addressable struct value of t inside entity. Writes
// require a pointer entity and allocate nil embedded pointers on the way.
func (t *reflectType) locate(entity any, write bool) (reflect.Value, error) {
	v := reflect.ValueOf(entity)
	if !v.IsValid() {
		return reflect.Value{}, errors.New("nil entity")
	}

	switch {
	case v.Kind() == reflect.Pointer && v.Type().Elem() == t.root:
		if v.IsNil() {
			return reflect.Value{}, errors.New("nil entity")
		}

		v = v.Elem()
	case v.Type() == t.root:
		if write {
			return reflect.Value{}, fmt.Errorf("entity of type %s must be passed by pointer to be written", t.root)
		}

		c := reflect.New(t.root).Elem()
		c.Set(v)
		v = c
	default:
		return reflect.Value{}, fmt.Errorf("entity of type %s is not a %s", v.Type(), t.root)
	}

	for _, i := range t.path {
		v = exposed(v.Field(i))

		if v.Kind() == reflect.Pointer {
			if v.IsNil() {
				if !write {
					return reflect.Value{}, fmt.Errorf("embedded %s is nil", v.Type())
				}

				v.Set(reflect.New(v.Type().Elem()))
			}

			v = v.Elem()
		}
	}

	return v, nil
}

// exposed makes a value obtained through an unexported field settable.
func exposed(v reflect.Value) reflect.Value {
	if v.CanSet() || !v.CanAddr() {
		return v
	}

	return reflect.NewAt(v.Type(), unsafe.Pointer(v.UnsafeAddr())).Elem()
}

func (t *reflectType) fieldReader(index int) func(any) (any, error) {
	return func(entity any) (value any, err error) {
		defer recoverInto(&err)

		sv, err := t.locate(entity, false)
		if err != nil {
			return nil, err
		}

		return exposed(sv.Field(index)).Interface(), nil
	}
}

func (t *reflectType) fieldWriter(index int) func(any, any) error {
	return func(entity, value any) (err error) {
		defer recoverInto(&err)

		sv, err := t.locate(entity, true)
		if err != nil {
			return err
		}

		f := exposed(sv.Field(index))

		v, err := ValueFor(value, f.Type())
		if err != nil {
			return err
		}

		f.Set(v)

		return nil
	}
}

// methodCaller calls the method on the embedded value of t. Calls with
// arguments are treated as writes.
func (t *reflectType) methodCaller(name string) func(any, []any) ([]any, error) {
	return func(entity any, args []any) (results []any, err error) {
		defer recoverInto(&err)

		sv, err := t.locate(entity, len(args) > 0)
		if err != nil {
			return nil, err
		}

		m := sv.Addr().MethodByName(name)
		if !m.IsValid() {
			return nil, fmt.Errorf("method %s not found on %s", name, t.rt)
		}

		if m.Type().NumIn() != len(args) {
			return nil, fmt.Errorf("method %s takes %d arguments, got %d", name, m.Type().NumIn(), len(args))
		}

		in := make([]reflect.Value, len(args))
		for i, a := range args {
			if in[i], err = ValueFor(a, m.Type().In(i)); err != nil {
				return nil, err
			}
		}

		out := m.Call(in)

		results = make([]any, len(out))
		for i, o := range out {
			results[i] = o.Interface()
		}

		return results, nil
	}
}

// ValueFor converts value to a reflect.Value assignable to t. A nil value
// becomes the zero value of a nillable t.
func ValueFor(value any, t reflect.Type) (reflect.Value, error) {
	if value == nil {
		switch t.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(t), nil
		default:
			return reflect.Value{}, fmt.Errorf("cannot assign nil to %s", t)
		}
	}

	v := reflect.ValueOf(value)
	if !v.Type().AssignableTo(t) {
		return reflect.Value{}, fmt.Errorf("cannot assign %s to %s", v.Type(), t)
	}

	return v, nil
}

func recoverInto(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("panic: %v", r)
	}
}
