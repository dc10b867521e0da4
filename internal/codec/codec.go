// Package codec defines the custom value codec contract used by mapped
// properties and a registry that instantiates codecs by name.
package codec

import (
	"errors"
	"fmt"
	"reflect"
	"slices"

	"property-mapper/internal/mapperr"
)

// Codec converts a property value to and from its stored representation.
type Codec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, dst any) error
}

// Factory creates a fresh codec instance.
type Factory func() (Codec, error)

// Entry binds a codec name to its factory.
type Entry struct {
	Name    string
	Factory Factory
}

// ErrUnknownCodec is the cause reported for names missing from a registry.
var ErrUnknownCodec = errors.New("unknown codec")

// Register creates an entry whose factory returns the zero value of C.
// For pointer types a new value is allocated. C must be a concrete type.
func Register[C Codec](name string) Entry {
	rt := reflect.TypeFor[C]()

	return Entry{Name: name, Factory: func() (Codec, error) {
		switch rt.Kind() {
		case reflect.Interface:
			return nil, fmt.Errorf("%s is not a concrete type", rt)
		case reflect.Pointer:
			return reflect.New(rt.Elem()).Interface().(C), nil
		default:
			var zero C
			return zero, nil
		}
	}}
}

// RegisterFunc creates an entry with a constructor function.
func RegisterFunc(name string, fn Factory) Entry {
	return Entry{Name: name, Factory: fn}
}

// Registry maps codec names to factories. It is immutable and safe for
// concurrent use.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates a registry. Later entries replace earlier ones of the
// same name.
func NewRegistry(entries ...Entry) *Registry {
	r := &Registry{factories: make(map[string]Factory, len(entries))}
	for _, e := range entries {
		r.factories[e.Name] = e.Factory
	}

	return r
}

// With returns a copy of r extended with entries.
func (r *Registry) With(entries ...Entry) *Registry {
	out := &Registry{factories: make(map[string]Factory, len(r.factories)+len(entries))}
	for name, f := range r.factories {
		out.factories[name] = f
	}

	for _, e := range entries {
		out.factories[e.Name] = e.Factory
	}

	return out
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	if r == nil {
		return false
	}

	_, ok := r.factories[name]

	return ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// Instantiate creates a new codec instance for name. Every call returns a
// fresh instance.
func (r *Registry) Instantiate(name string) (c Codec, err error) {
	var f Factory
	if r != nil {
		f = r.factories[name]
	}

	if f == nil {
		return nil, mapperr.CodecInstantiation(name, ErrUnknownCodec)
	}

	defer func() {
		if p := recover(); p != nil {
			c, err = nil, mapperr.CodecInstantiation(name, fmt.Errorf("panic: %v", p))
		}
	}()

	c, err = f()
	if err != nil {
		return nil, mapperr.CodecInstantiation(name, err)
	}

	if c == nil {
		return nil, mapperr.CodecInstantiation(name, errors.New("factory returned nil"))
	}

	return c, nil
}
