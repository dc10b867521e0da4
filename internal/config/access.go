package config

import (
	"errors"
	"fmt"

	"property-mapper/internal/introspect"
	"property-mapper/internal/mapperr"
)

// AccessStrategy decides which members are scanned and how a property is
// read and written.
type AccessStrategy interface {
	FieldScanAllowed() bool
	AccessorScanAllowed() bool
	ChooseGetter(mapped introspect.Type, pd introspect.PropertyDescriptor) *introspect.Method
	ChooseSetter(mapped introspect.Type, pd introspect.PropertyDescriptor) *introspect.Method
	ReadProperty(entity any, name string, slot *introspect.Slot, getter *introspect.Method) (any, error)
	WriteProperty(entity any, name string, value any, slot *introspect.Slot, setter *introspect.Method) error
}

// AccessChecker is implemented by access strategies that can tell ahead of
// time whether a property will be readable or writable.
type AccessChecker interface {
	Readable(slot *introspect.Slot, getter *introspect.Method) bool
	Writable(slot *introspect.Slot, setter *introspect.Method) bool
}

// FieldFilter is implemented by access strategies that keep some slots out
// of the mapping unless an accessor covers them.
type FieldFilter interface {
	IncludeField(slot *introspect.Slot) bool
}

// DefaultAccess reads through the getter, else the field, and writes through
// the setter, else the field.
type DefaultAccess struct {
	mode       AccessMode
	unexported bool
}

// AccessOption configures DefaultAccess.
type AccessOption func(*DefaultAccess)

// WithAccessMode restricts scanning to fields or accessors.
func WithAccessMode(m AccessMode) AccessOption {
	return func(a *DefaultAccess) {
		a.mode = m
	}
}

// WithUnexportedFields allows unexported fields to be read and written directly.
func WithUnexportedFields() AccessOption {
	return func(a *DefaultAccess) {
		a.unexported = true
	}
}

// NewDefaultAccess creates the default access strategy.
func NewDefaultAccess(opts ...AccessOption) *DefaultAccess {
	a := &DefaultAccess{mode: AccessBoth}
	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Mode returns the configured access mode.
func (a *DefaultAccess) Mode() AccessMode { return a.mode }

// UnexportedFields reports whether unexported fields are accessed directly.
func (a *DefaultAccess) UnexportedFields() bool { return a.unexported }

// FieldScanAllowed reports whether fields are scanned.
func (a *DefaultAccess) FieldScanAllowed() bool { return a.mode != AccessAccessors }

// AccessorScanAllowed reports whether getters and setters are scanned.
func (a *DefaultAccess) AccessorScanAllowed() bool { return a.mode != AccessFields }

// ChooseGetter returns the conventional getter.
func (a *DefaultAccess) ChooseGetter(_ introspect.Type, pd introspect.PropertyDescriptor) *introspect.Method {
	return pd.Read
}

// ChooseSetter returns the conventional setter or, failing that, a SetX
// method of the mapped type taking exactly the property type whatever it
// returns.
func (a *DefaultAccess) ChooseSetter(mapped introspect.Type, pd introspect.PropertyDescriptor) *introspect.Method {
	if pd.Write != nil {
		return pd.Write
	}

	if pd.Read == nil || pd.Stem == "" {
		return nil
	}

	m, err := introspect.FindMethod(mapped, introspect.SetterName(pd.Stem), []introspect.TypeRef{pd.Type})
	if err != nil {
		return nil
	}

	return m
}

// IncludeField reports whether slot may back a property on its own.
func (a *DefaultAccess) IncludeField(slot *introspect.Slot) bool {
	return slot.Exported || a.unexported
}

func (a *DefaultAccess) fieldUsable(slot *introspect.Slot) bool {
	return slot != nil && a.mode != AccessAccessors && a.IncludeField(slot)
}

// Readable reports whether a getter or a usable field can read the property.
func (a *DefaultAccess) Readable(slot *introspect.Slot, getter *introspect.Method) bool {
	return getter != nil || a.fieldUsable(slot)
}

// Writable reports whether a setter or a usable field can write the property.
func (a *DefaultAccess) Writable(slot *introspect.Slot, setter *introspect.Method) bool {
	return setter != nil || a.fieldUsable(slot)
}

// ReadProperty reads the property through getter or slot.
func (a *DefaultAccess) ReadProperty(entity any, name string, slot *introspect.Slot, getter *introspect.Method) (any, error) {
	owner := declarer(slot, getter)

	if getter != nil {
		out, err := getter.Call(entity)
		if err == nil {
			err = trailingError(getter, out)
		}

		if err != nil {
			return nil, mapperr.Access(owner, name, err, "failed to read property through %s", getter.Name)
		}

		if len(out) == 0 {
			return nil, mapperr.Access(owner, name, errors.New("getter returned no value"), "failed to read property through %s", getter.Name)
		}

		return out[0], nil
	}

	if !a.fieldUsable(slot) {
		return nil, mapperr.Access(owner, name, nil, "no getter or accessible field")
	}

	v, err := slot.Get(entity)
	if err != nil {
		return nil, mapperr.Access(owner, name, err, "failed to read field %s", slot.Name)
	}

	return v, nil
}

// WriteProperty writes the property through setter or slot. Results of
// fluent setters are discarded.
func (a *DefaultAccess) WriteProperty(entity any, name string, value any, slot *introspect.Slot, setter *introspect.Method) error {
	owner := declarer(slot, setter)

	if setter != nil {
		out, err := setter.Call(entity, value)
		if err == nil {
			err = trailingError(setter, out)
		}

		if err != nil {
			return mapperr.Access(owner, name, err, "failed to write property through %s", setter.Name)
		}

		return nil
	}

	if !a.fieldUsable(slot) {
		return mapperr.Access(owner, name, nil, "no setter or accessible field")
	}

	if err := slot.Set(entity, value); err != nil {
		return mapperr.Access(owner, name, err, "failed to write field %s", slot.Name)
	}

	return nil
}

func trailingError(m *introspect.Method, out []any) error {
	if !m.ReturnsError() || len(out) == 0 {
		return nil
	}

	if err, ok := out[len(out)-1].(error); ok && err != nil {
		return err
	}

	return nil
}

func declarer(slot *introspect.Slot, m *introspect.Method) string {
	switch {
	case m != nil:
		return m.Declarer.String()
	case slot != nil:
		return slot.Declarer.String()
	default:
		return ""
	}
}

// String describes the strategy.
func (a *DefaultAccess) String() string {
	return fmt.Sprintf("default(mode=%s, unexported=%t)", a.mode, a.unexported)
}
