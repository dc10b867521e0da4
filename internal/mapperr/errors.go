package mapperr

import (
	"fmt"
	"strings"
)

// Kind categorizes the error
type Kind string

const (
	KindConfiguration      Kind = "configuration"
	KindAccess             Kind = "access"
	KindCodecInstantiation Kind = "codec_instantiation"
	KindIntrospection      Kind = "introspection"
)

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrConfiguration      = &Error{Kind: KindConfiguration}
	ErrAccess             = &Error{Kind: KindAccess}
	ErrCodecInstantiation = &Error{Kind: KindCodecInstantiation}
	ErrIntrospection      = &Error{Kind: KindIntrospection}
)

// Error is the structured error type used throughout the mapping engine
type Error struct {
	Cause    error
	Kind     Kind
	Type     string
	Property string
	Detail   string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Kind))
	b.WriteByte(']')

	if e.Type != "" || e.Property != "" {
		b.WriteByte(' ')
		b.WriteString(e.Type)
		if e.Type != "" && e.Property != "" {
			b.WriteByte('.')
		}
		b.WriteString(e.Property)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(kind Kind) *Builder {
	return &Builder{err: Error{Kind: kind}}
}

// Type sets the name of the mapped type
func (b *Builder) Type(name string) *Builder {
	b.err.Type = name
	return b
}

// Property sets the property name
func (b *Builder) Property(name string) *Builder {
	b.err.Property = name
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	err := b.err
	return &err
}

// Configuration creates a configuration error for a property
func Configuration(typeName, property, detail string, args ...any) *Error {
	return New(KindConfiguration).Type(typeName).Property(property).Detail(detail, args...).Build()
}

// Access creates an access error wrapping the failure cause
func Access(typeName, property string, cause error, detail string, args ...any) *Error {
	return New(KindAccess).Type(typeName).Property(property).Cause(cause).Detail(detail, args...).Build()
}

// CodecInstantiation creates a codec construction error
func CodecInstantiation(codec string, cause error) *Error {
	return New(KindCodecInstantiation).Cause(cause).Detail("can't create an instance of codec %q", codec).Build()
}

// Introspection wraps a failure to enumerate a type's members
func Introspection(typeName string, cause error) *Error {
	return New(KindIntrospection).Type(typeName).Cause(cause).Detail("cannot introspect type").Build()
}
