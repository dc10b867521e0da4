package config

import (
	"fmt"

	"property-mapper/internal/introspect"
	"property-mapper/internal/meta"
)

// DefaultTransientProperties returns the property names excluded by default:
// JVM-style class members and the legacy protobuf generated members.
func DefaultTransientProperties() []string {
	return []string{
		"class",
		"metaClass",
		"XXX_NoUnkeyedLiteral",
		"XXX_unrecognized",
		"XXX_sizecache",
	}
}

// PropertyContext is what a transience strategy knows about a candidate.
type PropertyContext struct {
	Type     introspect.Type
	Name     string
	Slot     *introspect.Slot
	Getter   *introspect.Method
	Setter   *introspect.Method
	Metadata *meta.Bag
	// Denylisted reports that Name is in the configuration's transient
	// property set. The engine does not act on it.
	Denylisted bool
}

// TransienceStrategy decides whether a property is excluded from the mapping.
//
// A strategy alone decides about denylisted names. Strategies should let
// explicit mapping metadata (any kind in meta.NonTransientKinds()) keep a
// denylisted property mapped.
type TransienceStrategy interface {
	IsTransient(ctx PropertyContext) bool
}

// Explainer is implemented by strategies that can say why a property was
// excluded.
type Explainer interface {
	TransientReason(ctx PropertyContext) string
}

type optOut struct{}

// OptOut maps every property except those marked transient, tagged
// `cql:"-"`, or denylisted without explicit mapping metadata.
func OptOut() TransienceStrategy {
	return optOut{}
}

func (s optOut) IsTransient(ctx PropertyContext) bool {
	return s.TransientReason(ctx) != ""
}

func (optOut) TransientReason(ctx PropertyContext) string {
	switch {
	case ctx.Metadata.Has(meta.KindTransient):
		return "marked transient"
	case ctx.Slot != nil && ctx.Slot.Transient:
		return fmt.Sprintf("field %s is tagged %s:%q", ctx.Slot.Name, meta.TagKey, meta.SkipTag)
	case ctx.Denylisted && !ctx.Metadata.HasAny(meta.NonTransientKinds()...):
		return fmt.Sprintf("%q is a transient property name", ctx.Name)
	default:
		return ""
	}
}

func (optOut) String() string { return OptOutStrategy.String() }

type optIn struct{}

// OptIn maps only properties carrying explicit mapping metadata.
func OptIn() TransienceStrategy {
	return optIn{}
}

func (s optIn) IsTransient(ctx PropertyContext) bool {
	return s.TransientReason(ctx) != ""
}

func (optIn) TransientReason(ctx PropertyContext) string {
	if ctx.Metadata.HasAny(meta.NonTransientKinds()...) {
		return ""
	}

	return "no mapping metadata"
}

func (optIn) String() string { return OptInStrategy.String() }
