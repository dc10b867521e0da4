package mapper

import (
	"strings"

	"property-mapper/internal/meta"
)

// ColumnName infers the column of a property from its metadata. Computed
// properties map to their expression. Otherwise the column or field name is
// used, falling back to the property name; it is quoted when case-sensitive
// and lower-cased otherwise.
func ColumnName(property string, bag *meta.Bag) string {
	if computed, ok := meta.Lookup[meta.Computed](bag, meta.KindComputed); ok {
		return computed.Expression
	}

	name, caseSensitive := property, false

	if col, ok := meta.Lookup[meta.Column](bag, meta.KindColumn); ok {
		name, caseSensitive = nameOr(col.Name, property), col.CaseSensitive
	} else if field, ok := meta.Lookup[meta.Field](bag, meta.KindField); ok {
		name, caseSensitive = nameOr(field.Name, property), field.CaseSensitive
	}

	if caseSensitive {
		return Quote(name)
	}

	return strings.ToLower(name)
}

// Quote renders name as a quoted CQL identifier.
func Quote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// CodecName returns the codec requested by the column or field metadata,
// or "" when none applies.
func CodecName(bag *meta.Bag) string {
	name := ""

	if col, ok := meta.Lookup[meta.Column](bag, meta.KindColumn); ok {
		name = col.Codec
	} else if field, ok := meta.Lookup[meta.Field](bag, meta.KindField); ok {
		name = field.Codec
	}

	if name == meta.NoCodec {
		return ""
	}

	return name
}

func nameOr(name, fallback string) string {
	if name == "" {
		return fallback
	}

	return name
}
