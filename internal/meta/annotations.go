package meta

import "slices"

// Kind discriminates metadata types. A Bag holds at most one annotation per Kind.
type Kind string

const (
	KindColumn           Kind = "column"
	KindField            Kind = "field"
	KindPartitionKey     Kind = "partitionKey"
	KindClusteringColumn Kind = "clusteringColumn"
	KindComputed         Kind = "computed"
	KindFrozen           Kind = "frozen"
	KindFrozenKey        Kind = "frozenKey"
	KindFrozenValue      Kind = "frozenValue"
	KindTransient        Kind = "transient"
)

var nonTransientKinds = []Kind{
	KindColumn,
	KindPartitionKey,
	KindClusteringColumn,
	KindField,
	KindComputed,
	KindFrozen,
	KindFrozenKey,
	KindFrozenValue,
}

// NonTransientKinds returns the kinds that mark a property as explicitly
// mapped. The result is a fresh slice.
func NonTransientKinds() []Kind {
	return slices.Clone(nonTransientKinds)
}

// IsNonTransient reports whether k belongs to NonTransientKinds.
func IsNonTransient(k Kind) bool {
	return slices.Contains(nonTransientKinds, k)
}

// NoCodec is the codec name meaning "no custom codec".
const NoCodec = "none"

// Annotation is a single metadata instance.
type Annotation interface {
	Kind() Kind
}

// Column overrides the table column a property maps to.
type Column struct {
	Name          string
	CaseSensitive bool
	Codec         string
}

// Kind implements Annotation.
func (Column) Kind() Kind { return KindColumn }

// Field overrides the UDT field a property maps to.
type Field struct {
	Name          string
	CaseSensitive bool
	Codec         string
}

// Kind implements Annotation.
func (Field) Kind() Kind { return KindField }

// PartitionKey marks a partition key component.
type PartitionKey struct {
	Position int
}

// Kind implements Annotation.
func (PartitionKey) Kind() Kind { return KindPartitionKey }

// ClusteringColumn marks a clustering column component.
type ClusteringColumn struct {
	Position int
}

// Kind implements Annotation.
func (ClusteringColumn) Kind() Kind { return KindClusteringColumn }

// Computed maps a property to a server-side expression such as "writetime(v)".
type Computed struct {
	Expression string
}

// Kind implements Annotation.
func (Computed) Kind() Kind { return KindComputed }

// Frozen marks a frozen collection or UDT; Definition optionally spells out
// nested frozen types.
type Frozen struct {
	Definition string
}

// Kind implements Annotation.
func (Frozen) Kind() Kind { return KindFrozen }

// FrozenKey marks the key type of a map as frozen.
type FrozenKey struct{}

// Kind implements Annotation.
func (FrozenKey) Kind() Kind { return KindFrozenKey }

// FrozenValue marks the element type of a collection as frozen.
type FrozenValue struct{}

// Kind implements Annotation.
func (FrozenValue) Kind() Kind { return KindFrozenValue }

// Transient excludes a property from mapping.
type Transient struct{}

// Kind implements Annotation.
func (Transient) Kind() Kind { return KindTransient }

// Custom is a directive with a name the engine does not know.
type Custom struct {
	Name string
	Args string
}

// Kind implements Annotation. The kind of a custom directive is its name.
func (c Custom) Kind() Kind { return Kind(c.Name) }
