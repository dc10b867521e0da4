package mapper

import (
	"fmt"
	"strings"

	"property-mapper/internal/codec"
	"property-mapper/internal/introspect"
	"property-mapper/internal/mapperr"
	"property-mapper/internal/meta"
)

// NoPosition is the position of properties that are not part of the key.
const NoPosition = -1

// MappedProperty is the immutable mapping of one property to a column.
type MappedProperty struct {
	owner            string
	propertyName     string
	columnName       string
	typ              introspect.TypeRef
	codec            codec.Codec
	partitionKey     bool
	clusteringColumn bool
	computed         bool
	position         int
	metadata         *meta.Bag
	get              func(entity any) (any, error)
	set              func(entity, value any) error
}

// PropertySpec describes a property built outside the scanning pipeline.
type PropertySpec struct {
	Owner            string // Mapped type, used in error messages
	PropertyName     string
	ColumnName       string
	Type             introspect.TypeRef
	Codec            codec.Codec
	PartitionKey     bool
	ClusteringColumn bool
	Computed         bool
	Position         int // Ignored unless PartitionKey or ClusteringColumn
	Metadata         *meta.Bag
	Get              func(entity any) (any, error)
	Set              func(entity, value any) error
}

// NewMappedProperty creates a property from spec. An empty column name
// defaults to the lower-cased property name.
func NewMappedProperty(spec PropertySpec) (*MappedProperty, error) {
	if spec.PropertyName == "" {
		return nil, mapperr.Configuration(spec.Owner, "", "property name is required")
	}

	if spec.PartitionKey && spec.ClusteringColumn {
		return nil, dualRoleError(spec.Owner, spec.PropertyName)
	}

	if spec.Computed && (spec.Get != nil || spec.Set != nil) {
		return nil, mapperr.Configuration(spec.Owner, spec.PropertyName, "computed property can't be bound to entity storage")
	}

	position := NoPosition
	if spec.PartitionKey || spec.ClusteringColumn {
		if spec.Position < 0 {
			return nil, mapperr.Configuration(spec.Owner, spec.PropertyName, "invalid position %d", spec.Position)
		}

		position = spec.Position
	}

	column := spec.ColumnName
	if column == "" {
		column = strings.ToLower(spec.PropertyName)
	}

	bag := meta.NewBag(spec.Metadata.All()...)

	return &MappedProperty{
		owner:            spec.Owner,
		propertyName:     spec.PropertyName,
		columnName:       column,
		typ:              spec.Type,
		codec:            spec.Codec,
		partitionKey:     spec.PartitionKey,
		clusteringColumn: spec.ClusteringColumn,
		computed:         spec.Computed,
		position:         position,
		metadata:         bag,
		get:              spec.Get,
		set:              spec.Set,
	}, nil
}

func errComputed(p *MappedProperty) error {
	return mapperr.Access(p.owner, p.propertyName, nil, "computed property has no entity storage")
}

func dualRoleError(owner, property string) error {
	return mapperr.Configuration(owner, property, "property can't be both a partition key and a clustering column")
}

// PropertyName returns the name of the property on the entity type.
func (p *MappedProperty) PropertyName() string { return p.propertyName }

// ColumnName returns the column, already quoted when case sensitive, or the
// computed expression.
func (p *MappedProperty) ColumnName() string { return p.columnName }

// Type returns the declared type of the property.
func (p *MappedProperty) Type() introspect.TypeRef { return p.typ }

// CustomCodec returns the codec bound to the property, or nil.
func (p *MappedProperty) CustomCodec() codec.Codec { return p.codec }

// IsPartitionKey reports whether the property is part of the partition key.
func (p *MappedProperty) IsPartitionKey() bool { return p.partitionKey }

// IsClusteringColumn reports whether the property is a clustering column.
func (p *MappedProperty) IsClusteringColumn() bool { return p.clusteringColumn }

// IsComputed reports whether the column name is a computed expression.
func (p *MappedProperty) IsComputed() bool { return p.computed }

// Position returns the key position, or NoPosition for regular columns.
func (p *MappedProperty) Position() int { return p.position }

// Metadata returns a copy of the resolved metadata.
func (p *MappedProperty) Metadata() *meta.Bag { return meta.NewBag(p.metadata.All()...) }

// Get reads the property value from entity. Computed properties have no
// entity storage and always fail.
func (p *MappedProperty) Get(entity any) (any, error) {
	if p.computed {
		return nil, errComputed(p)
	}

	if p.get == nil {
		return nil, mapperr.Access(p.owner, p.propertyName, nil, "property is not readable")
	}

	return p.get(entity)
}

// Set writes value into the property of entity. Entities must be passed by
// pointer.
func (p *MappedProperty) Set(entity, value any) error {
	if p.computed {
		return errComputed(p)
	}

	if p.set == nil {
		return mapperr.Access(p.owner, p.propertyName, nil, "property is not writable")
	}

	return p.set(entity, value)
}

// String returns a short description, e.g. "id -> id (string, pk 0)".
func (p *MappedProperty) String() string {
	var role string

	switch {
	case p.partitionKey:
		role = fmt.Sprintf(", pk %d", p.position)
	case p.clusteringColumn:
		role = fmt.Sprintf(", cc %d", p.position)
	case p.computed:
		role = ", computed"
	}

	return fmt.Sprintf("%s -> %s (%s%s)", p.propertyName, p.columnName, p.typ, role)
}
