package mapper

import (
	"errors"
	"fmt"
	"reflect"
	"slices"

	"go.uber.org/zap"

	"property-mapper/internal/config"
	"property-mapper/internal/diagnostic"
	"property-mapper/internal/introspect"
	"property-mapper/internal/mapperr"
	"property-mapper/internal/meta"
	"property-mapper/internal/scan"
)

// PropertyProvider is implemented by access strategies that build the
// mapped properties themselves. When the configured access strategy is a
// PropertyProvider, scanning is skipped entirely.
type PropertyProvider interface {
	MapProperties(hierarchy []introspect.Type) ([]*MappedProperty, error)
}

// Mapping is the set of mapped properties of a type.
type Mapping struct {
	Type        introspect.TypeID
	Properties  []*MappedProperty // Sorted by property name
	Diagnostics *diagnostic.Diagnostics

	byName map[string]*MappedProperty
}

// Property returns the property with the given name.
func (m *Mapping) Property(name string) (*MappedProperty, bool) {
	p, ok := m.byName[name]
	return p, ok
}

// PartitionKey returns the partition key properties ordered by position.
func (m *Mapping) PartitionKey() []*MappedProperty {
	return m.byPosition((*MappedProperty).IsPartitionKey)
}

// ClusteringColumns returns the clustering columns ordered by position.
func (m *Mapping) ClusteringColumns() []*MappedProperty {
	return m.byPosition((*MappedProperty).IsClusteringColumn)
}

// Regular returns the properties outside the primary key, by name.
func (m *Mapping) Regular() []*MappedProperty {
	var out []*MappedProperty

	for _, p := range m.Properties {
		if !p.IsPartitionKey() && !p.IsClusteringColumn() {
			out = append(out, p)
		}
	}

	return out
}

// Columns returns the column names: partition key, clustering columns, then
// regular columns.
func (m *Mapping) Columns() []string {
	var out []string

	for _, group := range [][]*MappedProperty{m.PartitionKey(), m.ClusteringColumns(), m.Regular()} {
		for _, p := range group {
			out = append(out, p.ColumnName())
		}
	}

	return out
}

func (m *Mapping) byPosition(keep func(*MappedProperty) bool) []*MappedProperty {
	var out []*MappedProperty

	for _, p := range m.Properties {
		if keep(p) {
			out = append(out, p)
		}
	}

	slices.SortStableFunc(out, func(a, b *MappedProperty) int {
		return a.Position() - b.Position()
	})

	return out
}

func newMapping(id introspect.TypeID, props []*MappedProperty, diags *diagnostic.Diagnostics) *Mapping {
	props = slices.Clone(props)
	slices.SortFunc(props, func(a, b *MappedProperty) int {
		switch {
		case a.PropertyName() < b.PropertyName():
			return -1
		case a.PropertyName() > b.PropertyName():
			return 1
		default:
			return 0
		}
	})

	byName := make(map[string]*MappedProperty, len(props))
	for _, p := range props {
		byName[p.PropertyName()] = p
	}

	return &Mapping{Type: id, Properties: props, Diagnostics: diags, byName: byName}
}

// For maps T with the default reflect backend.
func For[T any](cfg *config.Configuration) (*Mapping, error) {
	return MapReflect(reflect.TypeFor[T](), cfg)
}

// MapReflect maps rt with the default reflect backend.
func MapReflect(rt reflect.Type, cfg *config.Configuration) (*Mapping, error) {
	t, err := introspect.ReflectType(rt)
	if err != nil {
		return nil, err
	}

	return Map(t, cfg)
}

// Map builds the mapping of t. A nil configuration selects config.Default().
// Any error aborts the whole pass.
func Map(t introspect.Type, cfg *config.Configuration) (*Mapping, error) {
	if t == nil {
		return nil, mapperr.Introspection("<nil>", errors.New("nil type"))
	}

	if cfg == nil {
		cfg = config.Default()
	}

	typeName := t.ID().String()
	log := Logger().With(zap.String("type", typeName))

	hierarchy := cfg.HierarchyScanStrategy().FilterHierarchy(t)
	diags := &diagnostic.Diagnostics{}

	if provider, ok := cfg.AccessStrategy().(PropertyProvider); ok {
		props, err := provider.MapProperties(hierarchy)
		if err != nil {
			return nil, err
		}

		log.Debug("mapped type through property provider", zap.Int("properties", len(props)))

		return newMapping(t.ID(), props, diags), nil
	}

	cands, dropped, err := scan.Scan(t, hierarchy, cfg.AccessStrategy())
	if err != nil {
		return nil, err
	}

	for _, name := range dropped {
		diags.AddInfo(diagnostic.CodeUnexported, "unexported field without accessors", typeName, name)
	}

	resolver := scan.NewResolver(scan.DefaultSources(scan.ChainLookup(hierarchy...))...)
	transience := cfg.TransienceStrategy()

	var props []*MappedProperty

	for _, c := range cands.Sorted() {
		bag, err := resolver.Resolve(c)
		if err != nil {
			return nil, locate(err, mapperr.KindIntrospection, typeName, c.Name)
		}

		ctx := config.PropertyContext{
			Type:       t,
			Name:       c.Name,
			Slot:       c.Slot,
			Getter:     c.Getter,
			Setter:     c.Setter,
			Metadata:   bag,
			Denylisted: cfg.IsTransientProperty(c.Name),
		}

		if transience.IsTransient(ctx) {
			reason := "excluded by the transience strategy"
			if e, ok := transience.(config.Explainer); ok {
				reason = e.TransientReason(ctx)
			}

			diags.AddInfo(diagnostic.CodeTransient, reason, typeName, c.Name)
			log.Debug("property is transient", zap.String("property", c.Name), zap.String("reason", reason))

			continue
		}

		if ctx.Denylisted {
			diags.AddWarning(diagnostic.CodeDenylistOverridden,
				fmt.Sprintf("%q is a transient property name but is mapped through its metadata", c.Name),
				typeName, c.Name)
		}

		p, err := buildProperty(typeName, c, bag, cfg)
		if err != nil {
			return nil, err
		}

		props = append(props, p)
	}

	log.Debug("mapped type",
		zap.Int("hierarchy", len(hierarchy)),
		zap.Int("candidates", len(cands)),
		zap.Int("properties", len(props)))

	return newMapping(t.ID(), props, diags), nil
}

func buildProperty(typeName string, c *scan.Candidate, bag *meta.Bag, cfg *config.Configuration) (*MappedProperty, error) {
	pk, isPK := meta.Lookup[meta.PartitionKey](bag, meta.KindPartitionKey)
	cc, isCC := meta.Lookup[meta.ClusteringColumn](bag, meta.KindClusteringColumn)

	if isPK && isCC {
		return nil, dualRoleError(typeName, c.Name)
	}

	position := NoPosition

	switch {
	case isPK:
		position = pk.Position
	case isCC:
		position = cc.Position
	}

	access := cfg.AccessStrategy()
	computed := bag.Has(meta.KindComputed)

	// The expression is evaluated by the server; the entity never stores it.
	if !computed {
		if err := checkAccess(typeName, c, access); err != nil {
			return nil, err
		}
	}

	spec := PropertySpec{
		Owner:            typeName,
		PropertyName:     c.Name,
		ColumnName:       ColumnName(c.Name, bag),
		Type:             declaredType(c),
		PartitionKey:     isPK,
		ClusteringColumn: isCC,
		Computed:         computed,
		Position:         position,
		Metadata:         bag,
	}

	if name := CodecName(bag); name != "" {
		cod, err := cfg.Codecs().Instantiate(name)
		if err != nil {
			return nil, locate(err, mapperr.KindCodecInstantiation, typeName, c.Name)
		}

		spec.Codec = cod
	}

	if computed {
		return NewMappedProperty(spec)
	}

	name, slot, getter, setter := c.Name, c.Slot, c.Getter, c.Setter

	spec.Get = func(entity any) (any, error) {
		return access.ReadProperty(entity, name, slot, getter)
	}
	spec.Set = func(entity, value any) error {
		return access.WriteProperty(entity, name, value, slot, setter)
	}

	return NewMappedProperty(spec)
}

// checkAccess fails unless c can be both read and written.
func checkAccess(typeName string, c *scan.Candidate, access config.AccessStrategy) error {
	readable, writable := c.Getter != nil || c.Slot != nil, c.Setter != nil || c.Slot != nil

	if checker, ok := access.(config.AccessChecker); ok {
		readable, writable = checker.Readable(c.Slot, c.Getter), checker.Writable(c.Slot, c.Setter)
	}

	if !readable {
		return mapperr.Configuration(typeName, c.Name, "property '%s' is not readable", c.Name)
	}

	if !writable {
		return mapperr.Configuration(typeName, c.Name, "property '%s' is not writable", c.Name)
	}

	return nil
}

func declaredType(c *scan.Candidate) introspect.TypeRef {
	switch {
	case c.Getter != nil && len(c.Getter.ValueResults()) > 0:
		return c.Getter.ValueResults()[0]
	case c.Slot != nil:
		return c.Slot.Type
	case c.Setter != nil && len(c.Setter.Params) > 0:
		return c.Setter.Params[0]
	default:
		return introspect.TypeRef{}
	}
}

// locate attaches the type and property to err, converting plain errors to
// the given kind.
func locate(err error, kind mapperr.Kind, typeName, property string) error {
	var merr *mapperr.Error
	if !errors.As(err, &merr) {
		return mapperr.New(kind).Type(typeName).Property(property).Cause(err).Detail("failed to map property").Build()
	}

	located := *merr
	if located.Type == "" {
		located.Type = typeName
	}

	if located.Property == "" {
		located.Property = property
	}

	return &located
}
