package scan

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property-mapper/internal/config"
	"property-mapper/internal/introspect"
	"property-mapper/internal/mapperr"
	"property-mapper/internal/meta"
)

type Named interface {
	GetName() string
}

type animal struct {
	Name  string `cql:"column(name=animal_name)"`
	Legs  int    `cql:"clusteringColumn(1)"`
	sound string
}

func (a *animal) GetName() string  { return a.Name }
func (a *animal) GetSound() string { return a.sound }

type dog struct {
	animal
	Legs  int `cql:"column(name=dog_legs)"`
	Breed string
	chip  int
	_     int
}

func (d *dog) GetName() string   { return d.animal.GetName() }
func (d *dog) GetBreed() string  { return d.Breed }
func (d *dog) SetBreed(b string) { d.Breed = b }

type brokenTags struct {
	X int `cql:"column(name="`
}

func reflector() *introspect.Reflector {
	return introspect.NewReflector(
		introspect.WithContracts(reflect.TypeFor[dog](), reflect.TypeFor[Named]()),
		introspect.WithMethodTags(reflect.TypeFor[dog](), map[string]string{
			"GetBreed": "column(name=breed_name); frozen",
		}),
		introspect.WithMethodTags(reflect.TypeFor[animal](), map[string]string{
			"GetName":  "partitionKey; column(name=ignored)",
			"GetSound": "computed(writetime(sound))",
		}),
		introspect.WithMethodTags(reflect.TypeFor[Named](), map[string]string{
			"GetName": "field(name=udt_name); frozenKey",
		}),
	)
}

func scanDog(t *testing.T, access config.AccessStrategy) (introspect.Type, Candidates) {
	t.Helper()

	typ, err := reflector().TypeOf(reflect.TypeFor[dog]())
	require.NoError(t, err)

	hierarchy := config.NewHierarchyScan().FilterHierarchy(typ)

	cands, _, err := Scan(typ, hierarchy, access)
	require.NoError(t, err)

	return typ, cands
}

func TestScan_Default(t *testing.T) {
	_, cands := scanDog(t, config.NewDefaultAccess())

	var names []string
	for _, c := range cands.Sorted() {
		names = append(names, c.Name)
	}

	assert.Equal(t, []string{"breed", "legs", "name", "sound"}, names)

	legs := cands["legs"]
	require.NotNil(t, legs.Slot)
	assert.Equal(t, "dog", legs.Slot.Declarer.Name, "the most specific declaration wins")
	assert.Nil(t, legs.Getter)

	breed := cands["breed"]
	assert.NotNil(t, breed.Slot)
	assert.Equal(t, "GetBreed", breed.Getter.Name)
	assert.Equal(t, "SetBreed", breed.Setter.Name)

	sound := cands["sound"]
	assert.Equal(t, "sound", sound.Slot.Name)
	assert.Equal(t, "GetSound", sound.Getter.Name)
	assert.Nil(t, sound.Setter)
}

func TestScan_Modes(t *testing.T) {
	_, fields := scanDog(t, config.NewDefaultAccess(config.WithAccessMode(config.AccessFields)))
	assert.ElementsMatch(t, []string{"legs", "breed", "name"}, keys(fields))

	for _, c := range fields {
		assert.Nil(t, c.Getter)
		assert.Nil(t, c.Setter)
	}

	_, accessors := scanDog(t, config.NewDefaultAccess(config.WithAccessMode(config.AccessAccessors)))
	assert.ElementsMatch(t, []string{"breed", "name", "sound"}, keys(accessors))

	for _, c := range accessors {
		assert.Nil(t, c.Slot)
	}

	_, unexported := scanDog(t, config.NewDefaultAccess(config.WithUnexportedFields()))
	assert.ElementsMatch(t, []string{"breed", "chip", "legs", "name", "sound"}, keys(unexported))
}

func TestScan_Disabled(t *testing.T) {
	typ, err := introspect.TypeFor[dog]()
	require.NoError(t, err)

	cands, _, err := Scan(typ, []introspect.Type{typ}, noScan{})
	require.NoError(t, err)
	assert.Empty(t, cands)
}

func TestScan_IntrospectionError(t *testing.T) {
	typ := introspect.NewStatic(introspect.TypeID{Name: "Broken"})
	failing := failingType{typ}

	_, _, err := Scan(failing, []introspect.Type{failing}, config.NewDefaultAccess())
	require.Error(t, err)
	assert.ErrorIs(t, err, mapperr.ErrIntrospection)
	assert.ErrorContains(t, err, "[introspection] Broken")

	_, err = introspect.TypeFor[brokenTags]()
	assert.ErrorIs(t, err, mapperr.ErrIntrospection)
}

func TestResolve_Precedence(t *testing.T) {
	typ, cands := scanDog(t, config.NewDefaultAccess())

	resolver := NewResolver(DefaultSources(ChainLookup(typ))...)
	require.Len(t, resolver.Sources(), 4)

	name, err := resolver.Resolve(cands["name"])
	require.NoError(t, err)

	// dog's override carries no tags of its own; animal's declaration and
	// the Named contract fill in.
	pk, ok := meta.Lookup[meta.PartitionKey](name, meta.KindPartitionKey)
	require.True(t, ok)
	assert.Equal(t, 0, pk.Position)

	col, ok := meta.Lookup[meta.Column](name, meta.KindColumn)
	require.True(t, ok)
	assert.Equal(t, "animal_name", col.Name, "field metadata beats overridden getters")

	assert.True(t, name.Has(meta.KindField))
	assert.True(t, name.Has(meta.KindFrozenKey))
	assert.Equal(t, []meta.Kind{
		meta.KindColumn, meta.KindPartitionKey, meta.KindField, meta.KindFrozenKey,
	}, name.Kinds())

	breed, err := resolver.Resolve(cands["breed"])
	require.NoError(t, err)

	col, _ = meta.Lookup[meta.Column](breed, meta.KindColumn)
	assert.Equal(t, "breed_name", col.Name)
	assert.True(t, breed.Has(meta.KindFrozen))

	legs, err := resolver.Resolve(cands["legs"])
	require.NoError(t, err)
	assert.Equal(t, []meta.Kind{meta.KindColumn}, legs.Kinds(), "shadowed ancestor fields contribute nothing")
}

func TestResolve_GetterBeatsField(t *testing.T) {
	id := introspect.TypeID{Name: "Item"}
	typ := introspect.NewStatic(id).
		WithSlots(introspect.Slot{Name: "code", Metadata: []meta.Annotation{
			meta.Column{Name: "from_field"}, meta.ClusteringColumn{Position: 2},
		}}).
		WithMethods(introspect.Method{
			Name:     "GetCode",
			Results:  []introspect.TypeRef{introspect.NamedTypeRef("string")},
			Metadata: []meta.Annotation{meta.Column{Name: "from_getter"}},
		})

	cands, _, err := Scan(typ, []introspect.Type{typ}, config.NewDefaultAccess(config.WithUnexportedFields()))
	require.NoError(t, err)

	bag, err := NewResolver(DefaultSources(ChainLookup(typ))...).Resolve(cands["code"])
	require.NoError(t, err)

	col, _ := meta.Lookup[meta.Column](bag, meta.KindColumn)
	assert.Equal(t, "from_getter", col.Name)

	cc, ok := meta.Lookup[meta.ClusteringColumn](bag, meta.KindClusteringColumn)
	require.True(t, ok)
	assert.Equal(t, 2, cc.Position)
}

func TestResolve_OverriddenBeyondCutoff(t *testing.T) {
	base := introspect.NewStatic(introspect.TypeID{Name: "Base"}).
		WithMethods(introspect.Method{
			Name:     "GetV",
			Results:  []introspect.TypeRef{introspect.NamedTypeRef("int")},
			Metadata: []meta.Annotation{meta.PartitionKey{Position: 4}},
		})
	child := introspect.NewStatic(introspect.TypeID{Name: "Child"}).
		WithAncestor(base).
		WithMethods(introspect.Method{Name: "GetV", Results: []introspect.TypeRef{introspect.NamedTypeRef("int")}})

	hierarchy := config.NewHierarchyScan(config.WithHighestAncestor(base.ID(), false)).FilterHierarchy(child)
	require.Len(t, hierarchy, 1)

	cands, _, err := Scan(child, hierarchy, config.NewDefaultAccess())
	require.NoError(t, err)

	bag, err := NewResolver(DefaultSources(ChainLookup(hierarchy...))...).Resolve(cands["v"])
	require.NoError(t, err)

	pk, ok := meta.Lookup[meta.PartitionKey](bag, meta.KindPartitionKey)
	require.True(t, ok)
	assert.Equal(t, 4, pk.Position)
}

type stamped struct {
	at int64
}

func (s *stamped) GetAt() int64 { return s.at }

type event struct {
	stamped
	Kind string
	seq  int
}

func (e *event) SetAt(v int64) { e.at = v }

func TestScan_AccessorsAcrossLevels(t *testing.T) {
	typ, err := introspect.TypeFor[event]()
	require.NoError(t, err)

	cands, dropped, err := Scan(typ, config.NewHierarchyScan().FilterHierarchy(typ), config.NewDefaultAccess())
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"at", "kind"}, keys(cands))
	assert.Equal(t, []string{"seq"}, dropped)

	at := cands["at"]
	require.NotNil(t, at.Getter)
	require.NotNil(t, at.Setter)
	assert.Equal(t, "stamped", at.Getter.Declarer.Name)
	assert.Equal(t, "event", at.Setter.Declarer.Name)

	own, dropped, err := Scan(typ, config.DisabledHierarchyScan().FilterHierarchy(typ), config.NewDefaultAccess())
	require.NoError(t, err)
	assert.Equal(t, []string{"seq"}, dropped)
	assert.Nil(t, own["at"].Getter, "the ancestor getter is cut off")
	assert.Equal(t, "SetAt", own["at"].Setter.Name)
}

func TestScan_DroppedUnexported(t *testing.T) {
	assert.Equal(t, []string{"chip"}, scanDropped(t, config.NewDefaultAccess()))

	none := scanDropped(t, config.NewDefaultAccess(config.WithUnexportedFields()))
	assert.Empty(t, none)
}

func scanDropped(t *testing.T, access config.AccessStrategy) []string {
	t.Helper()

	typ, err := reflector().TypeOf(reflect.TypeFor[dog]())
	require.NoError(t, err)

	_, dropped, err := Scan(typ, config.NewHierarchyScan().FilterHierarchy(typ), access)
	require.NoError(t, err)

	return dropped
}

type noScan struct{ config.AccessStrategy }

func (noScan) FieldScanAllowed() bool    { return false }
func (noScan) AccessorScanAllowed() bool { return false }

type failingType struct{ *introspect.StaticType }

func (failingType) Slots() ([]introspect.Slot, error) {
	return nil, assert.AnError
}

func keys(c Candidates) []string {
	out := make([]string, 0, len(c))
	for k := range c {
		out = append(out, k)
	}

	return out
}
