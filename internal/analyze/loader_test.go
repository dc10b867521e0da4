package analyze

import (
	"reflect"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property-mapper/examples/inventory"
	"property-mapper/examples/inventory/audit"
	"property-mapper/internal/codec"
	"property-mapper/internal/config"
	"property-mapper/internal/introspect"
	"property-mapper/internal/mapper"
	"property-mapper/internal/mapperr"
	"property-mapper/internal/meta"
)

const (
	inventoryPkg = "property-mapper/examples/inventory"
	legacyPkg    = "property-mapper/examples/inventory/legacy"
	auditPkg     = "property-mapper/examples/inventory/audit"
)

func inventoryID(name string) introspect.TypeID {
	return introspect.TypeID{PkgPath: inventoryPkg, Name: name}
}

func loadInventory(t *testing.T) *Graph {
	t.Helper()

	graph, err := NewAnalyzer().LoadPackages(inventoryPkg)
	require.NoError(t, err)
	require.NotNil(t, graph)

	return graph
}

func TestAnalyzer_LoadPackages(t *testing.T) {
	graph, err := NewAnalyzer().LoadPackages(inventoryPkg, legacyPkg)
	require.NoError(t, err)

	assert.Contains(t, graph.Packages, inventoryPkg)
	assert.Contains(t, graph.Packages, legacyPkg)

	for _, name := range []string{"Entity", "Named", "Product", "Customer", "Order"} {
		assert.Contains(t, graph.Types, inventoryID(name))
	}

	assert.NotContains(t, graph.Types, inventoryID("OrderStatus"), "only structs and interfaces are described")
	assert.True(t, graph.GetType(inventoryID("Named")).IsInterface())
}

func TestAnalyzer_LoadPackagesError(t *testing.T) {
	_, err := NewAnalyzer().LoadPackages("property-mapper/examples/does-not-exist")
	require.Error(t, err)
	assert.ErrorIs(t, err, mapperr.ErrIntrospection)
}

func TestAnalyzer_ProductShape(t *testing.T) {
	graph := loadInventory(t)

	product := graph.GetType(inventoryID("Product"))
	require.NotNil(t, product)

	anc, ok := product.Ancestor()
	require.True(t, ok)
	assert.Equal(t, inventoryID("Entity"), anc.ID())

	_, ok = anc.Ancestor()
	assert.False(t, ok)

	slots, err := product.Slots()
	require.NoError(t, err)

	var names []string
	for _, s := range slots {
		names = append(names, s.Name)
	}

	assert.Equal(t, []string{"SKU", "name", "PriceCents", "Tags", "Attributes", "Cache", "CreatedAt"}, names)

	cache := slots[5]
	assert.True(t, cache.Transient)
	assert.False(t, slots[1].Exported)
	assert.Equal(t, "map[string]string", slots[4].Type.String())
	assert.Equal(t, "time.Time", slots[6].Type.String())
	assert.False(t, cache.Bound())

	_, err = cache.Get(nil)
	assert.ErrorIs(t, err, introspect.ErrNoBinding)

	contracts := product.Contracts()
	require.Len(t, contracts, 1)
	assert.Equal(t, inventoryID("Named"), contracts[0].ID())
}

func TestAnalyzer_MethodDirectives(t *testing.T) {
	graph := loadInventory(t)

	product := graph.GetType(inventoryID("Product"))

	m, err := introspect.DeclaredMethod(product, "IsDiscontinued", nil)
	require.NoError(t, err)
	require.NotNil(t, m)

	assert.Equal(t, []meta.Annotation{meta.Transient{}}, m.Metadata)
	assert.True(t, m.Results[0].IsBool())
	assert.Equal(t, inventoryID("Product"), m.Declarer)

	named := graph.GetType(inventoryID("Named"))

	getName, err := introspect.DeclaredMethod(named, "GetName", nil)
	require.NoError(t, err)
	require.NotNil(t, getName)
	assert.Equal(t, []meta.Annotation{meta.Column{Name: "display_name"}}, getName.Metadata)
}

func TestAnalyzer_MapProduct(t *testing.T) {
	graph := loadInventory(t)

	m, err := mapper.Map(graph.GetType(inventoryID("Product")), nil)
	require.NoError(t, err)

	var names []string
	for _, p := range m.Properties {
		names = append(names, p.PropertyName())
	}

	assert.Equal(t,
		[]string{"ID", "SKU", "attributes", "createdAt", "name", "priceCents", "tags", "version"},
		names, spew.Sdump(m.Properties))
	assert.Equal(t,
		[]string{"id", "sku", "attributes", "writetime(sku)", "display_name", "price", "tags", "version"},
		m.Columns())

	id, ok := m.Property("ID")
	require.True(t, ok)
	assert.Equal(t, "uuid.UUID", id.Type().String())
	assert.IsType(t, &codec.UUIDCodec{}, id.CustomCodec())

	attrs, _ := m.Property("attributes")
	assert.IsType(t, codec.JSONCodec{}, attrs.CustomCodec())

	_, err = id.Get(struct{}{})
	assert.ErrorIs(t, err, mapperr.ErrAccess)
	assert.ErrorIs(t, err, introspect.ErrNoBinding)
}

func TestAnalyzer_MapCustomerAndOrder(t *testing.T) {
	graph := loadInventory(t)

	for _, name := range []string{"Customer", "Order"} {
		t.Run(name, func(t *testing.T) {
			m, err := mapper.Map(graph.GetType(inventoryID(name)), nil)
			require.NoError(t, err)

			switch name {
			case "Customer":
				assert.Equal(t, []string{"id", "address", `"Email"`, "fullname", "isactive", "version"}, m.Columns())
			case "Order":
				assert.Equal(t, []string{"customerid", "orderedat", "line", "status", "totalcents"}, m.Columns())
			}
		})
	}
}

func TestAnalyzer_MalformedMetadata(t *testing.T) {
	graph, err := NewAnalyzer().LoadPackages(legacyPkg)
	require.NoError(t, err, "malformed metadata only fails the affected type")

	broken := graph.GetType(introspect.TypeID{PkgPath: legacyPkg, Name: "Broken"})
	require.NotNil(t, broken)

	_, err = broken.Slots()
	assert.ErrorIs(t, err, mapperr.ErrIntrospection)

	_, err = mapper.Map(broken, nil)
	assert.ErrorIs(t, err, mapperr.ErrIntrospection)

	_, err = mapper.Map(graph.GetType(introspect.TypeID{PkgPath: legacyPkg, Name: "Dual"}), nil)
	assert.ErrorIs(t, err, mapperr.ErrConfiguration)
}

func TestAnalyzer_ReflectParity(t *testing.T) {
	graph := loadInventory(t)

	product := reflect.TypeFor[inventory.Product]()
	named := reflect.TypeFor[inventory.Named]()

	r := introspect.NewReflector(
		introspect.WithContracts(product, named),
		introspect.WithMethodTags(named, map[string]string{"GetName": "column(name=display_name)"}),
		introspect.WithMethodTags(product, map[string]string{"IsDiscontinued": "transient"}),
	)

	rt, err := r.TypeOf(product)
	require.NoError(t, err)

	fromReflect, err := mapper.Map(rt, nil)
	require.NoError(t, err)

	fromSource, err := mapper.Map(graph.GetType(inventoryID("Product")), nil)
	require.NoError(t, err)

	describe := func(m *mapper.Mapping) []string {
		var out []string
		for _, p := range m.Properties {
			out = append(out, p.String())
		}

		return out
	}

	assert.Equal(t, describe(fromReflect), describe(fromSource))
}

func TestAnalyzer_DeclaredMethodsOnly(t *testing.T) {
	graph, err := NewAnalyzer().LoadPackages(auditPkg)
	require.NoError(t, err)

	stock := graph.GetType(introspect.TypeID{PkgPath: auditPkg, Name: "StockLevel"})
	require.NotNil(t, stock)

	methods, err := stock.Methods()
	require.NoError(t, err)
	assert.Empty(t, methods, "GetEditor and SetEditor belong to Trail")

	trail, ok := stock.Ancestor()
	require.True(t, ok)

	methods, err = trail.Methods()
	require.NoError(t, err)
	require.Len(t, methods, 2)
	assert.Equal(t, "GetEditor", methods[0].Name)
	assert.Equal(t, trail.ID(), methods[0].Declarer)

	r := introspect.NewReflector()

	rt, err := r.TypeOf(reflect.TypeFor[audit.StockLevel]())
	require.NoError(t, err)

	tests := []struct {
		name      string
		hierarchy config.HierarchyScanStrategy
		want      []string
	}{
		{"full", config.NewHierarchyScan(), []string{"SKU", "editor", "quantity"}},
		{"disabled", config.DisabledHierarchyScan(), []string{"SKU", "quantity"}},
		{"exclusive", config.NewHierarchyScan(config.WithHighestAncestor(trail.ID(), false)), []string{"SKU", "quantity"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.NewBuilder().WithHierarchyScanStrategy(tt.hierarchy).Build()

			for _, typ := range []introspect.Type{stock, rt} {
				m, err := mapper.Map(typ, cfg)
				require.NoError(t, err)

				var names []string
				for _, p := range m.Properties {
					names = append(names, p.PropertyName())
				}

				assert.Equal(t, tt.want, names, "%T", typ)
			}
		})
	}
}
