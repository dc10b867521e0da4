package analyze

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property-mapper/internal/diagnostic"
)

func TestGraph_Structs(t *testing.T) {
	graph := loadInventory(t)

	var ids []string
	for _, s := range graph.Structs() {
		ids = append(ids, s.ID().Name)
	}

	assert.Equal(t, []string{"Customer", "Entity", "Order", "Product"}, ids)
}

func TestGraph_Resolve(t *testing.T) {
	graph := loadInventory(t)

	types, diags := graph.Resolve("Product", inventoryPkg+".Order")
	require.True(t, diags.IsValid(), diags.Error())
	require.Len(t, types, 2)
	assert.Equal(t, "Product", types[0].ID().Name)
	assert.Equal(t, "Order", types[1].ID().Name)

	types, diags = graph.Resolve("Prodcut", "Named")
	assert.Empty(t, types)

	notFound := diags.ByCode(diagnostic.CodeTypeNotFound)
	require.Len(t, notFound, 1)
	assert.Equal(t, "Prodcut", notFound[0].Type)
	assert.Equal(t, []string{"Product"}, notFound[0].Suggestions)

	assert.Len(t, diags.ByCode(diagnostic.CodeNotAStruct), 1)

	_, diags = graph.Resolve(inventoryPkg + ".Named")
	assert.Len(t, diags.ByCode(diagnostic.CodeNotAStruct), 1)
}

func TestGraph_ResolveAmbiguous(t *testing.T) {
	graph := NewGraph()
	graph.Types[inventoryID("Order")] = &SourceType{id: inventoryID("Order")}
	other := inventoryID("Order")
	other.PkgPath = "example.com/warehouse"
	graph.Types[other] = &SourceType{id: other}

	types, diags := graph.Resolve("Order")
	assert.Empty(t, types)

	ambiguous := diags.ByCode(diagnostic.CodeAmbiguousType)
	require.Len(t, ambiguous, 1)
	assert.Equal(t, []string{"example.com/warehouse.Order", inventoryPkg + ".Order"}, ambiguous[0].Suggestions)
}
