package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"product", "product", 0},
		{"product", "prodcut", 2},
		{"order", "orders", 1},
		{"kitten", "sitting", 3},
		{"é", "e", 1},
		{"flaw", "lawn", 2},
	}

	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, Distance(tt.a, tt.b))
			assert.Equal(t, tt.want, Distance(tt.b, tt.a), "symmetric")
		})
	}
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, Similarity("", ""), 0.0001)
	assert.InDelta(t, 1.0, Similarity("order", "order"), 0.0001)
	assert.InDelta(t, 0.0, Similarity("abc", "xyz"), 0.0001)
	assert.InDelta(t, 1-2.0/7, Similarity("product", "prodcut"), 0.0001)
	assert.InDelta(t, 0.5, Similarity("é", "ée"), 0.0001, "counted in runes")
}

func TestScore(t *testing.T) {
	assert.InDelta(t, 1.0, Score("OrderRecord", "Order"), 0.0001)
	assert.InDelta(t, 1.0, Score("customer_id", "CustomerID"), 0.0001)
	assert.InDelta(t, 1.0, Score("inventory.Product", "Product"), 0.0001)
	assert.Less(t, Score("Product", "Order"), 0.5)
}
