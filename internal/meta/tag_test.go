package meta

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input    string
		expected []Annotation
	}{
		{"", nil},
		{"transient", []Annotation{Transient{}}},
		{"partitionKey", []Annotation{PartitionKey{Position: 0}}},
		{"partitionKey(2)", []Annotation{PartitionKey{Position: 2}}},
		{"clusteringColumn(position=1)", []Annotation{ClusteringColumn{Position: 1}}},
		{"column", []Annotation{Column{}}},
		{"column(UserName)", []Annotation{Column{Name: "UserName"}}},
		{
			"column(name=UserName, caseSensitive, codec=json)",
			[]Annotation{Column{Name: "UserName", CaseSensitive: true, Codec: "json"}},
		},
		{"column(caseSensitive=false)", []Annotation{Column{}}},
		{"field(name='a,b')", []Annotation{Field{Name: "a,b"}}},
		{"computed(writetime(v))", []Annotation{Computed{Expression: "writetime(v)"}}},
		{"computed('ttl(v); x')", []Annotation{Computed{Expression: "ttl(v); x"}}},
		{"frozen", []Annotation{Frozen{}}},
		{"frozen(map<text, frozen<list<int>>>)", []Annotation{Frozen{Definition: "map<text, frozen<list<int>>>"}}},
		{"frozenKey; frozenValue", []Annotation{FrozenKey{}, FrozenValue{}}},
		{
			"partitionKey(1); column(name=id)",
			[]Annotation{PartitionKey{Position: 1}, Column{Name: "id"}},
		},
		{"audited(by=ops)", []Annotation{Custom{Name: "audited", Args: "by=ops"}}},
		{" ; transient ; ", []Annotation{Transient{}}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"transient;transient", "duplicate"},
		{"partitionKey(x)", "invalid position"},
		{"partitionKey(-1)", "invalid position"},
		{"partitionKey(index=1)", "unknown argument"},
		{"column(name=a,width=3)", "unknown argument"},
		{"column(a, b)", "unexpected argument"},
		{"column(caseSensitive=maybe)", "invalid caseSensitive"},
		{"computed", "expression is required"},
		{"computed()", "expression is required"},
		{"transient(yes)", "takes no arguments"},
		{"column(name=a", "unbalanced parenthesis"},
		{"column(name='a)", "unterminated quote"},
		{"9lives", "invalid name"},
		{"column(name=a)x", "missing closing parenthesis"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := Parse(tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseStructTag(t *testing.T) {
	type sample struct {
		Plain   int
		Other   int `json:"other"`
		Skipped int `cql:"-"`
		Key     int `json:"key" cql:"partitionKey(1)"`
		Broken  int `cql:"partitionKey(x)"`
	}

	rt := reflect.TypeOf(sample{})

	field := func(name string) reflect.StructTag {
		f, ok := rt.FieldByName(name)
		require.True(t, ok)

		return f.Tag
	}

	anns, skip, err := ParseStructTag(field("Plain"))
	require.NoError(t, err)
	assert.False(t, skip)
	assert.Empty(t, anns)

	anns, skip, err = ParseStructTag(field("Other"))
	require.NoError(t, err)
	assert.False(t, skip)
	assert.Empty(t, anns)

	anns, skip, err = ParseStructTag(field("Skipped"))
	require.NoError(t, err)
	assert.True(t, skip)
	assert.Empty(t, anns)

	anns, skip, err = ParseStructTag(field("Key"))
	require.NoError(t, err)
	assert.False(t, skip)
	assert.Equal(t, []Annotation{PartitionKey{Position: 1}}, anns)

	_, _, err = ParseStructTag(field("Broken"))
	assert.Error(t, err)
}

func TestParseDirectives(t *testing.T) {
	doc := []string{
		"// GetID returns the identifier.",
		"//cql:partitionKey",
		"//cql:column(name=id, codec=uuid)",
		"// trailing prose",
	}

	anns, err := ParseDirectives(doc)
	require.NoError(t, err)
	assert.Equal(t, []Annotation{
		PartitionKey{},
		Column{Name: "id", Codec: "uuid"},
	}, anns)

	anns, err = ParseDirectives([]string{"// nothing here"})
	require.NoError(t, err)
	assert.Nil(t, anns)

	_, err = ParseDirectives([]string{"//cql:transient", "//cql:transient"})
	assert.Error(t, err)
}
