// Package meta defines the declarative metadata attached to mapped properties.
//
// Metadata is written in the `cql` struct tag of a field, or in `//cql:` doc
// comment directives on methods when a type is loaded from source:
//
//	type Product struct {
//		SKU   string `cql:"partitionKey"`
//		Name  string `cql:"column(name=DisplayName,caseSensitive)"`
//		Notes string `cql:"transient"`
//		cache []byte `cql:"-"`
//	}
//
//	//cql:clusteringColumn(1)
//	func (p *Product) GetCreatedAt() time.Time { ... }
//
// # Grammar
//
// A tag value is a ';'-separated list of directives. A directive is either a
// bare kind name ("transient") or a kind name followed by a parenthesized,
// ','-separated argument list ("partitionKey(1)", "column(name=x,codec=json)").
// Single quotes protect separators inside values and parentheses may nest, so
// "computed(writetime(v))" keeps its expression intact.
//
// # Kinds
//
//   - column(name, caseSensitive, codec): table column override
//   - field(name, caseSensitive, codec): UDT field override
//   - partitionKey(position), clusteringColumn(position): primary key roles
//   - computed(expression): server-side expression instead of a stored column
//   - frozen(definition), frozenKey, frozenValue: frozen collection markers
//   - transient: exclude the property
//
// Unknown directive names are kept as Custom annotations so that callers can
// define their own kinds. The tag value "-" is not metadata: it is the Go-level
// skip marker of the slot itself, reported by ParseStructTag.
//
// A Bag holds at most one annotation per kind; the first annotation added for a
// kind wins.
package meta
