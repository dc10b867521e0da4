// Package analyze provides package loading and the source-based type
// backend.
//
// It uses golang.org/x/tools/go/packages with AST and go/types to describe
// the structs and interfaces of loaded packages as introspect.Type values.
// Field metadata comes from `cql` struct tags and method metadata from
// "//cql:" doc comment directives.
//
// Key types:
//   - Analyzer: loads packages and builds the graph
//   - Graph: loaded types by TypeID, with name resolution
//   - SourceType: an introspect.Type whose members are not bound
package analyze
