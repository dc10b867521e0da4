// Package gen provides deterministic Go code generation for static type
// descriptors.
//
// For every struct it emits a function returning an *introspect.StaticType
// whose slots and methods are plain closures, so the mapper can work on the
// type without reflection. Generation uses text/template + go/format.
//
// Codegen patterns:
//   - Field slots read and written through the embedding path
//   - Nil embedded pointers allocated before writes
//   - Getters, fallible getters, setters and chained setters
//   - Contracts described by signature and metadata only
package gen
