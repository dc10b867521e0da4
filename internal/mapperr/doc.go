// Package mapperr provides the structured error type returned by the
// property-mapping engine.
//
// Every error carries a Kind describing which phase of a mapping pass failed:
//   - KindConfiguration: a property cannot be read or written under the active
//     access strategy, or its metadata is contradictory (both key roles)
//   - KindAccess: reading or writing an entity value failed at access time
//   - KindCodecInstantiation: a declared custom codec cannot be constructed
//   - KindIntrospection: the type backend could not enumerate members
//
// Use the Builder for structured construction:
//
//	err := mapperr.New(mapperr.KindAccess).
//		Type("inventory.Product").
//		Property("sku").
//		Detail("entity is not addressable").
//		Build()
//
// Errors match by kind, so callers can write errors.Is(err, mapperr.ErrAccess).
package mapperr
