// Package introspect describes mapped types independently of how they were
// discovered.
//
// A Type exposes its declared storage slots (struct fields), its declared
// accessor-like methods, its direct ancestor and the contracts (interfaces) it
// implements. Three backends produce Types:
//
//   - Reflector: runtime reflection over reflect.Type, with bound Get/Set/Call
//   - StaticType: a hand-written or generated (package gen) description whose
//     slots and methods carry their own closures, for callers that avoid
//     reflection
//   - package analyze: types loaded from Go source with go/types; these carry
//     metadata and signatures but no runtime bindings
//
// # Ancestors
//
// Go has no inheritance. The ancestor of a struct type is the type of its first
// embedded struct field (by value or by pointer). That field is structural and
// is not reported as a slot; its own fields and methods belong to the ancestor.
//
// # Accessor convention
//
// Properties applies the Go accessor convention to a type's methods:
//
//	func (p *Product) GetPrice() int64     // getter of "price"
//	func (p *Product) IsActive() bool      // getter of "active"
//	func (p *Product) Owner() string       // getter of "owner" (SetOwner exists)
//	func (p *Product) SetOwner(o string)   // setter of "owner"
//
// Property names are derived with PropertyName, so field "owner" and the
// accessors above meet on the same property.
package introspect
