// Package expr implements property expressions: HCL expressions attached to
// a value property that compute it from the properties of other objects.
//
// Expressions address objects through the `object` root (object.Box.Length)
// and their own object through `self`. Every object named under `object`
// becomes a dependency of the bound object, so an expression produces the
// same graph edges as a link property does.
package expr
