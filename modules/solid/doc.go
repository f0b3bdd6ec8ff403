// Package solid provides parametric solid types: primitives (box, cylinder,
// sphere) and features that derive a new solid from linked ones (fillet,
// pattern, fusion).
//
// Solids do not model geometry. Each one computes a Volume and a Shape
// string describing how it was built, which is enough to observe how
// changes flow through a document.
package solid
