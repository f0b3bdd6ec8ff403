package config

import (
	"github.com/hashicorp/hcl/v2"
)

// Model is the unified, format-agnostic representation of a document file.
type Model struct {
	// Name is the document name. Loaders fall back to the file name.
	Name    string
	Objects []*Object
}

// Object is the format-agnostic representation of an `object` block.
type Object struct {
	Type  string
	Name  string
	Label string
	// Attributes holds the property assignments in source order.
	Attributes []*Attribute
	// Script holds the assignments of a nested `script` block, in source
	// order. Only script objects use it.
	Script []*Attribute
	Range  hcl.Range
}

// Attribute is a single `name = expression` assignment.
type Attribute struct {
	Name string
	Expr hcl.Expression
}

// Attribute returns the named attribute, or nil.
func (o *Object) Attribute(name string) *Attribute {
	for _, a := range o.Attributes {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// Object returns the object with the given name, or nil.
func (m *Model) Object(name string) *Object {
	for _, o := range m.Objects {
		if o.Name == name {
			return o
		}
	}
	return nil
}
