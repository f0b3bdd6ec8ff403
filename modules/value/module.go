// Package value provides the value object type: a container of dynamic
// properties, used for shared parameters that other objects link to or read
// from expressions.
package value

import (
	"github.com/specialistvlad/featuregraph/internal/config"
	"github.com/specialistvlad/featuregraph/internal/object"
	"github.com/specialistvlad/featuregraph/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the value type with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterType(&registry.ObjectType{
		Name:        "value",
		Description: "Holder of user-defined parameters.",
		New: func(*config.Object) (object.Spec, error) {
			return object.Spec{}, nil
		},
	})
}
