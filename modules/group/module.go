// Package group provides grouping object types. A group holds an ordered
// list of member objects; a part is a group that also owns an origin with
// its reference axes and planes.
package group

import (
	"errors"

	"github.com/specialistvlad/featuregraph/internal/config"
	"github.com/specialistvlad/featuregraph/internal/object"
	"github.com/specialistvlad/featuregraph/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the group types with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterType(&registry.ObjectType{
		Name:        "group",
		Description: "Ordered collection of objects.",
		New: func(*config.Object) (object.Spec, error) {
			return GroupSpec(), nil
		},
	})
	r.RegisterType(&registry.ObjectType{
		Name:        "part",
		Description: "Group with its own origin.",
		New: func(*config.Object) (object.Spec, error) {
			return PartSpec(), nil
		},
	})
	r.RegisterType(&registry.ObjectType{
		Name:        TypeOrigin,
		Description: "Reference axes and planes. Created by parts.",
		New:         helperOnly,
	})
	r.RegisterType(&registry.ObjectType{
		Name:        TypeOriginFeature,
		Description: "Single axis or plane of an origin. Created by origins.",
		New:         helperOnly,
	})
}

func helperOnly(*config.Object) (object.Spec, error) {
	return object.Spec{}, errors.New("this type is created automatically and cannot be declared")
}

// GroupSpec returns the spec of a plain group.
func GroupSpec() object.Spec {
	return object.Spec{
		Type:       "group",
		Decls:      []object.Decl{groupDecl()},
		Extensions: []object.Extension{Extension{}},
	}
}

// PartSpec returns the spec of a group with an origin.
func PartSpec() object.Spec {
	return object.Spec{
		Type:       "part",
		Decls:      []object.Decl{groupDecl(), originDecl()},
		Extensions: []object.Extension{Extension{}, OriginExtension{}},
	}
}
