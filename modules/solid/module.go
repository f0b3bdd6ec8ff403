package solid

import (
	"slices"

	"github.com/specialistvlad/featuregraph/internal/config"
	"github.com/specialistvlad/featuregraph/internal/object"
	"github.com/specialistvlad/featuregraph/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Property names shared by all solids.
const (
	PropVolume = "Volume"
	PropShape  = "Shape"
)

func resultDecls() []object.Decl {
	return []object.Decl{
		{Name: PropVolume, Type: cty.Number, Status: object.PropOutput | object.PropReadOnly, Doc: "Computed volume."},
		{Name: PropShape, Type: cty.String, Status: object.PropOutput | object.PropReadOnly, Doc: "Description of the computed shape."},
	}
}

func number(name string, def float64, doc string) object.Decl {
	return object.Decl{Name: name, Type: cty.Number, Default: cty.NumberFloatVal(def), Doc: doc}
}

func fixed(decls []object.Decl, b object.Behavior) registry.TypeFactory {
	return func(*config.Object) (object.Spec, error) {
		return object.Spec{
			Decls:    slices.Concat(decls, resultDecls()),
			Behavior: b,
		}, nil
	}
}

// Register registers the solid types with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterType(&registry.ObjectType{
		Name:        "box",
		Description: "Axis-aligned box.",
		New: fixed([]object.Decl{
			number("Length", 10, "Size along X."),
			number("Width", 10, "Size along Y."),
			number("Height", 10, "Size along Z."),
		}, object.BehaviorFunc(executeBox)),
	})
	r.RegisterType(&registry.ObjectType{
		Name:        "cylinder",
		Description: "Cylinder standing on the XY plane.",
		New: fixed([]object.Decl{
			number("Radius", 2, "Base radius."),
			number("Height", 10, "Size along Z."),
		}, object.BehaviorFunc(executeCylinder)),
	})
	r.RegisterType(&registry.ObjectType{
		Name:        "sphere",
		Description: "Sphere centered on the origin.",
		New: fixed([]object.Decl{
			number("Radius", 5, "Sphere radius."),
		}, object.BehaviorFunc(executeSphere)),
	})
	r.RegisterType(&registry.ObjectType{
		Name:        "fillet",
		Description: "Rounds edges of a base solid.",
		New: fixed([]object.Decl{
			{Name: "Base", Kind: object.KindLinkSub, Doc: "Base solid and the edges to round."},
			number("Radius", 1, "Fillet radius."),
		}, object.BehaviorFunc(executeFillet)),
	})
	r.RegisterType(&registry.ObjectType{
		Name:        "pattern",
		Description: "Linear repetition of a base solid.",
		New: fixed([]object.Decl{
			{Name: "Base", Kind: object.KindLink, Doc: "Solid to repeat."},
			{Name: "Count", Type: cty.Number, Default: cty.NumberIntVal(2), Doc: "Number of copies, base included."},
			number("Spacing", 20, "Distance between copies."),
		}, object.BehaviorFunc(executePattern)),
	})
	r.RegisterType(&registry.ObjectType{
		Name:        "fusion",
		Description: "Union of several solids.",
		New: fixed([]object.Decl{
			{Name: "Shapes", Kind: object.KindLinkList, Doc: "Solids to fuse."},
		}, object.BehaviorFunc(executeFusion)),
	})
}
