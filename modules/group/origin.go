package group

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/featuregraph/internal/links"
	"github.com/specialistvlad/featuregraph/internal/object"
	"github.com/zclconf/go-cty/cty"
)

// Type names of the origin helpers.
const (
	TypeOrigin        = "origin"
	TypeOriginFeature = "origin_feature"
)

// Property names of origins and origin groups.
const (
	PropOrigin   = "Origin"
	PropFeatures = "OriginFeatures"
	PropRole     = "Role"
)

// Roles lists the origin features every origin owns, in creation order.
var Roles = []string{"X_Axis", "Y_Axis", "Z_Axis", "XY_Plane", "XZ_Plane", "YZ_Plane"}

// objectManager is the part of a document the origin extensions need to
// create and remove their helper objects.
type objectManager interface {
	AddObject(ctx context.Context, spec object.Spec) (*object.Object, error)
	RemoveObject(ctx context.Context, name string) error
}

func managerOf(o *object.Object) (objectManager, error) {
	m, ok := o.Owner().(objectManager)
	if !ok {
		return nil, fmt.Errorf("object '%s' is not in a document that can hold helper objects", o.Name())
	}
	return m, nil
}

// OriginExtension makes a group own an origin: a helper object created with
// the group and removed with it, whose features (axes and planes) are the
// reference geometry for the group's members.
type OriginExtension struct{}

// ExtensionName implements object.Extension.
func (OriginExtension) ExtensionName() string { return "origin_group" }

func originDecl() object.Decl {
	return object.Decl{Name: PropOrigin, Kind: object.KindLink, Status: object.PropHidden, Doc: "Origin linked to the group."}
}

// OnSetup creates the origin and links it.
func (OriginExtension) OnSetup(ctx context.Context, o *object.Object) error {
	m, err := managerOf(o)
	if err != nil {
		return err
	}
	origin, err := m.AddObject(ctx, OriginSpec())
	if err != nil {
		return fmt.Errorf("creating origin: %w", err)
	}
	return o.Property(PropOrigin).SetLink(origin)
}

// OnUnsetup removes the origin unless it is already being removed.
func (OriginExtension) OnUnsetup(ctx context.Context, o *object.Object) error {
	origin := o.Property(PropOrigin).Target()
	if origin == nil || origin.TestStatus(object.StatusRemoving) || origin.Owner() == nil {
		return nil
	}
	m, err := managerOf(o)
	if err != nil {
		return err
	}
	return m.RemoveObject(ctx, origin.Name())
}

// MustExecute implements object.MustExecuter.
func (OriginExtension) MustExecute(o *object.Object) bool {
	p := o.Property(PropOrigin)
	return p != nil && p.IsTouched()
}

// ExecuteExtension fails when the group lost its origin.
func (OriginExtension) ExecuteExtension(_ context.Context, o *object.Object) error {
	_, err := Origin(o)
	return err
}

// Origin returns the origin of an origin group. It fails when the link is
// empty or points at something that is not an origin.
func Origin(g *object.Object) (*object.Object, error) {
	p := g.Property(PropOrigin)
	if p == nil {
		return nil, fmt.Errorf("object '%s' is not an origin group", g.Name())
	}
	origin := p.Target()
	if origin == nil || !origin.IsAttached() {
		return nil, fmt.Errorf("can't find origin for '%s'", g.Name())
	}
	if origin.Type() != TypeOrigin {
		return nil, fmt.Errorf("bad object '%s' (%s) linked to the origin of '%s'", origin.Name(), origin.Type(), g.Name())
	}
	return origin, nil
}

// OriginOf is Origin without the error.
func OriginOf(g *object.Object) *object.Object {
	origin, err := Origin(g)
	if err != nil {
		return nil
	}
	return origin
}

// Features returns the live features of an origin.
func Features(origin *object.Object) []*object.Object {
	p := origin.Property(PropFeatures)
	if p == nil {
		return nil
	}
	var out []*object.Object
	for _, t := range p.Targets() {
		if t != nil && t.IsAttached() {
			out = append(out, t)
		}
	}
	return out
}

// Feature returns the feature of origin with the given role, or nil.
func Feature(origin *object.Object, role string) *object.Object {
	for _, f := range Features(origin) {
		if roleOf(f) == role {
			return f
		}
	}
	return nil
}

func roleOf(f *object.Object) string {
	if f.Type() != TypeOriginFeature {
		return ""
	}
	v := f.Property(PropRole).Value()
	if v.IsNull() {
		return ""
	}
	return v.AsString()
}

// relinkToOrigin points every link of o that targets an origin feature at
// the feature with the same role in g's origin. Sub-element names are kept.
func relinkToOrigin(g, o *object.Object) error {
	origin, err := Origin(g)
	if err != nil {
		return err
	}
	_, err = links.Relink(o, func(t *object.Object) *object.Object {
		role := roleOf(t)
		if role == "" {
			return nil
		}
		return Feature(origin, role)
	})
	return err
}

// OriginSpec returns the spec of a new origin.
func OriginSpec() object.Spec {
	return object.Spec{
		Type:  TypeOrigin,
		Name:  "Origin",
		Decls: []object.Decl{{Name: PropFeatures, Kind: object.KindLinkList, Status: object.PropHidden, Doc: "Axes and planes of the origin."}},
		Behavior: originBehavior{},
	}
}

// FeatureSpec returns the spec of a new origin feature with the given role.
func FeatureSpec(role string) object.Spec {
	return object.Spec{
		Type: TypeOriginFeature,
		Name: role,
		Decls: []object.Decl{
			{Name: PropRole, Type: cty.String, Default: cty.StringVal(role), Status: object.PropReadOnly, Doc: "Role of the feature in its origin."},
		},
	}
}

type originBehavior struct{}

// OnSetup creates one feature per role.
func (originBehavior) OnSetup(ctx context.Context, o *object.Object) error {
	m, err := managerOf(o)
	if err != nil {
		return err
	}
	features := make([]*object.Object, 0, len(Roles))
	for _, role := range Roles {
		f, err := m.AddObject(ctx, FeatureSpec(role))
		if err != nil {
			return fmt.Errorf("creating origin feature '%s': %w", role, err)
		}
		features = append(features, f)
	}
	return o.Property(PropFeatures).SetLinks(features)
}

// OnUnsetup removes the features that are still in the document.
func (originBehavior) OnUnsetup(ctx context.Context, o *object.Object) error {
	m, err := managerOf(o)
	if err != nil {
		return err
	}
	var errs []error
	for _, f := range Features(o) {
		if f.TestStatus(object.StatusRemoving) {
			continue
		}
		if err := m.RemoveObject(ctx, f.Name()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Execute checks that every role has its feature.
func (originBehavior) Execute(_ context.Context, o *object.Object) error {
	for _, role := range Roles {
		if Feature(o, role) == nil {
			return fmt.Errorf("origin feature with role '%s' is missing", role)
		}
	}
	return nil
}
