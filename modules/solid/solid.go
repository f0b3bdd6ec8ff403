package solid

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/specialistvlad/featuregraph/internal/ctxlog"
	"github.com/specialistvlad/featuregraph/internal/object"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

func readFloat(o *object.Object, name string) (float64, error) {
	p := o.Property(name)
	if p == nil {
		return 0, fmt.Errorf("missing property '%s'", name)
	}
	v := p.Value()
	if v.IsNull() {
		return 0, fmt.Errorf("property '%s' is not set", name)
	}
	var f float64
	if err := gocty.FromCtyValue(v, &f); err != nil {
		return 0, fmt.Errorf("property '%s': %w", name, err)
	}
	return f, nil
}

func positive(o *object.Object, names ...string) ([]float64, error) {
	out := make([]float64, len(names))
	for i, n := range names {
		f, err := readFloat(o, n)
		if err != nil {
			return nil, err
		}
		if f <= 0 {
			return nil, fmt.Errorf("%s must be positive, got %g", n, f)
		}
		out[i] = f
	}
	return out, nil
}

// setResult stores the computed volume and shape description on o.
func setResult(ctx context.Context, o *object.Object, volume float64, shape string) error {
	if err := o.Property(PropVolume).SetValue(cty.NumberFloatVal(volume)); err != nil {
		return err
	}
	if err := o.Property(PropShape).SetValue(cty.StringVal(shape)); err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Debug("Solid computed.", "object", o.Name(), "volume", volume)
	return nil
}

// baseResult reads the result of a linked solid. The base must have been
// computed already, which the dependency order guarantees for healthy
// documents.
func baseResult(base *object.Object) (float64, string, error) {
	if base == nil {
		return 0, "", errors.New("no base object")
	}
	if base.IsError() {
		return 0, "", fmt.Errorf("base object '%s' is in error", base.Name())
	}
	vp, sp := base.Property(PropVolume), base.Property(PropShape)
	if vp == nil || sp == nil {
		return 0, "", fmt.Errorf("base object '%s' is not a solid", base.Name())
	}
	volume, err := readFloat(base, PropVolume)
	if err != nil {
		return 0, "", fmt.Errorf("base object '%s' has no result yet", base.Name())
	}
	return volume, sp.Value().AsString(), nil
}

func executeBox(ctx context.Context, o *object.Object) error {
	v, err := positive(o, "Length", "Width", "Height")
	if err != nil {
		return err
	}
	return setResult(ctx, o, v[0]*v[1]*v[2], fmt.Sprintf("box(%gx%gx%g)", v[0], v[1], v[2]))
}

func executeCylinder(ctx context.Context, o *object.Object) error {
	v, err := positive(o, "Radius", "Height")
	if err != nil {
		return err
	}
	return setResult(ctx, o, math.Pi*v[0]*v[0]*v[1], fmt.Sprintf("cylinder(r=%g,h=%g)", v[0], v[1]))
}

func executeSphere(ctx context.Context, o *object.Object) error {
	v, err := positive(o, "Radius")
	if err != nil {
		return err
	}
	return setResult(ctx, o, 4.0/3.0*math.Pi*math.Pow(v[0], 3), fmt.Sprintf("sphere(r=%g)", v[0]))
}

// executeFillet keeps the base volume and records the rounded edges. Each
// edge must be named, and the radius must be positive.
func executeFillet(ctx context.Context, o *object.Object) error {
	links := o.Property("Base").Links()
	if len(links) == 0 {
		return errors.New("no base object")
	}
	volume, shape, err := baseResult(links[0].Target)
	if err != nil {
		return err
	}
	edges := links[0].Subs
	if len(edges) == 0 {
		return errors.New("no edges selected")
	}
	for _, e := range edges {
		if !strings.HasPrefix(e, "Edge") {
			return fmt.Errorf("'%s' is not an edge", e)
		}
	}
	r, err := positive(o, "Radius")
	if err != nil {
		return err
	}
	return setResult(ctx, o, volume, fmt.Sprintf("fillet(%s,r=%g,%s)", shape, r[0], strings.Join(edges, "+")))
}

func executePattern(ctx context.Context, o *object.Object) error {
	volume, shape, err := baseResult(o.Property("Base").Target())
	if err != nil {
		return err
	}
	var count int
	if err := gocty.FromCtyValue(o.Property("Count").Value(), &count); err != nil {
		return fmt.Errorf("Count: %w", err)
	}
	if count < 1 {
		return fmt.Errorf("Count must be at least 1, got %d", count)
	}
	if _, err := positive(o, "Spacing"); err != nil {
		return err
	}
	return setResult(ctx, o, volume*float64(count), fmt.Sprintf("pattern(%s,x%d)", shape, count))
}

func executeFusion(ctx context.Context, o *object.Object) error {
	targets := o.Property("Shapes").Targets()
	if len(targets) < 2 {
		return fmt.Errorf("fusion needs at least two shapes, got %d", len(targets))
	}
	var total float64
	shapes := make([]string, 0, len(targets))
	for _, t := range targets {
		volume, shape, err := baseResult(t)
		if err != nil {
			return err
		}
		total += volume
		shapes = append(shapes, shape)
	}
	return setResult(ctx, o, total, fmt.Sprintf("fusion(%s)", strings.Join(shapes, ",")))
}
