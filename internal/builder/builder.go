package builder

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/featuregraph/internal/config"
	"github.com/specialistvlad/featuregraph/internal/ctxlog"
	"github.com/specialistvlad/featuregraph/internal/document"
	"github.com/specialistvlad/featuregraph/internal/expr"
	"github.com/specialistvlad/featuregraph/internal/object"
	"github.com/specialistvlad/featuregraph/internal/registry"
)

// Load creates a document named after the model and builds it.
func Load(ctx context.Context, model *config.Model, reg *registry.Registry) (*document.Document, error) {
	d := document.New(model.Name)
	if err := Build(ctx, model, reg, d); err != nil {
		return d, err
	}
	return d, nil
}

// Build adds the objects of model to d. Objects that could not be created
// are left out; objects with failed assignments are kept with
// StatusPartial set. On return every object of d is touched.
func Build(ctx context.Context, model *config.Model, reg *registry.Registry, d *document.Document) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Building document.", "document", d.Name(), "objects", len(model.Objects))

	if err := reg.ValidateModel(ctx, model); err != nil {
		return err
	}

	var errs []string
	d.BeginRestore()
	defer d.EndRestore()

	type created struct {
		cfg *config.Object
		obj *object.Object
	}
	var objects []created

	for _, cfg := range model.Objects {
		o, err := createObject(ctx, reg, d, cfg)
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		objects = append(objects, created{cfg: cfg, obj: o})
	}

	for _, c := range objects {
		for _, a := range c.cfg.Attributes {
			if err := assign(ctx, d, c.obj, a); err != nil {
				c.obj.SetStatus(object.StatusPartial, true)
				errs = append(errs, fmt.Sprintf("object '%s': %v", c.obj.Name(), err))
			}
		}
	}

	if len(errs) > 0 {
		logger.Warn("Document built with errors.", "document", d.Name(), "errors", len(errs))
		return fmt.Errorf("document '%s' restored with errors:\n- %s", d.Name(), strings.Join(errs, "\n- "))
	}
	logger.Info("Document built.", "document", d.Name(), "objects", d.Len())
	return nil
}

func createObject(ctx context.Context, reg *registry.Registry, d *document.Document, cfg *config.Object) (*object.Object, error) {
	if d.Object(cfg.Name) != nil {
		return nil, fmt.Errorf("object '%s': name is already used in document '%s'", cfg.Name, d.Name())
	}
	spec, err := reg.NewSpec(cfg)
	if err != nil {
		return nil, err
	}
	o, err := d.AddObject(ctx, spec)
	if err != nil {
		return nil, err
	}
	if o.Name() != cfg.Name {
		_ = d.RemoveObject(ctx, o.Name())
		return nil, fmt.Errorf("object '%s': name is not usable, the document would rename it to '%s'", cfg.Name, o.Name())
	}
	return o, nil
}

// assign applies one attribute to o. Declared link properties take link
// syntax, declared value properties take a constant or an expression, and
// undeclared names become dynamic properties.
func assign(ctx context.Context, d *document.Document, o *object.Object, a *config.Attribute) error {
	p := o.Property(a.Name)
	if p == nil {
		return assignDynamic(ctx, d, o, a)
	}
	if p.Kind().IsLink() {
		return assignLinks(d, p, a)
	}
	return assignValue(d, o, p, a)
}

func assignValue(d *document.Document, o *object.Object, p *object.Property, a *config.Attribute) error {
	if expr.IsConstant(a.Expr) {
		v, err := expr.Constant(a.Expr)
		if err != nil {
			return fmt.Errorf("property '%s': %w", a.Name, err)
		}
		return p.SetValue(v)
	}
	b, err := expr.New(a.Name, a.Expr)
	if err != nil {
		return err
	}
	for _, dep := range b.Dependencies() {
		if d.Object(dep) == nil {
			return fmt.Errorf("%s: expression for '%s' references unknown object '%s'", a.Expr.Range(), a.Name, dep)
		}
	}
	return o.SetBinding(b)
}

func assignLinks(d *document.Document, p *object.Property, a *config.Attribute) error {
	refs, list, ok := expr.ParseLinks(a.Expr)
	if !ok {
		return fmt.Errorf("%s: property '%s' is a %s property and expects object references such as object.Name", a.Expr.Range(), a.Name, p.Kind())
	}
	links, err := resolve(d, a, refs)
	if err != nil {
		return err
	}

	switch p.Kind() {
	case object.KindLink, object.KindLinkList:
		for _, l := range links {
			if len(l.Subs) > 0 {
				return fmt.Errorf("%s: property '%s' is a %s property and does not take sub-elements", a.Expr.Range(), a.Name, p.Kind())
			}
		}
	case object.KindLinkSub:
		if list {
			links, err = mergeSubs(a, links)
			if err != nil {
				return err
			}
		}
	}
	return p.SetReferences(links)
}

// mergeSubs folds a list of references to the same object into one link
// carrying all their sub-elements.
func mergeSubs(a *config.Attribute, links []object.Link) ([]object.Link, error) {
	if len(links) == 0 {
		return nil, nil
	}
	merged := object.Link{Target: links[0].Target}
	for _, l := range links {
		if l.Target != merged.Target {
			return nil, fmt.Errorf("%s: property '%s' can reference sub-elements of a single object only", a.Expr.Range(), a.Name)
		}
		merged.Subs = append(merged.Subs, l.Subs...)
	}
	return []object.Link{merged}, nil
}

func resolve(d *document.Document, a *config.Attribute, refs []expr.LinkRef) ([]object.Link, error) {
	links := make([]object.Link, len(refs))
	for i, ref := range refs {
		target := d.Object(ref.Object)
		if target == nil {
			return nil, fmt.Errorf("%s: property '%s' references unknown object '%s'", a.Expr.Range(), a.Name, ref.Object)
		}
		links[i] = object.Link{Target: target, Subs: ref.Subs}
	}
	return links, nil
}

func assignDynamic(ctx context.Context, d *document.Document, o *object.Object, a *config.Attribute) error {
	decl := object.Decl{Name: a.Name, Kind: object.KindValue}
	refs, list, ok := expr.ParseLinks(a.Expr)
	if ok && len(refs) > 0 && !hasSubs(refs) {
		decl.Kind = object.KindLink
		if list {
			decl.Kind = object.KindLinkList
		}
	}

	p, err := o.AddDynamicProperty(decl)
	if err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Debug("Added dynamic property.", "object", o.Name(), "property", a.Name, "kind", decl.Kind)
	if decl.Kind.IsLink() {
		return assignLinks(d, p, a)
	}
	return assignValue(d, o, p, a)
}

func hasSubs(refs []expr.LinkRef) bool {
	for _, r := range refs {
		if len(r.Subs) > 0 {
			return true
		}
	}
	return false
}
