package hcl_adapter

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/featuregraph/internal/config"
	"github.com/specialistvlad/featuregraph/internal/ctxlog"
)

// translateObject converts a decoded `object` block into its
// format-agnostic model.
func (l *Loader) translateObject(ctx context.Context, b *objectBlock) (*config.Object, error) {
	rng := b.Body.MissingItemRange()
	if !hclsyntax.ValidIdentifier(b.Name) {
		return nil, fmt.Errorf("%s: object name '%s' is not a valid identifier", rng, b.Name)
	}

	attrs, err := orderedAttributes(b.Body)
	if err != nil {
		return nil, fmt.Errorf("object '%s': %w", b.Name, err)
	}

	obj := &config.Object{
		Type:       b.Type,
		Name:       b.Name,
		Label:      b.Label,
		Attributes: attrs,
		Range:      rng,
	}
	if b.Script != nil {
		script, err := orderedAttributes(b.Script.Body)
		if err != nil {
			return nil, fmt.Errorf("object '%s' script: %w", b.Name, err)
		}
		obj.Script = script
	}

	ctxlog.FromContext(ctx).Debug("Translated object block.", "type", obj.Type, "name", obj.Name, "attributes", len(obj.Attributes), "script", len(obj.Script))
	return obj, nil
}

// orderedAttributes returns the attributes of body sorted by their position
// in the source file.
func orderedAttributes(body hcl.Body) ([]*config.Attribute, error) {
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}
	list := make([]*hcl.Attribute, 0, len(attrs))
	for _, a := range attrs {
		list = append(list, a)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Range.Start.Byte < list[j].Range.Start.Byte
	})
	out := make([]*config.Attribute, len(list))
	for i, a := range list {
		out[i] = &config.Attribute{Name: a.Name, Expr: a.Expr}
	}
	return out, nil
}
