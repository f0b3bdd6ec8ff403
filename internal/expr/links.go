package expr

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// LinkRef is one object reference written in link syntax: object.Name
// optionally followed by sub-element names (object.Box.Edge1).
type LinkRef struct {
	Object string
	Subs   []string
}

// ParseLinks interprets e as link syntax: null, a single reference, or a
// tuple of references. ok is false when e has any other shape; list reports
// whether e was a tuple.
func ParseLinks(e hcl.Expression) (refs []LinkRef, list bool, ok bool) {
	if IsNull(e) {
		return nil, false, true
	}
	if ref, isRef := linkRef(e); isRef {
		return []LinkRef{ref}, false, true
	}
	items, diags := hcl.ExprList(e)
	if diags.HasErrors() {
		return nil, false, false
	}
	refs = make([]LinkRef, 0, len(items))
	for _, item := range items {
		ref, isRef := linkRef(item)
		if !isRef {
			return nil, false, false
		}
		refs = append(refs, ref)
	}
	return refs, true, true
}

func linkRef(e hcl.Expression) (LinkRef, bool) {
	t, diags := hcl.AbsTraversalForExpr(e)
	if diags.HasErrors() || t.RootName() != RootObject {
		return LinkRef{}, false
	}
	name, ok := objectName(t)
	if !ok {
		return LinkRef{}, false
	}
	ref := LinkRef{Object: name}
	for _, step := range t[2:] {
		switch s := step.(type) {
		case hcl.TraverseAttr:
			ref.Subs = append(ref.Subs, s.Name)
		case hcl.TraverseIndex:
			if s.Key.Type() != cty.String || s.Key.IsNull() {
				return LinkRef{}, false
			}
			ref.Subs = append(ref.Subs, s.Key.AsString())
		default:
			return LinkRef{}, false
		}
	}
	return ref, true
}

// IsNull reports whether e is the literal null.
func IsNull(e hcl.Expression) bool {
	if len(e.Variables()) > 0 {
		return false
	}
	v, diags := e.Value(nil)
	return !diags.HasErrors() && v.IsNull()
}

// IsConstant reports whether e reads no variables, so it can be evaluated
// once at load time.
func IsConstant(e hcl.Expression) bool {
	return len(e.Variables()) == 0
}

// Constant evaluates an expression that reads no variables.
func Constant(e hcl.Expression) (cty.Value, error) {
	if !IsConstant(e) {
		return cty.NilVal, fmt.Errorf("%s: expression is not a constant", e.Range())
	}
	_, fns := References(e)
	if err := checkFunctions(fns); err != nil {
		return cty.NilVal, fmt.Errorf("%s: %w", e.Range(), err)
	}
	v, diags := e.Value(&hcl.EvalContext{Functions: Functions()})
	if diags.HasErrors() {
		return cty.NilVal, diags
	}
	return v, nil
}
