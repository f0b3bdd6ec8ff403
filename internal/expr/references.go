package expr

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

const (
	// RootObject is the variable through which expressions reach other objects.
	RootObject = "object"
	// RootSelf is the variable bound to the object that owns the expression.
	RootSelf = "self"
)

// TraversalKey generates a stable, canonical string representation for an
// hcl.Traversal, suitable for use as a map key.
func TraversalKey(t hcl.Traversal) string {
	return string(hclwrite.TokensForTraversal(t).Bytes())
}

// References walks the expressions and returns all unique variable
// traversals and called function names, both sorted.
func References(exprs ...hcl.Expression) ([]hcl.Traversal, []string) {
	traversals := make(map[string]hcl.Traversal)
	functions := make(map[string]struct{})

	for _, e := range exprs {
		if e == nil {
			continue
		}
		for _, t := range e.Variables() {
			traversals[TraversalKey(t)] = t
		}
		if syntaxExpr, ok := e.(hclsyntax.Expression); ok {
			walkForFunctions(syntaxExpr, functions)
		}
	}

	keys := make([]string, 0, len(traversals))
	for k := range traversals {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]hcl.Traversal, 0, len(keys))
	for _, k := range keys {
		out = append(out, traversals[k])
	}

	names := make([]string, 0, len(functions))
	for f := range functions {
		names = append(names, f)
	}
	sort.Strings(names)
	return out, names
}

// ObjectRefs returns the sorted, unique names of the objects an expression
// reads through the `object` root. References through `self` are ignored.
// Any other root variable is an error.
func ObjectRefs(e hcl.Expression) ([]string, error) {
	traversals, _ := References(e)
	seen := make(map[string]struct{})
	var names []string
	for _, t := range traversals {
		switch t.RootName() {
		case RootSelf:
			continue
		case RootObject:
		default:
			return nil, fmt.Errorf("%s: unsupported variable '%s', expressions can only refer to '%s' and '%s'",
				t.SourceRange(), t.RootName(), RootObject, RootSelf)
		}
		name, ok := objectName(t)
		if !ok {
			return nil, fmt.Errorf("%s: '%s' must be followed by an object name", t.SourceRange(), RootObject)
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func objectName(t hcl.Traversal) (string, bool) {
	if len(t) < 2 {
		return "", false
	}
	switch step := t[1].(type) {
	case hcl.TraverseAttr:
		return step.Name, true
	case hcl.TraverseIndex:
		if step.Key.IsKnown() && !step.Key.IsNull() && step.Key.Type() == cty.String {
			return step.Key.AsString(), true
		}
	}
	return "", false
}

// walkForFunctions recursively walks the syntax tree collecting the names of
// called functions, which Variables() does not report.
func walkForFunctions(e hclsyntax.Expression, functions map[string]struct{}) {
	if e == nil {
		return
	}
	switch e := e.(type) {
	case *hclsyntax.FunctionCallExpr:
		functions[e.Name] = struct{}{}
		for _, arg := range e.Args {
			walkForFunctions(arg, functions)
		}
	case *hclsyntax.BinaryOpExpr:
		walkForFunctions(e.LHS, functions)
		walkForFunctions(e.RHS, functions)
	case *hclsyntax.ConditionalExpr:
		walkForFunctions(e.Condition, functions)
		walkForFunctions(e.TrueResult, functions)
		walkForFunctions(e.FalseResult, functions)
	case *hclsyntax.UnaryOpExpr:
		walkForFunctions(e.Val, functions)
	case *hclsyntax.TemplateExpr:
		for _, part := range e.Parts {
			walkForFunctions(part, functions)
		}
	case *hclsyntax.TemplateWrapExpr:
		walkForFunctions(e.Wrapped, functions)
	case *hclsyntax.TupleConsExpr:
		for _, item := range e.Exprs {
			walkForFunctions(item, functions)
		}
	case *hclsyntax.ObjectConsExpr:
		for _, item := range e.Items {
			walkForFunctions(item.KeyExpr, functions)
			walkForFunctions(item.ValueExpr, functions)
		}
	case *hclsyntax.ForExpr:
		walkForFunctions(e.CollExpr, functions)
		walkForFunctions(e.KeyExpr, functions)
		walkForFunctions(e.ValExpr, functions)
		walkForFunctions(e.CondExpr, functions)
	case *hclsyntax.IndexExpr:
		walkForFunctions(e.Collection, functions)
		walkForFunctions(e.Key, functions)
	case *hclsyntax.SplatExpr:
		walkForFunctions(e.Source, functions)
		walkForFunctions(e.Each, functions)
	case *hclsyntax.ParenthesesExpr:
		walkForFunctions(e.Expression, functions)
	}
}
