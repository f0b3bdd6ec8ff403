package group

import (
	"fmt"
	"slices"

	"github.com/specialistvlad/featuregraph/internal/object"
)

// PropGroup is the link list holding the members of a group.
const PropGroup = "Group"

// Extension gives an object a Group link list of member objects.
type Extension struct{}

// ExtensionName implements object.Extension.
func (Extension) ExtensionName() string { return "group" }

func groupDecl() object.Decl {
	return object.Decl{Name: PropGroup, Kind: object.KindLinkList, Doc: "Objects in the group."}
}

func groupProperty(g *object.Object) (*object.Property, error) {
	if _, ok := object.ExtensionOf[Extension](g); !ok {
		return nil, fmt.Errorf("object '%s' is not a group", g.Name())
	}
	p := g.Property(PropGroup)
	if p == nil || p.Kind() != object.KindLinkList {
		return nil, fmt.Errorf("group '%s' has no %s property", g.Name(), PropGroup)
	}
	return p, nil
}

// Members returns the live members of g in group order.
func Members(g *object.Object) []*object.Object {
	p, err := groupProperty(g)
	if err != nil {
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

// AddObject appends o to the members of g. Adding a member twice is a
// no-op. When g is an origin group, links of o to origin features of other
// groups are moved to g's own origin first.
func AddObject(g, o *object.Object) error {
	p, err := groupProperty(g)
	if err != nil {
		return err
	}
	if o == g {
		return fmt.Errorf("group '%s' cannot contain itself", g.Name())
	}
	if HasObject(o, g, true) {
		return fmt.Errorf("adding '%s' to '%s' would nest the group inside itself", o.Name(), g.Name())
	}
	targets := p.Targets()
	if slices.Contains(targets, o) {
		return nil
	}
	if _, ok := object.ExtensionOf[OriginExtension](g); ok {
		if err := relinkToOrigin(g, o); err != nil {
			return err
		}
	}
	return p.SetLinks(append(targets, o))
}

// RemoveObject drops o from the members of g. It reports whether o was a
// member.
func RemoveObject(g, o *object.Object) (bool, error) {
	p, err := groupProperty(g)
	if err != nil {
		return false, err
	}
	targets := p.Targets()
	kept := slices.DeleteFunc(slices.Clone(targets), func(t *object.Object) bool { return t == o })
	if len(kept) == len(targets) {
		return false, nil
	}
	return true, p.SetLinks(kept)
}

// HasObject reports whether o is a member of g. With recursive set, members
// of nested groups count too. The origin of an origin group and its
// features belong to the group.
func HasObject(g, o *object.Object, recursive bool) bool {
	return hasObject(g, o, recursive, map[*object.Object]bool{})
}

func hasObject(g, o *object.Object, recursive bool, visited map[*object.Object]bool) bool {
	if visited[g] {
		return false
	}
	visited[g] = true

	if origin := OriginOf(g); origin != nil && (o == origin || slices.Contains(Features(origin), o)) {
		return true
	}
	for _, m := range Members(g) {
		if m == o {
			return true
		}
		if recursive {
			if _, ok := object.ExtensionOf[Extension](m); ok && hasObject(m, o, true, visited) {
				return true
			}
		}
	}
	return false
}

// GroupOf returns the group among candidates that directly contains o.
func GroupOf(candidates []*object.Object, o *object.Object) (*object.Object, error) {
	var found *object.Object
	for _, c := range candidates {
		if _, ok := object.ExtensionOf[Extension](c); !ok || c == o {
			continue
		}
		if HasObject(c, o, false) {
			if found != nil {
				return nil, fmt.Errorf("object '%s' is in more than one group", o.Name())
			}
			found = c
		}
	}
	return found, nil
}
