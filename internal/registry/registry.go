package registry

import (
	"sort"

	"github.com/specialistvlad/featuregraph/internal/config"
	"github.com/specialistvlad/featuregraph/internal/object"
)

// Module is the interface that all object-type modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// TypeFactory builds the spec of a new object from its configuration block.
// The registry fills in the name and label afterwards.
type TypeFactory func(cfg *config.Object) (object.Spec, error)

// ObjectType is a registered object type.
type ObjectType struct {
	Name        string
	Description string
	New         TypeFactory
	// AcceptsScript allows a nested `script` block in the configuration.
	AcceptsScript bool
}

// Registry holds all the registered object types for a single application
// instance.
type Registry struct {
	TypeRegistry map[string]*ObjectType
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		TypeRegistry: make(map[string]*ObjectType),
	}
}

// NewWithModules creates a registry and registers every module in order.
func NewWithModules(modules ...Module) *Registry {
	r := New()
	for _, m := range modules {
		m.Register(r)
	}
	return r
}

// Type returns the registered type with the given name.
func (r *Registry) Type(name string) (*ObjectType, bool) {
	t, ok := r.TypeRegistry[name]
	return t, ok
}

// TypeNames returns the names of all registered types, sorted.
func (r *Registry) TypeNames() []string {
	names := make([]string, 0, len(r.TypeRegistry))
	for name := range r.TypeRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
