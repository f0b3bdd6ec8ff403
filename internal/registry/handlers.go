package registry

import (
	"fmt"
	"log/slog"
)

// RegisterType registers an object type. It panics if the name is taken or
// the type has no factory, since both are programming errors in a module.
func (r *Registry) RegisterType(t *ObjectType) {
	if t == nil || t.New == nil {
		panic("object type must have a factory")
	}
	if _, exists := r.TypeRegistry[t.Name]; exists {
		panic(fmt.Sprintf("object type with name '%s' already registered", t.Name))
	}
	slog.Debug("Registering object type.", "name", t.Name)
	r.TypeRegistry[t.Name] = t
}
