package registry

import (
	"fmt"

	"github.com/specialistvlad/featuregraph/internal/config"
	"github.com/specialistvlad/featuregraph/internal/object"
)

// NewSpec builds the object spec for a configuration block through the
// factory of its type.
func (r *Registry) NewSpec(cfg *config.Object) (object.Spec, error) {
	t, ok := r.TypeRegistry[cfg.Type]
	if !ok {
		return object.Spec{}, fmt.Errorf("object '%s': unknown type '%s'", cfg.Name, cfg.Type)
	}
	spec, err := t.New(cfg)
	if err != nil {
		return object.Spec{}, fmt.Errorf("object '%s' of type '%s': %w", cfg.Name, cfg.Type, err)
	}
	spec.Type = t.Name
	spec.Name = cfg.Name
	if cfg.Label != "" {
		spec.Label = cfg.Label
	}
	return spec, nil
}
