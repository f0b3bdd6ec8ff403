package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/featuregraph/internal/config"
	"github.com/specialistvlad/featuregraph/internal/ctxlog"
)

// ValidateModel checks that every object in the model has a registered type
// and that only script objects carry a script block. All problems are
// reported together.
func (r *Registry) ValidateModel(ctx context.Context, model *config.Model) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, obj := range model.Objects {
		if _, ok := r.TypeRegistry[obj.Type]; !ok {
			errs = append(errs, fmt.Sprintf("object '%s': unknown type '%s' (known types: %s)", obj.Name, obj.Type, strings.Join(r.TypeNames(), ", ")))
			continue
		}
		if len(obj.Script) > 0 && !r.acceptsScript(obj.Type) {
			errs = append(errs, fmt.Sprintf("object '%s': type '%s' does not accept a script block", obj.Name, obj.Type))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("document validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	logger.Debug("Document model validated.", "objects", len(model.Objects))
	return nil
}

func (r *Registry) acceptsScript(typeName string) bool {
	t, ok := r.TypeRegistry[typeName]
	return ok && t.AcceptsScript
}
