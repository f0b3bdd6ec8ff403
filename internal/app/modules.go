package app

import (
	"github.com/specialistvlad/featuregraph/internal/registry"
	"github.com/specialistvlad/featuregraph/modules/group"
	"github.com/specialistvlad/featuregraph/modules/script"
	"github.com/specialistvlad/featuregraph/modules/solid"
	"github.com/specialistvlad/featuregraph/modules/value"
)

// coreModules is the definitive list of object types compiled into the
// featuregraph binary.
var coreModules = []registry.Module{
	&solid.Module{},
	&script.Module{},
	&value.Module{},
	&group.Module{},
}
