package modules

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/openbid/broker/hooks"
)

// ModuleBuilderFn returns an interface{} type that implements certain hook interfaces.
type ModuleBuilderFn func(cfg json.RawMessage, deps ModuleDeps) (interface{}, error)

// ModuleDeps provides dependencies that help modules to retrieve external data.
type ModuleDeps struct {
	HTTPClient *http.Client
}

// ModuleBuilders mapping between module name and its builder: map[vendor]map[module]ModuleBuilderFn
type ModuleBuilders map[string]map[string]ModuleBuilderFn

// NewBuilder returns a new module builder.
func NewBuilder() Builder {
	return &builder{builders()}
}

// Builder is the interfaces intended for building modules
// implementing hook interfaces.
type Builder interface {
	// Build initializes existing hook modules passing them config and other dependencies.
	// It returns hook repository created based on the implemented hook interfaces by modules
	// and a map of modules to a list of stage names for which module provides hooks
	// or an error encountered during module initialization.
	Build(cfg map[string]map[string]interface{}, deps ModuleDeps) (hooks.HookRepository, map[string][]string, error)
}

type builder struct {
	builders ModuleBuilders
}

// Build walks the registered module builders, passing each one its piece of
// the host config. A module explicitly switched off via the "enabled" flag is
// skipped, everything else is built and registered in the hook repository.
func (m *builder) Build(
	cfg map[string]map[string]interface{},
	deps ModuleDeps,
) (hooks.HookRepository, map[string][]string, error) {
	modules := make(map[string]interface{})
	for vendor, moduleBuilders := range m.builders {
		for moduleName, builderFn := range moduleBuilders {
			var err error
			var conf json.RawMessage

			id := fmt.Sprintf("%s.%s", vendor, moduleName)
			if data, ok := cfg[vendor][moduleName]; ok {
				if conf, err = json.Marshal(data); err != nil {
					return nil, nil, fmt.Errorf(`failed to marshal "%s" module config: %s`, id, err)
				}

				if values, ok := data.(map[string]interface{}); ok {
					if enabled, ok := values["enabled"].(bool); ok && !enabled {
						continue
					}
				}
			}

			module, err := builderFn(conf, deps)
			if err != nil {
				return nil, nil, fmt.Errorf(`failed to init "%s" module: %s`, id, err)
			}

			modules[id] = module
		}
	}

	collection, err := createModuleStageNamesCollection(modules)
	if err != nil {
		return nil, nil, err
	}

	repo, err := hooks.NewHookRepository(modules)

	return repo, collection, err
}
