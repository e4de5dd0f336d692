package registry

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/vk/knitgo/internal/ctxlog"
)

// Validate performs a strict parity check between loaded manifests and the
// compiled Go handlers: every handler a manifest names must exist, every
// component a plug references must be defined, and every plug must pick
// exactly one variant. All problems are collected so one run reports the
// full mismatch, not just the first.
func (r *Registry) Validate(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	var errs []string

	for name, def := range r.definitions {
		if def.Lifecycle.Init == "" {
			errs = append(errs, fmt.Sprintf("component '%s': lifecycle has no init handler", name))
		} else if _, ok := r.constructors[def.Lifecycle.Init]; !ok {
			errs = append(errs, fmt.Sprintf("component '%s': init handler '%s' is not registered", name, def.Lifecycle.Init))
		}

		for _, hookName := range def.Lifecycle.Setup {
			if _, ok := r.hooks[hookName]; !ok {
				errs = append(errs, fmt.Sprintf("component '%s': setup handler '%s' is not registered", name, hookName))
			}
		}

		for _, pd := range def.Plugs {
			switch {
			case pd.Component != "" && pd.Capability != "":
				errs = append(errs, fmt.Sprintf("component '%s': plug '%s' declares both a component and a capability", name, pd.Name))
			case pd.Component == "" && pd.Capability == "":
				errs = append(errs, fmt.Sprintf("component '%s': plug '%s' declares neither a component nor a capability", name, pd.Name))
			case pd.Component != "":
				if _, ok := r.definitions[pd.Component]; !ok {
					errs = append(errs, fmt.Sprintf("component '%s': plug '%s' references undefined component '%s'", name, pd.Name, pd.Component))
				}
			}
		}
	}

	if err := r.detectCycles(); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		logger.Error("Registry validation failed.", "error_count", len(errs))
		return fmt.Errorf("registry validation failed with %d error(s):\n  - %s", len(errs), strings.Join(errs, "\n  - "))
	}

	logger.Debug("Registry validation passed.", "definitions", len(r.definitions))
	return nil
}

// detectCycles checks for circular component-plug dependencies using DFS.
// Assembly constructs a component plug's definition recursively, so a cycle
// would recurse without bound at boot time; it has to be refused here.
// Capability plugs are late-bound waits and cannot recurse, so they are not
// edges.
func (r *Registry) detectCycles() error {
	visiting := make(map[string]bool)
	visited := make(map[string]bool)

	var visit func(name string) error
	visit = func(name string) error {
		visiting[name] = true
		def := r.definitions[name]
		if def != nil {
			for _, pd := range def.Plugs {
				if pd.Component == "" {
					continue
				}
				if visiting[pd.Component] {
					return fmt.Errorf("component dependency cycle detected involving '%s'", pd.Component)
				}
				if !visited[pd.Component] {
					if err := visit(pd.Component); err != nil {
						return err
					}
				}
			}
		}
		delete(visiting, name)
		visited[name] = true
		return nil
	}

	names := make([]string, 0, len(r.definitions))
	for name := range r.definitions {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if !visited[name] {
			if err := visit(name); err != nil {
				return err
			}
		}
	}
	return nil
}
