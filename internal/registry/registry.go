package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/knitgo/internal/config"
	"github.com/vk/knitgo/internal/future"
	"github.com/vk/knitgo/internal/plug"
)

// Owner is the view of a managed instance handed to setup hooks. Dep
// returns the resolved value of the named plug; by the time hooks run,
// every plug has resolved.
type Owner interface {
	// Value returns the component value produced by the constructor.
	Value() any
	// Dep returns the resolved value of the named dependency.
	Dep(name string) (any, error)
}

// Hook is one setup callable. Hooks run once all dependencies are resolved
// and may return a future to delay readiness until some asynchronous work
// finishes; a nil future means the hook completed inline. No ordering is
// guaranteed among the hooks of one type.
type Hook func(ctx context.Context, owner Owner) (*future.Future, error)

// Constructor is a manifest-bound component constructor. Arguments come
// from the manifest's HCL expressions, already evaluated.
type Constructor func(ctx context.Context, args map[string]cty.Value) (any, error)

// NamedPlug pairs a dependency descriptor with its declared attribute name.
type NamedPlug struct {
	Name string
	Plug *plug.Plug
}

// Type is the complete declaration of one component type: everything the
// orchestrator needs to construct an instance and drive it to readiness.
type Type struct {
	// Name identifies the type in logs and manifests.
	Name string
	// New runs the component's own constructor logic.
	New func(ctx context.Context) (any, error)
	// Plugs is the ordered list of dependency descriptors.
	Plugs []NamedPlug
	// Hooks is the setup hook list, in registration order.
	Hooks []Hook
	// Capabilities lists the capability identifiers this type satisfies
	// once ready.
	Capabilities []string
}

// Plug returns the named dependency descriptor, or false if the type does
// not declare it.
func (t *Type) Plug(name string) (*plug.Plug, bool) {
	for _, np := range t.Plugs {
		if np.Name == name {
			return np.Plug, true
		}
	}
	return nil, false
}

// Module is the interface all built-in modules implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds the component types, handler tables, and manifest
// definitions for a single application instance.
type Registry struct {
	components   map[string]*Type
	constructors map[string]Constructor
	hooks        map[string]Hook
	definitions  map[string]*config.ComponentDef
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		components:   make(map[string]*Type),
		constructors: make(map[string]Constructor),
		hooks:        make(map[string]Hook),
		definitions:  make(map[string]*config.ComponentDef),
	}
}

// RegisterComponent registers a fully-assembled component type.
func (r *Registry) RegisterComponent(t *Type) {
	if t == nil || t.Name == "" {
		panic("registry: component type must have a name")
	}
	if t.New == nil {
		panic(fmt.Sprintf("registry: component type '%s' has no constructor", t.Name))
	}
	if _, exists := r.components[t.Name]; exists {
		panic(fmt.Sprintf("registry: component type '%s' already registered", t.Name))
	}
	seen := make(map[string]bool, len(t.Plugs))
	for _, np := range t.Plugs {
		if np.Name == "" || np.Plug == nil {
			panic(fmt.Sprintf("registry: component type '%s' has an invalid plug declaration", t.Name))
		}
		if seen[np.Name] {
			panic(fmt.Sprintf("registry: component type '%s' declares plug '%s' twice", t.Name, np.Name))
		}
		seen[np.Name] = true
	}
	slog.Debug("Registering component type.", "name", t.Name, "plugs", len(t.Plugs), "capabilities", t.Capabilities)
	r.components[t.Name] = t
}

// Component returns the registered type with the given name.
func (r *Registry) Component(name string) (*Type, bool) {
	t, ok := r.components[name]
	return t, ok
}

// Components returns all registered types sorted by name.
func (r *Registry) Components() []*Type {
	out := make([]*Type, 0, len(r.components))
	for _, t := range r.components {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// PopulateDefinitionsFromModel copies the loaded manifest definitions from
// the config model into the registry for validation and assembly.
func (r *Registry) PopulateDefinitionsFromModel(model *config.Model) {
	for name, def := range model.Components {
		r.definitions[name] = def
	}
}

// Definition returns the manifest definition with the given name.
func (r *Registry) Definition(name string) (*config.ComponentDef, bool) {
	def, ok := r.definitions[name]
	return def, ok
}
