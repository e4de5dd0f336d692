package registry

import (
	"fmt"
	"log/slog"
)

// RegisterConstructor registers a Go constructor under the name manifests
// refer to it by.
func (r *Registry) RegisterConstructor(name string, fn Constructor) {
	if fn == nil {
		panic(fmt.Sprintf("registry: nil constructor for '%s'", name))
	}
	if _, exists := r.constructors[name]; exists {
		panic(fmt.Sprintf("registry: constructor '%s' already registered", name))
	}
	slog.Debug("Registering constructor handler.", "name", name)
	r.constructors[name] = fn
}

// Constructor returns the registered constructor with the given name.
func (r *Registry) Constructor(name string) (Constructor, bool) {
	fn, ok := r.constructors[name]
	return fn, ok
}

// RegisterHook registers a Go setup hook under the name manifests refer to
// it by.
func (r *Registry) RegisterHook(name string, fn Hook) {
	if fn == nil {
		panic(fmt.Sprintf("registry: nil hook for '%s'", name))
	}
	if _, exists := r.hooks[name]; exists {
		panic(fmt.Sprintf("registry: hook '%s' already registered", name))
	}
	slog.Debug("Registering setup hook handler.", "name", name)
	r.hooks[name] = fn
}

// Hook returns the registered setup hook with the given name.
func (r *Registry) Hook(name string) (Hook, bool) {
	fn, ok := r.hooks[name]
	return fn, ok
}
