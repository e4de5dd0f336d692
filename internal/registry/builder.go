package registry

import (
	"context"

	"github.com/vk/knitgo/internal/plug"
)

// Builder assembles a component Type declaration by declaration. It is the
// explicit replacement for attaching metadata to a type definition as a
// side effect: declare once, register, construct many.
type Builder struct {
	t *Type
}

// Define starts a component type declaration with its constructor.
func Define(name string, ctor func(ctx context.Context) (any, error)) *Builder {
	return &Builder{t: &Type{Name: name, New: ctor}}
}

// Needs declares one named dependency descriptor. Declaration order is
// preserved.
func (b *Builder) Needs(name string, p *plug.Plug) *Builder {
	b.t.Plugs = append(b.t.Plugs, NamedPlug{Name: name, Plug: p})
	return b
}

// OnSetup appends a setup hook. Hooks run after every dependency has
// resolved; completion order among them is not guaranteed.
func (b *Builder) OnSetup(h Hook) *Builder {
	b.t.Hooks = append(b.t.Hooks, h)
	return b
}

// Satisfies declares the capability identifiers the type publishes once
// ready.
func (b *Builder) Satisfies(capabilities ...string) *Builder {
	b.t.Capabilities = append(b.t.Capabilities, capabilities...)
	return b
}

// Build returns the assembled type without registering it.
func (b *Builder) Build() *Type {
	return b.t
}

// Register validates and registers the assembled type, returning it.
func (b *Builder) Register(r *Registry) *Type {
	r.RegisterComponent(b.t)
	return b.t
}
