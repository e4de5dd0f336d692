// Package assembler binds the loaded manifest definitions and the compiled
// Go handlers into component types the orchestrator can construct. It is
// the bridge between the declarative surface (HCL manifests) and the
// lifecycle engine.
package assembler

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/knitgo/internal/config"
	"github.com/vk/knitgo/internal/ctxlog"
	"github.com/vk/knitgo/internal/lifecycle"
	"github.com/vk/knitgo/internal/plug"
	"github.com/vk/knitgo/internal/registry"
)

// Assembler turns component definitions into lifecycle constructions.
type Assembler struct {
	reg  *registry.Registry
	orch *lifecycle.Orchestrator
}

// New creates an assembler over the given registry and orchestrator.
func New(reg *registry.Registry, orch *lifecycle.Orchestrator) *Assembler {
	return &Assembler{reg: reg, orch: orch}
}

// Boot constructs the instance a boot block requests.
func (a *Assembler) Boot(ctx context.Context, boot *config.Boot) (*lifecycle.Instance, error) {
	args, err := evaluateArguments(boot.Arguments)
	if err != nil {
		return nil, fmt.Errorf("boot %q: %w", boot.Component, err)
	}
	return a.Construct(ctx, boot.Component, args)
}

// Construct builds one instance of the named component definition with the
// given constructor arguments, wiring its plugs from the definition: a
// component plug becomes a Direct descriptor that recursively constructs
// the referenced definition through the orchestrator, a capability plug
// becomes a broker wait.
func (a *Assembler) Construct(ctx context.Context, name string, args map[string]cty.Value) (*lifecycle.Instance, error) {
	logger := ctxlog.FromContext(ctx)

	typ, err := a.componentType(name, args)
	if err != nil {
		return nil, err
	}

	logger.Debug("Assembling component instance.", "component", name)
	return a.orch.Construct(ctx, typ)
}

// componentType materializes a registry.Type for one construction site.
// Argument bindings differ per site, so types are built per call rather
// than shared; the per-instance slot discipline of plugs is unaffected.
func (a *Assembler) componentType(name string, args map[string]cty.Value) (*registry.Type, error) {
	def, ok := a.reg.Definition(name)
	if !ok {
		return nil, fmt.Errorf("assembler: no definition for component %q", name)
	}

	ctor, ok := a.reg.Constructor(def.Lifecycle.Init)
	if !ok {
		return nil, fmt.Errorf("assembler: component %q: constructor handler %q not registered", name, def.Lifecycle.Init)
	}

	b := registry.Define(name, func(ctx context.Context) (any, error) {
		return ctor(ctx, args)
	})

	for _, pd := range def.Plugs {
		p, err := a.buildPlug(name, pd)
		if err != nil {
			return nil, err
		}
		b.Needs(pd.Name, p)
	}

	for _, hookName := range def.Lifecycle.Setup {
		hook, ok := a.reg.Hook(hookName)
		if !ok {
			return nil, fmt.Errorf("assembler: component %q: setup handler %q not registered", name, hookName)
		}
		b.OnSetup(hook)
	}

	return b.Satisfies(def.Satisfies...).Build(), nil
}

// buildPlug translates one plug definition into a dependency descriptor.
func (a *Assembler) buildPlug(owner string, pd *config.PlugDef) (*plug.Plug, error) {
	switch {
	case pd.Capability != "":
		return plug.ForCapability(pd.Capability), nil
	case pd.Component != "":
		depName := pd.Component
		depArgs, err := evaluateArguments(pd.Arguments)
		if err != nil {
			return nil, fmt.Errorf("assembler: component %q: plug %q: %w", owner, pd.Name, err)
		}
		return plug.Direct(func(ctx context.Context) (any, error) {
			return a.Construct(ctx, depName, depArgs)
		}), nil
	default:
		return nil, fmt.Errorf("assembler: component %q: plug %q declares neither a component nor a capability", owner, pd.Name)
	}
}

// evaluateArguments resolves manifest argument expressions to values.
// Expressions are constant: there is no evaluation context to reference.
func evaluateArguments(exprs map[string]hcl.Expression) (map[string]cty.Value, error) {
	if len(exprs) == 0 {
		return nil, nil
	}
	out := make(map[string]cty.Value, len(exprs))
	for name, expr := range exprs {
		value, diags := expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("argument %q: %w", name, diags)
		}
		out[name] = value
	}
	return out, nil
}
