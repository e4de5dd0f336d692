package config

import (
	"context"

	"github.com/hashicorp/hcl/v2"
)

// Model is the unified representation of the entire loaded configuration.
type Model struct {
	Components map[string]*ComponentDef
	Assembly   *Assembly
}

// ComponentDef is the format-agnostic representation of a `component`
// manifest block.
type ComponentDef struct {
	Name        string
	Description string
	Lifecycle   Lifecycle
	Plugs       []*PlugDef
	Satisfies   []string
}

// Lifecycle maps a component's lifecycle events to registered Go handlers.
type Lifecycle struct {
	// Init names the constructor handler.
	Init string
	// Setup names the setup hook handlers, in declaration order.
	Setup []string
}

// PlugDef is the format-agnostic representation of a `plug` block. Exactly
// one of Component or Capability is set.
type PlugDef struct {
	Name string
	// Component names another component definition constructed directly
	// for this dependency.
	Component string
	// Capability names an abstract capability satisfied by whichever
	// component publishes it first.
	Capability string
	// Arguments holds unevaluated constructor arguments for Component
	// plugs.
	Arguments map[string]hcl.Expression
}

// Assembly lists the instances to construct at startup.
type Assembly struct {
	Boots []*Boot
}

// Boot is one startup construction request.
type Boot struct {
	Component string
	Arguments map[string]hcl.Expression
}

// Loader translates manifests from their on-disk format into the model.
type Loader interface {
	Load(ctx context.Context, paths ...string) (*Model, error)
}
