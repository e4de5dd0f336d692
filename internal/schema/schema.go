// Package schema declares the raw HCL block structures for component
// manifests and boot assemblies. These structs mirror the on-disk syntax
// exactly; the hcl package translates them into the agnostic config model.
package schema

import (
	"github.com/hashicorp/hcl/v2"
)

// ArgsBlock captures the free-form attributes of an `arguments` block.
type ArgsBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// LifecycleBlock maps lifecycle events to registered Go handler names.
type LifecycleBlock struct {
	Init  string   `hcl:"init"`
	Setup []string `hcl:"setup,optional"`
}

// PlugBlock declares one dependency of a component. Exactly one of
// Component or Capability must be set.
type PlugBlock struct {
	Name       string     `hcl:"name,label"`
	Component  string     `hcl:"component,optional"`
	Capability string     `hcl:"capability,optional"`
	Arguments  *ArgsBlock `hcl:"arguments,block"`
}

// ComponentBlock represents a `component` block: the manifest for one
// component type.
type ComponentBlock struct {
	Name        string          `hcl:"name,label"`
	Description string          `hcl:"description,optional"`
	Lifecycle   *LifecycleBlock `hcl:"lifecycle,block"`
	Plugs       []*PlugBlock    `hcl:"plug,block"`
	Satisfies   []string        `hcl:"satisfies,optional"`
}

// BootBlock requests construction of one component instance at startup.
type BootBlock struct {
	Component string     `hcl:"component,label"`
	Arguments *ArgsBlock `hcl:"arguments,block"`
}

// FileConfig is the top-level structure of a manifest file. A file may mix
// component definitions and boot requests.
type FileConfig struct {
	Components []*ComponentBlock `hcl:"component,block"`
	Boots      []*BootBlock      `hcl:"boot,block"`
	Body       hcl.Body          `hcl:",remain"`
}
