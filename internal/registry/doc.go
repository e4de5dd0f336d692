// Package registry provides the central "glue" for the component system.
//
// The Registry stores two kinds of mappings: component types assembled in
// Go code (a name, a constructor, ordered plugs, setup hooks, and the
// capabilities the type satisfies), and the handler tables that bind the
// string identifiers used in manifests (e.g. "NewMemCache") to the actual
// compiled Go functions.
//
// During application startup the registry is populated from built-in
// modules and then validated against the loaded manifest definitions, so
// that a manifest referencing a handler that was never compiled in fails at
// startup instead of leaving an instance silently un-ready at runtime.
package registry
