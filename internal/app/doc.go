// Package app wires the engine together: it configures an isolated logger,
// loads manifests through a config.Loader, registers the built-in modules,
// validates manifest/handler parity, and runs the boot assembly to
// readiness.
package app
