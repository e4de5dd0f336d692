// Package config defines the unified, format-agnostic representation of
// the application's manifests: component type definitions and the boot
// assembly. Loaders translate their source format (currently HCL) into
// this model; nothing downstream of the loader knows which format a
// definition came from.
package config
