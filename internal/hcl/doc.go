// Package hcl implements the config.Loader interface for HCL manifests.
// It parses manifest files, decodes them into the raw schema structures,
// and translates those into the format-agnostic config model.
package hcl
