package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/knitgo/internal/config"
	"github.com/vk/knitgo/internal/ctxlog"
	"github.com/vk/knitgo/internal/fsutil"
	"github.com/vk/knitgo/internal/schema"
)

// Loader loads HCL manifest files into the config model.
type Loader struct{}

// NewLoader creates a new HCL loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load implements config.Loader. Each path may be a single .hcl file or a
// directory searched recursively. Later files may add definitions and boot
// requests; redefining a component name is an error.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)

	model := &config.Model{
		Components: make(map[string]*config.ComponentDef),
		Assembly:   &config.Assembly{},
	}

	var filePaths []string
	for _, path := range paths {
		found, err := fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			logger.Error("Failed to walk manifest path", "path", path, "error", err)
			return nil, err
		}
		filePaths = append(filePaths, found...)
	}

	if len(filePaths) == 0 {
		logger.Warn("No .hcl manifest files found", "paths", paths)
		return model, nil
	}
	logger.Debug("Found manifest files to load", "files", filePaths)

	parser := hclparse.NewParser()
	for _, filePath := range filePaths {
		hclFile, diags := parser.ParseHCLFile(filePath)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse manifest %s: %w", filePath, diags)
		}

		var fileCfg schema.FileConfig
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &fileCfg); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode manifest %s: %w", filePath, diags)
		}

		for _, cb := range fileCfg.Components {
			if _, exists := model.Components[cb.Name]; exists {
				return nil, fmt.Errorf("component '%s' redefined in %s", cb.Name, filePath)
			}
			def, err := l.translateComponent(cb)
			if err != nil {
				return nil, fmt.Errorf("invalid component '%s' in %s: %w", cb.Name, filePath, err)
			}
			model.Components[cb.Name] = def
		}

		for _, bb := range fileCfg.Boots {
			model.Assembly.Boots = append(model.Assembly.Boots, &config.Boot{
				Component: bb.Component,
				Arguments: l.extractBodyAttributes(bb.Arguments),
			})
		}
		logger.Debug("Loaded definitions from manifest", "file", filePath)
	}

	logger.Info("Manifests loaded.", "components", len(model.Components), "boots", len(model.Assembly.Boots))
	return model, nil
}

// translateComponent converts the HCL-specific component schema into the
// agnostic model.
func (l *Loader) translateComponent(cb *schema.ComponentBlock) (*config.ComponentDef, error) {
	if cb.Lifecycle == nil {
		return nil, fmt.Errorf("missing lifecycle block")
	}

	def := &config.ComponentDef{
		Name:        cb.Name,
		Description: cb.Description,
		Lifecycle: config.Lifecycle{
			Init:  cb.Lifecycle.Init,
			Setup: cb.Lifecycle.Setup,
		},
		Satisfies: cb.Satisfies,
	}

	for _, pb := range cb.Plugs {
		def.Plugs = append(def.Plugs, &config.PlugDef{
			Name:       pb.Name,
			Component:  pb.Component,
			Capability: pb.Capability,
			Arguments:  l.extractBodyAttributes(pb.Arguments),
		})
	}
	return def, nil
}

// extractBodyAttributes flattens an arguments block into a map of named
// expressions. Evaluation is deferred until assembly time.
func (l *Loader) extractBodyAttributes(block *schema.ArgsBlock) map[string]hcl.Expression {
	if block == nil {
		return nil
	}
	attrs, diags := block.Body.JustAttributes()
	if diags.HasErrors() || len(attrs) == 0 {
		return nil
	}
	out := make(map[string]hcl.Expression, len(attrs))
	for name, attr := range attrs {
		out[name] = attr.Expr
	}
	return out
}
