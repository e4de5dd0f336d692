package app

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML shape of an optional config file. Values from the
// file fill in only the fields the CLI left unset, so flags always win.
type fileConfig struct {
	AssemblyPath string `yaml:"assembly_path"`
	ModulesPath  string `yaml:"modules_path"`
	LogFormat    string `yaml:"log_format"`
	LogLevel     string `yaml:"log_level"`
}

// MergeConfigFile reads a YAML config file and merges it into cfg.
func MergeConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if cfg.AssemblyPath == "" {
		cfg.AssemblyPath = fc.AssemblyPath
	}
	if cfg.ModulesPath == "" {
		cfg.ModulesPath = fc.ModulesPath
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = fc.LogFormat
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = fc.LogLevel
	}
	return nil
}
