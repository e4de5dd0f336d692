package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// AssemblyPath points at the .hcl file or directory declaring what to
	// boot.
	AssemblyPath string
	// ModulesPath points at the directory of component manifests.
	ModulesPath string

	LogFormat string
	LogLevel  string
}

// NewConfig validates a configuration value.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.AssemblyPath == "" {
		return nil, errors.New("AssemblyPath is a required configuration field and cannot be empty")
	}
	return &cfg, nil
}
