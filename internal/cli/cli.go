package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/vk/knitgo/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config, a
// boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	flagSet := flag.NewFlagSet("knitgo", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
knitgo - An asynchronous component-lifecycle coordinator.

Usage:
  knitgo [options] [ASSEMBLY_PATH]

Arguments:
  ASSEMBLY_PATH
    Path to a single .hcl assembly file or a directory containing .hcl files.

Options:
`)
		flagSet.PrintDefaults()
	}

	// Defaults are applied after the optional config file merges in, so an
	// unset flag can be filled from the file.
	assemblyFlag := flagSet.String("assembly", "", "Path to the assembly file or directory.")
	aFlag := flagSet.String("a", "", "Path to the assembly file or directory (shorthand).")
	configFlag := flagSet.String("config", "", "Path to an optional YAML config file.")
	logFormatFlag := flagSet.String("log-format", "", "Log output format. Options: 'text' (default) or 'json'.")
	logLevelFlag := flagSet.String("log-level", "", "Set the logging level. Options: 'debug', 'info' (default), 'warn', 'error'.")
	modulesPathFlag := flagSet.String("modules-path", "", "Path to the directory containing component manifests (default 'modules').")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	path := ""
	if *assemblyFlag != "" {
		path = *assemblyFlag
	} else if *aFlag != "" {
		path = *aFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}

	cfg := app.Config{
		AssemblyPath: path,
		ModulesPath:  *modulesPathFlag,
		LogFormat:    strings.ToLower(*logFormatFlag),
		LogLevel:     strings.ToLower(*logLevelFlag),
	}

	if *configFlag != "" {
		if err := app.MergeConfigFile(*configFlag, &cfg); err != nil {
			return nil, false, &ExitError{Code: 2, Message: err.Error()}
		}
	}

	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.ModulesPath == "" {
		cfg.ModulesPath = "modules"
	}

	if cfg.AssemblyPath == "" {
		flagSet.Usage()
		return nil, true, nil
	}

	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	appConfig, err := app.NewConfig(cfg)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	return appConfig, false, nil
}
