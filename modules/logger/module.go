// Package logger provides the built-in structured logging component.
package logger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/vk/knitgo/internal/ctxlog"
	"github.com/vk/knitgo/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Logger is the component value: a prefixed wrapper over the application
// logger.
type Logger struct {
	Prefix string
	log    *slog.Logger
}

// Logf writes one prefixed info record.
func (l *Logger) Logf(format string, args ...any) {
	l.log.Info(l.Prefix + fmt.Sprintf(format, args...))
}

// NewLogger is the constructor handler for the 'logger' component.
func NewLogger(ctx context.Context, args map[string]cty.Value) (any, error) {
	prefix := ""
	if v, ok := args["prefix"]; ok {
		if err := gocty.FromCtyValue(v, &prefix); err != nil {
			return nil, fmt.Errorf("logger: invalid 'prefix' argument: %w", err)
		}
	}
	return &Logger{Prefix: prefix, log: ctxlog.FromContext(ctx)}, nil
}

// Register registers the handlers with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterConstructor("NewLogger", NewLogger)
}
