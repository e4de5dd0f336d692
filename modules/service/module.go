// Package service provides the built-in demo service component: it depends
// directly on a logger and on the abstract "cache" capability, exercising
// both dependency variants end to end.
package service

import (
	"context"
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/vk/knitgo/internal/future"
	"github.com/vk/knitgo/internal/registry"
	"github.com/vk/knitgo/modules/logger"
	"github.com/vk/knitgo/modules/memcache"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Service is the component value. Log and Cache are populated by the setup
// hook, after every dependency has resolved.
type Service struct {
	Name  string
	Log   *logger.Logger
	Cache *memcache.MemCache
}

// NewService is the constructor handler for the 'service' component.
func NewService(ctx context.Context, args map[string]cty.Value) (any, error) {
	name := "service"
	if v, ok := args["name"]; ok {
		if err := gocty.FromCtyValue(v, &name); err != nil {
			return nil, fmt.Errorf("service: invalid 'name' argument: %w", err)
		}
	}
	return &Service{Name: name}, nil
}

// StartService is the setup hook handler for the 'service' component. It
// wires the resolved dependencies into the service value.
func StartService(ctx context.Context, owner registry.Owner) (*future.Future, error) {
	svc, ok := owner.Value().(*Service)
	if !ok {
		return nil, fmt.Errorf("service: unexpected component value %T", owner.Value())
	}

	logDep, err := owner.Dep("log")
	if err != nil {
		return nil, fmt.Errorf("service: logger dependency: %w", err)
	}
	svc.Log, ok = logDep.(*logger.Logger)
	if !ok {
		return nil, fmt.Errorf("service: 'log' resolved to %T, want *logger.Logger", logDep)
	}

	cacheDep, err := owner.Dep("cache")
	if err != nil {
		return nil, fmt.Errorf("service: cache dependency: %w", err)
	}
	svc.Cache, ok = cacheDep.(*memcache.MemCache)
	if !ok {
		return nil, fmt.Errorf("service: 'cache' resolved to %T, want *memcache.MemCache", cacheDep)
	}

	svc.Log.Logf("service %s started", svc.Name)
	return nil, nil
}

// Register registers the handlers with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterConstructor("NewService", NewService)
	r.RegisterHook("StartService", StartService)
}
