package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/knitgo/internal/config"
	"github.com/vk/knitgo/internal/future"
	"github.com/vk/knitgo/internal/plug"
)

func noopCtor(context.Context) (any, error) { return "v", nil }

func TestRegisterComponent(t *testing.T) {
	r := New()
	typ := Define("svc", noopCtor).
		Needs("dep", plug.ForCapability("cache")).
		Satisfies("svc").
		Register(r)

	got, ok := r.Component("svc")
	require.True(t, ok)
	assert.Same(t, typ, got)

	p, ok := typ.Plug("dep")
	require.True(t, ok)
	assert.Equal(t, plug.KindCapability, p.Kind())

	_, ok = typ.Plug("other")
	assert.False(t, ok)
}

func TestRegisterComponentPanics(t *testing.T) {
	t.Run("duplicate name", func(t *testing.T) {
		r := New()
		Define("svc", noopCtor).Register(r)
		assert.PanicsWithValue(t, "registry: component type 'svc' already registered", func() {
			Define("svc", noopCtor).Register(r)
		})
	})

	t.Run("missing constructor", func(t *testing.T) {
		r := New()
		assert.Panics(t, func() { Define("svc", nil).Register(r) })
	})

	t.Run("duplicate plug name", func(t *testing.T) {
		r := New()
		assert.Panics(t, func() {
			Define("svc", noopCtor).
				Needs("dep", plug.ForCapability("a")).
				Needs("dep", plug.ForCapability("b")).
				Register(r)
		})
	})
}

func TestHandlerRegistriesPanicOnDuplicate(t *testing.T) {
	ctor := func(context.Context, map[string]cty.Value) (any, error) { return "v", nil }
	hook := func(context.Context, Owner) (*future.Future, error) { return nil, nil }

	r := New()
	r.RegisterConstructor("NewThing", ctor)
	assert.Panics(t, func() { r.RegisterConstructor("NewThing", ctor) })

	r.RegisterHook("SetupThing", hook)
	assert.Panics(t, func() { r.RegisterHook("SetupThing", hook) })

	got, ok := r.Constructor("NewThing")
	require.True(t, ok)
	require.NotNil(t, got)

	_, ok = r.Hook("missing")
	assert.False(t, ok)
}

func TestValidateParity(t *testing.T) {
	ctx := context.Background()

	model := &config.Model{
		Components: map[string]*config.ComponentDef{
			"service": {
				Name: "service",
				Lifecycle: config.Lifecycle{
					Init:  "NewService",
					Setup: []string{"StartService"},
				},
				Plugs: []*config.PlugDef{
					{Name: "log", Component: "logger"},
					{Name: "cache", Capability: "cache"},
				},
			},
			"logger": {
				Name:      "logger",
				Lifecycle: config.Lifecycle{Init: "NewLogger"},
			},
		},
	}

	t.Run("all handlers present", func(t *testing.T) {
		r := New()
		r.RegisterConstructor("NewService", func(context.Context, map[string]cty.Value) (any, error) { return "v", nil })
		r.RegisterConstructor("NewLogger", func(context.Context, map[string]cty.Value) (any, error) { return "v", nil })
		r.RegisterHook("StartService", func(context.Context, Owner) (*future.Future, error) { return nil, nil })
		r.PopulateDefinitionsFromModel(model)

		assert.NoError(t, r.Validate(ctx))
	})

	t.Run("missing handlers reported together", func(t *testing.T) {
		r := New()
		r.PopulateDefinitionsFromModel(model)

		err := r.Validate(ctx)
		require.Error(t, err)
		assert.ErrorContains(t, err, "init handler 'NewService' is not registered")
		assert.ErrorContains(t, err, "init handler 'NewLogger' is not registered")
		assert.ErrorContains(t, err, "setup handler 'StartService' is not registered")
	})

	t.Run("direct-plug cycle", func(t *testing.T) {
		ctor := func(context.Context, map[string]cty.Value) (any, error) { return "v", nil }
		r := New()
		r.RegisterConstructor("NewA", ctor)
		r.RegisterConstructor("NewB", ctor)
		r.PopulateDefinitionsFromModel(&config.Model{
			Components: map[string]*config.ComponentDef{
				"a": {
					Name:      "a",
					Lifecycle: config.Lifecycle{Init: "NewA"},
					Plugs:     []*config.PlugDef{{Name: "dep", Component: "b"}},
				},
				"b": {
					Name:      "b",
					Lifecycle: config.Lifecycle{Init: "NewB"},
					Plugs:     []*config.PlugDef{{Name: "dep", Component: "a"}},
				},
			},
		})

		err := r.Validate(ctx)
		require.Error(t, err)
		assert.ErrorContains(t, err, "component dependency cycle detected")
	})

	t.Run("self-referencing plug", func(t *testing.T) {
		r := New()
		r.RegisterConstructor("NewSelf", func(context.Context, map[string]cty.Value) (any, error) { return "v", nil })
		r.PopulateDefinitionsFromModel(&config.Model{
			Components: map[string]*config.ComponentDef{
				"self": {
					Name:      "self",
					Lifecycle: config.Lifecycle{Init: "NewSelf"},
					Plugs:     []*config.PlugDef{{Name: "me", Component: "self"}},
				},
			},
		})

		err := r.Validate(ctx)
		require.Error(t, err)
		assert.ErrorContains(t, err, "cycle detected involving 'self'")
	})

	t.Run("diamond is not a cycle", func(t *testing.T) {
		ctor := func(context.Context, map[string]cty.Value) (any, error) { return "v", nil }
		r := New()
		r.RegisterConstructor("NewNode", ctor)
		node := func(deps ...string) *config.ComponentDef {
			def := &config.ComponentDef{Lifecycle: config.Lifecycle{Init: "NewNode"}}
			for _, d := range deps {
				def.Plugs = append(def.Plugs, &config.PlugDef{Name: d, Component: d})
			}
			return def
		}
		r.PopulateDefinitionsFromModel(&config.Model{
			Components: map[string]*config.ComponentDef{
				"top":    node("left", "right"),
				"left":   node("bottom"),
				"right":  node("bottom"),
				"bottom": node(),
			},
		})

		assert.NoError(t, r.Validate(ctx))
	})

	t.Run("invalid plug variants", func(t *testing.T) {
		r := New()
		r.RegisterConstructor("NewBad", func(context.Context, map[string]cty.Value) (any, error) { return "v", nil })
		r.PopulateDefinitionsFromModel(&config.Model{
			Components: map[string]*config.ComponentDef{
				"bad": {
					Name:      "bad",
					Lifecycle: config.Lifecycle{Init: "NewBad"},
					Plugs: []*config.PlugDef{
						{Name: "both", Component: "x", Capability: "y"},
						{Name: "neither"},
						{Name: "dangling", Component: "ghost"},
					},
				},
			},
		})

		err := r.Validate(ctx)
		require.Error(t, err)
		assert.ErrorContains(t, err, "declares both a component and a capability")
		assert.ErrorContains(t, err, "declares neither a component nor a capability")
		assert.ErrorContains(t, err, "references undefined component 'ghost'")
	})
}
