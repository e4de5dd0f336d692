package hcl

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/knitgo/internal/config"
)

func writeManifest(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestLoadTranslatesComponents(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "service.hcl", `
component "service" {
  description = "demo"
  lifecycle {
    init  = "NewService"
    setup = ["StartService"]
  }
  plug "log" {
    component = "logger"
    arguments {
      prefix = "[svc] "
    }
  }
  plug "cache" {
    capability = "cache"
  }
  satisfies = ["api"]
}
`)

	model, err := NewLoader().Load(context.Background(), dir)
	require.NoError(t, err)
	require.Contains(t, model.Components, "service")
	def := model.Components["service"]

	// Compare everything except the unevaluated argument expressions.
	got := &config.ComponentDef{
		Name:        def.Name,
		Description: def.Description,
		Lifecycle:   def.Lifecycle,
		Satisfies:   def.Satisfies,
	}
	for _, pd := range def.Plugs {
		got.Plugs = append(got.Plugs, &config.PlugDef{
			Name:       pd.Name,
			Component:  pd.Component,
			Capability: pd.Capability,
		})
	}
	want := &config.ComponentDef{
		Name:        "service",
		Description: "demo",
		Lifecycle:   config.Lifecycle{Init: "NewService", Setup: []string{"StartService"}},
		Plugs: []*config.PlugDef{
			{Name: "log", Component: "logger"},
			{Name: "cache", Capability: "cache"},
		},
		Satisfies: []string{"api"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("translated model mismatch (-want +got):\n%s", diff)
	}

	// The argument expression must evaluate to the literal.
	require.Len(t, def.Plugs, 2)
	require.Contains(t, def.Plugs[0].Arguments, "prefix")
	v, diags := def.Plugs[0].Arguments["prefix"].Value(nil)
	require.False(t, diags.HasErrors())
	assert.Equal(t, cty.StringVal("[svc] "), v)
}

func TestLoadBoots(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "boot.hcl", `
boot "memcache" {
  arguments {
    capacity = 8
  }
}
boot "service" {}
`)

	model, err := NewLoader().Load(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, model.Assembly.Boots, 2)
	assert.Equal(t, "memcache", model.Assembly.Boots[0].Component)
	assert.Equal(t, "service", model.Assembly.Boots[1].Component)
	assert.Nil(t, model.Assembly.Boots[1].Arguments)
}

func TestLoadRejectsRedefinition(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "a.hcl", `
component "dup" {
  lifecycle {
    init = "NewDup"
  }
}
`)
	writeManifest(t, dir, "b.hcl", `
component "dup" {
  lifecycle {
    init = "NewDup"
  }
}
`)

	_, err := NewLoader().Load(context.Background(), dir)
	require.Error(t, err)
	assert.ErrorContains(t, err, "component 'dup' redefined")
}

func TestLoadRejectsMissingLifecycle(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "bad.hcl", `
component "bad" {
}
`)

	_, err := NewLoader().Load(context.Background(), dir)
	require.Error(t, err)
	assert.ErrorContains(t, err, "missing lifecycle block")
}

func TestLoadEmptyDir(t *testing.T) {
	model, err := NewLoader().Load(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, model.Components)
	assert.Empty(t, model.Assembly.Boots)
}

func TestLoadSingleFilePath(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "one.hcl", `boot "x" {}`)

	model, err := NewLoader().Load(context.Background(), filepath.Join(dir, "one.hcl"))
	require.NoError(t, err)
	require.Len(t, model.Assembly.Boots, 1)
}
