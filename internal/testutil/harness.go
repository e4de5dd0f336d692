// Package testutil provides shared helpers for integration tests.
package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/knitgo/internal/app"
	"github.com/vk/knitgo/internal/hcl"
	"github.com/vk/knitgo/internal/registry"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	LogOutput string
	Result    *app.RunResult
	Err       error
	App       *app.App
}

// RunIntegrationTest provides a standardized harness: it writes the given
// manifest files to a temporary directory tree, boots an app over them with
// the provided modules, runs the assembly, and captures the log output.
// File names are relative paths; "modules/..." files become the modules
// tree and everything else joins the assembly tree.
func RunIntegrationTest(t *testing.T, files map[string]string, modules ...registry.Module) *HarnessResult {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", ".tmp-integration-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	assemblyDir := filepath.Join(tmpDir, "assembly")
	modulesDir := filepath.Join(tmpDir, "modules")
	require.NoError(t, os.Mkdir(assemblyDir, 0755))
	require.NoError(t, os.Mkdir(modulesDir, 0755))

	for name, content := range files {
		var path string
		if strings.HasPrefix(name, "modules/") {
			path = filepath.Join(tmpDir, name)
		} else {
			path = filepath.Join(assemblyDir, name)
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}

	logBuf := &SafeBuffer{}
	appConfig, err := app.NewConfig(app.Config{
		AssemblyPath: assemblyDir,
		ModulesPath:  modulesDir,
		LogFormat:    "text",
		LogLevel:     "debug",
	})
	require.NoError(t, err)

	out := &HarnessResult{}
	func() {
		defer func() {
			if r := recover(); r != nil {
				if err, ok := r.(error); ok {
					out.Err = err
					return
				}
				t.Fatalf("unexpected panic: %v", r)
			}
		}()
		out.App = app.NewApp(logBuf, appConfig, hcl.NewLoader(), modules...)
		out.Result, out.Err = out.App.Run(context.Background())
	}()

	out.LogOutput = logBuf.String()
	return out
}
