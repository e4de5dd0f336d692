package app

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerLevels(t *testing.T) {
	buf := &bytes.Buffer{}
	log := newLogger("warn", "text", buf)

	log.Info("quiet")
	log.Warn("loud")

	out := buf.String()
	assert.NotContains(t, out, "quiet")
	assert.Contains(t, out, "loud")
}

func TestNewLoggerUnknownLevelFallsBackToInfo(t *testing.T) {
	buf := &bytes.Buffer{}
	log := newLogger("shouting", "text", buf)

	log.Debug("hidden")
	log.Info("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
}

func TestNewLoggerJSONFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	log := newLogger("info", "json", buf)

	log.Info("hello")

	line := strings.TrimSpace(buf.String())
	require.True(t, strings.HasPrefix(line, "{"), "expected a JSON record, got %q", line)
	assert.Contains(t, line, `"msg":"hello"`)
}
