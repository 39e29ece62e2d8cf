package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestPreInitLoggerUsesConfiguredCore(t *testing.T) {
	logger := L("server")

	var buf bytes.Buffer
	Init("json", "info", &buf)
	t.Cleanup(func() { Init("console", "info", nil) })

	logger.Info("connected", zap.String(KeyRemote, "127.0.0.1:5555"))

	out := buf.String()
	assert.Contains(t, out, `"msg":"connected"`)
	assert.Contains(t, out, `"component":"server"`)
	assert.Contains(t, out, `"remote":"127.0.0.1:5555"`)
}

func TestInitRespectsLevel(t *testing.T) {
	logger := L("session")

	var buf bytes.Buffer
	Init("console", "warn", &buf)
	t.Cleanup(func() { Init("console", "info", nil) })

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
}

func TestChildFieldsSurviveReinit(t *testing.T) {
	child := L("input").With(zap.String(KeySession, "abc"))

	var buf bytes.Buffer
	Init("json", "debug", &buf)
	t.Cleanup(func() { Init("console", "info", nil) })

	child.Debug("tap")

	assert.Contains(t, buf.String(), `"session":"abc"`)
	assert.Contains(t, buf.String(), `"component":"input"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "debug", parseLevel("DEBUG").String())
	assert.Equal(t, "warn", parseLevel("warning").String())
	assert.Equal(t, "error", parseLevel(" error ").String())
	assert.Equal(t, "info", parseLevel("bogus").String())
}
