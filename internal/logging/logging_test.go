package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/panbanda/pctl/pkg/config"
)

func TestHumanLogger(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWriter(&buf, config.LogConfig{Level: "info", Format: "human"})
	require.NoError(t, err)

	log.Named("quantile").Info("plan built", zap.Int("rows", 4))
	log.Debug("hidden")
	require.NoError(t, log.Sync())

	out := buf.String()
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, "pctl.quantile")
	assert.Contains(t, out, "plan built")
	assert.Contains(t, out, `"rows": 4`)
	assert.NotContains(t, out, "hidden")
}

func TestJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWriter(&buf, config.LogConfig{Level: "debug", Format: "json"})
	require.NoError(t, err)

	log.Debug("strategy")
	require.NoError(t, log.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "pctl", entry["logger"])
	assert.Equal(t, "strategy", entry["msg"])
}

func TestInvalidLevel(t *testing.T) {
	_, err := NewWriter(&bytes.Buffer{}, config.LogConfig{Level: "loud"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log level")
}
