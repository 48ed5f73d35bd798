package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func messages(t *testing.T, buf *bytes.Buffer) []string {
	t.Helper()
	var out []string
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		out = append(out, entry["msg"].(string))
	}
	return out
}

func TestNewCore(t *testing.T) {
	tests := []struct {
		name   string
		debug  bool
		stdout []string
		stderr []string
	}{
		{
			name:   "production drops debug",
			debug:  false,
			stdout: []string{"info"},
			stderr: []string{"warn", "error"},
		},
		{
			name:   "debug keeps debug on stdout",
			debug:  true,
			stdout: []string{"debug", "info"},
			stderr: []string{"warn", "error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			log := zap.New(newCore(tt.debug, zapcore.AddSync(&stdout), zapcore.AddSync(&stderr)))

			log.Debug("debug")
			log.Info("info")
			log.Warn("warn")
			log.Error("error")

			assert.Equal(t, tt.stdout, messages(t, &stdout))
			assert.Equal(t, tt.stderr, messages(t, &stderr))
		})
	}
}

func TestGetZapLogger(t *testing.T) {
	first := GetZapLogger()
	second := GetZapLogger()
	require.NotNil(t, first)
	assert.Equal(t, first.Core(), second.Core())
}
