package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    zapcore.Level
		wantErr bool
	}{
		{name: "空字符串为 info", input: "", want: zapcore.InfoLevel},
		{name: "debug", input: "debug", want: zapcore.DebugLevel},
		{name: "大小写与空白", input: " WARN ", want: zapcore.WarnLevel},
		{name: "error", input: "error", want: zapcore.ErrorLevel},
		{name: "无效级别", input: "verbose", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidLevel)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew_JSONConsole(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{Level: "info", Console: &buf})
	require.NoError(t, err)

	l.Debug("hidden")
	l.Info("cart persisted", zap.String("kind", "cart"))
	require.NoError(t, l.Sync())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &record))
	assert.Equal(t, "cart persisted", record["msg"])
	assert.Equal(t, "cart", record["kind"])
	assert.Equal(t, "info", record["level"])
	assert.Contains(t, record, "time")
}

func TestNew_DevelopmentConsole(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{Level: "debug", Development: true, Console: &buf})
	require.NoError(t, err)

	l.Debug("debug line", zap.Int("count", 3))
	require.NoError(t, l.Sync())
	assert.Contains(t, buf.String(), "debug line")
	assert.Contains(t, buf.String(), `"count": 3`)
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront.log")
	var console bytes.Buffer
	l, err := New(Options{Level: "warn", File: path, MaxSizeMB: 1, Console: &console})
	require.NoError(t, err)

	l.Info("skipped")
	l.Warn("blob changed", zap.String("key", "storefront.cart"))
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"blob changed"`)
	assert.NotContains(t, string(data), "skipped")
	assert.Contains(t, console.String(), "blob changed")
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	assert.ErrorIs(t, err, ErrInvalidLevel)
}
