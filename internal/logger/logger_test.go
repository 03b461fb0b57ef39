package logger_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/billpay/internal/logger"
)

func TestJSONOutputAndLevel(t *testing.T) {
	var buf bytes.Buffer
	l := logger.NewWithWriter(&buf, zerolog.InfoLevel, "json", "")

	l.Debug().Msg("hidden")
	hl := l.WithComponent("http")
	hl.Info().Str("path", "/invoices").Msg("request")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "request", entry["message"])
	assert.Equal(t, "http", entry["component"])
	assert.Equal(t, "/invoices", entry["path"])
}

func TestSlogBridgeSharesLevel(t *testing.T) {
	var buf bytes.Buffer
	l := logger.NewWithWriter(&buf, zerolog.WarnLevel, "json", "")

	s := l.Slog("ledger")
	s.Info("dropped")
	s.Warn("kept", "plugin", "audit-hook")

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, `"msg":"kept"`)
	assert.Contains(t, out, `"component":"ledger"`)
}

func TestNewFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "billpay.log")
	cfg := logger.DefaultConfig()
	cfg.Format = "json"
	cfg.Output = path

	l, err := logger.New(cfg)
	require.NoError(t, err)
	l.Info().Msg("to file")
	require.NoError(t, l.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "to file")
}

func TestNewRejectsBadLevel(t *testing.T) {
	cfg := logger.DefaultConfig()
	cfg.Level = "loud"
	_, err := logger.New(cfg)
	assert.Error(t, err)
}
