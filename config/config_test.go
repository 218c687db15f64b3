package config

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GO_ENV", "production")
	t.Setenv("HOST_EMAIL", "  Host.KVRS@Gmail.com ")
	t.Setenv("GOOGLE_PRIVATE_KEY", `line1\nline2`)
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test,http://b.test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "host.kvrs@gmail.com", cfg.HostEmail)
	assert.Equal(t, "line1\nline2", cfg.SheetPrivateKey)
	assert.Equal(t, 3*time.Second, cfg.HostDenyGrace)
	assert.Equal(t, 60*time.Second, cfg.WriteTimeout)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 1000, cfg.LuckyNumberMaxAttempts)
	assert.Equal(t, "Asia/Kolkata", cfg.DisplayTimezone)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"non positive attempts", "LUCKY_NUMBER_MAX_ATTEMPTS", "0"},
		{"unknown timezone", "DISPLAY_TIMEZONE", "Mars/Olympus"},
		{"malformed duration", "SESSION_TTL", "forever"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GO_ENV", "production")
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "production", "warn")

	logger.Info("dropped")
	require.Zero(t, buf.Len())
	require.True(t, logger.Enabled(context.Background(), slog.LevelWarn))

	logger.Warn("kept", "k", "v")
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "kept", rec["msg"])
	assert.Equal(t, "v", rec["k"])
}
