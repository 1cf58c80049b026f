package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/require"

	"github.com/Samantha1101854/pilltime-pro2/internal/errs"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, BackendSQLite, cfg.Storage.Backend)
	require.NotContains(t, cfg.Storage.SQLitePath, "~")
	require.Equal(t, 60*time.Second, cfg.Alert.Interval)
	require.Equal(t, 60*time.Second, cfg.Alert.Lead)
	require.Equal(t, 300*time.Second, cfg.Alert.Window)
	require.Equal(t, 5*time.Minute, cfg.Alert.Snooze)
	require.Equal(t, time.Hour, cfg.Alert.MissedAfter)
	require.Equal(t, "info", cfg.Log.Level)
	require.False(t, cfg.Telegram.Enabled)
	require.NoError(t, cfg.Validate())
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pilltime.yaml")
	yaml := `
storage:
  backend: redis
  redis_url: redis://cache:6379/1
alert:
  interval: 30s
  snooze: 10m
timezone: Europe/Berlin
log:
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	t.Setenv("PILLTIME_ALERT__SNOOZE", "15m")
	t.Setenv("PILLTIME_TELEGRAM__CHAT_ID", "12345")

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, BackendRedis, cfg.Storage.Backend)
	require.Equal(t, "redis://cache:6379/1", cfg.Storage.RedisURL)
	require.Equal(t, 30*time.Second, cfg.Alert.Interval)
	require.Equal(t, 15*time.Minute, cfg.Alert.Snooze, "env overrides file")
	require.Equal(t, int64(12345), cfg.Telegram.ChatID)
	require.Equal(t, "json", cfg.Log.Format)

	loc, err := cfg.Location()
	require.NoError(t, err)
	require.Equal(t, "Europe/Berlin", loc.String())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, BackendSQLite, cfg.Storage.Backend)
}

func TestLoad_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage: [unclosed"), 0o600))
	_, err := Load(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load("")
		require.NoError(t, err)
		cfg.Storage.Backend = BackendMemory
		return cfg
	}

	cfg := valid()
	require.NoError(t, cfg.Validate())

	cfg = valid()
	cfg.Storage.Backend = "mongo"
	require.ErrorIs(t, cfg.Validate(), errs.ErrUnsupportedBackend)

	cfg = valid()
	cfg.Storage.Backend = BackendPostgres
	require.Error(t, cfg.Validate())
	cfg.Storage.PostgresDSN = "postgres://localhost/pilltime"
	require.NoError(t, cfg.Validate())

	cfg = valid()
	cfg.Alert.Window = 0
	require.ErrorContains(t, cfg.Validate(), "alert.window")

	cfg = valid()
	cfg.Timezone = "Mars/Olympus"
	require.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Log.Format = "xml"
	require.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Telegram.Enabled = true
	require.Error(t, cfg.Validate())
	cfg.Telegram.BotToken, cfg.Telegram.ChatID = "t", 1
	require.NoError(t, cfg.Validate())
}

func TestEnvKey(t *testing.T) {
	require.Equal(t, "storage.backend", envKey("PILLTIME_STORAGE__BACKEND"))
	require.Equal(t, "alert.missed_after", envKey("PILLTIME_ALERT__MISSED_AFTER"))
	require.Equal(t, "timezone", envKey("PILLTIME_TIMEZONE"))
}
