package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urmzd/hive-hotwater/pkg/hive"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
hive:
  username: user@example.com
  password: secret
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "user@example.com", cfg.Hive.Username)
	assert.Equal(t, hive.DefaultBaseURL, cfg.Hive.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Hive.ScanInterval)
	assert.Equal(t, hive.DefaultUpdateInterval, cfg.Hive.UpdateInterval)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "stderr", cfg.Log.Output)
	assert.False(t, cfg.MQTT.Enabled)
	assert.Equal(t, "homeassistant", cfg.MQTT.DiscoveryPrefix)
}

func TestLoad_Durations(t *testing.T) {
	path := writeConfig(t, `
hive:
  scan_interval: 15s
  update_interval: 1m
mqtt:
  enabled: true
  broker: mqtt.local
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, cfg.Hive.ScanInterval)
	assert.Equal(t, time.Minute, cfg.Hive.UpdateInterval)
	assert.Equal(t, 1883, cfg.MQTT.Port)
}

func TestLoad_EnvCredentials(t *testing.T) {
	t.Setenv("HIVE_USERNAME", "env-user")
	t.Setenv("HIVE_PASSWORD", "env-pass")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "env-user", cfg.Hive.Username)
	assert.Equal(t, "env-pass", cfg.Hive.Password)
}

func TestLoad_Invalid(t *testing.T) {
	path := writeConfig(t, `
log:
  output: syslog
hive:
  scan_interval: 100ms
mqtt:
  enabled: true
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scan_interval")
	assert.Contains(t, err.Error(), "log.output")
	assert.Contains(t, err.Error(), "mqtt.broker")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
