package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urmzd/hive-hotwater/pkg/device"
	"github.com/urmzd/hive-hotwater/pkg/waterheater"
)

func fakeHive(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/sessions", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"sessions":[{"sessionId":"tok"}]}`))
	})
	mux.HandleFunc("GET /nodes", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"nodes": []map[string]any{{
			"id":   "hw-1",
			"name": "Hot Water",
			"attributes": map[string]any{
				"supportsHotWater":   map[string]any{"reportedValue": true},
				"activeHeatCoolMode": map[string]any{"reportedValue": "HEAT"},
				"activeScheduleLock": map[string]any{"reportedValue": false},
			},
		}}})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestNew_WithoutCredentialsFallsBack(t *testing.T) {
	t.Setenv("HIVE_USERNAME", "")
	t.Setenv("HIVE_PASSWORD", "")

	a, err := New(context.Background(), Options{DBPath: filepath.Join(t.TempDir(), "app.db")})
	require.NoError(t, err)
	defer a.Close()

	assert.IsType(t, &device.NullController{}, a.Controller)
	assert.Empty(t, a.EntryID())
	assert.Equal(t, "0.0.0.0:8080", a.Settings.APIAddress())
}

func TestNew_SetsUpWaterHeaters(t *testing.T) {
	srv := fakeHive(t)
	cfgPath := writeConfig(t, "hive:\n  base_url: "+srv.URL+"\n  username: user@example.com\n  password: secret\n")
	dbPath := filepath.Join(t.TempDir(), "app.db")

	a, err := New(context.Background(), Options{DBPath: dbPath, ConfigPath: cfgPath})
	require.NoError(t, err)

	require.IsType(t, &waterheater.Controller{}, a.Controller)
	entryID := a.EntryID()
	require.NotEmpty(t, entryID)

	devices, err := a.Controller.ListDevices(context.Background())
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, "hw-1-hotwater", devices[0].ID)

	state, err := a.Controller.GetDeviceState(context.Background(), "hw-1-hotwater")
	require.NoError(t, err)
	assert.Equal(t, "eco", state[waterheater.StateOperationMode])

	a.Close()

	// The config entry id survives a restart.
	again, err := New(context.Background(), Options{DBPath: dbPath, ConfigPath: cfgPath})
	require.NoError(t, err)
	defer again.Close()
	assert.Equal(t, entryID, again.EntryID())
}

func TestNew_InvalidConfig(t *testing.T) {
	cfgPath := writeConfig(t, "hive:\n  scan_interval: 10ms\n")
	_, err := New(context.Background(), Options{DBPath: filepath.Join(t.TempDir(), "app.db"), ConfigPath: cfgPath})
	assert.Error(t, err)
}
