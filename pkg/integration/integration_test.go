package integration

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urmzd/hive-hotwater/pkg/config"
	"github.com/urmzd/hive-hotwater/pkg/hive"
	"go.uber.org/mock/gomock"
)

func TestRefreshSystem_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	dispatcher := NewMockDispatcher(ctrl)
	dispatcher.EXPECT().Send(Domain).Times(1)

	integ := &Integration{Dispatcher: dispatcher}
	called := false
	err := integ.RefreshSystem(func() error {
		called = true
		return nil
	})

	require.NoError(t, err)
	assert.True(t, called)
}

func TestRefreshSystem_FailureStillRefreshes(t *testing.T) {
	ctrl := gomock.NewController(t)
	dispatcher := NewMockDispatcher(ctrl)
	dispatcher.EXPECT().Send(Domain).Times(1)

	boom := errors.New("boom")
	integ := &Integration{Dispatcher: dispatcher}
	err := integ.RefreshSystem(func() error { return boom })

	assert.Same(t, boom, err, "error must be returned unchanged")
}

func TestRefreshSystem_PanicStillRefreshes(t *testing.T) {
	ctrl := gomock.NewController(t)
	dispatcher := NewMockDispatcher(ctrl)
	dispatcher.EXPECT().Send(Domain).Times(1)

	integ := &Integration{Dispatcher: dispatcher}
	assert.Panics(t, func() {
		_ = integ.RefreshSystem(func() error { panic("vendor exploded") })
	})
}

func TestRegistry_GetMissing(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Get("nope")
	assert.ErrorIs(t, err, ErrEntryNotFound)

	reg.Add(&Integration{EntryID: "e1"})
	integ, err := reg.Get("e1")
	require.NoError(t, err)
	assert.Equal(t, "e1", integ.EntryID)

	reg.Remove("e1")
	_, err = reg.Get("e1")
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestSetupEntry_DiscoversDevices(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/sessions", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"sessions":[{"sessionId":"tok"}]}`))
	})
	mux.HandleFunc("GET /nodes", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"nodes": []map[string]any{{
			"id":   "hw-1",
			"name": "Receiver",
			"attributes": map[string]any{
				"supportsHotWater":   map[string]any{"reportedValue": true},
				"activeHeatCoolMode": map[string]any{"reportedValue": "HEAT"},
				"activeScheduleLock": map[string]any{"reportedValue": true},
			},
		}}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctrl := gomock.NewController(t)
	dispatcher := NewMockDispatcher(ctrl)

	reg := NewRegistry()
	cfg := config.HiveConfig{BaseURL: srv.URL, Username: "u", Password: "p"}
	integ, err := SetupEntry(context.Background(), reg, "entry-1", cfg, srv.Client(), dispatcher)
	require.NoError(t, err)

	got, err := reg.Get("entry-1")
	require.NoError(t, err)
	assert.Same(t, integ, got)

	recs := integ.Devices[hive.PlatformWaterHeater]
	require.Len(t, recs, 1)
	assert.Equal(t, hive.ModeOn, recs[0].CurrentOperation)
	assert.NotNil(t, integ.NewHotwater(srv.Client()))
}

func TestSetupEntry_LoginFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	reg := NewRegistry()
	cfg := config.HiveConfig{BaseURL: srv.URL, Username: "u", Password: "p"}
	_, err := SetupEntry(context.Background(), reg, "entry-1", cfg, srv.Client(), nil)
	assert.ErrorIs(t, err, hive.ErrUnauthorized)

	_, err = reg.Get("entry-1")
	assert.ErrorIs(t, err, ErrEntryNotFound)
}
