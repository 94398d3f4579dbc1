package api

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urmzd/hive-hotwater/pkg/api/types"
	"github.com/urmzd/hive-hotwater/pkg/device"
	"github.com/urmzd/hive-hotwater/pkg/device/schema"
	"github.com/urmzd/hive-hotwater/pkg/hive"
)

var modeSchema = json.RawMessage(`{
	"type": "object",
	"properties": {"operation_mode": {"type": "string", "enum": ["eco", "on", "off"]}},
	"required": ["operation_mode"],
	"additionalProperties": false
}`)

// stubController serves one water heater from memory.
type stubController struct {
	connected bool
	mode      string
	setErr    error
	events    chan device.Event
}

func (s *stubController) dev() device.Device {
	return device.Device{
		ID:           "abc-hotwater",
		Name:         "Hot Water",
		Type:         device.DeviceTypeWaterHeater,
		Protocol:     device.ProtocolCloud,
		Manufacturer: "Computime",
		Model:        "SLR1",
		StateSchema:  modeSchema,
	}
}

func (s *stubController) ListDevices(context.Context) ([]device.Device, error) {
	return []device.Device{s.dev()}, nil
}

func (s *stubController) GetDevice(_ context.Context, id string) (*device.Device, error) {
	d := s.dev()
	if id != d.ID && id != d.Name {
		return nil, device.ErrNotFound
	}
	return &d, nil
}

func (s *stubController) GetDeviceState(context.Context, string) (device.DeviceState, error) {
	return device.DeviceState{"operation_mode": s.mode, "available": true}, nil
}

func (s *stubController) SetDeviceState(_ context.Context, _ string, state map[string]any) (device.DeviceState, error) {
	if s.setErr != nil {
		return nil, s.setErr
	}
	s.mode = state["operation_mode"].(string)
	return device.DeviceState{"operation_mode": s.mode, "available": true}, nil
}

func (s *stubController) IsConnected() bool { return s.connected }
func (s *stubController) Close()            {}

func (s *stubController) Subscribe() chan device.Event { return s.events }
func (s *stubController) Unsubscribe(chan device.Event) {}

func newTestRouter(c *stubController) http.Handler {
	return NewRouter(c, c, schema.NewValidator()).Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	h := newTestRouter(&stubController{connected: true})
	rec := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	h = newTestRouter(&stubController{})
	rec = do(t, h, http.MethodGet, "/api/v1/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp types.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
}

func TestRequestID(t *testing.T) {
	h := newTestRouter(&stubController{connected: true})

	rec := do(t, h, http.MethodGet, "/health", "")
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "2f1c7a56-4c4e-4a36-9c0b-6e0f1f3b8e21")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "2f1c7a56-4c4e-4a36-9c0b-6e0f1f3b8e21", rec.Header().Get(RequestIDHeader))
}

func TestListDevices(t *testing.T) {
	h := newTestRouter(&stubController{mode: "eco"})
	rec := do(t, h, http.MethodGet, "/api/v1/devices", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp types.ListDevicesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "abc-hotwater", resp.Devices[0].ID)
	assert.Equal(t, "eco", resp.Devices[0].State["operation_mode"])
}

func TestGetDevice_NotFound(t *testing.T) {
	h := newTestRouter(&stubController{})
	rec := do(t, h, http.MethodGet, "/api/v1/devices/boiler", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp types.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "not_found", resp.Error)
	assert.NotEmpty(t, resp.RequestID)
}

func TestGetState_ByName(t *testing.T) {
	h := newTestRouter(&stubController{mode: "on"})
	rec := do(t, h, http.MethodGet, "/api/v1/devices/Hot%20Water/state", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp types.StateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Hot Water", resp.Device)
	assert.Equal(t, "on", resp.State["operation_mode"])
}

func TestSetState(t *testing.T) {
	c := &stubController{mode: "on"}
	h := newTestRouter(c)

	rec := do(t, h, http.MethodPost, "/api/v1/devices/abc-hotwater/state", `{"operation_mode":"off"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "off", c.mode)
}

func TestSetState_Rejected(t *testing.T) {
	tests := []struct {
		name string
		body string
		code int
	}{
		{"malformed body", `{`, http.StatusBadRequest},
		{"unknown mode", `{"operation_mode":"boost"}`, http.StatusBadRequest},
		{"extra field", `{"operation_mode":"on","temperature":60}`, http.StatusBadRequest},
		{"missing mode", `{}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &stubController{mode: "on"}
			rec := do(t, newTestRouter(c), http.MethodPost, "/api/v1/devices/abc-hotwater/state", tt.body)
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, "on", c.mode)
		})
	}
}

func TestSetState_ControllerError(t *testing.T) {
	c := &stubController{mode: "on", setErr: device.ErrNotConnected}
	rec := do(t, newTestRouter(c), http.MethodPost, "/api/v1/devices/abc-hotwater/state", `{"operation_mode":"eco"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSetState_HiveTimeout(t *testing.T) {
	timeout := fmt.Errorf("set hot water mode: %w", fmt.Errorf("%w: update node hw-1: %w", hive.ErrTimeout, context.DeadlineExceeded))
	c := &stubController{mode: "on", setErr: timeout}
	rec := do(t, newTestRouter(c), http.MethodPost, "/api/v1/devices/abc-hotwater/state", `{"operation_mode":"eco"}`)
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)

	var body types.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "timeout", body.Error)
}

func TestEvents_Stream(t *testing.T) {
	c := &stubController{events: make(chan device.Event, 1)}
	srv := httptest.NewServer(newTestRouter(c))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	c.events <- device.Event{
		Type:      device.EventStateChanged,
		Device:    &device.Device{ID: "abc-hotwater"},
		Timestamp: time.Now(),
	}

	var seen []string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "event: ") {
			seen = append(seen, strings.TrimPrefix(line, "event: "))
		}
		if len(seen) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"connected", device.EventStateChanged}, seen)
}
