package types

import (
	"encoding/json"
	"time"
)

// --- Request DTOs ---

// SetOperationModeRequest is the documented body for POST /devices/:id/state
type SetOperationModeRequest struct {
	OperationMode string `json:"operation_mode" enums:"eco,on,off" example:"eco"`
}

// --- Response DTOs ---

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// HealthResponse is returned from GET /health
type HealthResponse struct {
	Status     string    `json:"status"`
	Controller string    `json:"controller"`
	Timestamp  time.Time `json:"timestamp"`
}

// ListDevicesResponse is returned from GET /devices
type ListDevicesResponse struct {
	Devices []DeviceWithState `json:"devices"`
	Count   int               `json:"count"`
}

// DeviceWithState combines device info with current state
type DeviceWithState struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Type         string          `json:"type"`
	Protocol     string          `json:"protocol"`
	Model        string          `json:"model,omitempty"`
	Manufacturer string          `json:"manufacturer,omitempty"`
	StateSchema  json.RawMessage `json:"state_schema,omitempty" swaggertype:"object"`
	State        map[string]any  `json:"state,omitempty"`
	StateError   string          `json:"state_error,omitempty"`
}

// DeviceResponse is returned from GET /devices/:id
type DeviceResponse struct {
	Device DeviceWithState `json:"device"`
}

// StateResponse is returned from GET/POST /devices/:id/state
type StateResponse struct {
	Device    string         `json:"device"`
	State     map[string]any `json:"state"`
	Timestamp time.Time      `json:"timestamp"`
}
