package device

import (
	"encoding/json"
	"time"
)

// Device represents a protocol-agnostic smart home device
type Device struct {
	ID           string          `json:"id"`           // Unique identifier (entity unique id)
	Name         string          `json:"name"`         // User-friendly name
	Type         string          `json:"type"`         // Device type (water_heater, thermostat, ...)
	Protocol     string          `json:"protocol"`     // Protocol (cloud)
	Manufacturer string          `json:"manufacturer"` // Device manufacturer/vendor
	Model        string          `json:"model"`        // Device model
	StateSchema  json.RawMessage `json:"state_schema"` // JSON Schema for settable state
}

// DeviceState represents the current state of a device as a dynamic map.
type DeviceState map[string]any

// Event represents a device lifecycle or state event
type Event struct {
	Type      string    `json:"type"`             // Event type (entity_added, state_changed, ...)
	Device    *Device   `json:"device,omitempty"` // Device information if available
	Error     string    `json:"error,omitempty"`  // Failure detail for update_failed
	Timestamp time.Time `json:"timestamp"`        // When the event occurred
}

// Event type constants
const (
	EventEntityAdded  = "entity_added"
	EventStateChanged = "state_changed"
	EventUpdateFailed = "update_failed"
)

// Protocol constants
const (
	ProtocolCloud = "cloud"
)

// Device type constants
const (
	DeviceTypeWaterHeater = "water_heater"
)
