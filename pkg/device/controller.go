package device

import "context"

// Controller defines the interface for controlling smart home devices.
// Cloud integrations and local radios both sit behind it so the API,
// MCP and MQTT surfaces stay protocol-agnostic.
type Controller interface {
	// ListDevices returns all known devices
	ListDevices(ctx context.Context) ([]Device, error)

	// GetDevice returns a single device by ID or name
	GetDevice(ctx context.Context, id string) (*Device, error)

	// GetDeviceState retrieves the current state of a device
	GetDeviceState(ctx context.Context, id string) (DeviceState, error)

	// SetDeviceState sets the state of a device
	SetDeviceState(ctx context.Context, id string, state map[string]any) (DeviceState, error)

	// IsConnected returns true if the controller is connected
	IsConnected() bool

	// Close disconnects the controller
	Close()
}

// EventSubscriber defines the interface for subscribing to device events
type EventSubscriber interface {
	// Subscribe returns a channel that receives device events
	Subscribe() chan Event

	// Unsubscribe removes a subscription
	Unsubscribe(ch chan Event)
}
