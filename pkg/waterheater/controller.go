package waterheater

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/hive-hotwater/pkg/device"
	"github.com/urmzd/hive-hotwater/pkg/integration"
	"github.com/urmzd/hive-hotwater/pkg/platform"
)

// State keys exposed through device.Controller.
const (
	StateOperationMode     = "operation_mode"
	StateOperationList     = "operation_list"
	StateAvailable         = "available"
	StateTemperatureUnit   = "temperature_unit"
	StateSupportedFeatures = "supported_features"
)

// Controller exposes the water heater entities of a platform as generic
// devices. Every entity access goes through the platform lock.
type Controller struct {
	platform *platform.Platform
	integ    *integration.Integration
}

// NewController creates a controller over p. integ is used for connectivity
// reporting only and may be nil.
func NewController(p *platform.Platform, integ *integration.Integration) *Controller {
	return &Controller{platform: p, integ: integ}
}

// operationModeSchema describes the writable part of a water heater state.
func operationModeSchema() map[string]any {
	modes := OperationModes()
	enum := make([]string, 0, len(modes))
	for _, m := range modes {
		enum = append(enum, string(m))
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			StateOperationMode: map[string]any{
				"type": "string",
				"enum": enum,
			},
		},
		"required":             []string{StateOperationMode},
		"additionalProperties": false,
	}
}

func (c *Controller) toDevice(e *Entity) device.Device {
	stateSchema, _ := json.Marshal(operationModeSchema())
	d := device.Device{
		ID:           e.UniqueID(),
		Name:         e.Name(),
		Type:         device.DeviceTypeWaterHeater,
		Protocol:     device.ProtocolCloud,
		Manufacturer: "Unknown",
		Model:        "Unknown",
		StateSchema:  stateSchema,
	}
	if info, err := e.DeviceInfo(); err == nil {
		d.Manufacturer = info.Manufacturer
		d.Model = info.Model
	} else {
		log.Debug().Err(err).Str("entity", d.ID).Msg("No device info")
	}
	return d
}

// resolve maps a unique id or display name onto a unique id.
func (c *Controller) resolve(id string) (string, error) {
	if _, ok := c.platform.Entity(id); ok {
		return id, nil
	}
	for _, e := range c.platform.Entities() {
		uid := e.UniqueID()
		var match bool
		_ = c.platform.Call(uid, func(pe platform.Entity) error {
			match = pe.Name() == id
			return nil
		})
		if match {
			return uid, nil
		}
	}
	return "", fmt.Errorf("%w: %s", device.ErrNotFound, id)
}

// call runs fn against the water heater entity addressed by id.
func (c *Controller) call(id string, fn func(*Entity) error) error {
	uid, err := c.resolve(id)
	if err != nil {
		return err
	}
	return c.platform.Call(uid, func(pe platform.Entity) error {
		e, ok := pe.(*Entity)
		if !ok {
			return fmt.Errorf("%w: %s is not a water heater", device.ErrUnsupported, uid)
		}
		return fn(e)
	})
}

func stateOf(e *Entity) (device.DeviceState, error) {
	mode, err := e.CurrentOperation()
	if err != nil {
		return nil, err
	}

	available, err := e.Available()
	if err != nil {
		log.Debug().Err(err).Str("entity", e.UniqueID()).Msg("Availability unknown, reporting unavailable")
		available = false
	}

	modes := e.OperationList()
	list := make([]string, 0, len(modes))
	for _, m := range modes {
		list = append(list, string(m))
	}

	return device.DeviceState{
		StateOperationMode:     string(mode),
		StateOperationList:     list,
		StateAvailable:         available,
		StateTemperatureUnit:   e.TemperatureUnit(),
		StateSupportedFeatures: int(e.SupportedFeatures()),
	}, nil
}

// --- device.Controller interface ---

func (c *Controller) ListDevices(_ context.Context) ([]device.Device, error) {
	entities := c.platform.Entities()
	devices := make([]device.Device, 0, len(entities))
	for _, pe := range entities {
		err := c.platform.Call(pe.UniqueID(), func(pe platform.Entity) error {
			if e, ok := pe.(*Entity); ok {
				devices = append(devices, c.toDevice(e))
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return devices, nil
}

func (c *Controller) GetDevice(_ context.Context, id string) (*device.Device, error) {
	var d device.Device
	if err := c.call(id, func(e *Entity) error {
		d = c.toDevice(e)
		return nil
	}); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *Controller) GetDeviceState(_ context.Context, id string) (device.DeviceState, error) {
	var state device.DeviceState
	err := c.call(id, func(e *Entity) error {
		var err error
		state, err = stateOf(e)
		return err
	})
	return state, err
}

// SetDeviceState applies operation_mode. The returned state is read before
// the triggered refresh lands; a state_changed event follows once it does.
func (c *Controller) SetDeviceState(ctx context.Context, id string, state map[string]any) (device.DeviceState, error) {
	raw, ok := state[StateOperationMode]
	if !ok {
		return nil, fmt.Errorf("%w: %s is required", device.ErrValidation, StateOperationMode)
	}
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be a string", device.ErrValidation, StateOperationMode)
	}
	mode, err := ParseOperationMode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", device.ErrValidation, err)
	}

	var result device.DeviceState
	err = c.call(id, func(e *Entity) error {
		if err := e.SetOperationMode(ctx, mode); err != nil {
			return err
		}
		log.Info().Str("entity", e.UniqueID()).Str("mode", string(mode)).Msg("Operation mode set")

		var err error
		result, err = stateOf(e)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Controller) IsConnected() bool {
	return c.integ != nil && c.integ.Client != nil && c.integ.Client.Authenticated()
}

func (c *Controller) Close() {
	log.Info().Msg("Water heater controller closed")
}

// --- device.EventSubscriber interface ---

func (c *Controller) Subscribe() chan device.Event {
	return c.platform.Subscribe()
}

func (c *Controller) Unsubscribe(ch chan device.Event) {
	c.platform.Unsubscribe(ch)
}
