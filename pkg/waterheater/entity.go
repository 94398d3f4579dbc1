package waterheater

import (
	"context"
	"fmt"
	"maps"

	"github.com/urmzd/hive-hotwater/pkg/device"
	"github.com/urmzd/hive-hotwater/pkg/hive"
	"github.com/urmzd/hive-hotwater/pkg/integration"
)

const (
	// DefaultName is shown when the device record carries no display name.
	DefaultName = "Hot Water"

	// TemperatureUnit is fixed; Hive reports Celsius only.
	TemperatureUnit = "°C"
)

// SupportFlags is a bit set of water heater capabilities.
type SupportFlags int

const (
	SupportTargetTemperature SupportFlags = 1 << iota
	SupportOperationMode
)

// DeviceInfo groups the entity in the host's device registry.
type DeviceInfo struct {
	Identifiers  [][2]string `json:"identifiers"`
	Name         string      `json:"name"`
	Model        string      `json:"model"`
	Manufacturer string      `json:"manufacturer"`
	SWVersion    string      `json:"sw_version"`
	ViaDevice    [2]string   `json:"via_device"`
	Battery      *int        `json:"battery,omitempty"`
}

// Entity adapts one Hive hot water record to the host's water heater
// contract. It is not safe for concurrent use; the host serialises calls.
type Entity struct {
	integ      *integration.Integration
	uniqueID   string
	device     hive.DeviceRecord
	attributes map[string]any
}

// NewEntity wraps rec. integ is borrowed, not owned.
func NewEntity(integ *integration.Integration, rec hive.DeviceRecord) *Entity {
	return &Entity{
		integ:      integ,
		uniqueID:   rec.HiveID + "-" + rec.HiveType,
		device:     rec,
		attributes: make(map[string]any),
	}
}

// UniqueID is fixed at construction and survives record replacement.
func (e *Entity) UniqueID() string {
	return e.uniqueID
}

// DeviceInfo projects the hardware metadata. No defaults are applied: a
// record without device data is an error.
func (e *Entity) DeviceInfo() (DeviceInfo, error) {
	dd := e.device.DeviceData
	if dd == nil {
		return DeviceInfo{}, fmt.Errorf("%w: device_data of %s", device.ErrMissingField, e.device.HiveID)
	}
	required := []struct{ name, value string }{
		{"model", dd.Model},
		{"manufacturer", dd.Manufacturer},
		{"version", dd.Version},
	}
	for _, f := range required {
		if f.value == "" {
			return DeviceInfo{}, fmt.Errorf("%w: device_data.%s of %s", device.ErrMissingField, f.name, e.device.HiveID)
		}
	}

	return DeviceInfo{
		Identifiers:  [][2]string{{integration.Domain, e.device.HiveID}},
		Name:         e.device.HiveName,
		Model:        dd.Model,
		Manufacturer: dd.Manufacturer,
		SWVersion:    dd.Version,
		ViaDevice:    [2]string{integration.Domain, e.device.ParentDevice},
		Battery:      dd.Battery,
	}, nil
}

// SupportedFeatures reports mode selection only; there is no target
// temperature control.
func (e *Entity) SupportedFeatures() SupportFlags {
	return SupportOperationMode
}

func (e *Entity) Name() string {
	if e.device.HAName != "" {
		return e.device.HAName
	}
	return DefaultName
}

// Available reads the availability flag merged in by Update. It is an error
// to ask before the flag has been populated.
func (e *Entity) Available() (bool, error) {
	v, ok := e.attributes["available"]
	if !ok {
		return false, fmt.Errorf("%w: attributes.available of %s", device.ErrMissingField, e.device.HiveID)
	}
	available, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%w: attributes.available of %s is %T, not bool", device.ErrMissingField, e.device.HiveID, v)
	}
	return available, nil
}

func (e *Entity) TemperatureUnit() string {
	return TemperatureUnit
}

// CurrentOperation translates the vendor token; unknown tokens are errors,
// never defaulted.
func (e *Entity) CurrentOperation() (OperationMode, error) {
	return FromHive(HiveMode(e.device.CurrentOperation))
}

func (e *Entity) OperationList() []OperationMode {
	return OperationModes()
}

// Attributes returns a copy of the merged attribute store.
func (e *Entity) Attributes() map[string]any {
	return maps.Clone(e.attributes)
}

// SetOperationMode asks Hive to switch modes. A refresh of every entity is
// signalled afterwards, whether or not the request succeeded.
func (e *Entity) SetOperationMode(ctx context.Context, mode OperationMode) error {
	return e.integ.RefreshSystem(func() error {
		token, err := ToHive(mode)
		if err != nil {
			return err
		}
		return e.integ.Hotwater.SetMode(ctx, e.device, string(token))
	})
}

// Update runs the session's update step, then replaces the record with a
// fresh one. Attributes are merged, not replaced: keys missing from the new
// record keep their previous value.
func (e *Entity) Update(ctx context.Context) error {
	if err := e.integ.Session.UpdateData(ctx, e.device); err != nil {
		return err
	}

	rec, err := e.integ.Hotwater.GetHotwater(ctx, e.device)
	if err != nil {
		return err
	}

	e.device = rec
	maps.Copy(e.attributes, rec.Attributes)
	return nil
}
