package mqtt

import (
	"fmt"

	"github.com/urmzd/hive-hotwater/pkg/device"
	"github.com/urmzd/hive-hotwater/pkg/waterheater"
)

const (
	PayloadOnline  = "online"
	PayloadOffline = "offline"
)

// HAModeOn is the Home Assistant water heater mode that carries
// waterheater.ModeOn. HA rejects discovery configs listing modes outside its
// own set, which has no "on".
const HAModeOn = "high_demand"

// ToHAMode converts an operation mode to the name used on MQTT.
func ToHAMode(mode string) string {
	if mode == string(waterheater.ModeOn) {
		return HAModeOn
	}
	return mode
}

// FromHAMode converts an MQTT mode name back to an operation mode.
func FromHAMode(mode string) string {
	if mode == HAModeOn {
		return string(waterheater.ModeOn)
	}
	return mode
}

// modeStateTemplate renders operation_mode from the state JSON in HA's
// vocabulary.
var modeStateTemplate = fmt.Sprintf(
	"{%% if value_json.operation_mode == '%s' %%}%s{%% else %%}{{ value_json.operation_mode }}{%% endif %%}",
	waterheater.ModeOn, HAModeOn,
)

// DeviceInfo groups entities in the Home Assistant device registry.
type DeviceInfo struct {
	Name         string   `json:"name"`
	Identifiers  []string `json:"identifiers"`
	Manufacturer string   `json:"manufacturer,omitempty"`
	Model        string   `json:"model,omitempty"`
}

// Availability is one entry of a discovery availability list.
type Availability struct {
	Topic string `json:"topic"`
}

// WaterHeaterConfig is the MQTT discovery payload of a water heater.
type WaterHeaterConfig struct {
	Name                string         `json:"name"`
	UniqueID            string         `json:"unique_id"`
	ModeStateTopic      string         `json:"mode_state_topic"`
	ModeStateTemplate   string         `json:"mode_state_template"`
	ModeCommandTopic    string         `json:"mode_command_topic"`
	Modes               []string       `json:"modes"`
	TemperatureUnit     string         `json:"temperature_unit"`
	JSONAttributesTopic string         `json:"json_attributes_topic"`
	Availability        []Availability `json:"availability"`
	AvailabilityMode    string         `json:"availability_mode"`
	PayloadAvailable    string         `json:"payload_available"`
	PayloadNotAvailable string         `json:"payload_not_available"`
	Device              DeviceInfo     `json:"device"`
}

// BuildDiscovery derives the discovery payload for d. modes is the device's
// operation list; they are advertised under their HA names.
func BuildDiscovery(t Topics, d device.Device, modes []string) WaterHeaterConfig {
	haModes := make([]string, 0, len(modes))
	for _, m := range modes {
		haModes = append(haModes, ToHAMode(m))
	}
	return WaterHeaterConfig{
		Name:                d.Name,
		UniqueID:            d.ID,
		ModeStateTopic:      t.State(d.ID),
		ModeStateTemplate:   modeStateTemplate,
		ModeCommandTopic:    t.ModeCommand(d.ID),
		Modes:               haModes,
		TemperatureUnit:     "C",
		JSONAttributesTopic: t.State(d.ID),
		Availability: []Availability{
			{Topic: t.Status()},
			{Topic: t.Availability(d.ID)},
		},
		AvailabilityMode:    "all",
		PayloadAvailable:    PayloadOnline,
		PayloadNotAvailable: PayloadOffline,
		Device: DeviceInfo{
			Name:         d.Name,
			Identifiers:  []string{"hive_" + ObjectID(d.ID)},
			Manufacturer: d.Manufacturer,
			Model:        d.Model,
		},
	}
}

// AvailabilityPayload reads the "available" key of a state map. Anything
// other than true is offline.
func AvailabilityPayload(state device.DeviceState) string {
	if available, _ := state["available"].(bool); available {
		return PayloadOnline
	}
	return PayloadOffline
}

// ModesFromState reads the operation list out of a state map.
func ModesFromState(state device.DeviceState) []string {
	switch list := state["operation_list"].(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, v := range list {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
