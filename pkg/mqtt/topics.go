package mqtt

import (
	"strings"
)

// Topics builds every topic the bridge publishes to or listens on.
type Topics struct {
	DiscoveryPrefix string
	BaseTopic       string
}

// ObjectID turns a unique id into a topic-safe token.
func ObjectID(uniqueID string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, uniqueID)
}

// Discovery is <prefix>/water_heater/<object_id>/config.
func (t Topics) Discovery(uniqueID string) string {
	return t.DiscoveryPrefix + "/water_heater/" + ObjectID(uniqueID) + "/config"
}

// Status carries the bridge's own online/offline will.
func (t Topics) Status() string {
	return t.BaseTopic + "/status"
}

func (t Topics) State(uniqueID string) string {
	return t.BaseTopic + "/" + ObjectID(uniqueID) + "/state"
}

func (t Topics) Availability(uniqueID string) string {
	return t.BaseTopic + "/" + ObjectID(uniqueID) + "/availability"
}

func (t Topics) ModeCommand(uniqueID string) string {
	return t.BaseTopic + "/" + ObjectID(uniqueID) + "/mode/set"
}

// ModeCommandFilter matches the mode command topic of every device.
func (t Topics) ModeCommandFilter() string {
	return t.BaseTopic + "/+/mode/set"
}

// ParseModeCommand extracts the object id from a mode command topic.
func (t Topics) ParseModeCommand(topic string) (string, bool) {
	rest, ok := strings.CutPrefix(topic, t.BaseTopic+"/")
	if !ok {
		return "", false
	}
	objectID, ok := strings.CutSuffix(rest, "/mode/set")
	if !ok || objectID == "" || strings.Contains(objectID, "/") {
		return "", false
	}
	return objectID, true
}
