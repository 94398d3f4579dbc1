package waterheater

import (
	"fmt"

	"github.com/urmzd/hive-hotwater/pkg/device"
	"github.com/urmzd/hive-hotwater/pkg/hive"
)

// OperationMode is a water heater behaviour as the host names it.
type OperationMode string

const (
	// ModeScheduled follows the Hive schedule. Hosts render it as "eco".
	ModeScheduled OperationMode = "eco"
	ModeOn        OperationMode = "on"
	ModeOff       OperationMode = "off"
)

// HiveMode is a Hive hot water mode token.
type HiveMode string

const (
	HiveSchedule HiveMode = hive.ModeSchedule
	HiveOn       HiveMode = hive.ModeOn
	HiveOff      HiveMode = hive.ModeOff
)

// OperationModes returns the modes every Hive water heater supports, in
// display order. The slice is freshly allocated.
func OperationModes() []OperationMode {
	return []OperationMode{ModeScheduled, ModeOn, ModeOff}
}

// FromHive maps a vendor token onto a host mode. The mapping is a bijection
// over exactly three values; anything else is ErrUnmappedMode.
func FromHive(m HiveMode) (OperationMode, error) {
	switch m {
	case HiveSchedule:
		return ModeScheduled, nil
	case HiveOn:
		return ModeOn, nil
	case HiveOff:
		return ModeOff, nil
	default:
		return "", fmt.Errorf("%w: hive mode %q", device.ErrUnmappedMode, string(m))
	}
}

// ToHive is the inverse of FromHive.
func ToHive(m OperationMode) (HiveMode, error) {
	switch m {
	case ModeScheduled:
		return HiveSchedule, nil
	case ModeOn:
		return HiveOn, nil
	case ModeOff:
		return HiveOff, nil
	default:
		return "", fmt.Errorf("%w: operation mode %q", device.ErrUnmappedMode, string(m))
	}
}

// ParseOperationMode validates s as a host mode.
func ParseOperationMode(s string) (OperationMode, error) {
	m := OperationMode(s)
	if _, err := ToHive(m); err != nil {
		return "", err
	}
	return m, nil
}
