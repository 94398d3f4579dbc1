package hive

// Platform names used to group discovered records.
const (
	PlatformWaterHeater = "water_heater"
)

// Hot water mode tokens understood by Hotwater.SetMode and reported in
// DeviceRecord.CurrentOperation.
const (
	ModeSchedule = "SCHEDULE"
	ModeOn       = "ON"
	ModeOff      = "OFF"
)

// DeviceRecord is the client's view of one device. It is replaced wholesale
// on every GetHotwater call.
type DeviceRecord struct {
	HiveID           string         `json:"hive_id"`
	HiveName         string         `json:"hive_name"`
	HiveType         string         `json:"hive_type"`
	ParentDevice     string         `json:"parent_device"`
	HAName           string         `json:"ha_name,omitempty"`
	HAType           string         `json:"ha_type"`
	DeviceData       *DeviceData    `json:"device_data,omitempty"`
	CurrentOperation string         `json:"current_operation"`
	Attributes       map[string]any `json:"attributes,omitempty"`
}

// DeviceData is hardware metadata of the physical device behind a record.
type DeviceData struct {
	Model        string `json:"model"`
	Manufacturer string `json:"manufacturer"`
	Version      string `json:"version"`
	Battery      *int   `json:"battery,omitempty"`
}
