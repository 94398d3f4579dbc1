package hive

// Node is one entry of the omnia /nodes resource.
type Node struct {
	ID           string               `json:"id,omitempty"`
	Href         string               `json:"href,omitempty"`
	Name         string               `json:"name,omitempty"`
	NodeType     string               `json:"nodeType,omitempty"`
	ParentNodeID string               `json:"parentNodeId,omitempty"`
	LastSeen     int64                `json:"lastSeen,omitempty"`
	Attributes   map[string]Attribute `json:"attributes,omitempty"`
}

// Attribute carries the reported and requested value of a node attribute.
type Attribute struct {
	ReportedValue any `json:"reportedValue,omitempty"`
	TargetValue   any `json:"targetValue,omitempty"`
}

type nodesBody struct {
	Nodes []Node `json:"nodes"`
}

// Attribute names used by hot water nodes.
const (
	attrSupportsHotWater   = "supportsHotWater"
	attrActiveHeatCoolMode = "activeHeatCoolMode"
	attrActiveScheduleLock = "activeScheduleLock"
	attrStateHotWaterRelay = "stateHotWaterRelay"
	attrPresence           = "presence"
	attrModel              = "model"
	attrManufacturer       = "manufacturer"
	attrSoftwareVersion    = "softwareVersion"
	attrBatteryLevel       = "batteryLevel"
)

func (n Node) str(name string) (string, bool) {
	a, ok := n.Attributes[name]
	if !ok {
		return "", false
	}
	s, ok := a.ReportedValue.(string)
	return s, ok
}

func (n Node) boolean(name string) (bool, bool) {
	a, ok := n.Attributes[name]
	if !ok {
		return false, false
	}
	b, ok := a.ReportedValue.(bool)
	return b, ok
}

func (n Node) number(name string) (float64, bool) {
	a, ok := n.Attributes[name]
	if !ok {
		return 0, false
	}
	f, ok := a.ReportedValue.(float64)
	return f, ok
}

// isHotwater reports whether the node controls a hot water cylinder.
func (n Node) isHotwater() bool {
	supports, _ := n.boolean(attrSupportsHotWater)
	return supports
}
