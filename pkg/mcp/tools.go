package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/urmzd/hive-hotwater/pkg/waterheater"
)

func operationModeNames() []string {
	modes := waterheater.OperationModes()
	names := make([]string, 0, len(modes))
	for _, m := range modes {
		names = append(names, string(m))
	}
	return names
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("get_health",
			mcp.WithDescription("Check whether the Hive account session is authenticated"),
		),
		s.handleGetHealth,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list_devices",
			mcp.WithDescription("List every Hive water heater with its current operation mode and availability"),
		),
		s.handleListDevices,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("get_device",
			mcp.WithDescription("Get details of a water heater by unique id or display name"),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("Unique id (<hive_id>-hotwater) or display name"),
			),
		),
		s.handleGetDevice,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("get_device_state",
			mcp.WithDescription("Get the operation mode, operation list and availability of a water heater"),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("Unique id or display name"),
			),
		),
		s.handleGetDeviceState,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("set_device_state",
			mcp.WithDescription("Set the state of a water heater. The state object is validated against the device's schema."),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("Unique id or display name"),
			),
			mcp.WithObject("state",
				mcp.Required(),
				mcp.Description(`State to set, e.g. {"operation_mode": "eco"}`),
			),
		),
		s.handleSetDeviceState,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("set_operation_mode",
			mcp.WithDescription("Switch a water heater between eco (follow the Hive schedule), on and off"),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("Unique id or display name"),
			),
			mcp.WithString("mode",
				mcp.Required(),
				mcp.Enum(operationModeNames()...),
				mcp.Description("Operation mode"),
			),
		),
		s.handleSetOperationMode,
	)
}
