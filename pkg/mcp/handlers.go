package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog/log"
	"github.com/urmzd/hive-hotwater/pkg/device"
	"github.com/urmzd/hive-hotwater/pkg/waterheater"
)

func (s *Server) handleGetHealth(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out := GetHealthOutput{
		Status:     "healthy",
		Controller: "connected",
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
	if !s.controller.IsConnected() {
		out.Status, out.Controller = "unhealthy", "disconnected"
	}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) withState(ctx context.Context, d *device.Device) DeviceInfo {
	info := DeviceToInfo(d)
	state, err := s.controller.GetDeviceState(ctx, d.ID)
	if err != nil {
		info.StateError = err.Error()
		return info
	}
	info.State = state
	return info
}

func (s *Server) handleListDevices(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	devices, err := s.controller.ListDevices(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list devices: %s", err)), nil
	}

	infos := make([]DeviceInfo, 0, len(devices))
	for i := range devices {
		infos = append(infos, s.withState(ctx, &devices[i]))
	}

	return mcp.NewToolResultText(formatJSON(ListDevicesOutput{Devices: infos, Count: len(infos)})), nil
}

func (s *Server) handleGetDevice(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requiredString(request, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	d, err := s.controller.GetDevice(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("device not found: %s", err)), nil
	}

	return mcp.NewToolResultText(formatJSON(GetDeviceOutput{Device: s.withState(ctx, d)})), nil
}

func (s *Server) handleGetDeviceState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requiredString(request, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	state, err := s.controller.GetDeviceState(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get device state: %s", err)), nil
	}

	return mcp.NewToolResultText(formatJSON(StateOutput{DeviceID: id, State: state})), nil
}

func (s *Server) handleSetDeviceState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requiredString(request, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// State may arrive nested under "state" or as flat arguments.
	args := request.GetArguments()
	stateMap := map[string]any{}
	if sm, ok := args["state"].(map[string]any); ok {
		stateMap = sm
	} else {
		for k, v := range args {
			if k != "id" && k != "state" {
				stateMap[k] = v
			}
		}
	}

	return s.setState(ctx, id, stateMap)
}

func (s *Server) handleSetOperationMode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requiredString(request, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	mode, err := requiredString(request, "mode")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := waterheater.ParseOperationMode(mode); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("validation error: %s", err)), nil
	}

	return s.setState(ctx, id, map[string]any{waterheater.StateOperationMode: mode})
}

func (s *Server) setState(ctx context.Context, id string, state map[string]any) (*mcp.CallToolResult, error) {
	if s.validator != nil {
		d, err := s.controller.GetDevice(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("device not found: %s", err)), nil
		}
		if err := s.validator.Validate(d.StateSchema, state); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("validation error: %s", err)), nil
		}
	}

	result, err := s.controller.SetDeviceState(ctx, id, state)
	if err != nil {
		log.Warn().Err(err).Str("device", id).Msg("MCP state change failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to set device state: %s", err)), nil
	}

	return mcp.NewToolResultText(formatJSON(StateOutput{DeviceID: id, State: result})), nil
}

// --- helpers ---

func requiredString(request mcp.CallToolRequest, key string) (string, error) {
	v, ok := request.GetArguments()[key]
	if !ok || v == nil {
		return "", fmt.Errorf("required parameter %q is missing", key)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("parameter %q must be a non-empty string", key)
	}
	return s, nil
}

func formatJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"error":"failed to marshal response: %s"}`, err)
	}
	return string(b)
}
