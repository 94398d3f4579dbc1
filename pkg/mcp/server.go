package mcp

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/urmzd/hive-hotwater/pkg/device"
	"github.com/urmzd/hive-hotwater/pkg/device/schema"
)

// ServerName is advertised to MCP clients during initialisation.
const ServerName = "hive-hotwater"

// Server exposes water heater control as MCP tools
type Server struct {
	mcpServer  *server.MCPServer
	controller device.Controller
	validator  *schema.Validator
}

// NewServer creates an MCP server over controller. validator may be nil, in
// which case set_device_state payloads are passed through unchecked.
func NewServer(controller device.Controller, validator *schema.Validator, version string) *Server {
	s := &Server{
		controller: controller,
		validator:  validator,
	}

	s.mcpServer = server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)
	s.registerTools()

	return s
}

// ServeStdio starts the MCP server using stdio transport
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
