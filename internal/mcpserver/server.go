package mcpserver

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/walt-openclaw/treasuryagent/internal/agent"
	"github.com/walt-openclaw/treasuryagent/internal/executor"
)

// NewMCPServer creates a configured MCP server with all treasury tools
// registered.
func NewMCPServer(a *agent.Agent, deps executor.Deps) *server.MCPServer {
	s := server.NewMCPServer("treasuryagent", "1.0.0")
	h := NewHandlers(a, deps)

	s.AddTool(ToolParseCommand, h.HandleParseCommand)
	s.AddTool(ToolCheckBalance, h.HandleCheckBalance)
	s.AddTool(ToolGetQuote, h.HandleGetQuote)
	s.AddTool(ToolGetPosition, h.HandleGetPosition)
	s.AddTool(ToolExecuteCommand, h.HandleExecuteCommand)

	return s
}
