// Package tools provides shared types and helpers for registering MCP tools
// on an MCP server instance.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jamesprial/petview/internal/audit"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Registration pairs an MCP tool definition with its handler function.
type Registration struct {
	Tool    mcp.Tool
	Handler server.ToolHandlerFunc
}

// RegisterAll adds every Registration in the provided slice to the given MCP
// server.
func RegisterAll(s *server.MCPServer, registrations []Registration) {
	for _, r := range registrations {
		s.AddTool(r.Tool, r.Handler)
	}
}

// NewServer builds an MCP server with tool capabilities and the given
// registrations already added.
func NewServer(name, version string, registrations []Registration) *server.MCPServer {
	s := server.NewMCPServer(name, version, server.WithToolCapabilities(false))
	RegisterAll(s, registrations)
	return s
}

// Func is the body of an audited tool. It returns the value to render as
// JSON, or an error to render as an error result.
type Func func(ctx context.Context, req mcp.CallToolRequest) (any, error)

// Audited wraps fn into a ToolHandlerFunc that renders its outcome and
// records it in the audit log under the tool's name. params extracts the
// arguments worth recording; it may be nil.
func Audited(logger *audit.Logger, name string, params func(mcp.CallToolRequest) map[string]any, fn Func) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		var p map[string]any
		if params != nil {
			p = params(req)
		}

		v, err := fn(ctx, req)
		if err != nil {
			logger.Record(name, "", p, "error: "+err.Error(), start)
			return ErrorResult(err.Error()), nil
		}

		logger.Record(name, "", p, "ok", start)
		return JSONResult(v), nil
	}
}

// JSONResult marshals v to indented JSON and returns an mcp.CallToolResult.
func JSONResult(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("error marshaling result: %v", err))
	}
	return mcp.NewToolResultText(string(data))
}

// ErrorResult returns an mcp.CallToolResult that describes an error condition.
func ErrorResult(msg string) *mcp.CallToolResult {
	return mcp.NewToolResultText(fmt.Sprintf("error: %s", msg))
}
