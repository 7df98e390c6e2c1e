// Package mcptools implements the MCP tool bridge from SPEC_FULL.md
// §4.12, grounded on mark3labs/mcp-go as used by the teacher pack's
// neilberkman-ccrider/cmd/ccrider/mcp package: a server side that
// exposes a *agentloop.ToolRegistry over MCP, and a client side that
// registers a remote MCP server's tools into a local ToolRegistry so
// they flow through the same §4.4 execution sequence as native tools.
package mcptools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/coderunner/agentcore/agentloop"
)

// ServeRegistry exposes every tool in registry as an MCP tool over
// stdio. It blocks until the transport closes. env is used to satisfy
// agentloop.ToolExecutor's execution-environment argument for each
// bridged call.
func ServeRegistry(name, version string, registry *agentloop.ToolRegistry, env agentloop.ExecutionEnvironment) error {
	s := server.NewMCPServer(name, version)
	for _, def := range registry.Definitions() {
		schema, err := json.Marshal(def.Parameters)
		if err != nil {
			return fmt.Errorf("mcptools: marshal schema for %s: %w", def.Name, err)
		}
		tool := mcp.NewToolWithRawSchema(def.Name, def.Description, schema)
		s.AddTool(tool, makeHandler(registry, def.Name, env))
	}
	return server.ServeStdio(s)
}

func makeHandler(registry *agentloop.ToolRegistry, name string, env agentloop.ExecutionEnvironment) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tool := registry.Get(name)
		if tool == nil {
			return mcp.NewToolResultError(fmt.Sprintf("unknown tool: %s", name)), nil
		}
		argsJSON, err := json.Marshal(request.Params.Arguments)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		output, err := tool.Executor(ctx, argsJSON, env, nil)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(output), nil
	}
}
