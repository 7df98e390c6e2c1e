package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/coderunner/agentcore/agentloop"
)

// RegisterRemote starts an MCP server as a subprocess (command, args),
// lists its tools, and registers one agentloop.RegisteredTool per
// remote tool onto registry. Each registered Executor calls out over
// the MCP client transport; the returned closeFn closes that client.
// When a Loop dispatches these tools, argument validation and the
// permission check run on the local side before Executor, and the
// output is truncated after it, as for any registered tool.
func RegisterRemote(ctx context.Context, registry *agentloop.ToolRegistry, command string, args ...string) (closeFn func() error, err error) {
	mcpClient, err := client.NewStdioMCPClient(command, nil, args...)
	if err != nil {
		return nil, fmt.Errorf("mcptools: start %s: %w", command, err)
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: "agentcore", Version: "0.1.0"}
	if _, err := mcpClient.Initialize(ctx, initReq); err != nil {
		_ = mcpClient.Close()
		return nil, fmt.Errorf("mcptools: initialize %s: %w", command, err)
	}

	listResult, err := mcpClient.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		_ = mcpClient.Close()
		return nil, fmt.Errorf("mcptools: list tools on %s: %w", command, err)
	}

	for _, remote := range listResult.Tools {
		registry.Register(remoteAsRegisteredTool(mcpClient, remote))
	}

	return mcpClient.Close, nil
}

func remoteAsRegisteredTool(mcpClient *client.Client, remote mcp.Tool) agentloop.RegisteredTool {
	var parameters map[string]interface{}
	raw, err := json.Marshal(remote.InputSchema)
	if err == nil {
		_ = json.Unmarshal(raw, &parameters)
	}
	if parameters == nil {
		parameters = map[string]interface{}{"type": "object", "properties": map[string]interface{}{}}
	}

	return agentloop.RegisteredTool{
		Definition: agentloop.ToolDefinition{
			Name:        remote.Name,
			Description: remote.Description,
			Parameters:  parameters,
		},
		Executor: func(ctx context.Context, arguments json.RawMessage, _ agentloop.ExecutionEnvironment, _ func(string)) (string, error) {
			var args map[string]interface{}
			if len(arguments) > 0 {
				if err := json.Unmarshal(arguments, &args); err != nil {
					return "", fmt.Errorf("mcptools: decode arguments: %w", err)
				}
			}
			callReq := mcp.CallToolRequest{}
			callReq.Params.Name = remote.Name
			callReq.Params.Arguments = args
			result, err := mcpClient.CallTool(ctx, callReq)
			if err != nil {
				return "", fmt.Errorf("mcptools: call %s: %w", remote.Name, err)
			}
			text := resultText(result)
			if result.IsError {
				return "", fmt.Errorf("%s", text)
			}
			return text, nil
		},
	}
}

func resultText(result *mcp.CallToolResult) string {
	var parts []string
	for _, content := range result.Content {
		if tc, ok := content.(mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}
