package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/coderunner/agentcore/agentloop"
	"github.com/coderunner/agentcore/internal/mcptools"
)

var serveMCPModel string

var serveMCPCmd = &cobra.Command{
	Use:   "serve-mcp",
	Short: "Expose the local tool registry as an MCP server over stdio",
	RunE:  runServeMCP,
}

func init() {
	rootCmd.AddCommand(serveMCPCmd)
	serveMCPCmd.Flags().StringVar(&serveMCPModel, "model", "", "tool profile to expose (anthropic or openai registry)")
}

func runServeMCP(cmd *cobra.Command, args []string) error {
	model := cfg.Model()
	if serveMCPModel != "" {
		cfg.DefaultModelID = serveMCPModel
		model = cfg.Model()
	}
	profile := profileForModel(model)

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getwd: %w", err)
	}
	env := agentloop.NewLocalExecutionEnvironment(wd)

	return mcptools.ServeRegistry("agentcore", "0.1.0", profile.ToolRegistry(), env)
}
