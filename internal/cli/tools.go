package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var toolsModel string

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List registered tools and their JSON schemas",
	RunE:  runTools,
}

func init() {
	rootCmd.AddCommand(toolsCmd)
	toolsCmd.Flags().StringVar(&toolsModel, "model", "", "tool profile to list (anthropic or openai registry)")
}

func runTools(cmd *cobra.Command, args []string) error {
	model := cfg.Model()
	if toolsModel != "" {
		cfg.DefaultModelID = toolsModel
		model = cfg.Model()
	}
	profile := profileForModel(model)

	for _, def := range profile.ToolRegistry().Definitions() {
		schema, err := json.MarshalIndent(def.Parameters, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal schema for %s: %w", def.Name, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n%s\n\n", def.Name, def.Description, schema)
	}
	return nil
}
