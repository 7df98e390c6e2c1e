// Package cli implements the agentcore command-line interface
// (SPEC_FULL.md §4.11), grounded on the teacher pack's
// neilberkman-ccrider/internal/interface/cli package layout: a cobra
// root command with run/resume/serve-mcp/tools subcommands binding to
// the internal/config layer.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/coderunner/agentcore/internal/config"
)

var (
	versionInfo string
	cfg         *config.Config
	sessionDir  string
)

// SetVersion records build-time version info on the root command,
// mirroring the teacher's ldflags-injected SetVersion.
func SetVersion(version, commit string) {
	versionInfo = fmt.Sprintf("%s (commit: %s)", version, commit)
	rootCmd.Version = versionInfo
}

// Execute runs the CLI, exiting non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "agentcore",
	Short: "Provider-agnostic agentic coding loop",
	Long: `agentcore drives a streaming agent loop against Anthropic, OpenAI
Chat Completions, or OpenAI Responses, executing local tool calls under
turn, steering, and permission rules, and persisting the conversation
to a branchable append-only session store.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		if sessionDir != "" {
			cfg.SessionDir = sessionDir
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&sessionDir, "session-dir", "", "override the configured session directory")
}
