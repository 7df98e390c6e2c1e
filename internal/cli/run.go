package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/coderunner/agentcore/agentloop"
	"github.com/coderunner/agentcore/agentmodel"
	"github.com/coderunner/agentcore/session"
)

var runModel string

var runCmd = &cobra.Command{
	Use:   "run [prompt]",
	Short: "Run a one-shot prompt against a fresh session",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&runModel, "model", "", "override the configured default model")
	runCmd.Flags().Var(runThinking, "thinking", "extended-thinking level: off,minimal,low,medium,high,xhigh")
}

func runRun(cmd *cobra.Command, args []string) error {
	prompt := strings.Join(args, " ")

	store, err := apiKeyStore()
	if err != nil {
		return err
	}
	client, err := buildClient(store)
	if err != nil {
		return err
	}

	model := cfg.Model()
	if runModel != "" {
		cfg.DefaultModelID = runModel
		model = cfg.Model()
	}

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getwd: %w", err)
	}

	sessionID := uuid.NewString()
	if err := os.MkdirAll(cfg.SessionDir, 0o755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	sessStore, err := session.New(filepath.Join(cfg.SessionDir, sessionID+".ndjson"), sessionID, wd)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	userMsg := agentmodel.NewUserMessage(uuid.NewString(), prompt, time.Now().UTC())
	if _, err := sessStore.AppendMessage(userMsg); err != nil {
		return fmt.Errorf("append user message: %w", err)
	}

	profile := profileForModel(model)
	env := agentloop.NewLocalExecutionEnvironment(wd)
	loop := agentloop.NewLoop(profile, env, agentloop.NewEventEmitter(sessionID, 256))
	loop.Client = client
	loop.Permission = agentloop.AllowAll
	loop.Classifier = agentloop.DefaultClassifier
	loop.RetryPolicy = cfg.RetryPolicy()
	loop.TurnLimit = cfg.MaxTurns
	loop.Logger = newLogger()
	if runThinking.set {
		loop.Thinking = runThinking.level
	}

	history := []agentmodel.AgentMessage{agentmodel.FromMessage(userMsg)}
	final := loop.Run(cmd.Context(), sessionID, history)

	for _, am := range final[1:] {
		if am.Kind != agentmodel.AgentMessageStandard || am.Message == nil {
			continue
		}
		if _, err := sessStore.AppendMessage(*am.Message); err != nil {
			return fmt.Errorf("persist message: %w", err)
		}
		if am.Message.Kind == agentmodel.MessageAssistant && am.Message.Assistant != nil {
			fmt.Fprintln(cmd.OutOrStdout(), am.Message.TextContent())
		}
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "session: %s\n", sessStore.Path())
	return ctxErr(cmd.Context())
}

func ctxErr(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("cancelled: %w", err)
	}
	return nil
}
