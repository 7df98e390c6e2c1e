package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/coderunner/agentcore/agentloop"
	"github.com/coderunner/agentcore/agentmodel"
	"github.com/coderunner/agentcore/session"
)

var resumeBranch string

var resumeCmd = &cobra.Command{
	Use:   "resume <session-file> [prompt]",
	Short: "Continue a session file from its leaf, or a branch by entry id",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runResume,
}

func init() {
	rootCmd.AddCommand(resumeCmd)
	resumeCmd.Flags().StringVar(&resumeBranch, "branch", "", "branch to this entry id before appending")
}

func runResume(cmd *cobra.Command, args []string) error {
	path := args[0]
	prompt := ""
	if len(args) > 1 {
		for _, a := range args[1:] {
			if prompt != "" {
				prompt += " "
			}
			prompt += a
		}
	}

	sessStore, err := session.Open(path)
	if err != nil {
		return fmt.Errorf("open session %s: %w", path, err)
	}
	if resumeBranch != "" {
		if err := sessStore.Branch(resumeBranch); err != nil {
			return fmt.Errorf("branch: %w", err)
		}
	}

	apiStore, err := apiKeyStore()
	if err != nil {
		return err
	}
	client, err := buildClient(apiStore)
	if err != nil {
		return err
	}

	messages, thinking, provider, modelID := sessStore.BuildContext()
	model := cfg.Model()
	if modelID != "" {
		model = agentmodel.LLMModel{ID: modelID, Provider: provider}
		cfg.DefaultModelID = modelID
		if resolved := cfg.Model(); resolved.API != "" {
			model = resolved
		}
	}

	logger := newLogger()

	ctxTokens := session.EstimateContextTokens(model.ID, messages)
	if session.ShouldCompact(ctxTokens, model.ContextWindow, cfg.CompactionReserve) {
		rebuilt, err := sessStore.Compact(cmd.Context(), client, model, cfg.KeepRecentTokens, logger)
		if err != nil && err != session.ErrCannotCompact {
			return fmt.Errorf("compact: %w", err)
		}
		if err == nil {
			messages = rebuilt
		}
	}

	if prompt != "" {
		userMsg := agentmodel.NewUserMessage(uuid.NewString(), prompt, time.Now().UTC())
		if _, err := sessStore.AppendMessage(userMsg); err != nil {
			return fmt.Errorf("append prompt: %w", err)
		}
		messages = append(messages, userMsg)
	}

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getwd: %w", err)
	}

	profile := profileForModel(model)
	env := agentloop.NewLocalExecutionEnvironment(wd)
	loop := agentloop.NewLoop(profile, env, agentloop.NewEventEmitter(sessStore.SessionID(), 256))
	loop.Client = client
	loop.Permission = agentloop.AllowAll
	loop.Classifier = agentloop.DefaultClassifier
	loop.Thinking = thinking
	loop.RetryPolicy = cfg.RetryPolicy()
	loop.TurnLimit = cfg.MaxTurns
	loop.Logger = logger

	history := make([]agentmodel.AgentMessage, 0, len(messages))
	for _, m := range messages {
		history = append(history, agentmodel.FromMessage(m))
	}

	final := loop.Run(cmd.Context(), sessStore.SessionID(), history)
	for _, am := range final[len(history):] {
		if am.Kind != agentmodel.AgentMessageStandard || am.Message == nil {
			continue
		}
		if _, err := sessStore.AppendMessage(*am.Message); err != nil {
			return fmt.Errorf("persist message: %w", err)
		}
		if am.Message.Kind == agentmodel.MessageAssistant {
			fmt.Fprintln(cmd.OutOrStdout(), am.Message.TextContent())
		}
	}
	return nil
}
