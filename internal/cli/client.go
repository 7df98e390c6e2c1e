package cli

import (
	"fmt"
	"path/filepath"

	"github.com/coderunner/agentcore/agentloop"
	"github.com/coderunner/agentcore/agentmodel"
	"github.com/coderunner/agentcore/internal/apikeys"
	"github.com/coderunner/agentcore/unifiedllm"
)

func apiKeyStore() (*apikeys.Store, error) {
	home, err := filepath.Abs(".")
	if err != nil {
		home = "."
	}
	path := filepath.Join(home, ".agentcore", "apikeys.json")
	return apikeys.Open(path)
}

// buildClient wires a unifiedllm.Client with every adapter this
// repo supports, each keyed by its own Name() per spec.md §4.2's
// per-provider registration, credentialed from the apikeys store.
func buildClient(store *apikeys.Store) (*unifiedllm.Client, error) {
	opts := []unifiedllm.ClientOption{}

	if key, ok := store.APIKey("anthropic"); ok {
		opts = append(opts, unifiedllm.WithProvider("anthropic-messages", unifiedllm.NewAnthropicAdapter(key)))
	}
	if key, ok := store.APIKey("openai"); ok {
		opts = append(opts,
			unifiedllm.WithProvider("openai-chat", unifiedllm.NewOpenAIChatAdapter(key)),
			unifiedllm.WithProvider("openai-responses", unifiedllm.NewOpenAIResponsesAdapter(key)),
		)
	}
	if len(opts) == 0 {
		return nil, fmt.Errorf("no provider credentials configured: set ANTHROPIC_API_KEY or OPENAI_API_KEY, or store an apikeys record")
	}
	return unifiedllm.NewClient(opts...), nil
}

// profileForModel resolves the provider-aligned tool profile for a
// model, grounded on agentloop's profile_anthropic.go/profile_openai.go
// split.
func profileForModel(model agentmodel.LLMModel) agentloop.ProviderProfile {
	if model.Provider == "anthropic" {
		return agentloop.NewAnthropicProfile(model.ID)
	}
	return agentloop.NewOpenAIProfile(model.ID)
}
