package unifiedllm

import "github.com/coderunner/agentcore/agentmodel"

// Catalog is the built-in model registry (February 2026). Callers
// that need a different model set (self-hosted, enterprise base URLs)
// build their own []agentmodel.LLMModel and skip this catalog
// entirely — nothing downstream requires it.
var Catalog = []agentmodel.LLMModel{
	{
		ID: "claude-opus-4-6", Name: "Claude Opus 4.6",
		API: "anthropic-messages", Provider: "anthropic",
		Reasoning:  true,
		Modalities: []string{"text", "image"},
		Cost: agentmodel.ModelCost{
			InputPerMillion: 15.0, OutputPerMillion: 75.0,
			CacheReadPerMillion: 1.5, CacheWritePerMillion: 18.75,
		},
		ContextWindow: 200000, MaxTokens: 32768,
	},
	{
		ID: "claude-sonnet-4-5", Name: "Claude Sonnet 4.5",
		API: "anthropic-messages", Provider: "anthropic",
		Reasoning:  true,
		Modalities: []string{"text", "image"},
		Cost: agentmodel.ModelCost{
			InputPerMillion: 3.0, OutputPerMillion: 15.0,
			CacheReadPerMillion: 0.3, CacheWritePerMillion: 3.75,
		},
		ContextWindow: 200000, MaxTokens: 16384,
	},
	{
		ID: "gpt-5.2", Name: "GPT-5.2",
		API: "openai-responses", Provider: "openai",
		Reasoning:  true,
		Modalities: []string{"text", "image"},
		Cost: agentmodel.ModelCost{
			InputPerMillion: 2.50, OutputPerMillion: 10.0,
			CacheReadPerMillion: 0.25,
		},
		ContextWindow: 1047576, MaxTokens: 32768,
	},
	{
		ID: "gpt-5.2-mini", Name: "GPT-5.2 Mini",
		API: "openai-responses", Provider: "openai",
		Reasoning:  true,
		Modalities: []string{"text", "image"},
		Cost: agentmodel.ModelCost{
			InputPerMillion: 0.75, OutputPerMillion: 3.0,
			CacheReadPerMillion: 0.075,
		},
		ContextWindow: 1047576, MaxTokens: 16384,
	},
	{
		ID: "gpt-5.2-codex", Name: "GPT-5.2 Codex",
		API: "openai-chat", Provider: "openai",
		Reasoning:  true,
		Modalities: []string{"text", "image"},
		Cost: agentmodel.ModelCost{
			InputPerMillion: 2.50, OutputPerMillion: 10.0,
			CacheReadPerMillion: 0.25,
		},
		ContextWindow: 1047576, MaxTokens: 32768,
	},
}

// ModelByID returns the catalog entry matching id, or false if none.
func ModelByID(id string) (agentmodel.LLMModel, bool) {
	for _, m := range Catalog {
		if m.ID == id {
			return m, true
		}
	}
	return agentmodel.LLMModel{}, false
}

// ModelsByProvider returns every catalog entry for a provider.
func ModelsByProvider(provider string) []agentmodel.LLMModel {
	var out []agentmodel.LLMModel
	for _, m := range Catalog {
		if m.Provider == provider {
			out = append(out, m)
		}
	}
	return out
}
