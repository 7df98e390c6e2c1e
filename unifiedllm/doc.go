// Package unifiedllm streams responses from remote LLM providers
// through one canonical event taxonomy, independent of each
// provider's own wire format.
//
// # Architecture
//
// The package is organized in four layers:
//
//   - Wire decode (sse subpackage): raw bytes to a lazy Event sequence.
//   - Provider adapters: one per wire API (Anthropic Messages, OpenAI
//     Chat Completions, OpenAI Responses), each mapping its own SSE
//     frames onto the canonical StreamEvent taxonomy in events.go.
//   - Client: a small provider registry plus middleware chain; routes
//     a Request to the adapter named by its model's API field — the
//     wire-API identifier, not the vendor name, since one vendor (e.g.
//     OpenAI) can expose more than one wire API.
//   - Accumulator: folds a StreamEvent sequence into one
//     agentmodel.Message, giving every adapter a working Complete.
//
// # Quick Start
//
//	client := unifiedllm.NewClient(
//		unifiedllm.WithProvider("anthropic-messages", anthropicAdapter),
//	)
//	events, err := client.Stream(ctx, unifiedllm.Request{
//		Model:   model,
//		System:  "You are a helpful assistant.",
//		Context: []agentmodel.Message{agentmodel.NewUserMessage("u1", "hello", time.Now())},
//	})
//	for ev := range events {
//		// handle ev.Type
//	}
//
// # Model Catalog
//
// Catalog is a built-in, static list of known models. Callers that
// need self-hosted or enterprise endpoints are free to construct their
// own agentmodel.LLMModel values and ignore the catalog entirely.
//
//	model, ok := unifiedllm.ModelByID("claude-opus-4-6")
//	anthropicModels := unifiedllm.ModelsByProvider("anthropic")
//
// # Retry and Errors
//
// Retry applies spec-default exponential backoff with jitter around
// any operation; IsRetryable classifies the package's error hierarchy
// (rooted at SDKError) to decide whether a failure is worth retrying.
package unifiedllm
