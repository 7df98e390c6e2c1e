package unifiedllm

import (
	"context"

	"github.com/coderunner/agentcore/agentmodel"
)

// ProviderAdapter is the interface every provider backend must
// implement. Each adapter is stateless: given (model, context,
// options) it returns an event stream terminated by exactly one of
// Done or Error (spec §4.2).
type ProviderAdapter interface {
	// Name returns the wire-API identifier (e.g. "anthropic-messages",
	// "openai-chat").
	Name() string

	// Stream sends a request and returns a channel of canonical
	// StreamEvents. The provider owns the HTTP request's lifetime;
	// cancelling ctx cancels the request and the channel is closed
	// after the terminal event.
	Stream(ctx context.Context, req Request) (<-chan StreamEvent, error)
}

// Completer is implemented by adapters that can short-circuit
// streaming for a one-shot blocking call. Adapters that don't
// implement it get Complete for free via AccumulateStream wrapping
// Stream — see client.go.
type Completer interface {
	Complete(ctx context.Context, req Request) (*agentmodel.Message, error)
}

// Closer is implemented by adapters that hold resources.
type Closer interface {
	Close() error
}

// ToolChoiceSupporter is implemented by adapters that can report tool
// choice support.
type ToolChoiceSupporter interface {
	SupportsToolChoice(mode string) bool
}
