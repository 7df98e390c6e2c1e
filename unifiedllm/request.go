package unifiedllm

import "github.com/coderunner/agentcore/agentmodel"

// ToolChoice controls whether and how the model uses tools.
type ToolChoice struct {
	Mode     string `json:"mode"` // "auto", "none", "required", "named"
	ToolName string `json:"toolName,omitempty"`
}

// ToolDefinition is the wire-serializable shape of a tool: name,
// description, and a JSON-schema parameter spec. It carries no
// executable handler — execution lives entirely in agentloop.
type ToolDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
}

// Request is the neutral input to ProviderAdapter.Complete/Stream: a
// model, a conversation context, and generation options. Context is
// already filtered to Message (Custom AgentMessage entries stripped)
// by the caller, per spec §4.3's "materialise the LLM-visible message
// list".
type Request struct {
	Model   agentmodel.LLMModel
	System  string
	Context []agentmodel.Message

	Tools      []ToolDefinition
	ToolChoice *ToolChoice

	Thinking agentmodel.ThinkingLevel

	Temperature   *float64
	TopP          *float64
	MaxTokens     int
	StopSequences []string

	ProviderOptions map[string]interface{}
}
