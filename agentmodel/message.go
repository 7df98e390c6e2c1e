package agentmodel

import (
	"encoding/json"
	"time"
)

// MessageKind discriminates the three Message variants.
type MessageKind string

const (
	MessageUser       MessageKind = "user"
	MessageAssistant  MessageKind = "assistant"
	MessageToolResult MessageKind = "tool_result"
)

// BlockKind discriminates a ContentBlock's payload.
type BlockKind string

const (
	BlockText     BlockKind = "text"
	BlockImage    BlockKind = "image"
	BlockThinking BlockKind = "thinking"
	BlockToolCall BlockKind = "tool_call"
)

// ImageBlock is a base64-encoded image with an IANA media type.
type ImageBlock struct {
	Data      string `json:"data"`
	MediaType string `json:"mediaType"`
}

// ContentBlock is one ordered fragment of a User or Assistant message.
// Order across block kinds is preserved because providers interleave
// text, thinking, and tool-call blocks within a single turn.
type ContentBlock struct {
	Kind     BlockKind   `json:"kind"`
	Text     string      `json:"text,omitempty"`
	Image    *ImageBlock `json:"image,omitempty"`
	Thinking string      `json:"thinking,omitempty"`
	ToolCall *ToolCall   `json:"toolCall,omitempty"`
}

// TextBlock creates a text ContentBlock.
func TextBlock(text string) ContentBlock { return ContentBlock{Kind: BlockText, Text: text} }

// ImageBlockFromData creates an image ContentBlock.
func ImageBlockFromData(data, mediaType string) ContentBlock {
	return ContentBlock{Kind: BlockImage, Image: &ImageBlock{Data: data, MediaType: mediaType}}
}

// ThinkingBlock creates a thinking ContentBlock.
func ThinkingBlock(text string) ContentBlock {
	return ContentBlock{Kind: BlockThinking, Thinking: text}
}

// ToolCallBlock creates a tool-call ContentBlock.
func ToolCallBlock(tc ToolCall) ContentBlock { return ContentBlock{Kind: BlockToolCall, ToolCall: &tc} }

// ToolCall is a model-initiated tool invocation. Arguments are built
// incrementally as a raw JSON string during streaming and parsed
// exactly once when the call block terminates (ToolCallEnd).
type ToolCall struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Arguments        map[string]any  `json:"arguments"`
	RawArguments     json.RawMessage `json:"-"`
	ThoughtSignature string          `json:"thoughtSignature,omitempty"`
}

// StopReason describes why an assistant turn stopped.
type StopReason string

const (
	StopStop    StopReason = "stop"
	StopLength  StopReason = "length"
	StopToolUse StopReason = "tool_use"
	StopError   StopReason = "error"
	StopAborted StopReason = "aborted"
)

// Usage tracks token consumption for one assistant turn.
type Usage struct {
	Input      int     `json:"input"`
	Output     int     `json:"output"`
	CacheRead  int     `json:"cacheRead"`
	CacheWrite int     `json:"cacheWrite"`
	Total      int     `json:"total"`
	Cost       float64 `json:"cost"`
}

// MergeUsage combines two usage snapshots for the same response by
// taking the max of each field, per spec: providers report cumulative
// snapshots, not deltas, so summing would double-count.
func MergeUsage(a, b Usage) Usage {
	return Usage{
		Input:      maxInt(a.Input, b.Input),
		Output:     maxInt(a.Output, b.Output),
		CacheRead:  maxInt(a.CacheRead, b.CacheRead),
		CacheWrite: maxInt(a.CacheWrite, b.CacheWrite),
		Total:      maxInt(a.Total, b.Total),
		Cost:       maxFloat(a.Cost, b.Cost),
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// User holds a plain or block-structured user turn.
type User struct {
	Content []ContentBlock `json:"content"`
}

// Assistant holds a model-generated turn.
type Assistant struct {
	Content    []ContentBlock `json:"content"`
	API        string         `json:"api"`
	Provider   string         `json:"provider"`
	Model      string         `json:"model"`
	Usage      *Usage         `json:"usage,omitempty"`
	StopReason StopReason     `json:"stopReason,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// ToolResult holds the outcome of one tool execution.
type ToolResult struct {
	ToolCallID string         `json:"toolCallId"`
	ToolName   string         `json:"toolName"`
	Content    []ContentBlock `json:"content"`
	IsError    bool           `json:"isError"`
}

// Message is the tagged union of conversation turns: User, Assistant,
// or ToolResult. Exactly one of the pointer fields is non-nil,
// selected by Kind.
type Message struct {
	ID        string      `json:"id"`
	Kind      MessageKind `json:"kind"`
	Timestamp time.Time   `json:"timestamp"`

	User       *User       `json:"user,omitempty"`
	Assistant  *Assistant  `json:"assistant,omitempty"`
	ToolResult *ToolResult `json:"toolResult,omitempty"`
}

// NewUserMessage creates a User message with a single text block.
func NewUserMessage(id, text string, ts time.Time) Message {
	return Message{ID: id, Kind: MessageUser, Timestamp: ts, User: &User{Content: []ContentBlock{TextBlock(text)}}}
}

// NewUserMessageBlocks creates a User message with explicit blocks.
func NewUserMessageBlocks(id string, blocks []ContentBlock, ts time.Time) Message {
	return Message{ID: id, Kind: MessageUser, Timestamp: ts, User: &User{Content: blocks}}
}

// NewAssistantMessage creates an Assistant message.
func NewAssistantMessage(id string, a Assistant, ts time.Time) Message {
	return Message{ID: id, Kind: MessageAssistant, Timestamp: ts, Assistant: &a}
}

// NewToolResultMessage creates a ToolResult message.
func NewToolResultMessage(id string, r ToolResult, ts time.Time) Message {
	return Message{ID: id, Kind: MessageToolResult, Timestamp: ts, ToolResult: &r}
}

// TextContent concatenates all text blocks in a User, Assistant, or
// ToolResult message.
func (m Message) TextContent() string {
	var blocks []ContentBlock
	switch m.Kind {
	case MessageUser:
		if m.User != nil {
			blocks = m.User.Content
		}
	case MessageAssistant:
		if m.Assistant != nil {
			blocks = m.Assistant.Content
		}
	case MessageToolResult:
		if m.ToolResult != nil {
			blocks = m.ToolResult.Content
		}
	}
	out := ""
	for _, b := range blocks {
		if b.Kind == BlockText {
			out += b.Text
		}
	}
	return out
}

// ToolCalls extracts tool calls from an Assistant message, in order.
func (m Message) ToolCalls() []ToolCall {
	if m.Kind != MessageAssistant || m.Assistant == nil {
		return nil
	}
	var calls []ToolCall
	for _, b := range m.Assistant.Content {
		if b.Kind == BlockToolCall && b.ToolCall != nil {
			calls = append(calls, *b.ToolCall)
		}
	}
	return calls
}

// AgentMessageKind discriminates the AgentMessage union.
type AgentMessageKind string

const (
	AgentMessageStandard AgentMessageKind = "message"
	AgentMessageCustom   AgentMessageKind = "custom"
)

// Custom is an opaque host-defined record. It is persisted and visible
// to host code but filtered out before any message list is sent to a
// provider.
type Custom struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// AgentMessage wraps either a Message or a Custom record. Only the
// Message variant ever crosses the LLM boundary.
type AgentMessage struct {
	Kind    AgentMessageKind `json:"kind"`
	Message *Message         `json:"message,omitempty"`
	Custom  *Custom          `json:"custom,omitempty"`
}

// FromMessage wraps a Message as an AgentMessage.
func FromMessage(m Message) AgentMessage {
	return AgentMessage{Kind: AgentMessageStandard, Message: &m}
}

// FromCustom wraps a Custom record as an AgentMessage.
func FromCustom(c Custom) AgentMessage {
	return AgentMessage{Kind: AgentMessageCustom, Custom: &c}
}

// FilterMessages strips Custom entries, returning only the Message
// variants in order — the view a provider is allowed to see.
func FilterMessages(agentMessages []AgentMessage) []Message {
	var out []Message
	for _, am := range agentMessages {
		if am.Kind == AgentMessageStandard && am.Message != nil {
			out = append(out, *am.Message)
		}
	}
	return out
}
