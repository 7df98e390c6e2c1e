package unifiedllm

import "github.com/coderunner/agentcore/agentmodel"

// StreamEventType is the canonical event taxonomy every provider
// adapter must map its own wire format onto, per spec §4.2.
type StreamEventType string

const (
	EventStart         StreamEventType = "start"
	EventTextStart     StreamEventType = "text_start"
	EventTextDelta     StreamEventType = "text_delta"
	EventTextEnd       StreamEventType = "text_end"
	EventThinkingStart StreamEventType = "thinking_start"
	EventThinkingDelta StreamEventType = "thinking_delta"
	EventThinkingEnd   StreamEventType = "thinking_end"
	EventToolCallStart StreamEventType = "tool_call_start"
	EventToolCallDelta StreamEventType = "tool_call_delta"
	EventToolCallEnd   StreamEventType = "tool_call_end"
	EventDone          StreamEventType = "done"
	EventError         StreamEventType = "error"
)

// StreamEvent is one event in an AssistantMessageEvent sequence. Only
// the fields relevant to Type are populated; see the constructors
// below for the canonical shape of each event kind.
type StreamEvent struct {
	Type StreamEventType

	Index int // content-block index; monotone non-decreasing within a stream

	// *Start / *End events carry the partial or final block.
	Block *agentmodel.ContentBlock

	// *Delta events carry the incremental chunk.
	TextDeltaChunk     string
	ThinkingDeltaChunk string
	ToolCallJSONChunk  string // raw JSON fragment, concatenated verbatim

	// Done carries the terminal stop reason and a message holding the
	// API, provider, and usage; content blocks arrive in the *End events.
	StopReason agentmodel.StopReason
	Message    *agentmodel.Message

	// Error carries the classified failure. StopReason is also set
	// (always agentmodel.StopError or agentmodel.StopAborted) so
	// consumers can switch on StopReason alone.
	Err error
}

// StartEvent begins a stream.
func StartEvent() StreamEvent { return StreamEvent{Type: EventStart} }

// TextStartEvent opens a text content block at idx.
func TextStartEvent(idx int) StreamEvent {
	return StreamEvent{Type: EventTextStart, Index: idx}
}

// TextDeltaEvent appends a text chunk to the block at idx.
func TextDeltaEvent(idx int, chunk string) StreamEvent {
	return StreamEvent{Type: EventTextDelta, Index: idx, TextDeltaChunk: chunk}
}

// TextEndEvent closes the text block at idx with its final content.
func TextEndEvent(idx int, final string) StreamEvent {
	b := agentmodel.TextBlock(final)
	return StreamEvent{Type: EventTextEnd, Index: idx, Block: &b}
}

// ThinkingStartEvent opens a thinking block at idx.
func ThinkingStartEvent(idx int) StreamEvent {
	return StreamEvent{Type: EventThinkingStart, Index: idx}
}

// ThinkingDeltaEvent appends a thinking chunk to the block at idx.
func ThinkingDeltaEvent(idx int, chunk string) StreamEvent {
	return StreamEvent{Type: EventThinkingDelta, Index: idx, ThinkingDeltaChunk: chunk}
}

// ThinkingEndEvent closes the thinking block at idx.
func ThinkingEndEvent(idx int, final string) StreamEvent {
	b := agentmodel.ThinkingBlock(final)
	return StreamEvent{Type: EventThinkingEnd, Index: idx, Block: &b}
}

// ToolCallStartEvent opens a tool-call block at idx.
func ToolCallStartEvent(idx int, id, name string) StreamEvent {
	b := agentmodel.ToolCallBlock(agentmodel.ToolCall{ID: id, Name: name})
	return StreamEvent{Type: EventToolCallStart, Index: idx, Block: &b}
}

// ToolCallDeltaEvent appends a raw JSON argument fragment at idx.
func ToolCallDeltaEvent(idx int, jsonChunk string) StreamEvent {
	return StreamEvent{Type: EventToolCallDelta, Index: idx, ToolCallJSONChunk: jsonChunk}
}

// ToolCallEndEvent closes the tool-call block at idx with its final,
// fully-parsed call.
func ToolCallEndEvent(idx int, final agentmodel.ToolCall) StreamEvent {
	b := agentmodel.ToolCallBlock(final)
	return StreamEvent{Type: EventToolCallEnd, Index: idx, Block: &b}
}

// DoneEvent is the single success terminal event.
func DoneEvent(reason agentmodel.StopReason, msg agentmodel.Message) StreamEvent {
	return StreamEvent{Type: EventDone, StopReason: reason, Message: &msg}
}

// ErrorEvent is the single failure terminal event.
func ErrorEvent(reason agentmodel.StopReason, err error) StreamEvent {
	return StreamEvent{Type: EventError, StopReason: reason, Err: err}
}
