package unifiedllm

import (
	"encoding/json"

	"github.com/coderunner/agentcore/agentmodel"
)

// StreamAccumulator collects a canonical StreamEvent sequence into a
// complete agentmodel.Message, preserving content-block order across
// text/thinking/tool-call kinds as they are closed. It is also the
// mechanism behind AccumulateStream, which gives any Stream-only
// adapter a Complete for free.
type StreamAccumulator struct {
	blocks     []agentmodel.ContentBlock
	usage      *agentmodel.Usage
	stopReason agentmodel.StopReason
	errMsg     string
	done       bool

	toolArgsRaw map[int][]byte // accumulates raw JSON fragments per index until ToolCallEnd
}

// NewStreamAccumulator creates an empty accumulator.
func NewStreamAccumulator() *StreamAccumulator {
	return &StreamAccumulator{toolArgsRaw: make(map[int][]byte)}
}

// Process ingests one event. Order matters: callers must feed events
// in stream order.
func (a *StreamAccumulator) Process(ev StreamEvent) {
	switch ev.Type {
	case EventTextEnd:
		if ev.Block != nil {
			a.blocks = append(a.blocks, *ev.Block)
		}
	case EventThinkingEnd:
		if ev.Block != nil {
			a.blocks = append(a.blocks, *ev.Block)
		}
	case EventToolCallDelta:
		a.toolArgsRaw[ev.Index] = append(a.toolArgsRaw[ev.Index], ev.ToolCallJSONChunk...)
	case EventToolCallEnd:
		if ev.Block != nil && ev.Block.ToolCall != nil {
			tc := *ev.Block.ToolCall
			tc.RawArguments = json.RawMessage(a.toolArgsRaw[ev.Index])
			// Parse exactly once here; a parse failure produces an
			// empty argument map per spec §4.2 ("the tool layer will
			// reject it at validation").
			if len(tc.RawArguments) > 0 {
				var args map[string]any
				if err := json.Unmarshal(tc.RawArguments, &args); err == nil {
					tc.Arguments = args
				}
			}
			a.blocks = append(a.blocks, agentmodel.ToolCallBlock(tc))
		}
	case EventDone:
		a.done = true
		a.stopReason = ev.StopReason
		if ev.Message != nil && ev.Message.Assistant != nil && ev.Message.Assistant.Usage != nil {
			a.mergeUsage(*ev.Message.Assistant.Usage)
		}
	case EventError:
		a.done = true
		a.stopReason = ev.StopReason
		if ev.Err != nil {
			a.errMsg = ev.Err.Error()
		}
	}
}

// SetUsage merges a usage snapshot into the accumulator by spec's
// max-merge rule. Provider adapters call this whenever a usage frame
// arrives, independent of block events.
func (a *StreamAccumulator) SetUsage(u agentmodel.Usage) {
	a.mergeUsage(u)
}

func (a *StreamAccumulator) mergeUsage(u agentmodel.Usage) {
	if a.usage == nil {
		merged := u
		a.usage = &merged
		return
	}
	merged := agentmodel.MergeUsage(*a.usage, u)
	a.usage = &merged
}

// Result builds the final Assistant message. If the stream ended
// without an explicit terminal frame, callers should have already
// synthesized one (spec §4.2's "synthesize Done(ToolUse)..." rule) —
// Result itself does not guess.
func (a *StreamAccumulator) Result(api, provider, model string) agentmodel.Message {
	asst := agentmodel.Assistant{
		Content:    a.blocks,
		API:        api,
		Provider:   provider,
		Model:      model,
		Usage:      a.usage,
		StopReason: a.stopReason,
		Error:      a.errMsg,
	}
	return agentmodel.Message{Kind: agentmodel.MessageAssistant, Assistant: &asst}
}

// AccumulateStream runs an adapter's Stream to completion and folds
// it into a single Message, giving any adapter a working Complete.
func AccumulateStream(events <-chan StreamEvent, api, provider, model string) (*agentmodel.Message, error) {
	acc := NewStreamAccumulator()
	for ev := range events {
		acc.Process(ev)
		if ev.Type == EventError {
			msg := acc.Result(api, provider, model)
			return &msg, ev.Err
		}
	}
	msg := acc.Result(api, provider, model)
	return &msg, nil
}
