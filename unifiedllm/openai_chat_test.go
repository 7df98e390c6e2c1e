package unifiedllm

import (
	"io"
	"strings"
	"testing"

	"github.com/coderunner/agentcore/agentmodel"
)

func TestBuildOpenAIChatRequestReasoningEffort(t *testing.T) {
	req := Request{Model: agentmodel.LLMModel{ID: "gpt-5.2-codex"}, Thinking: agentmodel.ThinkingMedium, MaxTokens: 512}
	out := buildOpenAIChatRequest(req)
	if out.ReasoningEffort != "medium" {
		t.Errorf("reasoning_effort = %q, want medium", out.ReasoningEffort)
	}
	if out.Temperature != nil {
		t.Error("temperature must be omitted when reasoning is enabled")
	}
}

func TestBuildOpenAIChatRequestSystemPrompt(t *testing.T) {
	req := Request{Model: agentmodel.LLMModel{ID: "gpt-5.2"}, System: "be terse"}
	out := buildOpenAIChatRequest(req)
	if len(out.Messages) == 0 || out.Messages[0].Role != "system" || out.Messages[0].Content != "be terse" {
		t.Fatalf("got %+v, want leading system message", out.Messages)
	}
}

func TestOpenAIChatConsumeStream(t *testing.T) {
	payload := strings.Join([]string{
		`data: {"choices":[{"delta":{"content":"hel"},"finish_reason":null}]}`,
		``,
		`data: {"choices":[{"delta":{"content":"lo"},"finish_reason":"stop"}],"usage":{"prompt_tokens":5,"completion_tokens":2,"total_tokens":7}}`,
		``,
		`data: [DONE]`,
		``,
	}, "\n")

	a := &OpenAIChatAdapter{}
	out := make(chan StreamEvent, 32)
	a.consume(io.NopCloser(strings.NewReader(payload)), out)

	var events []StreamEvent
	for ev := range out {
		events = append(events, ev)
	}
	last := events[len(events)-1]
	if last.Type != EventDone {
		t.Fatalf("expected last event Done, got %v", last.Type)
	}
	if last.Message.Assistant.StopReason != agentmodel.StopStop {
		t.Errorf("stop reason = %q, want stop", last.Message.Assistant.StopReason)
	}
	if last.Message.Assistant.Usage.Total != 7 {
		t.Errorf("usage.Total = %d, want 7", last.Message.Assistant.Usage.Total)
	}

	var text string
	for _, ev := range events {
		if ev.Type == EventTextEnd {
			text = ev.Block.Text
		}
	}
	if text != "hello" {
		t.Errorf("accumulated text = %q, want hello", text)
	}
}

func TestOpenAIChatConsumeStreamToolCall(t *testing.T) {
	payload := strings.Join([]string{
		`data: {"choices":[{"delta":{"tool_calls":[{"index":0,"id":"call_1","function":{"name":"get_weather","arguments":""}}]}}]}`,
		``,
		`data: {"choices":[{"delta":{"tool_calls":[{"index":0,"function":{"arguments":"{\"city\":\"SF\"}"}}]},"finish_reason":"tool_calls"}]}`,
		``,
		`data: [DONE]`,
		``,
	}, "\n")

	a := &OpenAIChatAdapter{}
	out := make(chan StreamEvent, 32)
	a.consume(io.NopCloser(strings.NewReader(payload)), out)

	var last StreamEvent
	var sawEnd bool
	for ev := range out {
		last = ev
		if ev.Type == EventToolCallEnd {
			sawEnd = true
			if ev.Block.ToolCall.Name != "get_weather" {
				t.Errorf("tool name = %q, want get_weather", ev.Block.ToolCall.Name)
			}
			if ev.Block.ToolCall.Arguments["city"] != "SF" {
				t.Errorf("arguments = %+v, want city=SF", ev.Block.ToolCall.Arguments)
			}
		}
	}
	if !sawEnd {
		t.Fatal("expected a ToolCallEnd event")
	}
	if last.Message.Assistant.StopReason != agentmodel.StopToolUse {
		t.Errorf("stop reason = %q, want tool_use", last.Message.Assistant.StopReason)
	}
}
