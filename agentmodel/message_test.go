package agentmodel

import (
	"encoding/json"
	"testing"
	"time"
)

func TestMergeUsageTakesMax(t *testing.T) {
	a := Usage{Input: 100, Output: 50, CacheRead: 10, Total: 150, Cost: 0.01}
	b := Usage{Input: 80, Output: 60, CacheRead: 20, Total: 160, Cost: 0.02}

	got := MergeUsage(a, b)
	want := Usage{Input: 100, Output: 60, CacheRead: 20, Total: 160, Cost: 0.02}
	if got != want {
		t.Fatalf("MergeUsage(%+v, %+v) = %+v, want %+v", a, b, got, want)
	}
}

func TestMergeUsageIsCommutative(t *testing.T) {
	a := Usage{Input: 5, Output: 90}
	b := Usage{Input: 12, Output: 3}
	if MergeUsage(a, b) != MergeUsage(b, a) {
		t.Fatalf("MergeUsage is not commutative for %+v, %+v", a, b)
	}
}

func TestFilterMessagesDropsCustom(t *testing.T) {
	now := time.Now()
	msgs := []AgentMessage{
		FromMessage(NewUserMessage("1", "hello", now)),
		FromCustom(Custom{Type: "note", Data: json.RawMessage(`{"x":1}`)}),
		FromMessage(NewAssistantMessage("2", Assistant{Content: []ContentBlock{TextBlock("hi")}}, now)),
	}

	got := FilterMessages(msgs)
	if len(got) != 2 {
		t.Fatalf("FilterMessages returned %d messages, want 2", len(got))
	}
	if got[0].Kind != MessageUser || got[1].Kind != MessageAssistant {
		t.Fatalf("FilterMessages returned unexpected kinds: %v, %v", got[0].Kind, got[1].Kind)
	}
}

func TestTextContentConcatenatesTextBlocksOnly(t *testing.T) {
	m := NewAssistantMessage("1", Assistant{Content: []ContentBlock{
		TextBlock("a"),
		ThinkingBlock("scratch"),
		TextBlock("b"),
	}}, time.Now())

	if got := m.TextContent(); got != "ab" {
		t.Fatalf("TextContent() = %q, want %q", got, "ab")
	}
}

func TestToolCallsExtractsInOrder(t *testing.T) {
	m := NewAssistantMessage("1", Assistant{Content: []ContentBlock{
		TextBlock("calling tools"),
		ToolCallBlock(ToolCall{ID: "c1", Name: "read"}),
		ToolCallBlock(ToolCall{ID: "c2", Name: "write"}),
	}}, time.Now())

	calls := m.ToolCalls()
	if len(calls) != 2 || calls[0].ID != "c1" || calls[1].ID != "c2" {
		t.Fatalf("ToolCalls() = %+v, want [c1, c2] in order", calls)
	}
}

func TestThinkingLevelReasoningEffortMapping(t *testing.T) {
	cases := map[ThinkingLevel]string{
		ThinkingOff:     "",
		ThinkingMinimal: "low",
		ThinkingLow:     "low",
		ThinkingMedium:  "medium",
		ThinkingHigh:    "high",
		ThinkingXHigh:   "high",
	}
	for level, want := range cases {
		if got := level.ReasoningEffort(); got != want {
			t.Errorf("%s.ReasoningEffort() = %q, want %q", level, got, want)
		}
	}
}

func TestBudgetForUsesHardcodedTableByDefault(t *testing.T) {
	m := LLMModel{}
	if got := m.BudgetFor(ThinkingHigh); got != 8192 {
		t.Fatalf("BudgetFor(High) = %d, want 8192", got)
	}
}

func TestBudgetForPrefersModelOverride(t *testing.T) {
	m := LLMModel{ThinkingBudgets: map[ThinkingLevel]int{ThinkingHigh: 9999}}
	if got := m.BudgetFor(ThinkingHigh); got != 9999 {
		t.Fatalf("BudgetFor(High) = %d, want 9999 (override)", got)
	}
	if got := m.BudgetFor(ThinkingLow); got != 2048 {
		t.Fatalf("BudgetFor(Low) = %d, want 2048 (fallback)", got)
	}
}
