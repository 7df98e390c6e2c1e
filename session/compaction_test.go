package session

import (
	"strings"
	"testing"
	"time"

	"github.com/coderunner/agentcore/agentmodel"
)

func TestShouldCompactBoundaryExact(t *testing.T) {
	cases := []struct {
		ctxTokens, window, reserve int
		want                       bool
	}{
		{100, 100, 0, false}, // c > w-r is false when c == w-r
		{101, 100, 0, true},
		{24000, 20000, 4000, true},
	}
	for _, c := range cases {
		got := ShouldCompact(c.ctxTokens, c.window, c.reserve)
		if got != c.want {
			t.Errorf("ShouldCompact(%d,%d,%d) = %v, want %v", c.ctxTokens, c.window, c.reserve, got, c.want)
		}
	}
}

func longText(words int) string {
	parts := make([]string, words)
	for i := range parts {
		parts[i] = "word"
	}
	return strings.Join(parts, " ")
}

func TestSelectCutPointSkipsToolResultBoundary(t *testing.T) {
	now := time.Now()
	messages := []agentmodel.Message{
		agentmodel.NewUserMessage("1", longText(50), now),
		agentmodel.NewAssistantMessage("2", agentmodel.Assistant{Content: []agentmodel.ContentBlock{agentmodel.TextBlock(longText(50))}}, now),
		agentmodel.NewToolResultMessage("3", agentmodel.ToolResult{ToolCallID: "x", ToolName: "t", Content: []agentmodel.ContentBlock{agentmodel.TextBlock(longText(50))}}, now),
		agentmodel.NewUserMessage("4", longText(5000), now),
		agentmodel.NewAssistantMessage("5", agentmodel.Assistant{Content: []agentmodel.ContentBlock{agentmodel.TextBlock(longText(5000))}}, now),
	}

	cut, err := SelectCutPoint("gpt-5.2", messages, 2000)
	if err != nil {
		t.Fatalf("SelectCutPoint: %v", err)
	}
	if messages[cut].Kind == agentmodel.MessageToolResult {
		t.Fatalf("cut point %d landed on a ToolResult", cut)
	}
}

func TestSelectCutPointZeroIsError(t *testing.T) {
	now := time.Now()
	messages := []agentmodel.Message{
		agentmodel.NewUserMessage("1", longText(5000), now),
	}
	_, err := SelectCutPoint("gpt-5.2", messages, 2000)
	if err != ErrCannotCompact {
		t.Fatalf("err = %v, want ErrCannotCompact", err)
	}
}

func TestBuildCompactionPromptIncludesAllSections(t *testing.T) {
	prompt := BuildCompactionPrompt("")
	for _, section := range []string{"Goal:", "Progress:", "Current State:", "Key Decisions:", "Next Steps:", "Files Modified:"} {
		if !strings.Contains(prompt, section) {
			t.Errorf("prompt missing section %q", section)
		}
	}
	if strings.Contains(prompt, "Incorporate") {
		t.Error("empty existingSummary should not add the incorporation clause")
	}
}

func TestBuildCompactionPromptFoldsExistingSummary(t *testing.T) {
	prompt := BuildCompactionPrompt("prior summary text")
	if !strings.Contains(prompt, "prior summary text") {
		t.Error("prompt should fold in the existing summary")
	}
}
