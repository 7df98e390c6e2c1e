package unifiedllm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/coderunner/agentcore/agentmodel"
	"github.com/coderunner/agentcore/sse"
)

const anthropicVersion = "2023-06-01"

// AnthropicAdapter speaks the Anthropic Messages wire API.
type AnthropicAdapter struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// NewAnthropicAdapter builds an adapter with sane defaults.
func NewAnthropicAdapter(apiKey string) *AnthropicAdapter {
	return &AnthropicAdapter{
		APIKey:     apiKey,
		BaseURL:    "https://api.anthropic.com",
		HTTPClient: &http.Client{Timeout: 10 * time.Minute},
	}
}

func (a *AnthropicAdapter) Name() string { return "anthropic-messages" }

func (a *AnthropicAdapter) SupportsToolChoice(mode string) bool {
	switch mode {
	case "auto", "none", "required", "named":
		return true
	default:
		return false
	}
}

type anthropicRequest struct {
	Model         string               `json:"model"`
	System        string               `json:"system,omitempty"`
	Messages      []anthropicMessage   `json:"messages"`
	Tools         []anthropicTool      `json:"tools,omitempty"`
	ToolChoice    *anthropicToolChoice `json:"tool_choice,omitempty"`
	MaxTokens     int                  `json:"max_tokens"`
	Temperature   *float64             `json:"temperature,omitempty"`
	TopP          *float64             `json:"top_p,omitempty"`
	StopSequences []string             `json:"stop_sequences,omitempty"`
	Stream        bool                 `json:"stream"`
	Thinking      *anthropicThinking   `json:"thinking,omitempty"`
}

type anthropicThinking struct {
	Type         string `json:"type"`
	BudgetTokens int    `json:"budget_tokens"`
}

type anthropicToolChoice struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
}

type anthropicTool struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"input_schema"`
}

type anthropicMessage struct {
	Role    string             `json:"role"`
	Content []anthropicContent `json:"content"`
}

type anthropicContent struct {
	Type      string           `json:"type"`
	Text      string           `json:"text,omitempty"`
	Source    *anthropicSource `json:"source,omitempty"`
	ID        string           `json:"id,omitempty"`
	Name      string           `json:"name,omitempty"`
	Input     json.RawMessage  `json:"input,omitempty"`
	ToolUseID string           `json:"tool_use_id,omitempty"`
	Content   any              `json:"content,omitempty"`
	IsError   bool             `json:"is_error,omitempty"`
	Thinking  string           `json:"thinking,omitempty"`
	Signature string           `json:"signature,omitempty"`
}

type anthropicSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

func buildAnthropicRequest(req Request) anthropicRequest {
	out := anthropicRequest{
		Model:         req.Model.ID,
		System:        req.System,
		MaxTokens:     req.MaxTokens,
		StopSequences: req.StopSequences,
		Stream:        true,
	}
	if req.Thinking > agentmodel.ThinkingOff {
		out.Thinking = &anthropicThinking{Type: "enabled", BudgetTokens: req.Model.BudgetFor(req.Thinking)}
	} else {
		out.Temperature = req.Temperature
		out.TopP = req.TopP
	}
	for _, t := range req.Tools {
		out.Tools = append(out.Tools, anthropicTool{Name: t.Name, Description: t.Description, InputSchema: t.Parameters})
	}
	if tc := req.ToolChoice; tc != nil {
		switch tc.Mode {
		case "auto":
			out.ToolChoice = &anthropicToolChoice{Type: "auto"}
		case "none":
			out.ToolChoice = &anthropicToolChoice{Type: "none"}
		case "required":
			out.ToolChoice = &anthropicToolChoice{Type: "any"}
		case "named":
			out.ToolChoice = &anthropicToolChoice{Type: "tool", Name: tc.ToolName}
		}
	}
	out.Messages = toAnthropicMessages(req.Context)
	return out
}

func toAnthropicMessages(msgs []agentmodel.Message) []anthropicMessage {
	var out []anthropicMessage
	for _, m := range msgs {
		switch m.Kind {
		case agentmodel.MessageUser:
			if m.User == nil {
				continue
			}
			out = append(out, anthropicMessage{Role: "user", Content: blocksToAnthropic(m.User.Content)})
		case agentmodel.MessageAssistant:
			if m.Assistant == nil {
				continue
			}
			out = append(out, anthropicMessage{Role: "assistant", Content: blocksToAnthropic(m.Assistant.Content)})
		case agentmodel.MessageToolResult:
			if m.ToolResult == nil {
				continue
			}
			r := m.ToolResult
			out = append(out, anthropicMessage{Role: "user", Content: []anthropicContent{{
				Type:      "tool_result",
				ToolUseID: r.ToolCallID,
				Content:   anthropicToolResultContent(r.Content),
				IsError:   r.IsError,
			}}})
		}
	}
	return out
}

func anthropicToolResultContent(blocks []agentmodel.ContentBlock) any {
	parts := blocksToAnthropic(blocks)
	if len(parts) == 1 && parts[0].Type == "text" {
		return parts[0].Text
	}
	return parts
}

func blocksToAnthropic(blocks []agentmodel.ContentBlock) []anthropicContent {
	var out []anthropicContent
	for _, b := range blocks {
		switch b.Kind {
		case agentmodel.BlockText:
			out = append(out, anthropicContent{Type: "text", Text: b.Text})
		case agentmodel.BlockImage:
			if b.Image != nil {
				out = append(out, anthropicContent{Type: "image", Source: &anthropicSource{Type: "base64", MediaType: b.Image.MediaType, Data: b.Image.Data}})
			}
		case agentmodel.BlockThinking:
			out = append(out, anthropicContent{Type: "thinking", Thinking: b.Thinking})
		case agentmodel.BlockToolCall:
			if b.ToolCall != nil {
				input := b.ToolCall.RawArguments
				if len(input) == 0 {
					input = json.RawMessage("{}")
				}
				out = append(out, anthropicContent{Type: "tool_use", ID: b.ToolCall.ID, Name: b.ToolCall.Name, Input: input})
			}
		}
	}
	return out
}

type anthropicSSEFrame struct {
	Type    string `json:"type"`
	Index   int    `json:"index"`
	Message *struct {
		ID    string         `json:"id"`
		Model string         `json:"model"`
		Usage anthropicUsage `json:"usage"`
	} `json:"message"`
	ContentBlock *struct {
		Type string `json:"type"`
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"content_block"`
	Delta *struct {
		Type        string `json:"type"`
		Text        string `json:"text"`
		PartialJSON string `json:"partial_json"`
		Thinking    string `json:"thinking"`
		StopReason  string `json:"stop_reason"`
	} `json:"delta"`
	Usage *anthropicUsage `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

type anthropicUsage struct {
	InputTokens              int `json:"input_tokens"`
	OutputTokens             int `json:"output_tokens"`
	CacheReadInputTokens     int `json:"cache_read_input_tokens"`
	CacheCreationInputTokens int `json:"cache_creation_input_tokens"`
}

func (u anthropicUsage) toUsage() agentmodel.Usage {
	return agentmodel.Usage{
		Input:      u.InputTokens,
		Output:     u.OutputTokens,
		CacheRead:  u.CacheReadInputTokens,
		CacheWrite: u.CacheCreationInputTokens,
		Total:      u.InputTokens + u.OutputTokens,
	}
}

func anthropicStopReason(s string) agentmodel.StopReason {
	switch s {
	case "tool_use":
		return agentmodel.StopToolUse
	case "max_tokens":
		return agentmodel.StopLength
	default:
		return agentmodel.StopStop
	}
}

// Stream implements ProviderAdapter.
func (a *AnthropicAdapter) Stream(ctx context.Context, req Request) (<-chan StreamEvent, error) {
	body := buildAnthropicRequest(req)
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &SDKError{Message: "failed to encode anthropic request", Cause: err}
	}

	url := strings.TrimRight(a.baseURL(), "/") + "/v1/messages"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, &SDKError{Message: "failed to build anthropic request", Cause: err}
	}
	httpReq.Header.Set("x-api-key", a.APIKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)
	httpReq.Header.Set("content-type", "application/json")
	for k, v := range req.Model.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := a.client().Do(httpReq)
	if err != nil {
		return nil, &NetworkError{SDKError: SDKError{Message: "anthropic request failed", Cause: err}}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(resp.Body)
		return nil, ErrorFromStatusCode(resp.StatusCode, string(respBody), "anthropic", "", nil, nil)
	}

	out := make(chan StreamEvent, 16)
	go a.consume(resp.Body, out)
	return out, nil
}

func (a *AnthropicAdapter) baseURL() string {
	if a.BaseURL != "" {
		return a.BaseURL
	}
	return "https://api.anthropic.com"
}

func (a *AnthropicAdapter) client() *http.Client {
	if a.HTTPClient != nil {
		return a.HTTPClient
	}
	return http.DefaultClient
}

type anthropicBlockState struct {
	kind     string
	textBuf  strings.Builder
	argsBuf  []byte
	toolID   string
	toolName string
}

func (a *AnthropicAdapter) consume(body io.ReadCloser, out chan<- StreamEvent) {
	defer close(out)
	defer body.Close()

	out <- StartEvent()
	blocks := map[int]*anthropicBlockState{}
	var usage agentmodel.Usage
	var haveUsage bool
	stopReason := agentmodel.StopStop
	var toolCalls []agentmodel.ToolCall

	readErr := readSSE(body, func(ev sse.Event) error {
		if ev.Data == "" {
			return nil
		}
		var frame anthropicSSEFrame
		if err := json.Unmarshal([]byte(ev.Data), &frame); err != nil {
			return nil
		}
		switch frame.Type {
		case "message_start":
			if frame.Message != nil {
				usage = frame.Message.Usage.toUsage()
				haveUsage = true
			}
		case "content_block_start":
			if frame.ContentBlock == nil {
				return nil
			}
			st := &anthropicBlockState{kind: frame.ContentBlock.Type, toolID: frame.ContentBlock.ID, toolName: frame.ContentBlock.Name}
			blocks[frame.Index] = st
			switch st.kind {
			case "text":
				out <- TextStartEvent(frame.Index)
			case "thinking":
				out <- ThinkingStartEvent(frame.Index)
			case "tool_use":
				out <- ToolCallStartEvent(frame.Index, st.toolID, st.toolName)
			}
		case "content_block_delta":
			st := blocks[frame.Index]
			if st == nil || frame.Delta == nil {
				return nil
			}
			switch frame.Delta.Type {
			case "text_delta":
				st.textBuf.WriteString(frame.Delta.Text)
				out <- TextDeltaEvent(frame.Index, frame.Delta.Text)
			case "thinking_delta":
				st.textBuf.WriteString(frame.Delta.Thinking)
				out <- ThinkingDeltaEvent(frame.Index, frame.Delta.Thinking)
			case "input_json_delta":
				st.argsBuf = append(st.argsBuf, frame.Delta.PartialJSON...)
				out <- ToolCallDeltaEvent(frame.Index, frame.Delta.PartialJSON)
			}
		case "content_block_stop":
			st := blocks[frame.Index]
			if st == nil {
				return nil
			}
			switch st.kind {
			case "text":
				out <- TextEndEvent(frame.Index, st.textBuf.String())
			case "thinking":
				out <- ThinkingEndEvent(frame.Index, st.textBuf.String())
			case "tool_use":
				tc := agentmodel.ToolCall{ID: st.toolID, Name: st.toolName, RawArguments: json.RawMessage(st.argsBuf)}
				if len(tc.RawArguments) > 0 {
					var args map[string]any
					if err := json.Unmarshal(tc.RawArguments, &args); err == nil {
						tc.Arguments = args
					}
				}
				toolCalls = append(toolCalls, tc)
				out <- ToolCallEndEvent(frame.Index, tc)
			}
		case "message_delta":
			if frame.Delta != nil && frame.Delta.StopReason != "" {
				stopReason = anthropicStopReason(frame.Delta.StopReason)
			}
			if frame.Usage != nil {
				merged := frame.Usage.toUsage()
				if haveUsage {
					usage = agentmodel.MergeUsage(usage, merged)
				} else {
					usage = merged
					haveUsage = true
				}
			}
		case "error":
			if frame.Error != nil {
				out <- ErrorEvent(agentmodel.StopError, fmt.Errorf("%s: %s", frame.Error.Type, frame.Error.Message))
				return errStopConsuming
			}
		}
		return nil
	})

	if readErr != nil && readErr != errStopConsuming {
		out <- ErrorEvent(agentmodel.StopError, readErr)
		return
	}
	if readErr == errStopConsuming {
		return
	}

	if stopReason == agentmodel.StopStop && len(toolCalls) > 0 {
		stopReason = agentmodel.StopToolUse
	}
	asst := agentmodel.Assistant{API: "anthropic-messages", Provider: "anthropic", StopReason: stopReason}
	if haveUsage {
		asst.Usage = &usage
	}
	out <- DoneEvent(stopReason, agentmodel.Message{Kind: agentmodel.MessageAssistant, Assistant: &asst})
}

var errStopConsuming = fmt.Errorf("stop consuming: terminal frame seen")
