package unifiedllm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/coderunner/agentcore/agentmodel"
	"github.com/coderunner/agentcore/sse"
)

// OpenAIChatAdapter speaks the OpenAI Chat Completions wire API.
type OpenAIChatAdapter struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// NewOpenAIChatAdapter builds an adapter with sane defaults.
func NewOpenAIChatAdapter(apiKey string) *OpenAIChatAdapter {
	return &OpenAIChatAdapter{
		APIKey:     apiKey,
		BaseURL:    "https://api.openai.com/v1",
		HTTPClient: &http.Client{Timeout: 10 * time.Minute},
	}
}

func (a *OpenAIChatAdapter) Name() string { return "openai-chat" }

type openaiChatRequest struct {
	Model           string              `json:"model"`
	Messages        []openaiChatMessage `json:"messages"`
	Tools           []openaiChatTool    `json:"tools,omitempty"`
	ToolChoice      any                 `json:"tool_choice,omitempty"`
	Stream          bool                `json:"stream"`
	StreamOptions   openaiStreamOptions `json:"stream_options"`
	Temperature     *float64            `json:"temperature,omitempty"`
	TopP            *float64            `json:"top_p,omitempty"`
	MaxTokens       int                 `json:"max_completion_tokens,omitempty"`
	Stop            []string            `json:"stop,omitempty"`
	ReasoningEffort string              `json:"reasoning_effort,omitempty"`
}

type openaiStreamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

type openaiChatTool struct {
	Type     string             `json:"type"`
	Function openaiChatToolFunc `json:"function"`
}

type openaiChatToolFunc struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

type openaiChatMessage struct {
	Role       string               `json:"role"`
	Content    any                  `json:"content,omitempty"`
	ToolCallID string               `json:"tool_call_id,omitempty"`
	ToolCalls  []openaiChatToolCall `json:"tool_calls,omitempty"`
}

type openaiChatToolCall struct {
	ID       string                     `json:"id"`
	Type     string                     `json:"type"`
	Function openaiChatToolCallFunction `json:"function"`
}

type openaiChatToolCallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

func buildOpenAIChatRequest(req Request) openaiChatRequest {
	out := openaiChatRequest{
		Model:         req.Model.ID,
		Stream:        true,
		StreamOptions: openaiStreamOptions{IncludeUsage: true},
		MaxTokens:     req.MaxTokens,
		Stop:          req.StopSequences,
	}
	if req.Thinking == agentmodel.ThinkingOff {
		out.Temperature = req.Temperature
		out.TopP = req.TopP
	} else {
		out.ReasoningEffort = req.Thinking.ReasoningEffort()
	}
	if req.System != "" {
		out.Messages = append(out.Messages, openaiChatMessage{Role: "system", Content: req.System})
	}
	out.Messages = append(out.Messages, toOpenAIChatMessages(req.Context)...)

	for _, t := range req.Tools {
		out.Tools = append(out.Tools, openaiChatTool{Type: "function", Function: openaiChatToolFunc{Name: t.Name, Description: t.Description, Parameters: t.Parameters}})
	}
	if tc := req.ToolChoice; tc != nil {
		switch tc.Mode {
		case "auto", "none", "required":
			out.ToolChoice = tc.Mode
		case "named":
			out.ToolChoice = map[string]any{"type": "function", "function": map[string]string{"name": tc.ToolName}}
		}
	}
	return out
}

func toOpenAIChatMessages(msgs []agentmodel.Message) []openaiChatMessage {
	var out []openaiChatMessage
	for _, m := range msgs {
		switch m.Kind {
		case agentmodel.MessageUser:
			if m.User == nil {
				continue
			}
			out = append(out, openaiChatMessage{Role: "user", Content: openaiUserContent(m.User.Content)})
		case agentmodel.MessageAssistant:
			if m.Assistant == nil {
				continue
			}
			text, calls := openaiAssistantParts(m.Assistant.Content)
			msg := openaiChatMessage{Role: "assistant"}
			if text != "" {
				msg.Content = text
			}
			msg.ToolCalls = calls
			out = append(out, msg)
		case agentmodel.MessageToolResult:
			if m.ToolResult == nil {
				continue
			}
			r := m.ToolResult
			out = append(out, openaiChatMessage{Role: "tool", ToolCallID: r.ToolCallID, Content: blocksToPlainText(r.Content)})
		}
	}
	return out
}

func openaiUserContent(blocks []agentmodel.ContentBlock) any {
	hasImage := false
	for _, b := range blocks {
		if b.Kind == agentmodel.BlockImage {
			hasImage = true
		}
	}
	if !hasImage {
		return blocksToPlainText(blocks)
	}
	var parts []map[string]any
	for _, b := range blocks {
		switch b.Kind {
		case agentmodel.BlockText:
			parts = append(parts, map[string]any{"type": "text", "text": b.Text})
		case agentmodel.BlockImage:
			if b.Image != nil {
				parts = append(parts, map[string]any{"type": "image_url", "image_url": map[string]any{
					"url": "data:" + b.Image.MediaType + ";base64," + b.Image.Data,
				}})
			}
		}
	}
	return parts
}

func openaiAssistantParts(blocks []agentmodel.ContentBlock) (string, []openaiChatToolCall) {
	var text strings.Builder
	var calls []openaiChatToolCall
	for _, b := range blocks {
		switch b.Kind {
		case agentmodel.BlockText:
			text.WriteString(b.Text)
		case agentmodel.BlockToolCall:
			if b.ToolCall == nil {
				continue
			}
			args := b.ToolCall.RawArguments
			if len(args) == 0 {
				args = []byte("{}")
			}
			calls = append(calls, openaiChatToolCall{
				ID: b.ToolCall.ID, Type: "function",
				Function: openaiChatToolCallFunction{Name: b.ToolCall.Name, Arguments: string(args)},
			})
		}
	}
	return text.String(), calls
}

func blocksToPlainText(blocks []agentmodel.ContentBlock) string {
	var out strings.Builder
	for _, b := range blocks {
		if b.Kind == agentmodel.BlockText {
			out.WriteString(b.Text)
		}
	}
	return out.String()
}

type openaiChatStreamChunk struct {
	Choices []struct {
		Delta struct {
			Content   string `json:"content"`
			ToolCalls []struct {
				Index    int    `json:"index"`
				ID       string `json:"id"`
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens        int `json:"prompt_tokens"`
		CompletionTokens    int `json:"completion_tokens"`
		TotalTokens         int `json:"total_tokens"`
		PromptTokensDetails struct {
			CachedTokens int `json:"cached_tokens"`
		} `json:"prompt_tokens_details"`
	} `json:"usage"`
}

func openaiChatStopReason(reason string) agentmodel.StopReason {
	switch reason {
	case "length":
		return agentmodel.StopLength
	case "tool_calls", "function_call":
		return agentmodel.StopToolUse
	case "content_filter":
		return agentmodel.StopError
	default:
		return agentmodel.StopStop
	}
}

// Stream implements ProviderAdapter.
func (a *OpenAIChatAdapter) Stream(ctx context.Context, req Request) (<-chan StreamEvent, error) {
	body := buildOpenAIChatRequest(req)
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &SDKError{Message: "failed to encode openai chat request", Cause: err}
	}

	url := strings.TrimRight(a.baseURL(), "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, &SDKError{Message: "failed to build openai chat request", Cause: err}
	}
	httpReq.Header.Set("Authorization", "Bearer "+a.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range req.Model.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := a.client().Do(httpReq)
	if err != nil {
		return nil, &NetworkError{SDKError: SDKError{Message: "openai chat request failed", Cause: err}}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(resp.Body)
		return nil, ErrorFromStatusCode(resp.StatusCode, string(respBody), "openai", "", nil, nil)
	}

	out := make(chan StreamEvent, 16)
	go a.consume(resp.Body, out)
	return out, nil
}

func (a *OpenAIChatAdapter) baseURL() string {
	if a.BaseURL != "" {
		return a.BaseURL
	}
	return "https://api.openai.com/v1"
}

func (a *OpenAIChatAdapter) client() *http.Client {
	if a.HTTPClient != nil {
		return a.HTTPClient
	}
	return http.DefaultClient
}

type openaiToolCallAccum struct {
	id   string
	name string
	args []byte
}

func (a *OpenAIChatAdapter) consume(body io.ReadCloser, out chan<- StreamEvent) {
	defer close(out)
	defer body.Close()

	out <- StartEvent()

	textOpen := false
	var textBuf strings.Builder
	toolCalls := map[int]*openaiToolCallAccum{}
	var toolOrder []int
	var usage agentmodel.Usage
	haveUsage := false
	stopReason := agentmodel.StopStop

	readErr := readSSE(body, func(ev sse.Event) error {
		if ev.Data == "" || ev.Data == "[DONE]" {
			return nil
		}
		var chunk openaiChatStreamChunk
		if err := json.Unmarshal([]byte(ev.Data), &chunk); err != nil {
			return nil
		}
		if chunk.Usage != nil {
			usage = agentmodel.Usage{
				Input:     chunk.Usage.PromptTokens,
				Output:    chunk.Usage.CompletionTokens,
				Total:     chunk.Usage.TotalTokens,
				CacheRead: chunk.Usage.PromptTokensDetails.CachedTokens,
			}
			haveUsage = true
		}
		for _, choice := range chunk.Choices {
			if choice.Delta.Content != "" {
				if !textOpen {
					out <- TextStartEvent(0)
					textOpen = true
				}
				textBuf.WriteString(choice.Delta.Content)
				out <- TextDeltaEvent(0, choice.Delta.Content)
			}
			for _, tc := range choice.Delta.ToolCalls {
				accum, ok := toolCalls[tc.Index]
				if !ok {
					accum = &openaiToolCallAccum{}
					toolCalls[tc.Index] = accum
					toolOrder = append(toolOrder, tc.Index)
					out <- ToolCallStartEvent(tc.Index+1, tc.ID, tc.Function.Name)
				}
				if tc.ID != "" {
					accum.id = tc.ID
				}
				if tc.Function.Name != "" {
					accum.name = tc.Function.Name
				}
				if tc.Function.Arguments != "" {
					accum.args = append(accum.args, tc.Function.Arguments...)
					out <- ToolCallDeltaEvent(tc.Index+1, tc.Function.Arguments)
				}
			}
			if choice.FinishReason != nil && *choice.FinishReason != "" {
				stopReason = openaiChatStopReason(*choice.FinishReason)
			}
		}
		return nil
	})

	if readErr != nil {
		out <- ErrorEvent(agentmodel.StopError, readErr)
		return
	}

	if textOpen {
		out <- TextEndEvent(0, textBuf.String())
	}

	var calls []agentmodel.ToolCall
	for _, idx := range toolOrder {
		accum := toolCalls[idx]
		tc := agentmodel.ToolCall{ID: accum.id, Name: accum.name, RawArguments: accum.args}
		if len(tc.RawArguments) > 0 {
			var args map[string]any
			if err := json.Unmarshal(tc.RawArguments, &args); err == nil {
				tc.Arguments = args
			}
		}
		calls = append(calls, tc)
		out <- ToolCallEndEvent(idx+1, tc)
	}

	if stopReason == agentmodel.StopStop && len(calls) > 0 {
		stopReason = agentmodel.StopToolUse
	}
	asst := agentmodel.Assistant{API: "openai-chat", Provider: "openai", StopReason: stopReason}
	if haveUsage {
		asst.Usage = &usage
	}
	out <- DoneEvent(stopReason, agentmodel.Message{Kind: agentmodel.MessageAssistant, Assistant: &asst})
}
