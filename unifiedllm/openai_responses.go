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

// OpenAIResponsesAdapter speaks the OpenAI Responses wire API.
type OpenAIResponsesAdapter struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// NewOpenAIResponsesAdapter builds an adapter with sane defaults.
func NewOpenAIResponsesAdapter(apiKey string) *OpenAIResponsesAdapter {
	return &OpenAIResponsesAdapter{
		APIKey:     apiKey,
		BaseURL:    "https://api.openai.com/v1",
		HTTPClient: &http.Client{Timeout: 10 * time.Minute},
	}
}

func (a *OpenAIResponsesAdapter) Name() string { return "openai-responses" }

type openaiResponsesRequest struct {
	Model           string                  `json:"model"`
	Instructions    string                  `json:"instructions,omitempty"`
	Input           []openaiResponsesItem   `json:"input"`
	Tools           []openaiChatTool        `json:"tools,omitempty"`
	ToolChoice      any                     `json:"tool_choice,omitempty"`
	Stream          bool                    `json:"stream"`
	Temperature     *float64                `json:"temperature,omitempty"`
	TopP            *float64                `json:"top_p,omitempty"`
	MaxOutputTokens int                     `json:"max_output_tokens,omitempty"`
	Reasoning       *openaiReasoningOptions `json:"reasoning,omitempty"`
}

type openaiReasoningOptions struct {
	Effort string `json:"effort"`
}

// openaiResponsesItem is a union over the typed input items the
// Responses API accepts: message, function_call, function_call_output.
type openaiResponsesItem struct {
	Type      string                   `json:"type"`
	Role      string                   `json:"role,omitempty"`
	Content   []openaiResponsesContent `json:"content,omitempty"`
	CallID    string                   `json:"call_id,omitempty"`
	Name      string                   `json:"name,omitempty"`
	Arguments string                   `json:"arguments,omitempty"`
	Output    string                   `json:"output,omitempty"`
}

type openaiResponsesContent struct {
	Type     string `json:"type"` // input_text, input_image, output_text
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

func buildOpenAIResponsesRequest(req Request) openaiResponsesRequest {
	out := openaiResponsesRequest{
		Model:           req.Model.ID,
		Instructions:    req.System,
		Stream:          true,
		MaxOutputTokens: req.MaxTokens,
	}
	if req.Thinking == agentmodel.ThinkingOff {
		out.Temperature = req.Temperature
		out.TopP = req.TopP
	} else {
		out.Reasoning = &openaiReasoningOptions{Effort: req.Thinking.ReasoningEffort()}
	}
	for _, t := range req.Tools {
		out.Tools = append(out.Tools, openaiChatTool{Type: "function", Function: openaiChatToolFunc{Name: t.Name, Description: t.Description, Parameters: t.Parameters}})
	}
	if tc := req.ToolChoice; tc != nil {
		switch tc.Mode {
		case "auto", "none", "required":
			out.ToolChoice = tc.Mode
		case "named":
			out.ToolChoice = map[string]any{"type": "function", "name": tc.ToolName}
		}
	}
	out.Input = toOpenAIResponsesItems(req.Context)
	return out
}

func toOpenAIResponsesItems(msgs []agentmodel.Message) []openaiResponsesItem {
	var out []openaiResponsesItem
	for _, m := range msgs {
		switch m.Kind {
		case agentmodel.MessageUser:
			if m.User == nil {
				continue
			}
			out = append(out, openaiResponsesItem{Type: "message", Role: "user", Content: blocksToResponsesContent(m.User.Content, "input_text", "input_image")})
		case agentmodel.MessageAssistant:
			if m.Assistant == nil {
				continue
			}
			for _, b := range m.Assistant.Content {
				switch b.Kind {
				case agentmodel.BlockText:
					out = append(out, openaiResponsesItem{Type: "message", Role: "assistant", Content: []openaiResponsesContent{{Type: "output_text", Text: b.Text}}})
				case agentmodel.BlockThinking:
					out = append(out, openaiResponsesItem{Type: "reasoning", Content: []openaiResponsesContent{{Type: "reasoning_text", Text: b.Thinking}}})
				case agentmodel.BlockToolCall:
					if b.ToolCall == nil {
						continue
					}
					args := b.ToolCall.RawArguments
					if len(args) == 0 {
						args = []byte("{}")
					}
					out = append(out, openaiResponsesItem{Type: "function_call", CallID: b.ToolCall.ID, Name: b.ToolCall.Name, Arguments: string(args)})
				}
			}
		case agentmodel.MessageToolResult:
			if m.ToolResult == nil {
				continue
			}
			r := m.ToolResult
			out = append(out, openaiResponsesItem{Type: "function_call_output", CallID: r.ToolCallID, Output: blocksToPlainText(r.Content)})
		}
	}
	return out
}

func blocksToResponsesContent(blocks []agentmodel.ContentBlock, textType, imageType string) []openaiResponsesContent {
	var out []openaiResponsesContent
	for _, b := range blocks {
		switch b.Kind {
		case agentmodel.BlockText:
			out = append(out, openaiResponsesContent{Type: textType, Text: b.Text})
		case agentmodel.BlockImage:
			if b.Image != nil {
				out = append(out, openaiResponsesContent{Type: imageType, ImageURL: "data:" + b.Image.MediaType + ";base64," + b.Image.Data})
			}
		}
	}
	return out
}

// openaiResponsesEvent covers the handful of event shapes this
// adapter needs to recognize by the sse.Event.Name discriminator.
type openaiResponsesEvent struct {
	Delta       string `json:"delta"`
	OutputIndex int    `json:"output_index"`
	ItemID      string `json:"item_id"`
	Text        string `json:"text"`
	Arguments   string `json:"arguments"`
	Item        *struct {
		Type   string `json:"type"`
		ID     string `json:"id"`
		CallID string `json:"call_id"`
		Name   string `json:"name"`
	} `json:"item"`
	Response *struct {
		Usage *struct {
			InputTokens        int `json:"input_tokens"`
			OutputTokens       int `json:"output_tokens"`
			InputTokensDetails struct {
				CachedTokens int `json:"cached_tokens"`
			} `json:"input_tokens_details"`
		} `json:"usage"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	} `json:"response"`
	Message string `json:"message"`
}

// Stream implements ProviderAdapter.
func (a *OpenAIResponsesAdapter) Stream(ctx context.Context, req Request) (<-chan StreamEvent, error) {
	body := buildOpenAIResponsesRequest(req)
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &SDKError{Message: "failed to encode openai responses request", Cause: err}
	}

	url := strings.TrimRight(a.baseURL(), "/") + "/responses"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, &SDKError{Message: "failed to build openai responses request", Cause: err}
	}
	httpReq.Header.Set("Authorization", "Bearer "+a.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range req.Model.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := a.client().Do(httpReq)
	if err != nil {
		return nil, &NetworkError{SDKError: SDKError{Message: "openai responses request failed", Cause: err}}
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

func (a *OpenAIResponsesAdapter) baseURL() string {
	if a.BaseURL != "" {
		return a.BaseURL
	}
	return "https://api.openai.com/v1"
}

func (a *OpenAIResponsesAdapter) client() *http.Client {
	if a.HTTPClient != nil {
		return a.HTTPClient
	}
	return http.DefaultClient
}

type responsesBlockState struct {
	kind   string
	buf    strings.Builder
	callID string
	name   string
}

func (a *OpenAIResponsesAdapter) consume(body io.ReadCloser, out chan<- StreamEvent) {
	defer close(out)
	defer body.Close()

	out <- StartEvent()
	blocks := map[int]*responsesBlockState{}
	var toolCalls []agentmodel.ToolCall
	var usage agentmodel.Usage
	haveUsage := false
	stopReason := agentmodel.StopStop
	var failure error

	readErr := readSSE(body, func(ev sse.Event) error {
		if ev.Data == "" {
			return nil
		}
		var frame openaiResponsesEvent
		if err := json.Unmarshal([]byte(ev.Data), &frame); err != nil {
			return nil
		}
		switch ev.Name {
		case "response.output_item.added":
			if frame.Item == nil {
				return nil
			}
			st := &responsesBlockState{kind: frame.Item.Type, callID: frame.Item.CallID, name: frame.Item.Name}
			blocks[frame.OutputIndex] = st
			switch st.kind {
			case "message":
				out <- TextStartEvent(frame.OutputIndex)
			case "reasoning":
				out <- ThinkingStartEvent(frame.OutputIndex)
			case "function_call":
				out <- ToolCallStartEvent(frame.OutputIndex, st.callID, st.name)
			}
		case "response.output_text.delta":
			st := blocks[frame.OutputIndex]
			if st == nil {
				return nil
			}
			st.buf.WriteString(frame.Delta)
			out <- TextDeltaEvent(frame.OutputIndex, frame.Delta)
		case "response.reasoning_summary_text.delta":
			st := blocks[frame.OutputIndex]
			if st == nil {
				return nil
			}
			st.buf.WriteString(frame.Delta)
			out <- ThinkingDeltaEvent(frame.OutputIndex, frame.Delta)
		case "response.function_call_arguments.delta":
			st := blocks[frame.OutputIndex]
			if st == nil {
				return nil
			}
			st.buf.WriteString(frame.Delta)
			out <- ToolCallDeltaEvent(frame.OutputIndex, frame.Delta)
		case "response.output_item.done":
			st := blocks[frame.OutputIndex]
			if st == nil {
				return nil
			}
			switch st.kind {
			case "message":
				out <- TextEndEvent(frame.OutputIndex, st.buf.String())
			case "reasoning":
				out <- ThinkingEndEvent(frame.OutputIndex, st.buf.String())
			case "function_call":
				tc := agentmodel.ToolCall{ID: st.callID, Name: st.name, RawArguments: json.RawMessage(st.buf.String())}
				if len(tc.RawArguments) > 0 {
					var args map[string]any
					if err := json.Unmarshal(tc.RawArguments, &args); err == nil {
						tc.Arguments = args
					}
				}
				toolCalls = append(toolCalls, tc)
				out <- ToolCallEndEvent(frame.OutputIndex, tc)
			}
		case "response.completed":
			if frame.Response != nil && frame.Response.Usage != nil {
				u := frame.Response.Usage
				usage = agentmodel.Usage{
					Input:     u.InputTokens,
					Output:    u.OutputTokens,
					Total:     u.InputTokens + u.OutputTokens,
					CacheRead: u.InputTokensDetails.CachedTokens,
				}
				haveUsage = true
			}
		case "response.failed", "error":
			msg := frame.Message
			if frame.Response != nil && frame.Response.Error != nil {
				msg = frame.Response.Error.Message
			}
			failure = fmt.Errorf("openai responses stream failed: %s", msg)
			out <- ErrorEvent(agentmodel.StopError, failure)
			return errStopConsuming
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

	if len(toolCalls) > 0 {
		stopReason = agentmodel.StopToolUse
	}
	asst := agentmodel.Assistant{API: "openai-responses", Provider: "openai", StopReason: stopReason}
	if haveUsage {
		asst.Usage = &usage
	}
	out <- DoneEvent(stopReason, agentmodel.Message{Kind: agentmodel.MessageAssistant, Assistant: &asst})
}
