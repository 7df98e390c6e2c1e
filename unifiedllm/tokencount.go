package unifiedllm

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/coderunner/agentcore/agentmodel"
)

// defaultEncoding is the BPE table used when a model has no known
// tiktoken encoding of its own. cl100k_base is a reasonable proxy for
// both OpenAI and Anthropic text, which is what token counting here
// is for: local context-budget bookkeeping, not a billing figure.
const defaultEncoding = "cl100k_base"

var (
	encodingCacheMu sync.Mutex
	encodingCache   = map[string]*tiktoken.Tiktoken{}
)

func encodingFor(model string) (*tiktoken.Tiktoken, error) {
	encodingCacheMu.Lock()
	defer encodingCacheMu.Unlock()

	if enc, ok := encodingCache[model]; ok {
		return enc, nil
	}
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(defaultEncoding)
		if err != nil {
			return nil, err
		}
	}
	encodingCache[model] = enc
	return enc, nil
}

// CountTokens returns the BPE token count for text under model's
// encoding, falling back to a char/4 heuristic if tiktoken has no
// usable vocabulary loaded (e.g. offline with no cached .tiktoken
// file) — spec §3's token accounting only needs an estimate good
// enough to trigger compaction, not an exact billing count.
func CountTokens(model, text string) int {
	enc, err := encodingFor(model)
	if err != nil {
		return heuristicTokenCount(text)
	}
	return len(enc.Encode(text, nil, nil))
}

// CountMessageTokens estimates the token cost of one Message's
// text-bearing content (text and thinking blocks; tool-call argument
// JSON is included verbatim since it also occupies context).
func CountMessageTokens(model string, m agentmodel.Message) int {
	total := 0
	var blocks []agentmodel.ContentBlock
	switch m.Kind {
	case agentmodel.MessageUser:
		if m.User != nil {
			blocks = m.User.Content
		}
	case agentmodel.MessageAssistant:
		if m.Assistant != nil {
			blocks = m.Assistant.Content
		}
	case agentmodel.MessageToolResult:
		if m.ToolResult != nil {
			blocks = m.ToolResult.Content
		}
	}
	for _, b := range blocks {
		switch b.Kind {
		case agentmodel.BlockText:
			total += CountTokens(model, b.Text)
		case agentmodel.BlockThinking:
			total += CountTokens(model, b.Thinking)
		case agentmodel.BlockToolCall:
			if b.ToolCall != nil {
				total += CountTokens(model, b.ToolCall.Name)
				total += CountTokens(model, string(b.ToolCall.RawArguments))
			}
		}
	}
	return total
}

func heuristicTokenCount(text string) int {
	const charsPerToken = 4
	n := len(text) / charsPerToken
	if n == 0 && text != "" {
		n = 1
	}
	return n
}
