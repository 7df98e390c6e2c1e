package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/coderunner/agentcore/agentmodel"
	"github.com/coderunner/agentcore/unifiedllm"
)

// DefaultReserve is the token headroom spec §4.7 reserves below the
// context window before triggering compaction.
const DefaultReserve = 16384

// DefaultKeepRecentTokens is the minimum tail, by estimated token
// count, compaction always preserves uncompacted.
const DefaultKeepRecentTokens = 20000

// ErrCannotCompact is returned when no valid cut point exists (the
// computed cut point is the start of the branch).
var ErrCannotCompact = errors.New("session: cannot compact: no valid cut point")

// ShouldCompact reports whether the running context has grown past
// the window minus reserve. ctxTokens is the latest provider-reported
// usage when available, else a heuristic estimate.
func ShouldCompact(ctxTokens, window, reserve int) bool {
	return ctxTokens > window-reserve
}

// EstimateContextTokens sums per-message token estimates for model,
// the heuristic fallback used when no provider usage snapshot is
// available (spec §4.7).
func EstimateContextTokens(model string, messages []agentmodel.Message) int {
	total := 0
	for _, m := range messages {
		total += unifiedllm.CountMessageTokens(model, m)
	}
	return total
}

// SelectCutPoint walks messages from newest to oldest, summing
// estimated tokens until the running total reaches keepRecentTokens.
// From that index it scans forward up to 5 messages for the first
// User or Assistant boundary — a ToolResult is never a valid cut
// point, since cutting there would orphan its tool call. If no
// boundary is found in that window, the original index is used. A
// resulting cut point of 0 is an error: there is nothing to compact.
func SelectCutPoint(model string, messages []agentmodel.Message, keepRecentTokens int) (int, error) {
	if keepRecentTokens <= 0 {
		keepRecentTokens = DefaultKeepRecentTokens
	}
	n := len(messages)
	if n == 0 {
		return 0, ErrCannotCompact
	}

	total := 0
	idx := 0
	for i := n - 1; i >= 0; i-- {
		total += unifiedllm.CountMessageTokens(model, messages[i])
		idx = i
		if total >= keepRecentTokens {
			break
		}
	}

	cut := idx
	for i := idx; i < idx+5 && i < n; i++ {
		if messages[i].Kind != agentmodel.MessageToolResult {
			cut = i
			break
		}
	}

	if cut == 0 {
		return 0, ErrCannotCompact
	}
	return cut, nil
}

// BuildCompactionPrompt constructs the single-message summarisation
// request body: a structured checkpoint covering Goal, Progress,
// Current State, Key Decisions, Next Steps, and Files Modified. When
// existingSummary is non-empty it is folded in so the new summary
// subsumes it.
func BuildCompactionPrompt(existingSummary string) string {
	prompt := `Summarize the conversation so far as a structured checkpoint for continuing the work later. Use exactly these sections:

Goal: what the user is trying to accomplish.
Progress: what has been done so far.
Current State: the state of the code/environment right now.
Key Decisions: notable choices made and why.
Next Steps: what remains to be done.
Files Modified: files created, edited, or deleted.`
	if existingSummary != "" {
		prompt += "\n\nIncorporate this prior summary, which covers everything before the conversation below:\n\n" + existingSummary
	}
	return prompt
}

// Summarize runs the compaction prompt through the same provider
// pathway the main loop uses and returns the resulting assistant
// text as the new summary.
func Summarize(ctx context.Context, client *unifiedllm.Client, model agentmodel.LLMModel, existingSummary string) (string, error) {
	req := unifiedllm.Request{
		Model:   model,
		Context: []agentmodel.Message{agentmodel.NewUserMessage(uuid.NewString(), BuildCompactionPrompt(existingSummary), time.Now().UTC())},
	}
	msg, err := client.Complete(ctx, req)
	if err != nil {
		return "", err
	}
	return msg.TextContent(), nil
}

// Compact runs the full spec §4.7 pipeline for the store's current
// branch: select a cut point, summarise everything before it, commit
// a Compaction entry, and return the rebuilt in-memory context.
// logger is injected per SPEC_FULL.md §4.10 (nil is valid, falls back
// to slog.Default()); compaction start/commit logs at Info, a failed
// cut-point selection logs at Error.
func (s *Store) Compact(ctx context.Context, client *unifiedllm.Client, model agentmodel.LLMModel, keepRecentTokens int, logger *slog.Logger) ([]agentmodel.Message, error) {
	if logger == nil {
		logger = slog.Default()
	}
	messages, entryIDs := s.MessagesWithEntryIDs()

	cut, err := SelectCutPoint(model.ID, messages, keepRecentTokens)
	if err != nil {
		logger.Error("session compaction: no valid cut point", "session_id", s.SessionID(), "error", err)
		return nil, err
	}

	var existingSummary string
	for i := cut - 1; i >= 0; i-- {
		if messages[i].Kind == agentmodel.MessageUser && isCompactionSynthetic(messages[i]) {
			existingSummary = messages[i].TextContent()
			break
		}
	}

	tokensBefore := EstimateContextTokens(model.ID, messages)
	logger.Info("session compaction starting", "session_id", s.SessionID(), "cut", cut, "tokens_before", tokensBefore)

	summary, err := Summarize(ctx, client, model, existingSummary)
	if err != nil {
		logger.Error("session compaction: summarize failed", "session_id", s.SessionID(), "error", err)
		return nil, err
	}

	firstKeptEntryID := entryIDs[cut]
	if _, err := s.Append(CompactionEntry(summary, firstKeptEntryID, tokensBefore)); err != nil {
		return nil, err
	}
	logger.Info("session compaction committed", "session_id", s.SessionID(), "first_kept_entry_id", firstKeptEntryID)

	rebuilt, _, _, _ := s.BuildContext()
	return rebuilt, nil
}

func isCompactionSynthetic(m agentmodel.Message) bool {
	text := m.TextContent()
	return len(text) >= len("Previous conversation summary:\n") && text[:len("Previous conversation summary:\n")] == "Previous conversation summary:\n"
}
