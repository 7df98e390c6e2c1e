package agentloop

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/coderunner/agentcore/agentmodel"
	"github.com/coderunner/agentcore/unifiedllm"
)

// FollowUpMode selects how the outer loop drains the follow-up queue
// on clean inner-loop exit (spec §4.3).
type FollowUpMode int

const (
	// FollowUpAll drains the entire pending queue in one pass.
	FollowUpAll FollowUpMode = iota
	// FollowUpOneAtATime pops a single message per outer iteration.
	FollowUpOneAtATime
)

// FollowUpFunc returns the follow-up messages to inject for this
// outer-loop iteration, already respecting mode (All drains the
// queue; OneAtATime pops one). An empty result ends the loop.
type FollowUpFunc func(mode FollowUpMode) []agentmodel.Message

// SteeringFunc drains any steering messages queued by the host since
// the last poll. Called between individual tool calls during
// execution (spec §4.3); a non-empty result short-circuits the
// remaining calls in the current turn.
type SteeringFunc func() []agentmodel.Message

// TransformContextFunc optionally rewrites the filtered, LLM-visible
// message list before each stream call (e.g. to inject a cache
// breakpoint or trim stale tool output). Returning the input
// unchanged is always a valid implementation.
type TransformContextFunc func([]agentmodel.Message) []agentmodel.Message

// defaultTurnLimit is spec §4.3's default global turn bound.
const defaultTurnLimit = 50

// defaultLoopDetectionWindow is the count of most recent tool calls
// inspected for a repeating pattern; not named by the spec, carried
// over from the teacher's loop-detection feature as a non-fatal
// safety signal (see DESIGN.md).
const defaultLoopDetectionWindow = 6

// Loop is the agentic control loop of spec §4.3: it streams one
// assistant response at a time from Client, executes any tool calls
// it carries through Profile's tool registry, and iterates under the
// turn bound, steering, and follow-up rules until the model stops
// requesting tools and the follow-up queue is empty.
type Loop struct {
	Client  *unifiedllm.Client
	Profile ProviderProfile
	Env     ExecutionEnvironment
	Emitter *EventEmitter

	// Logger receives structured turn/tool/retry logging per
	// SPEC_FULL.md §4.10. Injected, never a package global, matching
	// Client/GetDefaultClient's own anti-singleton stance. Defaults to
	// slog.Default() if left nil.
	Logger *slog.Logger

	ProjectDocs string

	Classifier Classifier
	Permission PermissionFunc

	FollowUp     FollowUpFunc
	FollowUpMode FollowUpMode
	Steering     SteeringFunc

	TransformContext TransformContextFunc

	RetryPolicy unifiedllm.RetryPolicy

	TurnLimit           int
	LoopDetectionWindow int

	Thinking  agentmodel.ThinkingLevel
	MaxTokens int

	// IDGen generates message and call IDs; defaults to uuid.NewString.
	IDGen func() string
}

// NewLoop builds a Loop with spec-default limits and retry policy.
// The caller still must set Client, Profile, and Env.
func NewLoop(profile ProviderProfile, env ExecutionEnvironment, emitter *EventEmitter) *Loop {
	return &Loop{
		Profile:             profile,
		Env:                 env,
		Emitter:             emitter,
		RetryPolicy:         unifiedllm.DefaultRetryPolicy(),
		TurnLimit:           defaultTurnLimit,
		LoopDetectionWindow: defaultLoopDetectionWindow,
		FollowUpMode:        FollowUpAll,
	}
}

func (l *Loop) newID() string {
	if l.IDGen != nil {
		return l.IDGen()
	}
	return uuid.NewString()
}

func (l *Loop) emit(kind EventKind, data map[string]interface{}) {
	if l.Emitter != nil {
		l.Emitter.Emit(kind, data)
	}
}

func (l *Loop) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}

// apiIdentifier is an optional capability a ProviderProfile may
// implement to name the registered provider-registry key to use for
// an uncataloged model (self-hosted or gateway deployments). Profiles
// that don't implement it fall back to their own ID, on the
// assumption that a self-hosted deployment registers its adapter
// under the same name as the profile.
type apiIdentifier interface {
	APIID() string
}

// resolveModel looks up the profile's model id in the provider
// catalog, falling back to a bare LLMModel for self-hosted or
// otherwise uncataloged models.
func (l *Loop) resolveModel() agentmodel.LLMModel {
	if m, ok := unifiedllm.ModelByID(l.Profile.ModelID()); ok {
		return m
	}
	api := l.Profile.ID()
	if a, ok := l.Profile.(apiIdentifier); ok {
		api = a.APIID()
	}
	return agentmodel.LLMModel{ID: l.Profile.ModelID(), Provider: l.Profile.ID(), API: api}
}

// Run executes the agent loop to completion (or until cancelled) over
// the given message history, returning the full updated history. The
// returned slice is always the last consistent state, even on
// cancellation (spec's "message list left in its last consistent
// state" guarantee).
func (l *Loop) Run(ctx context.Context, sessionID string, history []agentmodel.AgentMessage) []agentmodel.AgentMessage {
	messages := append([]agentmodel.AgentMessage(nil), history...)
	turnCounter := 0

	l.emit(EventSessionStart, map[string]interface{}{"session_id": sessionID, "history": len(history)})

	for {
		for {
			if ctx.Err() != nil {
				l.emit(EventSessionEnd, map[string]interface{}{
					"session_id": sessionID,
					"cancelled":  true,
					"messages":   len(messages),
				})
				return messages
			}

			turnCounter++
			l.logger().Debug("agent loop turn", "session_id", sessionID, "turn", turnCounter, "limit", l.turnLimit())
			if turnCounter > l.turnLimit() {
				asst := agentmodel.Assistant{
					StopReason: agentmodel.StopError,
					Error:      fmt.Sprintf("exceeded %d turns", l.turnLimit()),
				}
				messages = append(messages, agentmodel.FromMessage(
					agentmodel.NewAssistantMessage(l.newID(), asst, time.Now())))
				l.logger().Error("agent loop exceeded turn bound", "session_id", sessionID, "limit", l.turnLimit())
				l.emit(EventTurnLimit, map[string]interface{}{"session_id": sessionID, "limit": l.turnLimit()})
				return messages
			}

			filtered := agentmodel.FilterMessages(messages)
			if l.TransformContext != nil {
				filtered = l.TransformContext(filtered)
			}

			assistantMsg := l.streamOnce(ctx, filtered)
			l.ensureToolCallIDs(&assistantMsg)
			messages = append(messages, agentmodel.FromMessage(assistantMsg))

			if assistantMsg.Assistant != nil && assistantMsg.Assistant.StopReason == agentmodel.StopError {
				l.emit(EventError, map[string]interface{}{"session_id": sessionID, "error": assistantMsg.Assistant.Error})
				return messages
			}

			calls := assistantMsg.ToolCalls()
			if len(calls) == 0 {
				break
			}

			if l.LoopDetectionWindow > 0 && DetectLoop(agentmodel.FilterMessages(messages), l.LoopDetectionWindow) {
				l.emit(EventLoopDetection, map[string]interface{}{"session_id": sessionID})
			}

			messages = l.executeTurn(ctx, sessionID, messages, calls)
		}

		if l.FollowUp == nil {
			return messages
		}
		followUps := l.FollowUp(l.FollowUpMode)
		if len(followUps) == 0 {
			return messages
		}
		for _, m := range followUps {
			messages = append(messages, agentmodel.FromMessage(m))
		}
		l.emit(EventUserInput, map[string]interface{}{"session_id": sessionID, "count": len(followUps)})
	}
}

func (l *Loop) turnLimit() int {
	if l.TurnLimit > 0 {
		return l.TurnLimit
	}
	return defaultTurnLimit
}

// executeTurn runs the sequential tool-call execution for one
// assistant turn, polling for steering between calls and
// short-circuiting the remainder if any arrives (spec §4.3/§4.4).
func (l *Loop) executeTurn(ctx context.Context, sessionID string, messages []agentmodel.AgentMessage, calls []agentmodel.ToolCall) []agentmodel.AgentMessage {
	for i, call := range calls {
		if ctx.Err() != nil {
			return messages
		}

		if l.Steering != nil {
			if steering := l.Steering(); len(steering) > 0 {
				for _, skipped := range calls[i:] {
					messages = append(messages, agentmodel.FromMessage(
						toolResultText(skipped.ID, skipped.Name, "Tool call skipped due to steering message", true)))
				}
				for _, sm := range steering {
					messages = append(messages, agentmodel.FromMessage(sm))
				}
				l.emit(EventSteeringInjected, map[string]interface{}{"session_id": sessionID, "count": len(steering)})
				return messages
			}
		}

		result := l.executeToolCall(ctx, call)
		messages = append(messages, agentmodel.FromMessage(result))
	}
	return messages
}

// executeToolCall runs the resolve → validate → permission → execute
// sequence of spec §4.4 for one call.
func (l *Loop) executeToolCall(ctx context.Context, call agentmodel.ToolCall) agentmodel.Message {
	tool := l.Profile.ToolRegistry().Get(call.Name)
	if tool == nil {
		return toolResultText(call.ID, call.Name, fmt.Sprintf("Unknown tool: %s", call.Name), true)
	}

	if errs := ValidateArguments(call.Arguments, tool.Definition.Parameters); len(errs) > 0 {
		return toolResultText(call.ID, call.Name, "Error: Argument validation failed: "+strings.Join(errs, "; "), true)
	}

	l.emit(EventToolCallStart, map[string]interface{}{"tool_call_id": call.ID, "tool_name": call.Name})
	l.logger().Debug("tool dispatch", "tool_call_id", call.ID, "tool_name", call.Name)

	decision := resolvePermission(l.Classifier, l.Permission, call.Name, call.ID, call.Arguments)
	if !decision.Allowed() {
		l.emit(EventToolCallEnd, map[string]interface{}{"tool_call_id": call.ID, "tool_name": call.Name, "denied": true})
		reason := decision.Reason
		if reason == "" {
			reason = "denied by host"
		}
		l.logger().Info("tool call denied", "tool_call_id", call.ID, "tool_name", call.Name, "reason", reason)
		return toolResultText(call.ID, call.Name, "Permission denied: "+reason, true)
	}

	rawArgs := call.RawArguments
	if len(rawArgs) == 0 {
		rawArgs, _ = json.Marshal(call.Arguments)
	}

	output, err := tool.Executor(ctx, rawArgs, l.Env, func(partial string) {
		l.emit(EventToolCallOutputDelta, map[string]interface{}{"tool_call_id": call.ID, "partial": partial})
	})

	l.emit(EventToolCallEnd, map[string]interface{}{"tool_call_id": call.ID, "tool_name": call.Name})

	if err != nil {
		l.logger().Info("tool call failed", "tool_call_id", call.ID, "tool_name", call.Name, "error", err)
		l.emit(EventWarning, map[string]interface{}{"tool_call_id": call.ID, "tool_name": call.Name, "error": err.Error()})
		return toolResultText(call.ID, call.Name, err.Error(), true)
	}
	l.logger().Debug("tool call result", "tool_call_id", call.ID, "tool_name", call.Name, "output_len", len(output))
	return toolResultText(call.ID, call.Name, TruncateToolOutput(output, call.Name, nil, nil), false)
}

// streamOnce runs one provider stream to completion under RetryPolicy
// (spec §4.8's exponential backoff), forwarding incremental events to
// the emitter as it goes. On exhausted or non-retryable failure it
// returns a synthetic Error-stop assistant message rather than an
// error value, matching the propagation policy of spec §4.3's
// "captures these as an assistant message ... then exits the inner
// loop".
func (l *Loop) streamOnce(ctx context.Context, filtered []agentmodel.Message) agentmodel.Message {
	model := l.resolveModel()
	req := unifiedllm.Request{
		Model:           model,
		System:          l.Profile.BuildSystemPrompt(l.Env, l.ProjectDocs),
		Context:         filtered,
		Tools:           l.Profile.ToolRegistry().ToUnifiedLLMToolDefs(),
		ProviderOptions: l.Profile.ProviderOptions(),
		Thinking:        l.Thinking,
		MaxTokens:       l.MaxTokens,
	}

	policy := l.RetryPolicy
	policy.OnRetry = func(err error, attempt int, delay time.Duration) {
		l.logger().Debug("retrying provider stream", "provider", model.Provider, "attempt", attempt, "delay", delay, "error", err)
	}

	msg, err := unifiedllm.Retry(ctx, policy, func(ctx context.Context) (*agentmodel.Message, error) {
		events, serr := l.Client.Stream(ctx, req)
		if serr != nil {
			return nil, serr
		}
		return l.consumeStream(events, model.API, model.Provider, model.ID)
	})
	if err != nil {
		l.logger().Warn("provider stream failed", "provider", model.Provider, "model", model.ID, "error", err)
		asst := agentmodel.Assistant{
			API: model.API, Provider: model.Provider, Model: model.ID,
			StopReason: agentmodel.StopError, Error: err.Error(),
		}
		return agentmodel.NewAssistantMessage(l.newID(), asst, time.Now())
	}
	return *msg
}

// consumeStream folds one event channel into a final message,
// forwarding text/thinking deltas to the emitter as they arrive.
func (l *Loop) consumeStream(events <-chan unifiedllm.StreamEvent, api, provider, model string) (*agentmodel.Message, error) {
	acc := unifiedllm.NewStreamAccumulator()
	var streamErr error
	for ev := range events {
		acc.Process(ev)
		switch ev.Type {
		case unifiedllm.EventTextStart:
			l.emit(EventAssistantTextStart, nil)
		case unifiedllm.EventTextDelta:
			l.emit(EventAssistantTextDelta, map[string]interface{}{"text": ev.TextDeltaChunk})
		case unifiedllm.EventTextEnd:
			l.emit(EventAssistantTextEnd, nil)
		case unifiedllm.EventError:
			streamErr = ev.Err
		}
	}
	msg := acc.Result(api, provider, model)
	return &msg, streamErr
}

// ensureToolCallIDs backfills a client-generated v4 UUID for any tool
// call the provider omitted an id for (spec §6's identity rule).
func (l *Loop) ensureToolCallIDs(msg *agentmodel.Message) {
	if msg.Assistant == nil {
		return
	}
	for i, block := range msg.Assistant.Content {
		if block.Kind == agentmodel.BlockToolCall && block.ToolCall != nil && block.ToolCall.ID == "" {
			block.ToolCall.ID = l.newID()
			msg.Assistant.Content[i] = block
		}
	}
}
