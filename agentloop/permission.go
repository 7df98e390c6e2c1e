package agentloop

import "github.com/coderunner/agentcore/agentmodel"

// PermissionOutcome is the result of consulting the host about a
// pending tool call (spec §4.4). NeedsConfirmation exists only at the
// host boundary: by the time a PermissionFunc returns, the host has
// already resolved any interactive prompt, so the loop only ever sees
// Allow or Deny.
type PermissionOutcome int

const (
	PermissionAllow PermissionOutcome = iota
	PermissionDeny
	PermissionNeedsConfirmation
)

// PermissionDecision is what a PermissionFunc returns: the outcome
// plus, for Deny and NeedsConfirmation, the reason shown to the model
// or surfaced to the host's confirmation UI.
type PermissionDecision struct {
	Outcome PermissionOutcome
	Reason  string
}

// Allowed reports whether the decision permits execution to proceed.
// NeedsConfirmation must already have been resolved to Allow or Deny
// by the host before this is called.
func (d PermissionDecision) Allowed() bool { return d.Outcome == PermissionAllow }

// Allow is the zero-friction decision.
func Allow() PermissionDecision { return PermissionDecision{Outcome: PermissionAllow} }

// Deny rejects the call with a reason surfaced back to the model as
// the tool's error result.
func Deny(reason string) PermissionDecision {
	return PermissionDecision{Outcome: PermissionDeny, Reason: reason}
}

// NeedsConfirmation asks the host to confirm before execution. A
// PermissionFunc that blocks on an interactive prompt and then returns
// Allow()/Deny() directly never needs to produce this value itself;
// it exists for hosts that want to report the intermediate state
// (e.g. via an event) before resolving.
func NeedsConfirmation(reason string) PermissionDecision {
	return PermissionDecision{Outcome: PermissionNeedsConfirmation, Reason: reason}
}

// PermissionFunc decides whether a pending tool call may execute. It
// is consulted once per call, after argument validation and before
// invocation (spec §4.4's resolve → validate → permission → execute
// sequence). call_id and the tool name let the host correlate its
// decision with ToolExecutionStart/End events.
type PermissionFunc func(toolName string, callID string, arguments map[string]interface{}) PermissionDecision

// AllowAll is the default PermissionFunc for hosts that perform no
// gating of their own (e.g. test harnesses, trusted batch runs).
func AllowAll(string, string, map[string]interface{}) PermissionDecision {
	return Allow()
}

// SafetyClass is the coarse classification spec §4.4 assigns to every
// tool. Blocked tools never run, regardless of what the host says; for
// the other two classes resolvePermission leaves the decision to the
// host's PermissionFunc, which is not told the class.
type SafetyClass int

const (
	SafetyAllow SafetyClass = iota
	SafetyConfirm
	SafetyBlocked
)

// Classifier maps a tool call to a SafetyClass before PermissionFunc
// is ever consulted; a Blocked verdict short-circuits straight to a
// Deny without invoking the host callback at all.
type Classifier func(toolName string, arguments map[string]interface{}) SafetyClass

// DefaultClassifier implements the host-level examples in spec §4.4:
// destructive filesystem-wide commands, fork bombs, and recursive
// root chmod are always blocked; recursive deletes, force pushes,
// sudo, package installs, network fetches, and writes/edits under
// protected directories need confirmation. Everything else is safe.
func DefaultClassifier(toolName string, arguments map[string]interface{}) SafetyClass {
	if toolName != "shell" {
		if (toolName == "write_file" || toolName == "edit_file") && touchesProtectedPath(arguments) {
			return SafetyConfirm
		}
		return SafetyAllow
	}
	command, _ := arguments["command"].(string)
	switch {
	case containsAny(command, blockedShellPatterns):
		return SafetyBlocked
	case containsAny(command, confirmShellPatterns):
		return SafetyConfirm
	default:
		return SafetyAllow
	}
}

var blockedShellPatterns = []string{
	"mkfs", ":(){ :|:& };:", "fork()", "chmod -R 777 /", "chmod -R 000 /", "shutdown", "poweroff", "reboot",
}

var confirmShellPatterns = []string{
	"rm -rf", "git push --force", "git push -f", "sudo ", "apt-get install", "apt install",
	"pip install", "npm install -g", "curl ", "wget ",
}

func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if len(s) >= len(p) && indexOf(s, p) >= 0 {
			return true
		}
	}
	return false
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

var protectedPathPrefixes = []string{"/etc", "/usr", "/bin", "/sbin", "/boot", "/sys", "/proc"}

func touchesProtectedPath(arguments map[string]interface{}) bool {
	path, _ := arguments["file_path"].(string)
	if path == "" {
		return false
	}
	for _, prefix := range protectedPathPrefixes {
		if len(path) >= len(prefix) && path[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}

// resolvePermission runs the classify-then-ask sequence for one call:
// a Blocked classification denies without consulting fn; everything
// else defers to fn (falling back to Allow when fn is nil).
func resolvePermission(classify Classifier, fn PermissionFunc, toolName, callID string, arguments map[string]interface{}) PermissionDecision {
	if classify != nil {
		switch classify(toolName, arguments) {
		case SafetyBlocked:
			return Deny("blocked: " + toolName + " is not permitted")
		}
	}
	if fn == nil {
		return Allow()
	}
	return fn(toolName, callID, arguments)
}

// toolResultText builds the single-text-block ToolResult message for
// one completed or failed tool call.
func toolResultText(callID, toolName, text string, isError bool) agentmodel.Message {
	return agentmodel.Message{
		Kind: agentmodel.MessageToolResult,
		ToolResult: &agentmodel.ToolResult{
			ToolCallID: callID,
			ToolName:   toolName,
			Content:    []agentmodel.ContentBlock{agentmodel.TextBlock(text)},
			IsError:    isError,
		},
	}
}
