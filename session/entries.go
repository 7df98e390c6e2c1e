// Package session implements the branched, append-only session store:
// a single newline-delimited-JSON file per session, a parent-id tree
// over its entries, a movable leaf pointer, and context
// reconstruction / compaction over that tree.
package session

import (
	"encoding/json"
	"time"

	"github.com/coderunner/agentcore/agentmodel"
)

// SchemaVersion is the minimum Header version this package writes
// and accepts.
const SchemaVersion = 3

// EntryType discriminates a SessionEntry's payload. Unknown values
// read from a file are preserved in memory (via Raw) and skipped
// during context reconstruction, but never rejected.
type EntryType string

const (
	EntryHeader              EntryType = "header"
	EntryMessage             EntryType = "message"
	EntryThinkingLevelChange EntryType = "thinkingLevelChange"
	EntryModelChange         EntryType = "modelChange"
	EntryCompaction          EntryType = "compaction"
	EntryBranchSummary       EntryType = "branchSummary"
	EntryLabel               EntryType = "label"
	EntrySessionInfo         EntryType = "sessionInfo"
	EntryCustom              EntryType = "custom"
)

// Header is always the first line of a session file.
type Header struct {
	SchemaVersion int       `json:"schemaVersion"`
	SessionID     string    `json:"sessionId"`
	CreatedAt     time.Time `json:"createdAt"`
	Cwd           string    `json:"cwd,omitempty"`
}

// ThinkingLevelChangeData records a change in the running thinking
// level for the branch.
type ThinkingLevelChangeData struct {
	Level agentmodel.ThinkingLevel `json:"level"`
}

// ModelChangeData records a change in the running (provider, model)
// pair for the branch.
type ModelChangeData struct {
	Provider string `json:"provider"`
	ModelID  string `json:"modelId"`
}

// CompactionData is the checkpoint committed by the compactor (§4.7).
type CompactionData struct {
	Summary          string `json:"summary"`
	FirstKeptEntryID string `json:"firstKeptEntryId"`
	TokensBefore     int    `json:"tokensBefore"`
}

// SessionInfoData is a freeform metadata bag (title, tags, etc.); it
// is persisted and listable but never feeds context reconstruction.
type SessionInfoData struct {
	Fields map[string]interface{} `json:"fields,omitempty"`
}

// SessionEntry is one line of a session file. EntryType selects which
// of the typed payload fields is populated; at most one is non-nil
// for a known EntryType. Raw holds the verbatim line for entry types
// this package does not recognise, so they round-trip unchanged.
type SessionEntry struct {
	ID        string    `json:"id"`
	ParentID  string    `json:"parentId,omitempty"`
	EntryType EntryType `json:"entryType"`
	Timestamp time.Time `json:"timestamp"`

	Header              *Header                  `json:"header,omitempty"`
	Message             *agentmodel.Message      `json:"message,omitempty"`
	ThinkingLevelChange *ThinkingLevelChangeData `json:"thinkingLevelChange,omitempty"`
	ModelChange         *ModelChangeData         `json:"modelChange,omitempty"`
	Compaction          *CompactionData          `json:"compaction,omitempty"`
	BranchSummary       *string                  `json:"branchSummary,omitempty"`
	Label               *string                  `json:"label,omitempty"`
	SessionInfo         *SessionInfoData         `json:"sessionInfo,omitempty"`
	Custom              json.RawMessage          `json:"custom,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// MessageEntry builds a Message SessionEntry. ID, ParentID, and
// Timestamp are filled in by Store.Append.
func MessageEntry(m agentmodel.Message) SessionEntry {
	return SessionEntry{EntryType: EntryMessage, Message: &m}
}

// ThinkingLevelChangeEntry builds a ThinkingLevelChange SessionEntry.
func ThinkingLevelChangeEntry(level agentmodel.ThinkingLevel) SessionEntry {
	return SessionEntry{EntryType: EntryThinkingLevelChange, ThinkingLevelChange: &ThinkingLevelChangeData{Level: level}}
}

// ModelChangeEntry builds a ModelChange SessionEntry.
func ModelChangeEntry(provider, modelID string) SessionEntry {
	return SessionEntry{EntryType: EntryModelChange, ModelChange: &ModelChangeData{Provider: provider, ModelID: modelID}}
}

// CompactionEntry builds a Compaction SessionEntry.
func CompactionEntry(summary, firstKeptEntryID string, tokensBefore int) SessionEntry {
	return SessionEntry{EntryType: EntryCompaction, Compaction: &CompactionData{
		Summary: summary, FirstKeptEntryID: firstKeptEntryID, TokensBefore: tokensBefore,
	}}
}

// BranchSummaryEntry builds a BranchSummary SessionEntry.
func BranchSummaryEntry(summary string) SessionEntry {
	return SessionEntry{EntryType: EntryBranchSummary, BranchSummary: &summary}
}

// LabelEntry builds a Label SessionEntry.
func LabelEntry(label string) SessionEntry {
	return SessionEntry{EntryType: EntryLabel, Label: &label}
}

// SessionInfoEntry builds a SessionInfo SessionEntry.
func SessionInfoEntry(fields map[string]interface{}) SessionEntry {
	return SessionEntry{EntryType: EntrySessionInfo, SessionInfo: &SessionInfoData{Fields: fields}}
}

// CustomEntry builds a Custom SessionEntry from an already-encoded
// JSON payload.
func CustomEntry(data json.RawMessage) SessionEntry {
	return SessionEntry{EntryType: EntryCustom, Custom: data}
}
