package session

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/coderunner/agentcore/agentmodel"
)

// Store is one session's append-only file: a Header line followed by
// SessionEntry lines forming a parent-id tree, plus a movable leaf
// pointer (spec §4.6). All reads and mutations of the in-memory index
// are mutex-guarded; each Append opens, writes one line, and closes
// the file so a line is durable before the call returns.
type Store struct {
	mu sync.Mutex

	path   string
	header Header

	entries []SessionEntry
	byID    map[string]int
	leaf    string
}

// New creates a fresh session file at path and writes its Header.
func New(path, sessionID, cwd string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("session: create directory: %w", err)
	}
	h := Header{SchemaVersion: SchemaVersion, SessionID: sessionID, CreatedAt: time.Now().UTC(), Cwd: cwd}
	line, err := json.Marshal(h)
	if err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("session: create %s: %w", path, err)
	}
	defer f.Close()
	if _, err := f.Write(append(line, '\n')); err != nil {
		return nil, err
	}
	return &Store{path: path, header: h, byID: make(map[string]int)}, nil
}

// Open loads an existing session file, tolerating trailing partial or
// malformed lines by skipping them (spec §4.6's reader contract). The
// leaf is initialised to the most recently appended entry's id.
func Open(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("session: open %s: %w", path, err)
	}
	defer f.Close()

	s := &Store{path: path, byID: make(map[string]int)}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	first := true
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if first {
			first = false
			var h Header
			if err := json.Unmarshal(line, &h); err != nil {
				return nil, fmt.Errorf("session: invalid header: %w", err)
			}
			if h.SchemaVersion < SchemaVersion {
				return nil, fmt.Errorf("session: schema version %d below minimum %d", h.SchemaVersion, SchemaVersion)
			}
			s.header = h
			continue
		}
		var entry SessionEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue // tolerate a malformed/partial trailing line
		}
		entry.Raw = append(json.RawMessage(nil), line...)
		s.byID[entry.ID] = len(s.entries)
		s.entries = append(s.entries, entry)
		s.leaf = entry.ID
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("session: read %s: %w", path, err)
	}
	return s, nil
}

// SessionID returns the session's id, from the file Header.
func (s *Store) SessionID() string { return s.header.SessionID }

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Leaf returns the id of the current leaf entry, or "" for a fresh
// session with no entries yet.
func (s *Store) Leaf() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.leaf
}

// Append sets entry.ParentID to the current leaf, assigns a fresh id
// and timestamp, writes the line, and advances the leaf to the new
// entry. Per spec §4.6 this is the only way the leaf moves forward
// through an append.
func (s *Store) Append(entry SessionEntry) (SessionEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.ID = uuid.NewString()
	entry.ParentID = s.leaf
	entry.Timestamp = time.Now().UTC()

	line, err := json.Marshal(entry)
	if err != nil {
		return SessionEntry{}, err
	}
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return SessionEntry{}, fmt.Errorf("session: open for append: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(append(line, '\n')); err != nil {
		return SessionEntry{}, err
	}

	entry.Raw = line
	s.byID[entry.ID] = len(s.entries)
	s.entries = append(s.entries, entry)
	s.leaf = entry.ID
	return entry, nil
}

// AppendMessage appends a Message entry.
func (s *Store) AppendMessage(m agentmodel.Message) (SessionEntry, error) {
	return s.Append(MessageEntry(m))
}

// Branch reassigns the leaf to an existing entry id without writing
// anything. Subsequent appends chain from the new leaf, producing a
// new branch; the tree itself is never pruned.
func (s *Store) Branch(to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if to != "" {
		if _, ok := s.byID[to]; !ok {
			return fmt.Errorf("session: branch target %q not found", to)
		}
	}
	s.leaf = to
	return nil
}

// pathToRoot walks parent_id from the current leaf to the root and
// returns entries in root-to-leaf order.
func (s *Store) pathToRoot() []SessionEntry {
	var reversed []SessionEntry
	id := s.leaf
	seen := make(map[string]bool)
	for id != "" {
		idx, ok := s.byID[id]
		if !ok || seen[id] {
			break
		}
		seen[id] = true
		e := s.entries[idx]
		reversed = append(reversed, e)
		id = e.ParentID
	}
	path := make([]SessionEntry, len(reversed))
	for i, e := range reversed {
		path[len(reversed)-1-i] = e
	}
	return path
}

// BuildContext reconstructs the LLM-visible message list and the
// running thinking level / model pair for the current branch, per
// spec §4.6's folding rules.
func (s *Store) BuildContext() (messages []agentmodel.Message, thinking agentmodel.ThinkingLevel, provider, modelID string) {
	s.mu.Lock()
	path := s.pathToRoot()
	s.mu.Unlock()

	for _, e := range path {
		switch e.EntryType {
		case EntryMessage:
			if e.Message != nil {
				messages = append(messages, *e.Message)
			}
		case EntryThinkingLevelChange:
			if e.ThinkingLevelChange != nil {
				thinking = e.ThinkingLevelChange.Level
			}
		case EntryModelChange:
			if e.ModelChange != nil {
				provider, modelID = e.ModelChange.Provider, e.ModelChange.ModelID
			}
		case EntryCompaction:
			if e.Compaction != nil {
				messages = []agentmodel.Message{syntheticUserMessage("Previous conversation summary:\n" + e.Compaction.Summary)}
			}
		case EntryBranchSummary:
			if e.BranchSummary != nil {
				messages = append(messages, syntheticUserMessage("Branch summary:\n"+*e.BranchSummary))
			}
			// Header, Label, SessionInfo, Custom, and unknown types: ignored.
		}
	}
	return messages, thinking, provider, modelID
}

// MessagesWithEntryIDs reconstructs the same message list as
// BuildContext but also returns, for each message, the id of the
// entry it came from ("" for a synthetic compaction/branch-summary
// message with no single backing entry). Used by the compactor to
// translate a cut-point index back into first_kept_entry_id.
func (s *Store) MessagesWithEntryIDs() (messages []agentmodel.Message, entryIDs []string) {
	s.mu.Lock()
	path := s.pathToRoot()
	s.mu.Unlock()

	for _, e := range path {
		switch e.EntryType {
		case EntryMessage:
			if e.Message != nil {
				messages = append(messages, *e.Message)
				entryIDs = append(entryIDs, e.ID)
			}
		case EntryCompaction:
			if e.Compaction != nil {
				messages = []agentmodel.Message{syntheticUserMessage("Previous conversation summary:\n" + e.Compaction.Summary)}
				entryIDs = []string{""}
			}
		case EntryBranchSummary:
			if e.BranchSummary != nil {
				messages = append(messages, syntheticUserMessage("Branch summary:\n"+*e.BranchSummary))
				entryIDs = append(entryIDs, "")
			}
		}
	}
	return messages, entryIDs
}

// Entries returns a copy of every entry recorded so far, in append
// order (not the branch-filtered path BuildContext walks).
func (s *Store) Entries() []SessionEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SessionEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// EntryByID returns the entry with the given id, if present.
func (s *Store) EntryByID(id string) (SessionEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.byID[id]
	if !ok {
		return SessionEntry{}, false
	}
	return s.entries[idx], true
}

func syntheticUserMessage(text string) agentmodel.Message {
	return agentmodel.NewUserMessage(uuid.NewString(), text, time.Now().UTC())
}
