package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/coderunner/agentcore/agentmodel"
)

func mustNewStore(t *testing.T, dir string) *Store {
	t.Helper()
	s, err := New(filepath.Join(dir, "session.ndjson"), "sess-1", "/work")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestStoreAppendSetsParentAndLeaf(t *testing.T) {
	s := mustNewStore(t, t.TempDir())

	e1, err := s.AppendMessage(agentmodel.NewUserMessage("u1", "hello", time.Now()))
	if err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}
	if e1.ParentID != "" {
		t.Fatalf("first entry should have no parent, got %q", e1.ParentID)
	}
	if s.Leaf() != e1.ID {
		t.Fatalf("leaf = %q, want %q", s.Leaf(), e1.ID)
	}

	e2, err := s.AppendMessage(agentmodel.NewUserMessage("u2", "again", time.Now()))
	if err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}
	if e2.ParentID != e1.ID {
		t.Fatalf("second entry's parent = %q, want %q", e2.ParentID, e1.ID)
	}
	if s.Leaf() != e2.ID {
		t.Fatalf("leaf = %q, want %q", s.Leaf(), e2.ID)
	}
}

func TestStoreBranchDoesNotWrite(t *testing.T) {
	s := mustNewStore(t, t.TempDir())

	m1, _ := s.AppendMessage(agentmodel.NewUserMessage("", "m1", time.Now()))
	_, _ = s.AppendMessage(agentmodel.NewUserMessage("", "m2", time.Now()))

	if err := s.Branch(m1.ID); err != nil {
		t.Fatalf("Branch: %v", err)
	}
	if s.Leaf() != m1.ID {
		t.Fatalf("leaf after branch = %q, want %q", s.Leaf(), m1.ID)
	}

	m2prime, _ := s.AppendMessage(agentmodel.NewUserMessage("", "m2-prime", time.Now()))
	if m2prime.ParentID != m1.ID {
		t.Fatalf("branched append's parent = %q, want %q", m2prime.ParentID, m1.ID)
	}

	// S6: reconstructed context should contain m1 and m2-prime, not m2.
	messages, _, _, _ := s.BuildContext()
	if len(messages) != 2 {
		t.Fatalf("len(messages) = %d, want 2", len(messages))
	}
	if messages[0].TextContent() != "m1" || messages[1].TextContent() != "m2-prime" {
		t.Fatalf("unexpected reconstructed context: %+v", messages)
	}
}

func TestStoreBranchUnknownTargetFails(t *testing.T) {
	s := mustNewStore(t, t.TempDir())
	if err := s.Branch("does-not-exist"); err == nil {
		t.Fatal("expected error branching to an unknown entry id")
	}
}

func TestBuildContextFoldsThinkingAndModelChanges(t *testing.T) {
	s := mustNewStore(t, t.TempDir())

	_, _ = s.AppendMessage(agentmodel.NewUserMessage("", "hi", time.Now()))
	_, _ = s.Append(ThinkingLevelChangeEntry(agentmodel.ThinkingHigh))
	_, _ = s.Append(ModelChangeEntry("anthropic", "claude-opus-4-6"))

	messages, thinking, provider, modelID := s.BuildContext()
	if len(messages) != 1 {
		t.Fatalf("len(messages) = %d, want 1", len(messages))
	}
	if thinking != agentmodel.ThinkingHigh {
		t.Fatalf("thinking = %v, want High", thinking)
	}
	if provider != "anthropic" || modelID != "claude-opus-4-6" {
		t.Fatalf("provider/model = %q/%q, want anthropic/claude-opus-4-6", provider, modelID)
	}
}

func TestBuildContextCompactionClearsAndSynthesizes(t *testing.T) {
	s := mustNewStore(t, t.TempDir())

	_, _ = s.AppendMessage(agentmodel.NewUserMessage("", "m1", time.Now()))
	_, _ = s.AppendMessage(agentmodel.NewUserMessage("", "m2", time.Now()))
	_, _ = s.Append(CompactionEntry("did some stuff", "entry-id", 1000))
	_, _ = s.AppendMessage(agentmodel.NewUserMessage("", "m3", time.Now()))

	messages, _, _, _ := s.BuildContext()
	if len(messages) != 2 {
		t.Fatalf("len(messages) = %d, want 2", len(messages))
	}
	want := "Previous conversation summary:\ndid some stuff"
	if messages[0].TextContent() != want {
		t.Fatalf("messages[0] = %q, want %q", messages[0].TextContent(), want)
	}
	if messages[1].TextContent() != "m3" {
		t.Fatalf("messages[1] = %q, want m3", messages[1].TextContent())
	}
}

func TestOpenToleratesTrailingPartialLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.ndjson")
	s := mustNewStore(t, dir)
	_ = path
	_, err := s.AppendMessage(agentmodel.NewUserMessage("", "m1", time.Now()))
	if err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	if _, err := f.WriteString(`{"type":"message","id":"trunc`); err != nil {
		t.Fatalf("WriteString: %v", err)
	}
	f.Close()

	s2, err := Open(s.Path())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if len(s2.Entries()) != 1 {
		t.Fatalf("len(Entries()) = %d, want 1", len(s2.Entries()))
	}
	if s2.Leaf() != s.Leaf() {
		t.Fatalf("reopened leaf = %q, want %q", s2.Leaf(), s.Leaf())
	}
}
