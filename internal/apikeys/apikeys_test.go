package apikeys

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLookupPrefersSelectedRecordForProvider(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "apikeys.json"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Put(Record{Provider: "anthropic", Name: "work", APIKey: "sk-a", Selected: true}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put(Record{Provider: "openai", Name: "personal", APIKey: "sk-o", Selected: true}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	rec, ok := s.Lookup("anthropic")
	if !ok || rec.APIKey != "sk-a" {
		t.Fatalf("Lookup(anthropic) = %+v, %v", rec, ok)
	}
}

func TestLookupFallsBackToAnySelectedAcrossProviders(t *testing.T) {
	dir := t.TempDir()
	s, _ := Open(filepath.Join(dir, "apikeys.json"))
	if err := s.Put(Record{Provider: "openai", Name: "gateway", APIKey: "sk-gw", Selected: true}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	rec, ok := s.Lookup("anthropic")
	if !ok || rec.APIKey != "sk-gw" {
		t.Fatalf("Lookup(anthropic) fallback = %+v, %v", rec, ok)
	}
}

func TestLookupFallsBackToEnvironmentVariable(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "env-key")
	dir := t.TempDir()
	s, _ := Open(filepath.Join(dir, "apikeys.json"))

	rec, ok := s.Lookup("anthropic")
	if !ok || rec.APIKey != "env-key" {
		t.Fatalf("Lookup(anthropic) env fallback = %+v, %v", rec, ok)
	}
}

func TestLookupNoRecordsNoEnvFails(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	dir := t.TempDir()
	s, _ := Open(filepath.Join(dir, "apikeys.json"))
	if _, ok := s.Lookup("anthropic"); ok {
		t.Fatal("expected Lookup to fail with no records and no env var")
	}
}

func TestPutDeselectsOtherRecordsForSameProvider(t *testing.T) {
	dir := t.TempDir()
	s, _ := Open(filepath.Join(dir, "apikeys.json"))
	if err := s.Put(Record{Provider: "anthropic", Name: "a", APIKey: "k1", Selected: true}); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(Record{Provider: "anthropic", Name: "b", APIKey: "k2", Selected: true}); err != nil {
		t.Fatal(err)
	}

	selected := 0
	for _, r := range s.Records() {
		if r.Selected {
			selected++
		}
	}
	if selected != 1 {
		t.Fatalf("selected count = %d, want exactly 1", selected)
	}
}

func TestOpenMissingFileIsEmptyStore(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "does-not-exist.json"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if len(s.Records()) != 0 {
		t.Fatal("expected an empty store")
	}
}

func TestPutPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "apikeys.json")
	s1, _ := Open(path)
	if err := s1.Put(Record{Provider: "anthropic", Name: "a", APIKey: "k1", Selected: true}); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file to exist: %v", err)
	}

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	rec, ok := s2.Lookup("anthropic")
	if !ok || rec.APIKey != "k1" {
		t.Fatalf("reopened lookup = %+v, %v", rec, ok)
	}
}
