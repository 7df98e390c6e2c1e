package unifiedllm

import "testing"

func TestModelByID(t *testing.T) {
	m, ok := ModelByID("claude-opus-4-6")
	if !ok {
		t.Fatal("expected claude-opus-4-6 to be in the catalog")
	}
	if m.Provider != "anthropic" {
		t.Errorf("provider = %q, want anthropic", m.Provider)
	}
	if m.API != "anthropic-messages" {
		t.Errorf("api = %q, want anthropic-messages", m.API)
	}
}

func TestModelByIDUnknown(t *testing.T) {
	_, ok := ModelByID("does-not-exist")
	if ok {
		t.Fatal("expected unknown model id to report false")
	}
}

func TestModelsByProvider(t *testing.T) {
	openai := ModelsByProvider("openai")
	if len(openai) == 0 {
		t.Fatal("expected at least one openai model")
	}
	for _, m := range openai {
		if m.Provider != "openai" {
			t.Errorf("got provider %q in openai filter", m.Provider)
		}
	}
}

func TestModelsByProviderUnknown(t *testing.T) {
	none := ModelsByProvider("does-not-exist")
	if len(none) != 0 {
		t.Errorf("expected no models, got %d", len(none))
	}
}
