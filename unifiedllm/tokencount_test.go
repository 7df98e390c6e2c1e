package unifiedllm

import "testing"

func TestHeuristicTokenCount(t *testing.T) {
	cases := []struct {
		text string
		want int
	}{
		{"", 0},
		{"hi", 1},
		{"abcdefgh", 2},
		{"abcdefghijklmnop", 4},
	}
	for _, c := range cases {
		got := heuristicTokenCount(c.text)
		if got != c.want {
			t.Errorf("heuristicTokenCount(%q) = %d, want %d", c.text, got, c.want)
		}
	}
}

func TestCountTokensNeverNegative(t *testing.T) {
	if n := CountTokens("unknown-model-xyz", "hello world"); n < 0 {
		t.Errorf("CountTokens returned negative count %d", n)
	}
}
