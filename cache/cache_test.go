package cache

import (
	"strings"
	"testing"
)

func TestKeyPrefix(t *testing.T) {
	got := Key("claude-sonnet-4-5", "system prompt\nuser prompt")
	if !strings.HasPrefix(got, "slate:v1:") {
		t.Errorf("Key() = %q, want slate:v1: prefix", got)
	}
}

func TestKeyDeterministic(t *testing.T) {
	k1 := Key("gemini-2.5-pro", "count this text")
	k2 := Key("gemini-2.5-pro", "count this text")
	if k1 != k2 {
		t.Errorf("identical inputs produced different keys: %q vs %q", k1, k2)
	}
}

func TestKeyDifferentInputs(t *testing.T) {
	tests := []struct {
		name   string
		modelA string
		textA  string
		modelB string
		textB  string
	}{
		{"different model", "claude-sonnet-4-5", "hello", "claude-opus-4-5", "hello"},
		{"different text", "claude-sonnet-4-5", "hello", "claude-sonnet-4-5", "world"},
		{"model/text boundary", "ab", "c", "a", "bc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kA := Key(tt.modelA, tt.textA)
			kB := Key(tt.modelB, tt.textB)
			if kA == kB {
				t.Errorf("distinct inputs produced the same key %q", kA)
			}
		})
	}
}

func TestKeyLengthIndependentOfText(t *testing.T) {
	short := Key("claude-sonnet-4-5", "hi")
	long := Key("claude-sonnet-4-5", strings.Repeat("x", 1<<16))
	if len(short) != len(long) {
		t.Errorf("key length varies with text size: %d vs %d", len(short), len(long))
	}
}
