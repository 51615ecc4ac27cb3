package providers

import (
	"context"
	"testing"

	"github.com/vibelang-org/vibe/values"
)

func TestRouterUnregisteredModel(t *testing.T) {
	r := NewRouter()
	_, err := r.Complete(context.Background(), "gpt-4o", "hi", "")
	if err == nil {
		t.Fatal("expected error for unregistered model")
	}
}

func TestRouterRegisterOverwrites(t *testing.T) {
	r := NewRouter()
	r.Register("gpt-4o", values.ModelHandle{Name: "gpt-4o", Provider: "openai", APIKey: "k1"})
	r.Register("gpt-4o", values.ModelHandle{Name: "gpt-4o", Provider: "openai", APIKey: "k2"})
	if got := r.models["gpt-4o"].APIKey; got != "k2" {
		t.Fatalf("expected last registration to win, got %q", got)
	}
}

func TestReasoningEffort(t *testing.T) {
	cases := map[string]string{"low": "low", "medium": "medium", "high": "high", "": "", "extreme": ""}
	for in, want := range cases {
		if got := reasoningEffort(in); got != want {
			t.Errorf("reasoningEffort(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestThinkingBudget(t *testing.T) {
	if thinkingBudget("low") >= thinkingBudget("medium") {
		t.Fatal("expected low budget < medium budget")
	}
	if thinkingBudget("medium") >= thinkingBudget("high") {
		t.Fatal("expected medium budget < high budget")
	}
	if thinkingBudget("") != 0 {
		t.Fatal("expected empty level to disable thinking")
	}
}

func TestNewAnyLLMBackendUnsupportedProvider(t *testing.T) {
	if _, err := newAnyLLMBackend("carrier-pigeon"); err == nil {
		t.Fatal("expected error for unsupported provider")
	}
	if _, err := newAnyLLMBackend(""); err == nil {
		t.Fatal("expected error for empty provider")
	}
}
