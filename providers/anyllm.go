package providers

import (
	"context"
	"fmt"
	"strings"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/mozilla-ai/any-llm-go/providers/deepseek"
	"github.com/mozilla-ai/any-llm-go/providers/groq"
	"github.com/mozilla-ai/any-llm-go/providers/mistral"
	"github.com/mozilla-ai/any-llm-go/providers/ollama"

	"github.com/vibelang-org/vibe/values"
)

// AnyLLM is the catch-all backend for any provider name Router has no
// dedicated adapter for — it wraps github.com/mozilla-ai/any-llm-go rather
// than growing a bespoke adapter per provider name. It handles ollama,
// deepseek, mistral and groq; any other provider name fails with an
// unsupported-provider error.
type AnyLLM struct{}

func (AnyLLM) complete(ctx context.Context, model values.ModelHandle, prompt, contextText string) (string, error) {
	var opts []anyllmlib.Option
	if model.APIKey != "" {
		opts = append(opts, anyllmlib.WithAPIKey(model.APIKey))
	}
	if model.URL != "" {
		opts = append(opts, anyllmlib.WithBaseURL(model.URL))
	}

	backend, err := newAnyLLMBackend(strings.ToLower(model.Provider), opts...)
	if err != nil {
		return "", err
	}

	var messages []anyllmlib.Message
	if contextText != "" {
		messages = append(messages, anyllmlib.Message{Role: anyllmlib.RoleSystem, Content: contextText})
	}
	messages = append(messages, anyllmlib.Message{Role: anyllmlib.RoleUser, Content: prompt})

	resp, err := backend.Completion(ctx, anyllmlib.CompletionParams{
		Model:    model.Name,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty choices in response")
	}
	return resp.Choices[0].Message.ContentString(), nil
}

func newAnyLLMBackend(providerName string, opts ...anyllmlib.Option) (anyllmlib.Provider, error) {
	switch providerName {
	case "ollama":
		return ollama.New(opts...)
	case "deepseek":
		return deepseek.New(opts...)
	case "mistral":
		return mistral.New(opts...)
	case "groq":
		return groq.New(opts...)
	case "":
		return nil, fmt.Errorf("anyllm: model has no provider set")
	default:
		return nil, fmt.Errorf("anyllm: unsupported provider %q", providerName)
	}
}
