package providers

import (
	"context"
	"fmt"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"

	"github.com/vibelang-org/vibe/values"
)

// OpenAI adapts github.com/openai/openai-go to the backend seam. One client
// is built per call rather than held fixed, since Router may dispatch to
// many distinct `model` declarations (and hence API keys/base URLs) using
// the same *OpenAI value.
type OpenAI struct{}

// defaultMaxCompletionTokens bounds a single completion; scripts have no
// way to override it per model, matching the teacher's own fixed default.
const defaultMaxCompletionTokens = 4096

func (OpenAI) complete(ctx context.Context, model values.ModelHandle, prompt, contextText string) (string, error) {
	if model.APIKey == "" {
		return "", fmt.Errorf("openai: model %q has no apiKey", model.Name)
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(model.APIKey)}
	if model.URL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(model.URL))
	}
	client := oai.NewClient(reqOpts...)

	var messages []oai.ChatCompletionMessageParamUnion
	if contextText != "" {
		messages = append(messages, oai.SystemMessage(contextText))
	}
	messages = append(messages, oai.UserMessage(prompt))

	params := oai.ChatCompletionNewParams{
		Model:    shared.ChatModel(model.Name),
		Messages: messages,
	}
	if lvl := reasoningEffort(model.ThinkingLevel); lvl != "" {
		params.ReasoningEffort = shared.ReasoningEffort(lvl)
	}
	params.MaxCompletionTokens = param.NewOpt(defaultMaxCompletionTokens)

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}

// reasoningEffort maps the script-level thinkingLevel field onto OpenAI's
// reasoning_effort values; anything unrecognized is left unset rather than
// rejected, since not every OpenAI model accepts the field.
func reasoningEffort(level string) string {
	switch level {
	case "low", "medium", "high":
		return level
	default:
		return ""
	}
}
