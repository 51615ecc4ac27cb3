package providers

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/vibelang-org/vibe/values"
)

// Anthropic adapts github.com/anthropics/anthropic-sdk-go to the backend
// seam, following the same per-call client construction as OpenAI: Router
// may hold several Anthropic-backed models under distinct API keys.
type Anthropic struct{}

const defaultAnthropicMaxTokens = 4096

func (Anthropic) complete(ctx context.Context, model values.ModelHandle, prompt, contextText string) (string, error) {
	if model.APIKey == "" {
		return "", fmt.Errorf("anthropic: model %q has no apiKey", model.Name)
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(model.APIKey)}
	if model.URL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(model.URL))
	}
	client := anthropic.NewClient(reqOpts...)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model.Name),
		MaxTokens: defaultAnthropicMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if contextText != "" {
		params.System = []anthropic.TextBlockParam{{Text: contextText}}
	}
	if budget := thinkingBudget(model.ThinkingLevel); budget > 0 {
		params.Thinking = anthropic.ThinkingConfigParamUnion{
			OfEnabled: &anthropic.ThinkingConfigEnabledParam{BudgetTokens: budget},
		}
	}

	resp, err := client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("messages.new: %w", err)
	}

	var out string
	for _, block := range resp.Content {
		if block.Type == "text" {
			out += block.Text
		}
	}
	if out == "" {
		return "", fmt.Errorf("empty content in response")
	}
	return out, nil
}

// thinkingBudget maps the script-level thinkingLevel onto an extended
// thinking token budget; "" or an unrecognized level disables thinking.
func thinkingBudget(level string) int64 {
	switch level {
	case "low":
		return 2000
	case "medium":
		return 8000
	case "high":
		return 24000
	default:
		return 0
	}
}
