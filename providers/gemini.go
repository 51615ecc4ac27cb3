package providers

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/vibelang-org/vibe/values"
)

// Gemini adapts google.golang.org/genai to the backend seam.
type Gemini struct{}

func (Gemini) complete(ctx context.Context, model values.ModelHandle, prompt, contextText string) (string, error) {
	if model.APIKey == "" {
		return "", fmt.Errorf("gemini: model %q has no apiKey", model.Name)
	}

	cfg := &genai.ClientConfig{APIKey: model.APIKey}
	if model.URL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: model.URL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return "", fmt.Errorf("new client: %w", err)
	}

	var genCfg *genai.GenerateContentConfig
	if contextText != "" {
		genCfg = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(contextText, genai.RoleUser),
		}
	}

	resp, err := client.Models.GenerateContent(ctx, model.Name, genai.Text(prompt), genCfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty content in response")
	}
	return text, nil
}
