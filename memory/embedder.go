package memory

import (
	"context"
	"fmt"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
)

// Embedder turns text into a vector for semantic-similarity search. It is a
// narrow seam so VectorStore doesn't hard-depend on a single embedding
// backend, the same way engine.ProviderClient keeps the engine's awaiting_ai
// suspension independent of which AI backend eventually answers it.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// DefaultEmbeddingModel is used when OpenAIEmbedder isn't given a model.
const DefaultEmbeddingModel = oai.EmbeddingModelTextEmbedding3Small

// OpenAIEmbedder implements Embedder using OpenAI's embeddings endpoint,
// building its client per call like the chat adapters in package providers.
type OpenAIEmbedder struct {
	APIKey string
	URL    string
	Model  string
}

func (e OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.APIKey == "" {
		return nil, fmt.Errorf("memory: embedder has no apiKey")
	}
	model := e.Model
	if model == "" {
		model = DefaultEmbeddingModel
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(e.APIKey)}
	if e.URL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(e.URL))
	}
	client := oai.NewClient(reqOpts...)

	resp, err := client.Embeddings.New(ctx, oai.EmbeddingNewParams{
		Model: model,
		Input: oai.EmbeddingNewParamsInputUnion{OfString: param.NewOpt(text)},
	})
	if err != nil {
		return nil, fmt.Errorf("memory: embed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("memory: embed: empty response")
	}
	out := make([]float32, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		out[i] = float32(v)
	}
	return out, nil
}

func (e OpenAIEmbedder) Dimensions() int {
	switch e.Model {
	case oai.EmbeddingModelTextEmbedding3Large:
		return 3072
	default:
		return 1536
	}
}
