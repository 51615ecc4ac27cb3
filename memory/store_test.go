package memory_test

import (
	"context"
	"os"
	"testing"

	"github.com/vibelang-org/vibe/ast"
	"github.com/vibelang-org/vibe/engine"
	"github.com/vibelang-org/vibe/memory"
)

type fakeEmbedder struct{ dims int }

func (f fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	v := make([]float32, f.dims)
	for i := range v {
		v[i] = float32(len(text) + i)
	}
	return v, nil
}

func (f fakeEmbedder) Dimensions() int { return f.dims }

func testDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("VIBE_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("VIBE_TEST_POSTGRES_DSN not set — skipping PostgreSQL integration test")
	}
	return dsn
}

func TestVectorStoreRecordAndRecall(t *testing.T) {
	dsn := testDSN(t)
	ctx := context.Background()

	store, err := memory.Open(ctx, dsn, fakeEmbedder{dims: 4})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(store.Close)

	err = store.RecordInteraction(ctx, engine.AIInteraction{
		Kind:     ast.AIDo,
		Model:    "gpt-4o",
		Prompt:   "what's the weather",
		Response: "sunny",
	})
	if err != nil {
		t.Fatalf("RecordInteraction: %v", err)
	}

	chunks, err := store.Recall(ctx, "weather", 1)
	if err != nil {
		t.Fatalf("Recall: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Response != "sunny" {
		t.Errorf("response = %q, want %q", chunks[0].Response, "sunny")
	}
}
