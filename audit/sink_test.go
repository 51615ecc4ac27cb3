package audit

import (
	"context"
	"testing"

	"github.com/vibelang-org/vibe/ast"
	"github.com/vibelang-org/vibe/engine"
)

func TestSQLSinkRecordsInteractionSQLite(t *testing.T) {
	sink, err := Open(context.Background(), DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer sink.Close()

	err = sink.RecordInteraction(context.Background(), engine.AIInteraction{
		Kind:     ast.AIDo,
		Model:    "gpt-4o",
		Prompt:   "hello",
		Response: "hi there",
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	var count int
	if err := sink.db.QueryRow("SELECT COUNT(*) FROM ai_interactions").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 row, got %d", count)
	}
}
