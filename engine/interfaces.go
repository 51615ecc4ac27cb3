package engine

import (
	"context"

	"github.com/vibelang-org/vibe/registry"
	"github.com/vibelang-org/vibe/values"
)

// ProviderClient is the engine's sole dependency on an actual AI backend.
// The engine never calls this directly — it suspends into StatusAwaitingAI
// and leaves invoking a ProviderClient (if one is wired) to the embedder via
// ResumeWithAIResponse. A reference implementation lives in package
// providers.
type ProviderClient interface {
	// Complete runs one do/vibe-style request. contextText is the
	// already-rendered context the engine assembled from the call stack.
	Complete(ctx context.Context, model, prompt, contextText string) (string, error)
}

// ToolExecutor invokes one tool by name on behalf of a `vibe` call. A
// reference implementation, which runs tool bodies in process and also
// serves the same tools over MCP, lives in package tools.
type ToolExecutor interface {
	Execute(ctx context.Context, tool *registry.ToolDescriptor, args map[string]*values.Value) (*values.Value, error)
}

// HostEvaluator runs an inline host-language block (`host { ... }`) and
// returns its result. A reference implementation using an embedded Go
// interpreter lives in package hostlang.
type HostEvaluator interface {
	Eval(ctx context.Context, params []string, args []*values.Value, body string) (*values.Value, error)
}

// AuditSink records completed AI interactions for offline inspection,
// independent of the in-memory AIHistory slice. A reference SQL-backed
// implementation lives in package audit.
type AuditSink interface {
	RecordInteraction(ctx context.Context, interaction AIInteraction) error
}
