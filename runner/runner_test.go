package runner

import (
	"context"
	"testing"

	"github.com/vibelang-org/vibe/ast"
	enginectx "github.com/vibelang-org/vibe/context"
	"github.com/vibelang-org/vibe/engine"
	"github.com/vibelang-org/vibe/values"
)

func entriesVariable() enginectx.Entry {
	return enginectx.VariableEntry{Name: "x", Snapshot: values.NewNumber(3), Type: "number", Source: "none"}
}

type fakeProvider struct{ calls int }

func (f *fakeProvider) Complete(ctx context.Context, model, prompt, contextText string) (string, error) {
	f.calls++
	return "reply to: " + prompt, nil
}

type fakeAudit struct{ recorded []engine.AIInteraction }

func (f *fakeAudit) RecordInteraction(ctx context.Context, interaction engine.AIInteraction) error {
	f.recorded = append(f.recorded, interaction)
	return nil
}

func buildGreetingProgram() *ast.Program {
	return &ast.Program{Statements: []ast.Stmt{
		&ast.ModelStmt{Name: "m", Fields: []ast.ModelField{
			{Name: "name", Value: &ast.StringLit{Value: "gpt-4o-mini"}},
			{Name: "provider", Value: &ast.StringLit{Value: "openai"}},
		}},
		&ast.LetStmt{
			Name: "out",
			Type: &ast.TypeAnnotation{Name: "text"},
			Init: &ast.AIExpr{
				Kind:    ast.AIDo,
				Prompt:  &ast.StringLit{Value: "hi"},
				Model:   "m",
				Context: ast.ContextSpec{Kind: ast.ContextSpecDefault},
			},
		},
		&ast.ExprStmt{X: &ast.Ident{Name: "out"}},
	}}
}

func TestDriverAdvanceResolvesAwaitingAI(t *testing.T) {
	s := engine.InitialState(buildGreetingProgram(), engine.Options{})
	provider := &fakeProvider{}
	audit := &fakeAudit{}
	d := New(s, Collaborators{Providers: provider, Audit: audit})

	final, err := d.Advance(context.Background())
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if final.Status != engine.StatusCompleted {
		t.Fatalf("status = %s, want completed", final.Status)
	}
	if provider.calls != 1 {
		t.Fatalf("expected 1 provider call, got %d", provider.calls)
	}
	if len(audit.recorded) != 1 {
		t.Fatalf("expected 1 audited interaction, got %d", len(audit.recorded))
	}
	text, ok := final.LastResult.AsText()
	if !ok || text != "reply to: hi" {
		t.Fatalf("LastResult = %v (%v), want %q", text, ok, "reply to: hi")
	}
}

func TestDriverAdvanceStopsWithoutProvider(t *testing.T) {
	s := engine.InitialState(buildGreetingProgram(), engine.Options{})
	d := New(s, Collaborators{})

	final, err := d.Advance(context.Background())
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if final.Status != engine.StatusAwaitingAI {
		t.Fatalf("status = %s, want awaiting_ai", final.Status)
	}
}

func TestRenderEntryFormatsVariableEntry(t *testing.T) {
	got := renderEntry(entriesVariable())
	want := "x = 3"
	if got != want {
		t.Fatalf("renderEntry = %q, want %q", got, want)
	}
}
