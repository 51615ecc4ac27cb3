// Package runner drives a RuntimeState across every suspension it can
// resolve on its own, using whichever of engine.ProviderClient,
// engine.HostEvaluator and engine.AuditSink it was given (the ToolExecutor
// in Collaborators is carried along but never invoked by Advance) — the same
// embedding loop cmd/vibe and server.API both need, written once instead of
// twice.
package runner

import (
	"context"
	"fmt"
	"strings"

	enginectx "github.com/vibelang-org/vibe/context"
	"github.com/vibelang-org/vibe/engine"
	"github.com/vibelang-org/vibe/values"
)

// Collaborators is the set of external services a Driver has wired; any
// field left nil just means the matching suspension is left for the caller
// to resolve with the engine's own resume_with_* functions.
type Collaborators struct {
	Providers engine.ProviderClient
	Tools     engine.ToolExecutor
	Host      engine.HostEvaluator
	Audit     engine.AuditSink
}

// Driver pairs a RuntimeState with the collaborators that can resolve its
// suspensions automatically.
type Driver struct {
	State *engine.RuntimeState
	Collaborators
}

// New wraps an already-constructed RuntimeState.
func New(s *engine.RuntimeState, c Collaborators) *Driver {
	return &Driver{State: s, Collaborators: c}
}

// Advance runs RunUntilPause, then resolves awaiting_ai/awaiting_host/
// awaiting_compress suspensions with the wired collaborators and loops,
// stopping at completed, error, awaiting_user (no sensible automatic
// answer), awaiting_tool (a vibe driver decision, not this loop's), or any
// suspension whose collaborator isn't wired.
func (d *Driver) Advance(ctx context.Context) (*engine.RuntimeState, error) {
	for {
		engine.RunUntilPause(d.State)
		switch d.State.Status {
		case engine.StatusAwaitingAI:
			if d.Providers == nil {
				return d.State, nil
			}
			if err := d.resolveAI(ctx); err != nil {
				return d.State, err
			}
		case engine.StatusAwaitingHost:
			if d.Host == nil {
				return d.State, nil
			}
			if err := d.resolveHost(ctx); err != nil {
				return d.State, err
			}
		case engine.StatusAwaitingCompress:
			if d.Providers == nil {
				return d.State, nil
			}
			if err := d.resolveCompress(ctx); err != nil {
				return d.State, err
			}
		default:
			return d.State, nil
		}
	}
}

func (d *Driver) resolveAI(ctx context.Context) error {
	pending := d.State.PendingAI
	contextText := renderContext(pending.ContextEntries)
	response, err := d.Providers.Complete(ctx, pending.ModelName, pending.Prompt, contextText)
	if err != nil {
		return fmt.Errorf("runner: provider completion: %w", err)
	}
	if _, err := engine.ResumeWithAIResponse(d.State, response, nil); err != nil {
		return err
	}
	if d.Audit != nil {
		interaction := d.State.AIHistory[len(d.State.AIHistory)-1]
		if err := d.Audit.RecordInteraction(ctx, interaction); err != nil {
			return fmt.Errorf("runner: audit sink: %w", err)
		}
	}
	return nil
}

func (d *Driver) resolveHost(ctx context.Context) error {
	pending := d.State.PendingHost
	result, err := d.Host.Eval(ctx, pending.Params, pending.ParamValues, pending.Body)
	if err != nil {
		return fmt.Errorf("runner: host eval: %w", err)
	}
	_, err = engine.ResumeWithHostResult(d.State, result)
	return err
}

// resolveCompress asks the same provider backing awaiting_ai to summarize
// the entries being dropped, rather than requiring a second collaborator
// interface for what is, mechanically, one more completion request.
func (d *Driver) resolveCompress(ctx context.Context) error {
	pending := d.State.PendingCompress
	var sb strings.Builder
	for _, e := range pending.EntriesToSummarize {
		sb.WriteString(renderEntry(e))
		sb.WriteString("\n")
	}
	summary, err := d.Providers.Complete(ctx, pending.Model, pending.Prompt, sb.String())
	if err != nil {
		return fmt.Errorf("runner: compress completion: %w", err)
	}
	_, err = engine.ResumeWithCompressResult(d.State, summary)
	return err
}

// renderContext flattens the engine's context entries into the single
// context string a ProviderClient expects — the engine computes which
// entries are in scope (§4.5); this package only has to print them.
func renderContext(entries []enginectx.RenderedEntry) string {
	var sb strings.Builder
	for _, re := range entries {
		sb.WriteString(renderEntry(re.Entry))
		sb.WriteString("\n")
	}
	return sb.String()
}

func renderEntry(e enginectx.Entry) string {
	switch v := e.(type) {
	case enginectx.VariableEntry:
		return fmt.Sprintf("%s = %s", v.Name, values.ToDisplayString(v.Snapshot))
	case enginectx.PromptEntry:
		if v.Response != nil {
			return fmt.Sprintf("[%s] %s -> %s", v.AIType, v.Prompt, *v.Response)
		}
		return fmt.Sprintf("[%s] %s", v.AIType, v.Prompt)
	case enginectx.ScopeEnterEntry:
		return fmt.Sprintf("-- enter %s %s --", v.LoopKind, v.Label)
	case enginectx.ScopeExitEntry:
		return fmt.Sprintf("-- exit %s %s --", v.LoopKind, v.Label)
	case enginectx.SummaryEntry:
		return v.Text
	case enginectx.ToolCallEntry:
		return fmt.Sprintf("tool %s(%v) -> %s%s", v.Name, v.Args, values.ToDisplayString(v.Result), v.Error)
	default:
		return ""
	}
}
