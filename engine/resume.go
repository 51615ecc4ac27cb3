package engine

import (
	"fmt"

	"github.com/vibelang-org/vibe/ast"
	"github.com/vibelang-org/vibe/context"
	"github.com/vibelang-org/vibe/values"
)

// ToolRound is one tool invocation completed during a `vibe` interaction,
// supplied by the embedder alongside the final response.
type ToolRound struct {
	Name   string
	Args   map[string]*values.Value
	Result *values.Value
	Error  string
}

// requireStatus raises if the state isn't suspended the way the caller
// expects, mirroring §6: "each raises if status doesn't match".
func requireStatus(s *RuntimeState, want Status) error {
	if s.Status != want {
		return fmt.Errorf("resume: expected status %s, got %s", want, s.Status)
	}
	return nil
}

// ResumeWithAIResponse fulfills `awaiting_ai`: the completed prompt entry is
// appended to the current frame with any tool rounds embedded inline so
// context preserves "prompt -> tool calls -> response" order (§4.9, §5).
func ResumeWithAIResponse(s *RuntimeState, response string, rounds []ToolRound) (*RuntimeState, error) {
	if err := requireStatus(s, StatusAwaitingAI); err != nil {
		return s, err
	}
	pending := s.PendingAI
	allRounds := append(append([]ToolRound{}, pending.ToolRounds...), rounds...)
	toolEntries := make([]context.ToolCallEntry, len(allRounds))
	toolNames := make([]string, len(allRounds))
	for i, r := range allRounds {
		toolEntries[i] = context.ToolCallEntry{Name: r.Name, Args: r.Args, Result: r.Result, Error: r.Error}
		toolNames[i] = r.Name
	}
	respPtr := response
	frame := s.CurrentFrame()
	frame.Entries = append(frame.Entries, context.PromptEntry{
		AIType:    context.AIKind(pending.Kind),
		Prompt:    pending.Prompt,
		ToolCalls: toolEntries,
		Response:  &respPtr,
	})

	s.LastResult = values.NewAIResult(values.NewText(response), toolNames, response)
	s.LastResultSource = "ai"
	s.AIHistory = append(s.AIHistory, AIInteraction{Kind: pending.Kind, Model: pending.ModelName, Prompt: pending.Prompt, Response: response})
	s.PendingAI = nil
	s.Status = StatusRunning
	return s, nil
}

// ResumeWithUserInput fulfills `awaiting_user` (the `ask` form).
func ResumeWithUserInput(s *RuntimeState, input string) (*RuntimeState, error) {
	if err := requireStatus(s, StatusAwaitingUser); err != nil {
		return s, err
	}
	s.LastResult = values.NewText(input)
	s.LastResultSource = "user"
	s.pendingUserPrompt = ""
	s.Status = StatusRunning
	return s, nil
}

// ResumeWithHostResult fulfills an inline `host { ... }` escape suspension.
func ResumeWithHostResult(s *RuntimeState, result *values.Value) (*RuntimeState, error) {
	if err := requireStatus(s, StatusAwaitingHost); err != nil {
		return s, err
	}
	s.LastResult = result
	s.LastResultSource = "none"
	s.PendingHost = nil
	s.Status = StatusRunning
	return s, nil
}

// ResumeWithImportedHostResult fulfills an imported native function call.
func ResumeWithImportedHostResult(s *RuntimeState, result *values.Value) (*RuntimeState, error) {
	if err := requireStatus(s, StatusAwaitingImportedHost); err != nil {
		return s, err
	}
	s.LastResult = result
	s.LastResultSource = "none"
	s.PendingImportedHostCall = nil
	s.Status = StatusRunning
	return s, nil
}

// RequestTool lets an embedder's own vibe-interaction driver surface a tool
// invocation back through the engine's suspend/resume loop — rather than
// running the tool inline and only reporting it afterward via
// ResumeWithAIResponse's tool_rounds — so context accumulates the tool_call
// entry exactly where the driver decided to make the round, independent of
// when the final response eventually arrives. Valid only while a `vibe`
// interaction (the only kind that can invoke tools) is awaiting_ai.
func RequestTool(s *RuntimeState, name, toolCallID string, args map[string]*values.Value, executor ToolExecutor) (*RuntimeState, error) {
	if err := requireStatus(s, StatusAwaitingAI); err != nil {
		return s, err
	}
	if s.PendingAI == nil || s.PendingAI.Kind != ast.AIVibe {
		return s, fmt.Errorf("resume: tool calls are only valid during a vibe interaction")
	}
	s.PendingTool = &PendingTool{Name: name, ToolCallID: toolCallID, Args: args, Executor: executor}
	s.Status = StatusAwaitingTool
	return s, nil
}

// ResumeWithToolResult fulfills `awaiting_tool`, either with a successful
// value or a tool-execution error string, and returns control to
// awaiting_ai so the driver can request another tool round or finish the
// interaction with ResumeWithAIResponse. A tool error is data the model
// should see, not an engine failure — it becomes the round's Error field.
func ResumeWithToolResult(s *RuntimeState, result *values.Value, toolErr string) (*RuntimeState, error) {
	if err := requireStatus(s, StatusAwaitingTool); err != nil {
		return s, err
	}
	pending := s.PendingTool
	round := ToolRound{Name: pending.Name, Args: pending.Args}
	if toolErr != "" {
		round.Error = toolErr
	} else {
		round.Result = result
	}
	s.PendingAI.ToolRounds = append(s.PendingAI.ToolRounds, round)
	s.PendingTool = nil
	s.Status = StatusAwaitingAI
	return s, nil
}

// ResumeWithCompressResult fulfills `awaiting_compress` (§4.5, round-trip
// property in §8): the frame's entries from entry_index onward become
// exactly [scope_enter, summary, scope_exit], then the pre-loop local names
// are restored.
func ResumeWithCompressResult(s *RuntimeState, summary string) (*RuntimeState, error) {
	if err := requireStatus(s, StatusAwaitingCompress); err != nil {
		return s, err
	}
	pending := s.PendingCompress
	frame := s.CurrentFrame()
	frame.Entries = context.ApplyCompress(frame.Entries, pending.EntryIndex, pending.ScopeKind, pending.Label, summary)
	if s.pendingLoopCleanup != nil {
		pruneLocals(frame, s.pendingLoopCleanup.Saved)
		s.pendingLoopCleanup = nil
	}
	s.PendingCompress = nil
	s.Status = StatusRunning
	return s, nil
}
