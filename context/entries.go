// Package context implements the per-frame context model (§4.5): the
// ordered log of frame entries recorded during execution, the rules for
// assembling an AI call's context from the call stack, and the scope-exit
// policies (verbose/forget/compress) applied when a loop finishes.
//
// This package depends only on ast/values, never on the engine package, so
// the engine can depend on it without a cycle: the engine's call frame
// satisfies the small Frame interface below.
package context

import "github.com/vibelang-org/vibe/values"

// EntryKind discriminates the FrameEntry sum type.
type EntryKind int

const (
	EntryVariable EntryKind = iota
	EntryPrompt
	EntryScopeEnter
	EntryScopeExit
	EntrySummary
	EntryToolCall
)

// Entry is implemented by every frame-entry variant.
type Entry interface {
	Kind() EntryKind
}

// VariableEntry is an immutable snapshot recorded at declaration/assignment
// time (Invariant I6: later reassignments append, never mutate, this entry).
type VariableEntry struct {
	Name     string
	Snapshot *values.Value
	Type     string
	IsConst  bool
	Source   string // "ai" | "user" | "none"
}

func (VariableEntry) Kind() EntryKind { return EntryVariable }

// AIKind mirrors ast.AIKind without importing ast (kept a plain string to
// avoid a dependency back up to the AST package).
type AIKind string

// PromptEntry records one AI interaction in program order.
type PromptEntry struct {
	AIType    AIKind
	Prompt    string
	ToolCalls []ToolCallEntry
	Response  *string // nil until resumed
}

func (PromptEntry) Kind() EntryKind { return EntryPrompt }

// ScopeEnterEntry marks the start of a for/while/function scope.
type ScopeEnterEntry struct {
	LoopKind string // "for" | "while" | "function"
	Label    string
}

func (ScopeEnterEntry) Kind() EntryKind { return EntryScopeEnter }

// ScopeExitEntry closes a matching ScopeEnterEntry. Verbose and compress
// exits append one; forget removes the ScopeEnterEntry instead.
type ScopeExitEntry struct {
	LoopKind string
	Label    string
}

func (ScopeExitEntry) Kind() EntryKind { return EntryScopeExit }

// SummaryEntry is the result of a `compress` scope exit.
type SummaryEntry struct {
	Text string
}

func (SummaryEntry) Kind() EntryKind { return EntrySummary }

// ToolCallEntry records one tool invocation made during an AI interaction,
// nested inside the enclosing PromptEntry before its Response is set.
type ToolCallEntry struct {
	Name   string
	Args   map[string]*values.Value
	Result *values.Value
	Error  string
}

func (ToolCallEntry) Kind() EntryKind { return EntryToolCall }
