// Package engine is the execution engine (§4 of the specification): a
// deterministic, stepwise interpreter that reduces a parsed program to a
// stream of instructions and executes them against an explicit call stack
// and value stack, suspending at every external interaction point with a
// typed pending-request payload.
package engine

import (
	"github.com/vibelang-org/vibe/ast"
	"github.com/vibelang-org/vibe/context"
	"github.com/vibelang-org/vibe/engineerr"
	"github.com/vibelang-org/vibe/opcodes"
	"github.com/vibelang-org/vibe/registry"
	"github.com/vibelang-org/vibe/values"
)

// Status is the RuntimeState's single discriminant; exactly one
// awaiting_* status corresponds to exactly one occupied pending_* slot
// (Invariant I2).
type Status string

const (
	StatusRunning           Status = "running"
	StatusPaused            Status = "paused"
	StatusCompleted         Status = "completed"
	StatusError             Status = "error"
	StatusAwaitingAI        Status = "awaiting_ai"
	StatusAwaitingUser      Status = "awaiting_user"
	StatusAwaitingHost      Status = "awaiting_host"
	StatusAwaitingImportedHost Status = "awaiting_imported_host_call"
	StatusAwaitingTool      Status = "awaiting_tool"
	StatusAwaitingCompress  Status = "awaiting_compress"
)

// HostModule is the resolved export table of a native (.ts/.js) module.
type HostModule struct {
	Path    string
	Exports map[string]*values.Value
}

// SourceModule is the resolved export table of a same-language module.
type SourceModule struct {
	Path      string
	Program   *ast.Program
	Exports   map[string]*values.Value
	Functions map[string]*ast.FunctionStmt // every declared function, for imported-source-function calls
}

// ScopeParam is one visible non-model variable passed to a `vibe` call so
// the external agent can run generated code with the caller's bindings.
type ScopeParam struct {
	Name  string
	Type  string
	Value *values.Value
}

// AIInteraction is one completed (prompt, response) round recorded for
// offline inspection (ai_history), independent of the per-frame context log.
type AIInteraction struct {
	Kind     ast.AIKind
	Model    string
	Prompt   string
	Response string
}

// PendingAI is the suspension payload for `awaiting_ai`.
type PendingAI struct {
	Kind            ast.AIKind
	Prompt          string
	ModelName       string
	ContextEntries  []context.RenderedEntry
	VibeScopeParams []ScopeParam // only set for AIVibe

	// ToolRounds accumulates rounds driven through the engine's own
	// awaiting_tool suspension (RequestTool/ResumeWithToolResult), in
	// completion order. ResumeWithAIResponse prepends these to whatever
	// tool_rounds the embedder reports directly, so a driver may freely mix
	// engine-mediated tool calls with ones it ran inline.
	ToolRounds []ToolRound
}

// PendingHost is the suspension payload for an inline host-language escape.
type PendingHost struct {
	Params      []string
	Body        string
	ParamValues []*values.Value
}

// PendingImportedHostCall is the suspension payload for a call into an
// imported native host function.
type PendingImportedHostCall struct {
	Name string
	Args []*values.Value
}

// PendingTool is the suspension payload for a tool invocation chosen by the
// model during a `vibe` call.
type PendingTool struct {
	Name       string
	ToolCallID string
	Args       map[string]*values.Value
	Executor   ToolExecutor
}

// PendingCompress is the suspension payload for a `compress` scope exit.
type PendingCompress struct {
	Prompt             string
	Model              string
	EntriesToSummarize []context.Entry
	EntryIndex         int
	ScopeKind          string
	Label              string
}

// RuntimeState is the entire machine: call stack, instruction stack, value
// stack, and whichever single pending_* slot is occupied. Step mutates this
// struct in place rather than cloning it on every step. On error, Fail
// records the error and clears the pending slots; changes the failing
// instruction made before it raised (its pop from the instruction stack,
// value-stack pops, frame updates) are not rolled back.
type RuntimeState struct {
	Status Status

	Program   *ast.Program
	Registry  *registry.Registry

	TSModules     map[string]*HostModule
	SourceModules map[string]*SourceModule

	CallStack        []*Frame
	InstructionStack []opcodes.Instruction
	ValueStack       []*values.Value

	LastResult       *values.Value
	LastResultSource string // "ai" | "user" | "none"

	AIHistory    []AIInteraction
	ExecutionLog []string

	LocalContext  []context.RenderedEntry
	GlobalContext []context.RenderedEntry

	PendingAI                *PendingAI
	PendingCompress          *PendingCompress
	PendingHost              *PendingHost
	PendingImportedHostCall  *PendingImportedHostCall
	PendingTool              *PendingTool

	LastUsedModel string
	RootDir       string

	Error *engineerr.EngineError

	// pendingLoopCleanup carries the pre-loop local-name snapshot across a
	// compress suspension (§4.5). Internal bookkeeping only — not part of
	// the embedder-facing PendingCompress payload, which §6 defines as an
	// exhaustive shape.
	pendingLoopCleanup *loopCleanup

	// pendingUserPrompt holds the prompt text for an `ask` suspension.
	// Unlike the other pending_* slots this one has no dedicated RuntimeState
	// field in §3 — `awaiting_user` carries no structured payload there.
	pendingUserPrompt string

	// LogAIInteractions is copied from Options at construction. The engine
	// itself does not read it: AIHistory is appended on every
	// ResumeWithAIResponse whatever its value.
	LogAIInteractions bool
}

// Options configures InitialState.
type Options struct {
	LogAIInteractions bool
	RootDir           string
}

// InitialState constructs a RuntimeState from a parsed program: function
// declarations are collected into the registry up front (§4.3), and a
// single {main} frame is pushed with the program's statements queued as an
// exec_stmts instruction.
func InitialState(program *ast.Program, opts Options) *RuntimeState {
	reg := registry.New()
	for _, stmt := range program.Statements {
		if fn, ok := stmt.(*ast.FunctionStmt); ok {
			reg.RegisterFunction(fn)
		}
		if exp, ok := stmt.(*ast.ExportStmt); ok {
			if fn, ok := exp.Decl.(*ast.FunctionStmt); ok {
				reg.RegisterFunction(fn)
			}
		}
	}

	main := NewFrame("{main}", nil)
	s := &RuntimeState{
		Status:            StatusRunning,
		Program:           program,
		Registry:          reg,
		TSModules:         make(map[string]*HostModule),
		SourceModules:     make(map[string]*SourceModule),
		CallStack:         []*Frame{main},
		InstructionStack:  []opcodes.Instruction{opcodes.ExecStmts{Stmts: program.Statements, Index: 0}},
		ValueStack:        nil,
		LastResult:        values.NewNull(),
		LastResultSource:  "none",
		RootDir:           opts.RootDir,
		LogAIInteractions: opts.LogAIInteractions,
	}
	return s
}

// CurrentFrame returns the innermost (dynamically active) call frame.
func (s *RuntimeState) CurrentFrame() *Frame {
	if len(s.CallStack) == 0 {
		return nil
	}
	return s.CallStack[len(s.CallStack)-1]
}

// PushFrame pushes a new call frame.
func (s *RuntimeState) PushFrame(f *Frame) {
	s.CallStack = append(s.CallStack, f)
}

// PopFrame pops and returns the current call frame, or nil if empty
// (Invariant I1 guards callers never popping the last frame except on
// return from {main}).
func (s *RuntimeState) PopFrame() *Frame {
	if len(s.CallStack) == 0 {
		return nil
	}
	idx := len(s.CallStack) - 1
	f := s.CallStack[idx]
	s.CallStack = s.CallStack[:idx]
	return f
}

// PushInstr prepends an instruction, matching Invariant I3 ("pushes
// prepend").
func (s *RuntimeState) PushInstr(instrs ...opcodes.Instruction) {
	s.InstructionStack = append(append([]opcodes.Instruction{}, instrs...), s.InstructionStack...)
}

// PopInstr removes and returns the head instruction.
func (s *RuntimeState) PopInstr() (opcodes.Instruction, bool) {
	if len(s.InstructionStack) == 0 {
		return nil, false
	}
	head := s.InstructionStack[0]
	s.InstructionStack = s.InstructionStack[1:]
	return head, true
}

// PushValue pushes onto the value stack.
func (s *RuntimeState) PushValue(v *values.Value) {
	s.ValueStack = append(s.ValueStack, v)
}

// PopValue pops from the value stack.
func (s *RuntimeState) PopValue() (*values.Value, bool) {
	if len(s.ValueStack) == 0 {
		return nil, false
	}
	idx := len(s.ValueStack) - 1
	v := s.ValueStack[idx]
	s.ValueStack = s.ValueStack[:idx]
	return v, true
}

// PopValues pops n values and returns them in original push order.
func (s *RuntimeState) PopValues(n int) ([]*values.Value, bool) {
	if len(s.ValueStack) < n {
		return nil, false
	}
	idx := len(s.ValueStack) - n
	out := make([]*values.Value, n)
	copy(out, s.ValueStack[idx:])
	s.ValueStack = s.ValueStack[:idx]
	return out, true
}

// Fail transitions the state to `error`, capturing err and clearing any
// pending slot (errors abort the interaction point that raised them).
func (s *RuntimeState) Fail(err *engineerr.EngineError) *RuntimeState {
	s.Status = StatusError
	s.Error = err
	s.PendingAI = nil
	s.PendingCompress = nil
	s.PendingHost = nil
	s.PendingImportedHostCall = nil
	s.PendingTool = nil
	return s
}

// RebuildContexts recomputes LocalContext/GlobalContext from the current
// call stack, per §4.1 ("before each step, the scheduler rebuilds
// local_context and global_context").
func (s *RuntimeState) RebuildContexts() {
	frames := make([]context.Frame, len(s.CallStack))
	for i := range s.CallStack {
		// deepest (current) frame first
		frames[i] = s.CallStack[len(s.CallStack)-1-i]
	}
	s.LocalContext = context.BuildLocal(frames)
	s.GlobalContext = context.BuildDefault(frames)
}
