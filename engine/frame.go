package engine

import (
	"github.com/vibelang-org/vibe/ast"
	"github.com/vibelang-org/vibe/context"
	"github.com/vibelang-org/vibe/values"
)

// Variable is one binding in a frame's scope table.
type Variable struct {
	Name        string
	Value       *values.Value
	DeclaredType *ast.TypeAnnotation
	TypeName    string // resolved/inferred type name, for re-coercion on assignment
	IsConst     bool
	Source      string // "ai" | "user" | "none" — provenance of the current value
}

// Frame is one call frame: a scope table plus the ordered entry log used to
// build AI context (§4.5) and a lexical link to its defining frame used for
// scope-chain lookup (§4.1's "parent_frame_index, not dynamic caller").
type Frame struct {
	Name            string
	Locals          map[string]*Variable
	Order           []string // declaration order, for stable iteration/dumps
	Entries         []context.Entry
	ParentFrameIndex *int // index into RuntimeState.CallStack at call time, nil for {main}
	ScopeEnterStack []int // indices into Entries of open ScopeEnterEntry, for loop exit policies
	ReturnType      *ast.TypeAnnotation // declared return type of the function this frame executes, nil for {main}/blocks
}

// NewFrame constructs an empty frame lexically parented at parentIdx (nil
// for the top-level {main} frame).
func NewFrame(name string, parentIdx *int) *Frame {
	return &Frame{
		Name:             name,
		Locals:           make(map[string]*Variable),
		ParentFrameIndex: parentIdx,
	}
}

// FrameName implements context.Frame.
func (f *Frame) FrameName() string { return f.Name }

// FrameEntries implements context.Frame.
func (f *Frame) FrameEntries() []context.Entry { return f.Entries }

// Declare binds name in this frame's scope table and appends a
// VariableEntry snapshot (Invariant I6).
func (f *Frame) Declare(v *Variable) {
	if _, exists := f.Locals[v.Name]; !exists {
		f.Order = append(f.Order, v.Name)
	}
	f.Locals[v.Name] = v
	f.Entries = append(f.Entries, context.VariableEntry{
		Name:     v.Name,
		Snapshot: v.Value,
		Type:     v.TypeName,
		IsConst:  v.IsConst,
		Source:   v.Source,
	})
}

// Reassign updates an existing binding's value and appends a fresh
// VariableEntry snapshot; it never mutates the earlier entry.
func (f *Frame) Reassign(name string, newValue *values.Value, source string) {
	v := f.Locals[name]
	v.Value = newValue
	v.Source = source
	f.Entries = append(f.Entries, context.VariableEntry{
		Name:     v.Name,
		Snapshot: v.Value,
		Type:     v.TypeName,
		IsConst:  v.IsConst,
		Source:   v.Source,
	})
}

// Lookup finds name in this frame. Scope-chain walking across frames is the
// caller's (RuntimeState's) responsibility, since that requires the full
// call stack and parent_frame_index links.
func (f *Frame) Lookup(name string) (*Variable, bool) {
	v, ok := f.Locals[name]
	return v, ok
}

// EnterScope records a ScopeEnterEntry and remembers its index for the
// matching exit policy.
func (f *Frame) EnterScope(loopKind, label string) {
	idx := len(f.Entries)
	f.Entries = append(f.Entries, context.ScopeEnterEntry{LoopKind: loopKind, Label: label})
	f.ScopeEnterStack = append(f.ScopeEnterStack, idx)
}

// ExitScope pops the most recent open scope-enter index (or -1 if none is
// open, signalling the degenerate zero-iteration case to the caller).
func (f *Frame) ExitScope() int {
	if len(f.ScopeEnterStack) == 0 {
		return -1
	}
	idx := f.ScopeEnterStack[len(f.ScopeEnterStack)-1]
	f.ScopeEnterStack = f.ScopeEnterStack[:len(f.ScopeEnterStack)-1]
	return idx
}

// LookupVariable walks the lexical scope chain starting at frame index
// fromIdx in callStack, following ParentFrameIndex rather than the dynamic
// caller (Invariant I5).
func LookupVariable(callStack []*Frame, fromIdx int, name string) (*Variable, *Frame, bool) {
	idx := fromIdx
	for idx >= 0 {
		f := callStack[idx]
		if v, ok := f.Lookup(name); ok {
			return v, f, true
		}
		if f.ParentFrameIndex == nil {
			break
		}
		idx = *f.ParentFrameIndex
	}
	return nil, nil, false
}
