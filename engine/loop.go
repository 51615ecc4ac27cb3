package engine

import (
	"github.com/vibelang-org/vibe/ast"
	"github.com/vibelang-org/vibe/context"
	"github.com/vibelang-org/vibe/engineerr"
	"github.com/vibelang-org/vibe/opcodes"
	"github.com/vibelang-org/vibe/values"
)

// loopCleanup remembers the pre-loop local-name snapshot across a compress
// suspension. It is internal bookkeeping, not part of the embedder-facing
// PendingCompress payload, which §6 defines as an exhaustive shape.
type loopCleanup struct {
	Saved []string
}

func handleForInInit(s *RuntimeState, in opcodes.ForInInit) error {
	items, err := coerceIterable(s.LastResult, in.Position())
	if err != nil {
		return err
	}
	frame := s.CurrentFrame()
	saved := currentFrameNames(s)
	frame.EnterScope("for", in.Stmt.VarName)
	entryIdx := frame.ScopeEnterStack[len(frame.ScopeEnterStack)-1]
	s.PushInstr(opcodes.ForInIterate{
		VarName:    in.Stmt.VarName,
		Items:      items,
		Index:      0,
		Body:       in.Stmt.Body,
		Saved:      saved,
		Mode:       in.Stmt.Mode,
		Compress:   in.Stmt.Compress,
		Label:      in.Stmt.VarName,
		EntryIndex: entryIdx,
	})
	return nil
}

// coerceIterable implements the for-in iterable coercion rule (§4.3): a
// number N desugars to [1..N] (N<=0 gives zero iterations), an array is used
// directly, and an AI-result wrapping an array unwraps transparently.
func coerceIterable(v *values.Value, pos ast.Pos) (*values.Array, error) {
	u := v.Underlying()
	if f, ok := u.AsNumber(); ok {
		if !isIntegral(f) {
			return nil, engineerr.Runtime(pos, engineerr.ErrTypeMismatch, "for-in integer bound must be an integer")
		}
		n := int(f)
		if n <= 0 {
			return &values.Array{}, nil
		}
		elems := make([]*values.Value, n)
		for i := 0; i < n; i++ {
			elems[i] = values.NewNumber(float64(i + 1))
		}
		return &values.Array{Elements: elems}, nil
	}
	if arr, ok := u.AsArray(); ok {
		return arr, nil
	}
	return nil, engineerr.Runtime(pos, engineerr.ErrTypeMismatch, "for-in iterable must be a number or array")
}

func handleForInIterate(s *RuntimeState, in opcodes.ForInIterate) error {
	frame := s.CurrentFrame()
	if in.Index >= len(in.Items.Elements) {
		return finalizeLoop(s, frame, "for", in.Label, in.EntryIndex, in.Mode, in.Compress, in.Saved)
	}
	val := in.Items.Elements[in.Index]
	if in.Index == 0 {
		frame.Declare(&Variable{Name: in.VarName, Value: val, TypeName: "number", Source: "none"})
	} else {
		frame.Reassign(in.VarName, val, "none")
	}
	bodySaved := currentFrameNames(s)
	s.PushInstr(
		opcodes.EnterBlock{Saved: bodySaved},
		opcodes.ExecStmts{Stmts: in.Body, Index: 0},
		opcodes.ExitBlock{Saved: bodySaved},
		opcodes.ForInIterate{
			VarName: in.VarName, Items: in.Items, Index: in.Index + 1,
			Body: in.Body, Saved: in.Saved, Mode: in.Mode, Compress: in.Compress,
			Label: in.Label, EntryIndex: in.EntryIndex,
		},
	)
	return nil
}

func handleWhileInit(s *RuntimeState, in opcodes.WhileInit) error {
	b, ok := s.LastResult.AsBoolean()
	if !ok {
		return engineerr.NonBoolean(in.Position(), "while")
	}
	if !b {
		return nil // §4.3: "if false on the first check, no scope is entered"
	}
	frame := s.CurrentFrame()
	frame.EnterScope("while", "")
	entryIdx := frame.ScopeEnterStack[len(frame.ScopeEnterStack)-1]
	s.PushInstr(opcodes.WhileIterate{Stmt: in.Stmt, Saved: in.Saved, EntryIndex: entryIdx})
	return nil
}

func handleWhileIterate(s *RuntimeState, in opcodes.WhileIterate) error {
	bodySaved := currentFrameNames(s)
	s.PushInstr(
		opcodes.EnterBlock{Saved: bodySaved},
		opcodes.ExecStmts{Stmts: in.Stmt.Body, Index: 0},
		opcodes.ExitBlock{Saved: bodySaved},
		opcodes.ExecExpr{Expr: in.Stmt.Cond},
		opcodes.WhileCheck{Stmt: in.Stmt, Saved: in.Saved, EntryIndex: in.EntryIndex},
	)
	return nil
}

func handleWhileCheck(s *RuntimeState, in opcodes.WhileCheck) error {
	b, ok := s.LastResult.AsBoolean()
	if !ok {
		return engineerr.NonBoolean(in.Position(), "while")
	}
	if b {
		s.PushInstr(opcodes.WhileIterate{Stmt: in.Stmt, Saved: in.Saved, EntryIndex: in.EntryIndex})
		return nil
	}
	frame := s.CurrentFrame()
	return finalizeLoop(s, frame, "while", "", in.EntryIndex, in.Stmt.Mode, in.Stmt.Compress, in.Saved)
}

// finalizeLoop applies the scope-exit context mode (§4.5) and, once it's
// safe to do so, prunes the loop variable and any names the loop leaked back
// to the pre-loop Saved snapshot. A compress mode suspends; cleanup then
// waits for ResumeWithCompressResult.
func finalizeLoop(s *RuntimeState, frame *Frame, kind, label string, entryIdx int, mode ast.ContextMode, compress *ast.CompressArgs, saved []string) error {
	frame.ExitScope()
	sinceEnter := context.EntriesSinceEnter(frame.Entries, entryIdx)

	if mode == ast.ContextCompress && len(sinceEnter) > 1 {
		prompt, model, err := resolveCompressArgs(s, compress)
		if err != nil {
			return err
		}
		s.Status = StatusAwaitingCompress
		s.PendingCompress = &PendingCompress{
			Prompt:             prompt,
			Model:              model,
			EntriesToSummarize: sinceEnter,
			EntryIndex:         entryIdx,
			ScopeKind:          kind,
			Label:              label,
		}
		s.pendingLoopCleanup = &loopCleanup{Saved: saved}
		return nil
	}

	switch mode {
	case ast.ContextForget:
		frame.Entries = context.ApplyForget(frame.Entries, entryIdx)
	default: // verbose, default, or a compress that degraded (zero/one entries)
		frame.Entries = context.ApplyVerbose(frame.Entries, kind, label)
	}
	pruneLocals(frame, saved)
	return nil
}

// resolveCompressArgs implements the two-argument resolution rule of §4.5:
// a string literal is a prompt; an identifier bound to a model-handle is the
// model; any other identifier contributes its string value as the prompt.
func resolveCompressArgs(s *RuntimeState, c *ast.CompressArgs) (prompt, model string, err error) {
	model = s.LastUsedModel
	if c == nil {
		return "", model, nil
	}
	resolve := func(e ast.Expr) error {
		if e == nil {
			return nil
		}
		switch v := e.(type) {
		case *ast.StringLit:
			prompt = v.Value
			return nil
		case *ast.Ident:
			curIdx := len(s.CallStack) - 1
			binding, _, ok := LookupVariable(s.CallStack, curIdx, v.Name)
			if ok && binding.Value.Type == values.TypeModelHandle {
				model = v.Name
				return nil
			}
			if ok {
				if str, ok := binding.Value.AsText(); ok {
					prompt = str
					return nil
				}
			}
			return engineerr.Reference(e.Position(), v.Name)
		default:
			return engineerr.Runtime(e.Position(), nil, "compress argument must be a string literal or identifier")
		}
	}
	if err := resolve(c.Arg1); err != nil {
		return "", "", err
	}
	if err := resolve(c.Arg2); err != nil {
		return "", "", err
	}
	return prompt, model, nil
}
