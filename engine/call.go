package engine

import (
	"github.com/vibelang-org/vibe/ast"
	"github.com/vibelang-org/vibe/engineerr"
	"github.com/vibelang-org/vibe/opcodes"
	"github.com/vibelang-org/vibe/validate"
	"github.com/vibelang-org/vibe/values"
)

// handleCallFunction pops the callee plus ArgCount arguments (in original
// push order: callee first) and dispatches on its tag (§4.4).
func handleCallFunction(s *RuntimeState, in opcodes.CallFunction) error {
	vals, ok := s.PopValues(in.ArgCount + 1)
	if !ok {
		return engineerr.Runtime(in.Position(), nil, "value stack underflow calling function")
	}
	callee, args := vals[0], vals[1:]

	switch callee.Type {
	case values.TypeUserFunctionHandle:
		h := callee.Data.(*values.UserFunctionHandle)
		fn, ok := s.Registry.LookupFunction(h.Name)
		if !ok {
			return engineerr.Reference(in.Position(), h.Name)
		}
		return callSourceFunction(s, in.Position(), fn, args)

	case values.TypeImportedHostFunctionHandle:
		h := callee.Data.(*values.ImportedHostFunctionHandle)
		resolved := make([]*values.Value, len(args))
		for i, a := range args {
			resolved[i] = a.Underlying()
		}
		s.Status = StatusAwaitingImportedHost
		s.PendingImportedHostCall = &PendingImportedHostCall{Name: h.Name, Args: resolved}
		return nil

	case values.TypeImportedSourceFunctionHandle:
		h := callee.Data.(*values.ImportedSourceFunctionHandle)
		mod, ok := s.SourceModules[h.ModulePath]
		if !ok {
			return engineerr.Runtime(in.Position(), engineerr.ErrModuleNotFound, "module '%s' not loaded", h.ModulePath)
		}
		fn, ok := mod.Functions[h.Name]
		if !ok {
			return engineerr.Reference(in.Position(), h.Name)
		}
		return callSourceFunction(s, in.Position(), fn, args)

	case values.TypeToolHandle:
		h := callee.Data.(*values.ToolHandle)
		return engineerr.Runtime(in.Position(), engineerr.ErrToolNotCallable, "tool '%s' cannot be called from user code", h.Name)

	case values.TypeBoundMethodHandle:
		h := callee.Data.(*values.BoundMethodHandle)
		return callBoundMethod(s, in.Position(), h, args)

	default:
		return engineerr.Runtime(in.Position(), engineerr.ErrNotCallable, "value of type %s is not callable", callee.Type)
	}
}

// callSourceFunction binds validated parameters into a fresh frame with no
// lexical parent (functions are top-level declarations; they do not close
// over caller locals) and schedules the body followed by an implicit
// PopFrame for the fall-off-the-end case.
func callSourceFunction(s *RuntimeState, pos ast.Pos, fn *ast.FunctionStmt, args []*values.Value) error {
	if len(args) != len(fn.Params) {
		return engineerr.Runtime(pos, nil, "function '%s' expects %d argument(s), got %d", fn.Name, len(fn.Params), len(args))
	}
	frame := NewFrame("function:"+fn.Name, nil)
	frame.ReturnType = fn.ReturnType
	for i, p := range fn.Params {
		coerced, typeName, err := validate.Coerce(pos, args[i], p.Type, p.Name)
		if err != nil {
			return err
		}
		frame.Declare(&Variable{Name: p.Name, Value: coerced, DeclaredType: p.Type, TypeName: typeName, IsConst: false, Source: "none"})
	}
	s.PushFrame(frame)
	s.PushInstr(
		opcodes.ExecStmts{Stmts: fn.Body, Index: 0},
		opcodes.PopFrame{},
	)
	return nil
}

func handlePopFrame(s *RuntimeState, in opcodes.PopFrame) error {
	s.PopFrame()
	if len(s.CallStack) == 0 {
		s.Status = StatusCompleted
		return nil
	}
	s.LastResult = values.NewNull()
	s.LastResultSource = "none"
	return nil
}

// handleReturnValue validates the return value against the declared return
// type, pops the frame, and rewinds instruction_stack past the matching
// PopFrame marker (§4.3).
func handleReturnValue(s *RuntimeState, in opcodes.ReturnValue) error {
	coerced, _, err := validate.Coerce(in.Position(), s.LastResult, in.ReturnType, "return value")
	if err != nil {
		return err
	}
	s.LastResult = coerced
	s.LastResultSource = "none"
	s.PopFrame()
	if len(s.CallStack) == 0 {
		s.Status = StatusCompleted
		s.InstructionStack = nil
		return nil
	}
	idx := -1
	for i, instr := range s.InstructionStack {
		if instr.Op() == opcodes.OpPopFrame {
			idx = i
			break
		}
	}
	if idx >= 0 {
		s.InstructionStack = s.InstructionStack[idx+1:]
	} else {
		s.InstructionStack = nil
	}
	return nil
}

// RunToolBody executes a declared tool's body to completion and returns its
// result, for use by a ToolExecutor implementation that backs a tool with
// vibe-language code rather than delegating to an external service. It runs
// in a throwaway RuntimeState sharing parent's Registry/TSModules/
// SourceModules by reference, the same technique package loader uses to
// obtain a submodule's exported values. A tool body that suspends (nested
// ai/vibe/ask/host) is rejected — tools are meant to be small, deterministic
// helpers, and the embedder has no seam to drive a nested suspension here.
func RunToolBody(parent *RuntimeState, decl *ast.ToolStmt, args map[string]*values.Value) (*values.Value, error) {
	if len(args) != len(decl.Params) {
		return nil, engineerr.Runtime(decl.Position(), nil, "tool '%s' expects %d argument(s), got %d", decl.Name, len(decl.Params), len(args))
	}

	sub := InitialState(&ast.Program{Statements: decl.Body}, Options{RootDir: parent.RootDir})
	sub.Registry = parent.Registry
	sub.TSModules = parent.TSModules
	sub.SourceModules = parent.SourceModules

	frame := sub.CurrentFrame()
	frame.ReturnType = decl.ReturnType
	for _, p := range decl.Params {
		arg, ok := args[p.Name]
		if !ok {
			return nil, engineerr.Runtime(decl.Position(), nil, "tool '%s' missing argument '%s'", decl.Name, p.Name)
		}
		coerced, typeName, err := validate.Coerce(decl.Position(), arg, p.Type, p.Name)
		if err != nil {
			return nil, err
		}
		frame.Declare(&Variable{Name: p.Name, Value: coerced, DeclaredType: p.Type, TypeName: typeName, IsConst: false, Source: "none"})
	}

	RunUntilPause(sub)
	switch sub.Status {
	case StatusCompleted:
		return sub.LastResult, nil
	case StatusError:
		return nil, sub.Error
	default:
		return nil, engineerr.Runtime(decl.Position(), nil, "tool '%s' suspended instead of completing (status %s) — tool bodies cannot perform ai/host operations", decl.Name, sub.Status)
	}
}

// callBoundMethod executes an array/string built-in method synchronously
// (§4.4); these never suspend.
func callBoundMethod(s *RuntimeState, pos ast.Pos, h *values.BoundMethodHandle, args []*values.Value) error {
	switch h.Method {
	case "len":
		if arr, ok := h.Receiver.AsArray(); ok {
			s.LastResult = values.NewNumber(float64(len(arr.Elements)))
			s.LastResultSource = "none"
			return nil
		}
		if str, ok := h.Receiver.AsText(); ok {
			s.LastResult = values.NewNumber(float64(len([]rune(str))))
			s.LastResultSource = "none"
			return nil
		}
		return engineerr.Runtime(pos, nil, "len() requires an array or string receiver")
	case "push":
		arr, ok := h.Receiver.AsArray()
		if !ok {
			return engineerr.Runtime(pos, nil, "push() requires an array receiver")
		}
		if len(args) != 1 {
			return engineerr.Runtime(pos, nil, "push() takes exactly one argument")
		}
		arr.Elements = append(arr.Elements, args[0])
		s.LastResult = h.Receiver
		s.LastResultSource = "none"
		return nil
	case "pop":
		arr, ok := h.Receiver.AsArray()
		if !ok {
			return engineerr.Runtime(pos, nil, "pop() requires an array receiver")
		}
		if len(arr.Elements) == 0 {
			return engineerr.Runtime(pos, engineerr.ErrIndexOutOfBounds, "pop() on an empty array")
		}
		last := arr.Elements[len(arr.Elements)-1]
		arr.Elements = arr.Elements[:len(arr.Elements)-1]
		s.LastResult = last
		s.LastResultSource = "none"
		return nil
	default:
		return engineerr.Runtime(pos, nil, "unknown built-in method '%s'", h.Method)
	}
}
