package engine

import (
	"github.com/vibelang-org/vibe/ast"
	"github.com/vibelang-org/vibe/engineerr"
	"github.com/vibelang-org/vibe/opcodes"
	"github.com/vibelang-org/vibe/validate"
	"github.com/vibelang-org/vibe/values"
)

func handleExecStmt(s *RuntimeState, in opcodes.ExecStmt) error {
	switch st := in.Stmt.(type) {
	case *ast.LetStmt:
		s.PushInstr(
			opcodes.ExecExpr{Expr: st.Init},
			opcodes.DeclareVar{Name: st.Name, IsConst: st.IsConst, DeclType: st.Type},
		)
		return nil
	case *ast.ExprStmt:
		s.PushInstr(opcodes.ExecExpr{Expr: st.X})
		return nil
	case *ast.IfStmt:
		s.PushInstr(
			opcodes.ExecExpr{Expr: st.Cond},
			opcodes.IfBranch{Consequent: st.Consequent, Alternate: st.Alternate},
		)
		return nil
	case *ast.ForInStmt:
		s.PushInstr(
			opcodes.ExecExpr{Expr: st.Iterable},
			opcodes.ForInInit{Stmt: st},
		)
		return nil
	case *ast.WhileStmt:
		saved := currentFrameNames(s)
		s.PushInstr(
			opcodes.ExecExpr{Expr: st.Cond},
			opcodes.WhileInit{Stmt: st, Saved: saved},
		)
		return nil
	case *ast.BlockStmt:
		saved := currentFrameNames(s)
		s.PushInstr(
			opcodes.EnterBlock{Saved: saved},
			opcodes.ExecStmts{Stmts: st.Body, Index: 0},
			opcodes.ExitBlock{Saved: saved},
		)
		return nil
	case *ast.ReturnStmt:
		var retType *ast.TypeAnnotation
		if f := s.CurrentFrame(); f != nil {
			retType = f.ReturnType
		}
		if st.Value == nil {
			s.PushInstr(opcodes.Literal{Value: values.NewNull()}, opcodes.ReturnValue{ReturnType: retType})
			return nil
		}
		s.PushInstr(
			opcodes.ExecExpr{Expr: st.Value},
			opcodes.ReturnValue{ReturnType: retType},
		)
		return nil
	case *ast.FunctionStmt:
		return nil // collected at construction time (§4.3)
	case *ast.ToolStmt:
		s.PushInstr(opcodes.ExecToolDecl{Decl: st})
		return nil
	case *ast.ModelStmt:
		seq := make([]opcodes.Instruction, 0, len(st.Fields)*2+1)
		names := make([]string, len(st.Fields))
		for i, f := range st.Fields {
			seq = append(seq, opcodes.ExecExpr{Expr: f.Value}, opcodes.PushValue{})
			names[i] = f.Name
		}
		seq = append(seq, opcodes.DeclareModel{Name: st.Name, Fields: names})
		s.PushInstr(seq...)
		return nil
	case *ast.ImportStmt:
		return nil // resolved by the module loader before execution (§4.7)
	case *ast.ExportStmt:
		s.PushInstr(opcodes.ExecStmt{Stmt: st.Decl})
		return nil
	default:
		return engineerr.Runtime(in.Position(), nil, "unhandled statement node")
	}
}

func handleExecStmts(s *RuntimeState, in opcodes.ExecStmts) error {
	if in.Index >= len(in.Stmts) {
		return nil
	}
	s.PushInstr(
		opcodes.ExecStmt{Stmt: in.Stmts[in.Index]},
		opcodes.ExecStmts{Stmts: in.Stmts, Index: in.Index + 1},
	)
	return nil
}

func handleDeclareVar(s *RuntimeState, in opcodes.DeclareVar) error {
	frame := s.CurrentFrame()
	coerced, typeName, err := validate.Coerce(in.Position(), s.LastResult, in.DeclType, in.Name)
	if err != nil {
		return err
	}
	frame.Declare(&Variable{
		Name:         in.Name,
		Value:        coerced,
		DeclaredType: in.DeclType,
		TypeName:     typeName,
		IsConst:      in.IsConst,
		Source:       s.LastResultSource,
	})
	return nil
}

func handleAssignVar(s *RuntimeState, in opcodes.AssignVar) error {
	curIdx := len(s.CallStack) - 1
	v, owner, ok := LookupVariable(s.CallStack, curIdx, in.Name)
	if !ok {
		return engineerr.Reference(in.Position(), in.Name)
	}
	if v.IsConst {
		return engineerr.ConstReassignment(in.Position(), in.Name)
	}
	coerced, _, err := validate.Coerce(in.Position(), s.LastResult, v.DeclaredType, in.Name)
	if err != nil {
		return err
	}
	owner.Reassign(in.Name, coerced, s.LastResultSource)
	s.LastResult = coerced
	return nil
}

func handleIfBranch(s *RuntimeState, in opcodes.IfBranch) error {
	b, ok := s.LastResult.AsBoolean()
	if !ok {
		return engineerr.NonBoolean(in.Position(), "if")
	}
	if b {
		s.PushInstr(opcodes.ExecStmts{Stmts: in.Consequent, Index: 0})
	} else if in.Alternate != nil {
		s.PushInstr(opcodes.ExecStmts{Stmts: in.Alternate, Index: 0})
	}
	return nil
}

func handleExitBlock(s *RuntimeState, in opcodes.ExitBlock) error {
	pruneLocals(s.CurrentFrame(), in.Saved)
	return nil
}

func handleDeclareModel(s *RuntimeState, in opcodes.DeclareModel) error {
	vals, ok := s.PopValues(len(in.Fields))
	if !ok {
		return engineerr.Runtime(in.Position(), nil, "value stack underflow declaring model")
	}
	h := &valuesModelHandle{}
	for i, name := range in.Fields {
		if err := h.set(in.Position(), name, vals[i]); err != nil {
			return err
		}
	}
	frame := s.CurrentFrame()
	frame.Declare(&Variable{
		Name:     in.Name,
		Value:    h.build(),
		TypeName: "model",
		IsConst:  true,
		Source:   "none",
	})
	return nil
}

// currentFrameNames snapshots the current frame's declared local names, used
// as the Saved set for EnterBlock/ExitBlock and loop-completion cleanup.
func currentFrameNames(s *RuntimeState) []string {
	f := s.CurrentFrame()
	out := make([]string, len(f.Order))
	copy(out, f.Order)
	return out
}

func pruneLocals(f *Frame, saved []string) {
	keep := make(map[string]bool, len(saved))
	for _, n := range saved {
		keep[n] = true
	}
	newOrder := make([]string, 0, len(saved))
	for _, n := range f.Order {
		if keep[n] {
			newOrder = append(newOrder, n)
		} else {
			delete(f.Locals, n)
		}
	}
	f.Order = newOrder
}
