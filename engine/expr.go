package engine

import (
	"strings"

	"github.com/vibelang-org/vibe/ast"
	"github.com/vibelang-org/vibe/engineerr"
	"github.com/vibelang-org/vibe/opcodes"
	"github.com/vibelang-org/vibe/registry"
	"github.com/vibelang-org/vibe/values"
)

// handleExecExpr lowers one AST expression. Leaf forms resolve directly into
// last_result; compound forms prepend a short, fixed instruction sequence so
// that any suspending sub-expression (an AI call or host escape nested
// anywhere inside) still surfaces as a single atomic instruction (§4.1).
func handleExecExpr(s *RuntimeState, in opcodes.ExecExpr) error {
	pos := in.Expr.Position()
	switch e := in.Expr.(type) {
	case *ast.NumberLit:
		s.LastResult = values.NewNumber(e.Value)
		s.LastResultSource = "none"
		return nil
	case *ast.BoolLit:
		s.LastResult = values.NewBoolean(e.Value)
		s.LastResultSource = "none"
		return nil
	case *ast.NullLit:
		s.LastResult = values.NewNull()
		s.LastResultSource = "none"
		return nil
	case *ast.StringLit:
		s.PushInstr(opcodes.InterpolateString{Template: e.Value})
		return nil
	case *ast.TemplateLit:
		s.PushInstr(opcodes.InterpolateTemplate{Template: e.Value})
		return nil
	case *ast.Ident:
		return resolveIdent(s, pos, e.Name)
	case *ast.ObjectLit:
		seq := make([]opcodes.Instruction, 0, len(e.Fields)*2+1)
		keys := make([]string, len(e.Fields))
		for i, f := range e.Fields {
			seq = append(seq, opcodes.ExecExpr{Expr: f.Value}, opcodes.PushValue{})
			keys[i] = f.Key
		}
		seq = append(seq, opcodes.BuildObject{Keys: keys})
		s.PushInstr(seq...)
		return nil
	case *ast.ArrayLit:
		seq := make([]opcodes.Instruction, 0, len(e.Elements)*2+1)
		for _, el := range e.Elements {
			seq = append(seq, opcodes.ExecExpr{Expr: el}, opcodes.PushValue{})
		}
		seq = append(seq, opcodes.BuildArray{N: len(e.Elements)})
		s.PushInstr(seq...)
		return nil
	case *ast.RangeExpr:
		s.PushInstr(
			opcodes.ExecExpr{Expr: e.Start}, opcodes.PushValue{},
			opcodes.ExecExpr{Expr: e.End}, opcodes.PushValue{},
			opcodes.BuildRange{},
		)
		return nil
	case *ast.BinaryExpr:
		if e.Op == ast.OpAnd || e.Op == ast.OpOr {
			s.PushInstr(
				opcodes.ExecExpr{Expr: e.Left}, opcodes.PushValue{},
				opcodes.LogicalCombine{Op_: e.Op, Right: e.Right},
			)
			return nil
		}
		s.PushInstr(
			opcodes.ExecExpr{Expr: e.Left}, opcodes.PushValue{},
			opcodes.ExecExpr{Expr: e.Right}, opcodes.PushValue{},
			opcodes.BinaryOp{Op_: e.Op},
		)
		return nil
	case *ast.UnaryExpr:
		s.PushInstr(
			opcodes.ExecExpr{Expr: e.Operand}, opcodes.PushValue{},
			opcodes.UnaryOp{Op_: e.Op},
		)
		return nil
	case *ast.IndexExpr:
		s.PushInstr(
			opcodes.ExecExpr{Expr: e.Target}, opcodes.PushValue{},
			opcodes.ExecExpr{Expr: e.Index}, opcodes.PushValue{},
			opcodes.IndexAccess{},
		)
		return nil
	case *ast.SliceExpr:
		seq := []opcodes.Instruction{opcodes.ExecExpr{Expr: e.Target}, opcodes.PushValue{}}
		if e.Start != nil {
			seq = append(seq, opcodes.ExecExpr{Expr: e.Start}, opcodes.PushValue{})
		}
		if e.End != nil {
			seq = append(seq, opcodes.ExecExpr{Expr: e.End}, opcodes.PushValue{})
		}
		seq = append(seq, opcodes.SliceAccess{HasStart: e.Start != nil, HasEnd: e.End != nil})
		s.PushInstr(seq...)
		return nil
	case *ast.MemberExpr:
		s.PushInstr(
			opcodes.ExecExpr{Expr: e.Target}, opcodes.PushValue{},
			opcodes.MemberAccess{Name: e.Name},
		)
		return nil
	case *ast.AssignExpr:
		return lowerAssign(s, e)
	case *ast.CallExpr:
		seq := make([]opcodes.Instruction, 0, (len(e.Args)+1)*2+1)
		seq = append(seq, opcodes.ExecExpr{Expr: e.Callee}, opcodes.PushValue{})
		for _, a := range e.Args {
			seq = append(seq, opcodes.ExecExpr{Expr: a}, opcodes.PushValue{})
		}
		seq = append(seq, opcodes.CallFunction{ArgCount: len(e.Args)})
		s.PushInstr(seq...)
		return nil
	case *ast.AIExpr:
		s.PushInstr(
			opcodes.ExecExpr{Expr: e.Prompt},
			opcodes.AICall{ModelName: e.Model, Context: e.Context, Kind: e.Kind},
		)
		return nil
	case *ast.HostBlockExpr:
		s.PushInstr(opcodes.HostEval{Params: e.Params, Body: e.Body})
		return nil
	default:
		return engineerr.Runtime(pos, nil, "unhandled expression node")
	}
}

// resolveIdent implements the §4.6 lookup order: scope chain, then declared
// functions, then imported host functions, then imported source functions,
// then other imported values.
func resolveIdent(s *RuntimeState, pos ast.Pos, name string) error {
	curIdx := len(s.CallStack) - 1
	if v, _, ok := LookupVariable(s.CallStack, curIdx, name); ok {
		s.LastResult = v.Value
		s.LastResultSource = v.Source
		return nil
	}
	if _, ok := s.Registry.LookupFunction(name); ok {
		s.LastResult = values.NewUserFunctionHandle(name)
		s.LastResultSource = "none"
		return nil
	}
	if binding, ok := s.Registry.LookupImport(name); ok {
		switch binding.Kind {
		case registry.ImportKindHost:
			if mod, ok := s.TSModules[binding.SourcePath]; ok {
				if val, ok := mod.Exports[name]; ok {
					s.LastResult = val
					s.LastResultSource = "none"
					return nil
				}
			}
		default: // registry.ImportKindSource
			if mod, ok := s.SourceModules[binding.SourcePath]; ok {
				if val, ok := mod.Exports[name]; ok {
					s.LastResult = val
					s.LastResultSource = "none"
					return nil
				}
			}
		}
	}
	return engineerr.Reference(pos, name)
}

func lowerAssign(s *RuntimeState, e *ast.AssignExpr) error {
	switch target := e.Target.(type) {
	case *ast.Ident:
		s.PushInstr(
			opcodes.ExecExpr{Expr: e.Value},
			opcodes.AssignVar{Name: target.Name},
		)
		return nil
	default:
		return engineerr.Runtime(e.Position(), nil, "unsupported assignment target")
	}
}

func handleBuildObject(s *RuntimeState, in opcodes.BuildObject) error {
	vals, ok := s.PopValues(len(in.Keys))
	if !ok {
		return engineerr.Runtime(in.Position(), nil, "value stack underflow building object")
	}
	obj := values.NewObject()
	for i, k := range in.Keys {
		obj.Set(k, vals[i])
	}
	s.LastResult = values.NewObjectValue(obj)
	s.LastResultSource = "none"
	return nil
}

func handleBuildArray(s *RuntimeState, in opcodes.BuildArray) error {
	vals, ok := s.PopValues(in.N)
	if !ok {
		return engineerr.Runtime(in.Position(), nil, "value stack underflow building array")
	}
	s.LastResult = values.NewArrayValue(vals)
	s.LastResultSource = "none"
	return nil
}

func handleBuildRange(s *RuntimeState, in opcodes.BuildRange) error {
	vals, ok := s.PopValues(2)
	if !ok {
		return engineerr.Runtime(in.Position(), nil, "value stack underflow building range")
	}
	startF, ok1 := vals[0].AsNumber()
	endF, ok2 := vals[1].AsNumber()
	if !ok1 || !ok2 || !isIntegral(startF) || !isIntegral(endF) {
		return engineerr.Runtime(in.Position(), engineerr.ErrBadRangeBounds, "range bounds must be integers")
	}
	start, end := int(startF), int(endF)
	if start > end {
		return engineerr.Runtime(in.Position(), engineerr.ErrBadRangeBounds, "range start %d is greater than end %d", start, end)
	}
	elems := make([]*values.Value, 0, end-start+1)
	for i := start; i <= end; i++ {
		elems = append(elems, values.NewNumber(float64(i)))
	}
	s.LastResult = values.NewArrayValue(elems)
	s.LastResultSource = "none"
	return nil
}

func isIntegral(f float64) bool {
	return f == float64(int(f))
}

func handleInterpolateString(s *RuntimeState, in opcodes.InterpolateString) error {
	s.LastResult = values.NewText(interpolate(s, in.Template, "{", "}"))
	s.LastResultSource = "none"
	return nil
}

func handleInterpolateTemplate(s *RuntimeState, in opcodes.InterpolateTemplate) error {
	s.LastResult = values.NewText(interpolate(s, in.Template, "${", "}"))
	s.LastResultSource = "none"
	return nil
}

// interpolate substitutes open+name+"}" placeholders via scope-chain lookup;
// a name that resolves to nothing is left as a literal placeholder rather
// than raising an error (§4.2: "may be filled later by prompt-builder
// callers").
func interpolate(s *RuntimeState, template, open, close string) string {
	var b strings.Builder
	curIdx := len(s.CallStack) - 1
	rest := template
	for {
		start := strings.Index(rest, open)
		if start < 0 {
			b.WriteString(rest)
			break
		}
		end := strings.Index(rest[start+len(open):], close)
		if end < 0 {
			b.WriteString(rest)
			break
		}
		name := rest[start+len(open) : start+len(open)+end]
		b.WriteString(rest[:start])
		if v, _, ok := LookupVariable(s.CallStack, curIdx, strings.TrimSpace(name)); ok {
			b.WriteString(values.ToDisplayString(v.Value))
		} else {
			b.WriteString(open)
			b.WriteString(name)
			b.WriteString(close)
		}
		rest = rest[start+len(open)+end+len(close):]
	}
	return b.String()
}
