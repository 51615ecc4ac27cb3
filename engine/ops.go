package engine

import (
	"github.com/vibelang-org/vibe/ast"
	"github.com/vibelang-org/vibe/engineerr"
	"github.com/vibelang-org/vibe/opcodes"
	"github.com/vibelang-org/vibe/values"
)

// handleLogicalCombine implements short-circuit `and`/`or` (§4.2, §9 open
// question — this implementation chooses genuine short-circuit: the right
// operand is never scheduled once the left operand decides the result).
func handleLogicalCombine(s *RuntimeState, in opcodes.LogicalCombine) error {
	left, ok := s.PopValue()
	if !ok {
		return engineerr.Runtime(in.Position(), nil, "value stack underflow in logical operator")
	}
	lb, ok := left.AsBoolean()
	if !ok {
		return engineerr.NonBoolean(in.Position(), string(in.Op_))
	}
	if (in.Op_ == ast.OpOr && lb) || (in.Op_ == ast.OpAnd && !lb) {
		s.LastResult = values.NewBoolean(lb)
		s.LastResultSource = "none"
		return nil
	}
	// Re-push the already-known left value now (synchronously) so it lands
	// on the value stack ahead of the right operand, which the scheduled
	// instructions below push only once they run in a later step. BinaryOp's
	// generic two-pop contract then sees (left, right) in the right order.
	s.PushValue(left)
	s.PushInstr(
		opcodes.ExecExpr{Expr: in.Right}, opcodes.PushValue{},
		opcodes.BinaryOp{Op_: in.Op_},
	)
	return nil
}

func handleBinaryOp(s *RuntimeState, in opcodes.BinaryOp) error {
	vals, ok := s.PopValues(2)
	if !ok {
		return engineerr.Runtime(in.Position(), nil, "value stack underflow in binary operator")
	}
	left, right := vals[0], vals[1]
	switch in.Op_ {
	case ast.OpAnd, ast.OpOr:
		lb, ok1 := left.AsBoolean()
		rb, ok2 := right.AsBoolean()
		if !ok1 || !ok2 {
			return engineerr.NonBoolean(in.Position(), string(in.Op_))
		}
		var result bool
		if in.Op_ == ast.OpAnd {
			result = lb && rb
		} else {
			result = lb || rb
		}
		s.LastResult = values.NewBoolean(result)
	case ast.OpEq:
		s.LastResult = values.NewBoolean(values.StrictEqual(left, right))
	case ast.OpNeq:
		s.LastResult = values.NewBoolean(!values.StrictEqual(left, right))
	case ast.OpLt, ast.OpLte, ast.OpGt, ast.OpGte:
		lf, ok1 := left.AsNumber()
		rf, ok2 := right.AsNumber()
		if !ok1 || !ok2 {
			return engineerr.TypeMismatch(in.Position(), "comparison operand", "number", "non-number")
		}
		var result bool
		switch in.Op_ {
		case ast.OpLt:
			result = lf < rf
		case ast.OpLte:
			result = lf <= rf
		case ast.OpGt:
			result = lf > rf
		case ast.OpGte:
			result = lf >= rf
		}
		s.LastResult = values.NewBoolean(result)
	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod:
		lf, ok1 := left.AsNumber()
		rf, ok2 := right.AsNumber()
		if !ok1 || !ok2 || !values.IsFiniteNumber(lf) || !values.IsFiniteNumber(rf) {
			return engineerr.Runtime(in.Position(), engineerr.ErrNonFiniteResult, "arithmetic requires finite numbers")
		}
		var result float64
		switch in.Op_ {
		case ast.OpAdd:
			result = lf + rf
		case ast.OpSub:
			result = lf - rf
		case ast.OpMul:
			result = lf * rf
		case ast.OpDiv:
			if rf == 0 {
				return engineerr.Runtime(in.Position(), engineerr.ErrDivisionByZero, "division by zero")
			}
			result = lf / rf
		case ast.OpMod:
			if rf == 0 {
				return engineerr.Runtime(in.Position(), engineerr.ErrDivisionByZero, "modulo by zero")
			}
			result = floatMod(lf, rf)
		}
		if !values.IsFiniteNumber(result) {
			return engineerr.Runtime(in.Position(), engineerr.ErrNonFiniteResult, "arithmetic produced a non-finite result")
		}
		s.LastResult = values.NewNumber(result)
	default:
		return engineerr.Runtime(in.Position(), nil, "unknown binary operator %q", in.Op_)
	}
	s.LastResultSource = "none"
	return nil
}

func floatMod(a, b float64) float64 {
	m := a - b*float64(int(a/b))
	return m
}

func handleUnaryOp(s *RuntimeState, in opcodes.UnaryOp) error {
	v, ok := s.PopValue()
	if !ok {
		return engineerr.Runtime(in.Position(), nil, "value stack underflow in unary operator")
	}
	switch in.Op_ {
	case ast.OpNot:
		b, ok := v.AsBoolean()
		if !ok {
			return engineerr.NonBoolean(in.Position(), "not")
		}
		s.LastResult = values.NewBoolean(!b)
	case ast.OpNegate:
		f, ok := v.AsNumber()
		if !ok || !values.IsFiniteNumber(f) {
			return engineerr.Runtime(in.Position(), engineerr.ErrNonFiniteResult, "unary '-' requires a finite number")
		}
		s.LastResult = values.NewNumber(-f)
	default:
		return engineerr.Runtime(in.Position(), nil, "unknown unary operator %q", in.Op_)
	}
	s.LastResultSource = "none"
	return nil
}

func handleIndexAccess(s *RuntimeState, in opcodes.IndexAccess) error {
	vals, ok := s.PopValues(2)
	if !ok {
		return engineerr.Runtime(in.Position(), nil, "value stack underflow indexing")
	}
	target, idxVal := vals[0], vals[1]
	idxF, ok := idxVal.AsNumber()
	if !ok || !isIntegral(idxF) {
		return engineerr.Runtime(in.Position(), engineerr.ErrTypeMismatch, "array index must be an integer")
	}
	idx := int(idxF)
	if arr, ok := target.AsArray(); ok {
		n := len(arr.Elements)
		if idx < 0 {
			idx += n
		}
		if idx < 0 || idx >= n {
			return engineerr.Runtime(in.Position(), engineerr.ErrIndexOutOfBounds, "array index out of bounds")
		}
		s.LastResult = arr.Elements[idx]
		s.LastResultSource = "none"
		return nil
	}
	if str, ok := target.AsText(); ok {
		runes := []rune(str)
		n := len(runes)
		if idx < 0 {
			idx += n
		}
		if idx < 0 || idx >= n {
			return engineerr.Runtime(in.Position(), engineerr.ErrIndexOutOfBounds, "string index out of bounds")
		}
		s.LastResult = values.NewText(string(runes[idx]))
		s.LastResultSource = "none"
		return nil
	}
	return engineerr.Runtime(in.Position(), engineerr.ErrNotIndexable, "value is not indexable")
}

func handleSliceAccess(s *RuntimeState, in opcodes.SliceAccess) error {
	n := 1
	if in.HasStart {
		n++
	}
	if in.HasEnd {
		n++
	}
	vals, ok := s.PopValues(n)
	if !ok {
		return engineerr.Runtime(in.Position(), nil, "value stack underflow slicing")
	}
	target := vals[0]
	rest := vals[1:]

	sliceLen := func() (int, error) {
		if arr, ok := target.AsArray(); ok {
			return len(arr.Elements), nil
		}
		if str, ok := target.AsText(); ok {
			return len([]rune(str)), nil
		}
		return 0, engineerr.Runtime(in.Position(), engineerr.ErrNotIndexable, "value is not sliceable")
	}
	length, err := sliceLen()
	if err != nil {
		return err
	}

	start, end := 0, length
	pos := 0
	if in.HasStart {
		f, ok := rest[pos].AsNumber()
		if !ok || !isIntegral(f) {
			return engineerr.Runtime(in.Position(), engineerr.ErrTypeMismatch, "slice start must be an integer")
		}
		start = int(f)
		pos++
	}
	if in.HasEnd {
		f, ok := rest[pos].AsNumber()
		if !ok || !isIntegral(f) {
			return engineerr.Runtime(in.Position(), engineerr.ErrTypeMismatch, "slice end must be an integer")
		}
		end = int(f)
	}
	if start < 0 {
		start += length
	}
	if end < 0 {
		end += length
	}
	if start < 0 {
		start = 0
	}
	if end > length {
		end = length
	}
	if start > end {
		start = end
	}

	if arr, ok := target.AsArray(); ok {
		s.LastResult = values.NewArrayValue(append([]*values.Value{}, arr.Elements[start:end]...))
	} else {
		str, _ := target.AsText()
		runes := []rune(str)
		s.LastResult = values.NewText(string(runes[start:end]))
	}
	s.LastResultSource = "none"
	return nil
}

func handleMemberAccess(s *RuntimeState, in opcodes.MemberAccess) error {
	target, ok := s.PopValue()
	if !ok {
		return engineerr.Runtime(in.Position(), nil, "value stack underflow in member access")
	}
	u := target.Underlying()
	if target.IsAIResult() && (in.Name == "toolCalls" || in.Name == "raw") {
		u = target // the AI-call metadata members win over the wrapped value's own
	}
	switch {
	case u.IsArray():
		switch in.Name {
		case "len", "push", "pop":
			s.LastResult = values.NewBoundMethodHandle(u, in.Name)
		default:
			return engineerr.Reference(in.Position(), in.Name)
		}
	case u.IsText():
		switch in.Name {
		case "len":
			s.LastResult = values.NewBoundMethodHandle(u, in.Name)
		default:
			return engineerr.Reference(in.Position(), in.Name)
		}
	case u.IsObject():
		obj, _ := u.AsObject()
		val, ok := obj.Get(in.Name)
		if !ok {
			return engineerr.Reference(in.Position(), in.Name)
		}
		s.LastResult = val
	case target.IsAIResult():
		ar := target.Data.(*values.AIResult)
		switch in.Name {
		case "toolCalls":
			elems := make([]*values.Value, len(ar.ToolCalls))
			for i, c := range ar.ToolCalls {
				elems[i] = values.NewText(c)
			}
			s.LastResult = values.NewArrayValue(elems)
		case "raw":
			s.LastResult = values.NewText(ar.Raw)
		default:
			return engineerr.Reference(in.Position(), in.Name)
		}
	default:
		return engineerr.Runtime(in.Position(), nil, "value has no member '%s'", in.Name)
	}
	s.LastResultSource = "none"
	return nil
}
