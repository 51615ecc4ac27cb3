package engine

import (
	"github.com/vibelang-org/vibe/engineerr"
	"github.com/vibelang-org/vibe/opcodes"
)

// Step pops and executes exactly one instruction, rebuilding the context
// views first (§4.1). It is the engine's control heart: every other
// advancement function is expressed in terms of repeated Step calls.
func Step(s *RuntimeState) *RuntimeState {
	if s.Status != StatusRunning {
		return s // idempotent at terminal/suspended status (§8)
	}
	s.RebuildContexts()

	instr, ok := s.PopInstr()
	if !ok {
		s.Status = StatusCompleted
		return s
	}

	defer func() {
		if r := recover(); r != nil {
			s.Fail(engineerr.Runtime(instr.Position(), nil, "internal error: %v", r))
		}
	}()

	if err := dispatch(s, instr); err != nil {
		s.Fail(asEngineError(instr, err))
		return s
	}
	if len(s.InstructionStack) == 0 && s.Status == StatusRunning {
		s.Status = StatusCompleted
	}
	return s
}

func asEngineError(instr opcodes.Instruction, err error) *engineerr.EngineError {
	if ee, ok := err.(*engineerr.EngineError); ok {
		return ee
	}
	return engineerr.Runtime(instr.Position(), err, "%v", err)
}

// StepN advances up to n instructions, stopping early on any non-running
// status.
func StepN(s *RuntimeState, n int) *RuntimeState {
	for i := 0; i < n && s.Status == StatusRunning; i++ {
		Step(s)
	}
	return s
}

// RunUntilPause drives the machine forward until status leaves `running`.
func RunUntilPause(s *RuntimeState) *RuntimeState {
	for s.Status == StatusRunning {
		Step(s)
	}
	return s
}

// StepUntil advances while predicate(state, nextInstruction) is false,
// peeking the head instruction before each step. Useful for debuggers and
// the test suite ("step until statement type X" / "step until op Y").
func StepUntil(s *RuntimeState, predicate func(*RuntimeState, opcodes.Instruction) bool) *RuntimeState {
	for s.Status == StatusRunning {
		if len(s.InstructionStack) == 0 {
			Step(s) // let it settle into completed
			break
		}
		if predicate(s, s.InstructionStack[0]) {
			break
		}
		Step(s)
	}
	return s
}

// PauseExecution manually suspends a running state without a pending
// payload; ResumeExecution reverses it.
func PauseExecution(s *RuntimeState) *RuntimeState {
	if s.Status == StatusRunning {
		s.Status = StatusPaused
	}
	return s
}

// ResumeExecution reverses PauseExecution.
func ResumeExecution(s *RuntimeState) *RuntimeState {
	if s.Status == StatusPaused {
		s.Status = StatusRunning
	}
	return s
}

func dispatch(s *RuntimeState, instr opcodes.Instruction) error {
	switch in := instr.(type) {
	case opcodes.ExecStmt:
		return handleExecStmt(s, in)
	case opcodes.ExecExpr:
		return handleExecExpr(s, in)
	case opcodes.ExecStmts:
		return handleExecStmts(s, in)
	case opcodes.DeclareVar:
		return handleDeclareVar(s, in)
	case opcodes.AssignVar:
		return handleAssignVar(s, in)
	case opcodes.PushValue:
		s.PushValue(s.LastResult)
		return nil
	case opcodes.BuildObject:
		return handleBuildObject(s, in)
	case opcodes.BuildArray:
		return handleBuildArray(s, in)
	case opcodes.BuildRange:
		return handleBuildRange(s, in)
	case opcodes.CallFunction:
		return handleCallFunction(s, in)
	case opcodes.PushFrame:
		return nil // reserved: function-call frame construction is atomic within CallFunction (§4.4)
	case opcodes.PopFrame:
		return handlePopFrame(s, in)
	case opcodes.ReturnValue:
		return handleReturnValue(s, in)
	case opcodes.EnterBlock:
		return nil // pure marker; ExitBlock carries the same Saved snapshot
	case opcodes.ExitBlock:
		return handleExitBlock(s, in)
	case opcodes.AICall:
		return handleAICall(s, in)
	case opcodes.HostEval:
		return handleHostEval(s, in)
	case opcodes.IfBranch:
		return handleIfBranch(s, in)
	case opcodes.ForInInit:
		return handleForInInit(s, in)
	case opcodes.ForInIterate:
		return handleForInIterate(s, in)
	case opcodes.WhileInit:
		return handleWhileInit(s, in)
	case opcodes.WhileIterate:
		return handleWhileIterate(s, in)
	case opcodes.WhileCheck:
		return handleWhileCheck(s, in)
	case opcodes.Literal:
		s.LastResult = in.Value
		s.LastResultSource = "none"
		return nil
	case opcodes.InterpolateString:
		return handleInterpolateString(s, in)
	case opcodes.InterpolateTemplate:
		return handleInterpolateTemplate(s, in)
	case opcodes.BinaryOp:
		return handleBinaryOp(s, in)
	case opcodes.UnaryOp:
		return handleUnaryOp(s, in)
	case opcodes.LogicalCombine:
		return handleLogicalCombine(s, in)
	case opcodes.IndexAccess:
		return handleIndexAccess(s, in)
	case opcodes.SliceAccess:
		return handleSliceAccess(s, in)
	case opcodes.MemberAccess:
		return handleMemberAccess(s, in)
	case opcodes.ExecToolDecl:
		s.Registry.RegisterTool(in.Decl)
		return nil
	case opcodes.DeclareModel:
		return handleDeclareModel(s, in)
	default:
		return engineerr.Runtime(instr.Position(), nil, "unhandled opcode %s", instr.Op())
	}
}
