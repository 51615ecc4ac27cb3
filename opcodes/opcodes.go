// Package opcodes defines the low-level instruction set the engine executes.
// High-level AST nodes are lowered into short, fixed sequences of these
// instructions; every external interaction point corresponds to exactly one
// instruction, which is what makes suspension atomic. The instruction stack
// is a simple deque of this interface, consumed from the front (§ Runtime
// value / Invariant I3).
package opcodes

import (
	"github.com/vibelang-org/vibe/ast"
	"github.com/vibelang-org/vibe/values"
)

// Op identifies the concrete instruction variant, mainly for diagnostics and
// exhaustive-switch dispatch in the scheduler.
type Op int

const (
	OpExecStmt Op = iota
	OpExecExpr
	OpExecStmts
	OpDeclareVar
	OpAssignVar
	OpPushValue
	OpBuildObject
	OpBuildArray
	OpBuildRange
	OpCallFunction
	OpPushFrame
	OpPopFrame
	OpReturnValue
	OpEnterBlock
	OpExitBlock
	OpAICall
	OpHostEval
	OpIfBranch
	OpForInInit
	OpForInIterate
	OpWhileInit
	OpWhileIterate
	OpWhileCheck
	OpLiteral
	OpInterpolateString
	OpInterpolateTemplate
	OpBinaryOp
	OpUnaryOp
	OpIndexAccess
	OpSliceAccess
	OpMemberAccess
	OpExecToolDecl
	OpDeclareModel
	OpLogicalCombine
)

func (o Op) String() string {
	names := [...]string{
		"exec_stmt", "exec_expr", "exec_stmts", "declare_var", "assign_var",
		"push_value", "build_object", "build_array", "build_range",
		"call_function", "push_frame", "pop_frame", "return_value",
		"enter_block", "exit_block", "ai_call", "host_eval", "if_branch",
		"for_in_init", "for_in_iterate", "while_init", "while_iterate",
		"while_check", "literal", "interpolate_string", "interpolate_template",
		"binary_op", "unary_op", "index_access", "slice_access",
		"member_access", "exec_tool_decl", "declare_model", "logical_combine",
	}
	if int(o) < 0 || int(o) >= len(names) {
		return "unknown"
	}
	return names[o]
}

// Instruction is implemented by every opcode variant.
type Instruction interface {
	Op() Op
	Position() ast.Pos
}

type base struct {
	pos ast.Pos
}

func (b base) Position() ast.Pos { return b.pos }

func New(pos ast.Pos) base { return base{pos: pos} }

// ExecStmt executes a single statement.
type ExecStmt struct {
	base
	Stmt ast.Stmt
}

func (ExecStmt) Op() Op { return OpExecStmt }

// ExecExpr evaluates an expression into last_result.
type ExecExpr struct {
	base
	Expr ast.Expr
}

func (ExecExpr) Op() Op { return OpExecExpr }

// ExecStmts executes stmts[index], then re-schedules itself at index+1
// until the list is exhausted.
type ExecStmts struct {
	base
	Stmts []ast.Stmt
	Index int
}

func (ExecStmts) Op() Op { return OpExecStmts }

// DeclareVar records last_result under name in the current frame.
type DeclareVar struct {
	base
	Name     string
	IsConst  bool
	DeclType *ast.TypeAnnotation
}

func (DeclareVar) Op() Op { return OpDeclareVar }

// AssignVar reassigns an existing binding via scope-chain lookup.
type AssignVar struct {
	base
	Name string
}

func (AssignVar) Op() Op { return OpAssignVar }

// PushValue pushes last_result onto the value stack.
type PushValue struct{ base }

func (PushValue) Op() Op { return OpPushValue }

// BuildObject pops len(Keys) values and assembles an object literal.
type BuildObject struct {
	base
	Keys []string
}

func (BuildObject) Op() Op { return OpBuildObject }

// BuildArray pops N values and assembles an array literal.
type BuildArray struct {
	base
	N int
}

func (BuildArray) Op() Op { return OpBuildArray }

// BuildRange pops two numbers and builds an inclusive integer array.
type BuildRange struct{ base }

func (BuildRange) Op() Op { return OpBuildRange }

// CallFunction pops ArgCount argument values plus the callee and dispatches.
type CallFunction struct {
	base
	ArgCount int
}

func (CallFunction) Op() Op { return OpCallFunction }

// PushFrame pushes a fresh call frame.
type PushFrame struct {
	base
	Name string
}

func (PushFrame) Op() Op { return OpPushFrame }

// PopFrame pops the current call frame. No scope-exit context mode is
// applied: the frame's entries are discarded along with it, the
// "always-forget" behaviour of function calls described in §4.4 (loops
// never push frames).
type PopFrame struct{ base }

func (PopFrame) Op() Op { return OpPopFrame }

// ReturnValue validates last_result against the declared return type, pops
// the frame, and rewinds the instruction stack past the matching PopFrame.
type ReturnValue struct {
	base
	ReturnType *ast.TypeAnnotation
}

func (ReturnValue) Op() Op { return OpReturnValue }

// EnterBlock remembers the current local-name set for later EnterBlock/
// ExitBlock discard semantics.
type EnterBlock struct {
	base
	Saved []string
}

func (EnterBlock) Op() Op { return OpEnterBlock }

// ExitBlock deletes any local names added since the matching EnterBlock.
type ExitBlock struct {
	base
	Saved []string
}

func (ExitBlock) Op() Op { return OpExitBlock }

// AICall suspends execution awaiting an AI response.
type AICall struct {
	base
	ModelName string
	Context   ast.ContextSpec
	Kind      ast.AIKind
}

func (AICall) Op() Op { return OpAICall }

// HostEval suspends execution awaiting a host-language evaluation result.
type HostEval struct {
	base
	Params []string
	Body   string
}

func (HostEval) Op() Op { return OpHostEval }

// IfBranch dispatches to consequent or alternate based on last_result
// (which must already be boolean).
type IfBranch struct {
	base
	Consequent []ast.Stmt
	Alternate  []ast.Stmt // nil if no else
}

func (IfBranch) Op() Op { return OpIfBranch }

// ForInInit coerces the just-evaluated iterable and schedules the first
// ForInIterate.
type ForInInit struct {
	base
	Stmt *ast.ForInStmt
}

func (ForInInit) Op() Op { return OpForInInit }

// ForInIterate runs one loop iteration or, past the end, applies the
// configured context mode and cleans up.
type ForInIterate struct {
	base
	VarName    string
	Items      *values.Array
	Index      int
	Body       []ast.Stmt
	Saved      []string
	Mode       ast.ContextMode
	Compress   *ast.CompressArgs
	Label      string
	EntryIndex int
}

func (ForInIterate) Op() Op { return OpForInIterate }

// WhileInit checks the condition for the first time.
type WhileInit struct {
	base
	Stmt  *ast.WhileStmt
	Saved []string
}

func (WhileInit) Op() Op { return OpWhileInit }

// WhileIterate runs the loop body once the condition has been confirmed
// true, then schedules ExitBlock, a re-check of the condition, and
// WhileCheck.
type WhileIterate struct {
	base
	Stmt       *ast.WhileStmt
	Saved      []string
	EntryIndex int
}

func (WhileIterate) Op() Op { return OpWhileIterate }

// WhileCheck re-examines last_result after the condition has been
// re-evaluated and either repeats or exits the loop.
type WhileCheck struct {
	base
	Stmt       *ast.WhileStmt
	Saved      []string
	EntryIndex int
}

func (WhileCheck) Op() Op { return OpWhileCheck }

// Literal sets last_result to a precomputed value (no evaluation needed).
type Literal struct {
	base
	Value *values.Value
}

func (Literal) Op() Op { return OpLiteral }

// InterpolateString substitutes "{name}" placeholders via scope-chain walk.
type InterpolateString struct {
	base
	Template string
}

func (InterpolateString) Op() Op { return OpInterpolateString }

// InterpolateTemplate substitutes "${name}" placeholders.
type InterpolateTemplate struct {
	base
	Template string
}

func (InterpolateTemplate) Op() Op { return OpInterpolateTemplate }

// BinaryOp pops two values and applies an operator.
type BinaryOp struct {
	base
	Op_ ast.BinaryOp
}

func (BinaryOp) Op() Op { return OpBinaryOp }

// UnaryOp pops one value and applies an operator.
type UnaryOp struct {
	base
	Op_ ast.UnaryOp
}

func (UnaryOp) Op() Op { return OpUnaryOp }

// IndexAccess pops target and index and performs integer indexing.
type IndexAccess struct{ base }

func (IndexAccess) Op() Op { return OpIndexAccess }

// SliceAccess pops target plus optional start/end and performs slicing.
type SliceAccess struct {
	base
	HasStart bool
	HasEnd   bool
}

func (SliceAccess) Op() Op { return OpSliceAccess }

// MemberAccess pops target and resolves a named field/bound method.
type MemberAccess struct {
	base
	Name string
}

func (MemberAccess) Op() Op { return OpMemberAccess }

// ExecToolDecl registers a tool declaration into the per-state tool registry.
type ExecToolDecl struct {
	base
	Decl *ast.ToolStmt
}

func (ExecToolDecl) Op() Op { return OpExecToolDecl }

// DeclareModel pops len(Fields) values in field order and binds a
// model-handle with is_const = true.
type DeclareModel struct {
	base
	Name   string
	Fields []string
}

func (DeclareModel) Op() Op { return OpDeclareModel }

// LogicalCombine implements short-circuit `and`/`or`: the left operand's
// value is already on top of the value stack. If it decides the result, the
// right operand is never scheduled.
type LogicalCombine struct {
	base
	Op_   ast.BinaryOp
	Right ast.Expr
}

func (LogicalCombine) Op() Op { return OpLogicalCombine }
