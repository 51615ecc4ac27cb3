package ast

// ImportStmt: import { a, b } from "path"
type ImportStmt struct {
	base
	Names []string
	Path  string
}

func (*ImportStmt) node() {}
func (*ImportStmt) stmt() {}

// ExportStmt marks a following declaration as exported from the module.
type ExportStmt struct {
	base
	Decl Stmt
}

func (*ExportStmt) node() {}
func (*ExportStmt) stmt() {}

// LetStmt: let name: Type = init
type LetStmt struct {
	base
	Name    string
	Type    *TypeAnnotation
	Init    Expr
	IsConst bool
}

func (*LetStmt) node() {}
func (*LetStmt) stmt() {}

// TypeAnnotation is a declared semantic type: text/json/prompt/boolean/number
// with an optional array suffix ("[]", repeatable).
type TypeAnnotation struct {
	Name       string
	ArrayDepth int
}

// ModelField is one `name: expr` pair inside a model declaration literal.
type ModelField struct {
	Name  string
	Value Expr
}

// ModelStmt: model m = { name: "x", apiKey: "k", ... }
type ModelStmt struct {
	base
	Name   string
	Fields []ModelField
}

func (*ModelStmt) node() {}
func (*ModelStmt) stmt() {}

// Param is a function/tool parameter.
type Param struct {
	Name string
	Type *TypeAnnotation
}

// FunctionStmt: function name(params): RetType { body }
type FunctionStmt struct {
	base
	Name       string
	Params     []Param
	ReturnType *TypeAnnotation
	Body       []Stmt
}

func (*FunctionStmt) node() {}
func (*FunctionStmt) stmt() {}

// ToolParamDoc captures one @param decorator.
type ToolParamDoc struct {
	Name        string
	Description string
}

// ToolStmt: tool name(p1: T1, ...): R @description "..." @param p1 "..." { body }
type ToolStmt struct {
	base
	Name        string
	Params      []Param
	ReturnType  *TypeAnnotation
	Description string
	ParamDocs   []ToolParamDoc
	Body        []Stmt
}

func (*ToolStmt) node() {}
func (*ToolStmt) stmt() {}

// ReturnStmt: return expr
type ReturnStmt struct {
	base
	Value Expr
}

func (*ReturnStmt) node() {}
func (*ReturnStmt) stmt() {}

// IfStmt: if cond { consequent } else { alternate }
type IfStmt struct {
	base
	Cond       Expr
	Consequent []Stmt
	Alternate  []Stmt // nil if no else
}

func (*IfStmt) node() {}
func (*IfStmt) stmt() {}

// ContextMode is the scope-exit policy attached to a loop.
type ContextMode int

const (
	ContextDefault ContextMode = iota // no trailing modifier: behaves as verbose
	ContextVerbose
	ContextForget
	ContextCompress
)

// CompressArgs holds the (at most two) arguments to a `compress(...)` modifier.
type CompressArgs struct {
	Arg1 Expr
	Arg2 Expr
}

// ForInStmt: for name in iterable { body } <ctx_mode>
type ForInStmt struct {
	base
	VarName  string
	Iterable Expr
	Body     []Stmt
	Mode     ContextMode
	Compress *CompressArgs
}

func (*ForInStmt) node() {}
func (*ForInStmt) stmt() {}

// WhileStmt: while cond { body } <ctx_mode>
type WhileStmt struct {
	base
	Cond     Expr
	Body     []Stmt
	Mode     ContextMode
	Compress *CompressArgs
}

func (*WhileStmt) node() {}
func (*WhileStmt) stmt() {}

// BlockStmt: a bare `{ ... }` — block scoping without a new frame.
type BlockStmt struct {
	base
	Body []Stmt
}

func (*BlockStmt) node() {}
func (*BlockStmt) stmt() {}

// ExprStmt wraps an expression used in statement position.
type ExprStmt struct {
	base
	X Expr
}

func (*ExprStmt) node() {}
func (*ExprStmt) stmt() {}
