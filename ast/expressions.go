package ast

// Ident is a bare identifier reference.
type Ident struct {
	base
	Name string
}

func (*Ident) node() {}
func (*Ident) expr() {}

// StringLit is a plain string literal, eligible for "{name}" interpolation.
type StringLit struct {
	base
	Value string
}

func (*StringLit) node() {}
func (*StringLit) expr() {}

// TemplateLit is a `${name}`-interpolated template string literal.
type TemplateLit struct {
	base
	Value string
}

func (*TemplateLit) node() {}
func (*TemplateLit) expr() {}

// NumberLit is a finite double literal.
type NumberLit struct {
	base
	Value float64
}

func (*NumberLit) node() {}
func (*NumberLit) expr() {}

// BoolLit is a boolean literal.
type BoolLit struct {
	base
	Value bool
}

func (*BoolLit) node() {}
func (*BoolLit) expr() {}

// NullLit is the null literal.
type NullLit struct{ base }

func (*NullLit) node() {}
func (*NullLit) expr() {}

// ObjectField is one key/value pair of an object literal, order preserving.
type ObjectField struct {
	Key   string
	Value Expr
}

// ObjectLit is an insertion-ordered object literal.
type ObjectLit struct {
	base
	Fields []ObjectField
}

func (*ObjectLit) node() {}
func (*ObjectLit) expr() {}

// ArrayLit is an ordered array literal.
type ArrayLit struct {
	base
	Elements []Expr
}

func (*ArrayLit) node() {}
func (*ArrayLit) expr() {}

// BinaryOp is the set of binary operators, lowest to highest precedence as
// grouped by the grammar.
type BinaryOp string

const (
	OpOr   BinaryOp = "or"
	OpAnd  BinaryOp = "and"
	OpEq   BinaryOp = "=="
	OpNeq  BinaryOp = "!="
	OpLt   BinaryOp = "<"
	OpLte  BinaryOp = "<="
	OpGt   BinaryOp = ">"
	OpGte  BinaryOp = ">="
	OpAdd  BinaryOp = "+"
	OpSub  BinaryOp = "-"
	OpMul  BinaryOp = "*"
	OpDiv  BinaryOp = "/"
	OpMod  BinaryOp = "%"
)

// BinaryExpr: left op right.
type BinaryExpr struct {
	base
	Op          BinaryOp
	Left, Right Expr
}

func (*BinaryExpr) node() {}
func (*BinaryExpr) expr() {}

// UnaryOp is the set of unary operators.
type UnaryOp string

const (
	OpNot   UnaryOp = "not"
	OpNegate UnaryOp = "-"
)

// UnaryExpr: op operand.
type UnaryExpr struct {
	base
	Op      UnaryOp
	Operand Expr
}

func (*UnaryExpr) node() {}
func (*UnaryExpr) expr() {}

// RangeExpr: a..b, inclusive integer array.
type RangeExpr struct {
	base
	Start, End Expr
}

func (*RangeExpr) node() {}
func (*RangeExpr) expr() {}

// IndexExpr: target[index].
type IndexExpr struct {
	base
	Target Expr
	Index  Expr
}

func (*IndexExpr) node() {}
func (*IndexExpr) expr() {}

// SliceExpr: target[start, end] with exclusive end; Start/End may be nil.
type SliceExpr struct {
	base
	Target     Expr
	Start, End Expr
}

func (*SliceExpr) node() {}
func (*SliceExpr) expr() {}

// MemberExpr: target.name (field access or bound-method reference).
type MemberExpr struct {
	base
	Target Expr
	Name   string
}

func (*MemberExpr) node() {}
func (*MemberExpr) expr() {}

// AssignExpr: target = value (target is an Ident, IndexExpr, or MemberExpr).
type AssignExpr struct {
	base
	Target Expr
	Value  Expr
}

func (*AssignExpr) node() {}
func (*AssignExpr) expr() {}

// CallExpr: callee(args...).
type CallExpr struct {
	base
	Callee Expr
	Args   []Expr
}

func (*CallExpr) node() {}
func (*CallExpr) expr() {}

// AIKind distinguishes the two AI expression forms, plus plain user-input ask.
type AIKind string

const (
	AIDo   AIKind = "do"
	AIVibe AIKind = "vibe"
	AIAsk  AIKind = "ask"
)

// ContextSpecKind selects how an AI call's context is assembled (§4.5).
type ContextSpecKind int

const (
	ContextSpecLocal ContextSpecKind = iota
	ContextSpecDefault
	ContextSpecVariable
)

// ContextSpec is the parsed context selector trailing an AI expression.
type ContextSpec struct {
	Kind ContextSpecKind
	Var  string // set when Kind == ContextSpecVariable
}

// AIExpr: `do prompt model context` or `vibe prompt model [cache]`.
type AIExpr struct {
	base
	Kind    AIKind
	Prompt  Expr
	Model   string // identifier bound to a model-handle
	Context ContextSpec
	Cache   bool // vibe's optional cache flag
}

func (*AIExpr) node() {}
func (*AIExpr) expr() {}

// HostBlockExpr is an inline escape to the host language: `host { ... }`.
type HostBlockExpr struct {
	base
	Params []string // free variable names captured from the enclosing scope
	Body   string   // raw host-language source
}

func (*HostBlockExpr) node() {}
func (*HostBlockExpr) expr() {}
