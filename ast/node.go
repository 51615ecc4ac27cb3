// Package ast defines the tagged tree produced by the (external) parser for
// the vibe language: an ordered program of statements built from a closed set
// of expression and statement node types. The engine never constructs these
// nodes itself; it only walks them.
package ast

// Pos records a source location for diagnostics.
type Pos struct {
	Line   int
	Column int
	File   string
}

// Node is implemented by every statement and expression node. Dispatch over
// nodes is by type switch, not by virtual method, matching the closed tagged
// union described by the language grammar.
type Node interface {
	node()
	Position() Pos
}

// Program is the root node: an ordered list of top-level statements.
type Program struct {
	Statements []Stmt
}

// Stmt is implemented by every statement node.
type Stmt interface {
	Node
	stmt()
}

// Expr is implemented by every expression node.
type Expr interface {
	Node
	expr()
}

type base struct {
	Pos Pos
}

func (b base) Position() Pos { return b.Pos }
