// Package engineerr implements the engine's typed error taxonomy (§7):
// LexerError, ParserError, SemanticError, ReferenceError, TypeError,
// AssignmentError, RuntimeError, ImportError. Every error carries a source
// location and wraps a sentinel base so callers can use errors.Is.
package engineerr

import (
	"errors"
	"fmt"

	"github.com/vibelang-org/vibe/ast"
)

// Kind is the error taxonomy discriminant.
type Kind string

const (
	KindLexer      Kind = "LexerError"
	KindParser     Kind = "ParserError"
	KindSemantic   Kind = "SemanticError"
	KindReference  Kind = "ReferenceError"
	KindType       Kind = "TypeError"
	KindAssignment Kind = "AssignmentError"
	KindRuntime    Kind = "RuntimeError"
	KindImport     Kind = "ImportError"
)

// Sentinel base errors, matched with errors.Is via EngineError.Unwrap.
var (
	ErrUndefinedVariable  = errors.New("undefined variable")
	ErrConstReassignment  = errors.New("cannot reassign const")
	ErrTypeMismatch       = errors.New("type mismatch")
	ErrNonBoolean         = errors.New("condition must be boolean")
	ErrIndexOutOfBounds   = errors.New("index out of bounds")
	ErrNotIndexable       = errors.New("value is not indexable")
	ErrNotCallable        = errors.New("value is not callable")
	ErrToolNotCallable    = errors.New("tools cannot be called from user code")
	ErrDivisionByZero     = errors.New("division by zero")
	ErrNonFiniteResult    = errors.New("arithmetic on non-finite operand")
	ErrBadRangeBounds     = errors.New("invalid range bounds")
	ErrImportCollision    = errors.New("import name already claimed")
	ErrModuleNotFound     = errors.New("module not found")
	ErrUnknownModel       = errors.New("model is not bound to a model-handle")
)

// EngineError is the concrete Go type backing the §7 taxonomy.
type EngineError struct {
	Kind     Kind
	Message  string
	Base     error
	Pos      ast.Pos
	Snippet  string
}

func (e *EngineError) Error() string {
	loc := ""
	if e.Pos.Line > 0 {
		loc = fmt.Sprintf(" at %s:%d:%d", e.Pos.File, e.Pos.Line, e.Pos.Column)
	}
	return fmt.Sprintf("%s: %s%s", e.Kind, e.Message, loc)
}

func (e *EngineError) Unwrap() error { return e.Base }

func (e *EngineError) Is(target error) bool {
	if e.Base == nil {
		return false
	}
	return errors.Is(e.Base, target)
}

// New builds an EngineError of the given kind and base sentinel.
func New(kind Kind, base error, pos ast.Pos, format string, args ...interface{}) *EngineError {
	return &EngineError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Base:    base,
		Pos:     pos,
	}
}

// Reference/Type/Assignment/Runtime/Import convenience constructors, mirroring
// the shapes the scheduler raises most often.

func Reference(pos ast.Pos, name string) *EngineError {
	return New(KindReference, ErrUndefinedVariable, pos, "undefined variable '%s'", name)
}

func TypeMismatch(pos ast.Pos, name, expected, received string) *EngineError {
	return New(KindType, ErrTypeMismatch, pos, "variable '%s': expected %s, received %s", name, expected, received)
}

func NonBoolean(pos ast.Pos, context string) *EngineError {
	return New(KindType, ErrNonBoolean, pos, "%s condition must be a boolean", context)
}

func ConstReassignment(pos ast.Pos, name string) *EngineError {
	return New(KindAssignment, ErrConstReassignment, pos, "cannot reassign const '%s'", name)
}

func Runtime(pos ast.Pos, base error, format string, args ...interface{}) *EngineError {
	return New(KindRuntime, base, pos, format, args...)
}

func Import(pos ast.Pos, format string, args ...interface{}) *EngineError {
	return New(KindImport, ErrImportCollision, pos, format, args...)
}
