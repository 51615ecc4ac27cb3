package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibelang-org/vibe/ast"
	"github.com/vibelang-org/vibe/engine"
	"github.com/vibelang-org/vibe/values"
)

func textType() *ast.TypeAnnotation  { return &ast.TypeAnnotation{Name: "text"} }
func numberType() *ast.TypeAnnotation { return &ast.TypeAnnotation{Name: "number"} }

// greetingProgram mirrors programs.buildGreeting: a model declaration, a
// `do` call against it, and the resulting binding returned as the program's
// value.
func greetingProgram() *ast.Program {
	return &ast.Program{Statements: []ast.Stmt{
		&ast.ModelStmt{
			Name: "greeter",
			Fields: []ast.ModelField{
				{Name: "name", Value: &ast.StringLit{Value: "gpt-4o-mini"}},
				{Name: "provider", Value: &ast.StringLit{Value: "openai"}},
			},
		},
		&ast.LetStmt{Name: "name", Type: textType(), Init: &ast.StringLit{Value: "vibe"}},
		&ast.LetStmt{
			Name: "greeting",
			Type: textType(),
			Init: &ast.AIExpr{
				Kind:    ast.AIDo,
				Prompt:  &ast.StringLit{Value: "Say hello"},
				Model:   "greeter",
				Context: ast.ContextSpec{Kind: ast.ContextSpecDefault},
			},
		},
		&ast.ExprStmt{X: &ast.Ident{Name: "greeting"}},
	}}
}

func TestRunUntilPause_SuspendsOnAIDo(t *testing.T) {
	s := engine.InitialState(greetingProgram(), engine.Options{})
	s = engine.RunUntilPause(s)

	require.Equal(t, engine.StatusAwaitingAI, s.Status)
	require.NotNil(t, s.PendingAI)
	assert.Equal(t, "greeter", s.PendingAI.ModelName)
	assert.Equal(t, ast.AIDo, s.PendingAI.Kind)
	assert.Equal(t, "Say hello", s.PendingAI.Prompt)
}

func TestResumeWithAIResponse_CompletesProgram(t *testing.T) {
	s := engine.InitialState(greetingProgram(), engine.Options{})
	s = engine.RunUntilPause(s)
	require.Equal(t, engine.StatusAwaitingAI, s.Status)

	s, err := engine.ResumeWithAIResponse(s, "hello, vibe", nil)
	require.NoError(t, err)
	assert.Equal(t, engine.StatusRunning, s.Status)

	s = engine.RunUntilPause(s)
	require.Equal(t, engine.StatusCompleted, s.Status)

	text, ok := s.LastResult.AsText()
	require.True(t, ok)
	assert.Equal(t, "hello, vibe", text)

	require.Len(t, s.AIHistory, 1)
	assert.Equal(t, "greeter", s.AIHistory[0].Model)
	assert.Equal(t, "hello, vibe", s.AIHistory[0].Response)
}

func TestResumeWithAIResponse_WrongStatusErrors(t *testing.T) {
	s := engine.InitialState(greetingProgram(), engine.Options{})
	_, err := engine.ResumeWithAIResponse(s, "too early", nil)
	assert.Error(t, err)
}

// nativeMathProgram mirrors programs.buildNativeMath: two declared numbers
// combined through a host escape.
func nativeMathProgram() *ast.Program {
	return &ast.Program{Statements: []ast.Stmt{
		&ast.LetStmt{Name: "a", Type: numberType(), Init: &ast.NumberLit{Value: 12}},
		&ast.LetStmt{Name: "b", Type: numberType(), Init: &ast.NumberLit{Value: 30}},
		&ast.LetStmt{
			Name: "total",
			Type: numberType(),
			Init: &ast.HostBlockExpr{
				Params: []string{"a", "b"},
				Body:   "return a.(float64) + b.(float64)",
			},
		},
		&ast.ExprStmt{X: &ast.Ident{Name: "total"}},
	}}
}

func TestRunUntilPause_SuspendsOnHostEscape(t *testing.T) {
	s := engine.InitialState(nativeMathProgram(), engine.Options{})
	s = engine.RunUntilPause(s)

	require.Equal(t, engine.StatusAwaitingHost, s.Status)
	require.NotNil(t, s.PendingHost)
}

func TestResumeWithHostResult_CompletesProgram(t *testing.T) {
	s := engine.InitialState(nativeMathProgram(), engine.Options{})
	s = engine.RunUntilPause(s)
	require.Equal(t, engine.StatusAwaitingHost, s.Status)

	s, err := engine.ResumeWithHostResult(s, values.NewNumber(42))
	require.NoError(t, err)

	s = engine.RunUntilPause(s)
	require.Equal(t, engine.StatusCompleted, s.Status)

	n, ok := s.LastResult.AsNumber()
	require.True(t, ok)
	assert.Equal(t, float64(42), n)
}
