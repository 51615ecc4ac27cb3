// Package programs is the stand-in for the (out-of-scope) lexer/parser: the
// engine never constructs ast.Program values itself (see ast.Node's doc
// comment), so cmd/vibe and server need some other way to hand it one.
// Rather than inventing a source-text grammar and a parser to go with it —
// which would just be the excluded frontend wearing a different hat — this
// package hand-builds a small, fixed set of named programs directly as
// ast.Program literals, the same way the engine's own tests construct
// fixtures. An embedder with a real frontend would plug it in here instead.
package programs

import "github.com/vibelang-org/vibe/ast"

// Program bundles a name and a one-line description with the function that
// builds its ast.Program.
type Program struct {
	Name        string
	Description string
	Build       func() *ast.Program
}

// All is the fixed registry consulted by cmd/vibe and server.API; both
// reject a session request naming anything not listed here.
var All = map[string]Program{
	"greeting": {
		Name:        "greeting",
		Description: "declares a model, greets a name via a `do` call",
		Build:       buildGreeting,
	},
	"weather-tool": {
		Name:        "weather-tool",
		Description: "declares a tool and drives it from a `vibe` call",
		Build:       buildWeatherTool,
	},
	"native-math": {
		Name:        "native-math",
		Description: "computes a result with an inline `host` escape",
		Build:       buildNativeMath,
	},
}

func ident(name string) *ast.Ident { return &ast.Ident{Name: name} }

func textType() *ast.TypeAnnotation  { return &ast.TypeAnnotation{Name: "text"} }
func numberType() *ast.TypeAnnotation { return &ast.TypeAnnotation{Name: "number"} }

// buildGreeting: a minimal `do` interaction.
//
//	model greeter = { name: "gpt-4o-mini", provider: "openai", maxRetriesOnError: 2 }
//	let name: text = "vibe"
//	let greeting: text = do `Say hello to ${name}` greeter default
//	greeting
func buildGreeting() *ast.Program {
	return &ast.Program{Statements: []ast.Stmt{
		&ast.ModelStmt{
			Name: "greeter",
			Fields: []ast.ModelField{
				{Name: "name", Value: &ast.StringLit{Value: "gpt-4o-mini"}},
				{Name: "provider", Value: &ast.StringLit{Value: "openai"}},
				{Name: "maxRetriesOnError", Value: &ast.NumberLit{Value: 2}},
			},
		},
		&ast.LetStmt{Name: "name", Type: textType(), Init: &ast.StringLit{Value: "vibe"}},
		&ast.LetStmt{
			Name: "greeting",
			Type: textType(),
			Init: &ast.AIExpr{
				Kind:    ast.AIDo,
				Prompt:  &ast.TemplateLit{Value: "Say hello to ${name}"},
				Model:   "greeter",
				Context: ast.ContextSpec{Kind: ast.ContextSpecDefault},
			},
		},
		&ast.ExprStmt{X: ident("greeting")},
	}}
}

// buildWeatherTool declares a tool the engine can run in-process
// (tools.MCPBridge.Execute) and a `vibe` interaction expected to invoke it.
//
//	tool lookupWeather(city: text): text @description "current weather for a city" @param city "city name" {
//	    return `sunny in ${city}`
//	}
//	model agent = { name: "gpt-4o", provider: "openai", tools: ["lookupWeather"] }
//	let report: text = vibe `What is the weather in Paris?` agent
//	report
func buildWeatherTool() *ast.Program {
	return &ast.Program{Statements: []ast.Stmt{
		&ast.ToolStmt{
			Name:        "lookupWeather",
			Params:      []ast.Param{{Name: "city", Type: textType()}},
			ReturnType:  textType(),
			Description: "current weather for a city",
			ParamDocs:   []ast.ToolParamDoc{{Name: "city", Description: "city name"}},
			Body: []ast.Stmt{
				&ast.ReturnStmt{Value: &ast.TemplateLit{Value: "sunny in ${city}"}},
			},
		},
		&ast.ModelStmt{
			Name: "agent",
			Fields: []ast.ModelField{
				{Name: "name", Value: &ast.StringLit{Value: "gpt-4o"}},
				{Name: "provider", Value: &ast.StringLit{Value: "openai"}},
				{Name: "tools", Value: &ast.ArrayLit{Elements: []ast.Expr{&ast.StringLit{Value: "lookupWeather"}}}},
			},
		},
		&ast.LetStmt{
			Name: "report",
			Type: textType(),
			Init: &ast.AIExpr{
				Kind:    ast.AIVibe,
				Prompt:  &ast.StringLit{Value: "What is the weather in Paris?"},
				Model:   "agent",
				Context: ast.ContextSpec{Kind: ast.ContextSpecDefault},
			},
		},
		&ast.ExprStmt{X: ident("report")},
	}}
}

// buildNativeMath exercises hostlang.YaegiEvaluator with a two-argument
// escape.
//
//	let a: number = 12
//	let b: number = 30
//	let total: number = host(a, b) { return a.(float64) + b.(float64) }
//	total
func buildNativeMath() *ast.Program {
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
		&ast.ExprStmt{X: ident("total")},
	}}
}
