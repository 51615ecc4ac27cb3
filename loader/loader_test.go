package loader_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibelang-org/vibe/ast"
	"github.com/vibelang-org/vibe/engine"
	"github.com/vibelang-org/vibe/loader"
	"github.com/vibelang-org/vibe/values"
)

func textType() *ast.TypeAnnotation { return &ast.TypeAnnotation{Name: "text"} }

type fakeParser struct {
	programs map[string]*ast.Program
}

func (f *fakeParser) Parse(path string) (*ast.Program, error) {
	p, ok := f.programs[path]
	if !ok {
		return nil, fmt.Errorf("fakeParser: no program registered for %q", path)
	}
	return p, nil
}

type fakeHostResolver struct {
	exports map[string]map[string]*values.Value
}

func (f *fakeHostResolver) Resolve(path string) (map[string]*values.Value, error) {
	exp, ok := f.exports[path]
	if !ok {
		return nil, fmt.Errorf("fakeHostResolver: no module at %q", path)
	}
	return exp, nil
}

func TestLoad_SourceModuleExportsLetBinding(t *testing.T) {
	greeting := &ast.Program{Statements: []ast.Stmt{
		&ast.ExportStmt{Decl: &ast.LetStmt{Name: "greeting", Type: textType(), Init: &ast.StringLit{Value: "hi"}}},
	}}
	parser := &fakeParser{programs: map[string]*ast.Program{"greeting.vibe": greeting}}

	entry := &ast.Program{Statements: []ast.Stmt{
		&ast.ImportStmt{Names: []string{"greeting"}, Path: "./greeting.vibe"},
	}}
	state := engine.InitialState(entry, engine.Options{})

	err := loader.Load(state, "main.vibe", parser, &fakeHostResolver{})
	require.NoError(t, err)

	mod, ok := state.SourceModules["greeting.vibe"]
	require.True(t, ok)
	v, ok := mod.Exports["greeting"]
	require.True(t, ok)
	text, ok := v.AsText()
	require.True(t, ok)
	assert.Equal(t, "hi", text)

	binding, ok := state.Registry.LookupImport("greeting")
	require.True(t, ok)
	assert.Equal(t, "greeting.vibe", binding.SourcePath)
}

func TestLoad_HostModuleExportsAreStoredVerbatim(t *testing.T) {
	host := &fakeHostResolver{exports: map[string]map[string]*values.Value{
		"util.ts": {"double": values.NewNumber(2)},
	}}
	entry := &ast.Program{Statements: []ast.Stmt{
		&ast.ImportStmt{Names: []string{"double"}, Path: "./util.ts"},
	}}
	state := engine.InitialState(entry, engine.Options{})

	err := loader.Load(state, "main.vibe", &fakeParser{}, host)
	require.NoError(t, err)

	mod, ok := state.TSModules["util.ts"]
	require.True(t, ok)
	n, ok := mod.Exports["double"].AsNumber()
	require.True(t, ok)
	assert.Equal(t, float64(2), n)
}

func TestLoad_DuplicateImportNameErrors(t *testing.T) {
	greeting := &ast.Program{Statements: []ast.Stmt{
		&ast.ExportStmt{Decl: &ast.LetStmt{Name: "greeting", Type: textType(), Init: &ast.StringLit{Value: "hi"}}},
	}}
	farewell := &ast.Program{Statements: []ast.Stmt{
		&ast.ExportStmt{Decl: &ast.LetStmt{Name: "greeting", Type: textType(), Init: &ast.StringLit{Value: "bye"}}},
	}}
	parser := &fakeParser{programs: map[string]*ast.Program{
		"greeting.vibe": greeting,
		"farewell.vibe": farewell,
	}}

	entry := &ast.Program{Statements: []ast.Stmt{
		&ast.ImportStmt{Names: []string{"greeting"}, Path: "./greeting.vibe"},
		&ast.ImportStmt{Names: []string{"greeting"}, Path: "./farewell.vibe"},
	}}
	state := engine.InitialState(entry, engine.Options{})

	err := loader.Load(state, "main.vibe", parser, &fakeHostResolver{})
	assert.Error(t, err)
}
