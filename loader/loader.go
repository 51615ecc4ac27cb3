// Package loader implements the module loader (§4.7): it runs once, before
// execution, over a program's imports, resolving each `import { a, b } from
// "p"` relative to the importing file. Two source kinds are distinguished by
// extension: native host (.ts/.js) and same-language (.vibe). Parsing itself
// and resolving a host module's export table are both external-collaborator
// concerns (§1); the loader only needs narrow seams onto them.
package loader

import (
	"fmt"
	"strings"

	"github.com/vibelang-org/vibe/ast"
	"github.com/vibelang-org/vibe/engine"
	"github.com/vibelang-org/vibe/engineerr"
	"github.com/vibelang-org/vibe/registry"
	"github.com/vibelang-org/vibe/values"
)

// SourceParser parses one same-language source file into a Program. The
// engine never constructs AST nodes itself (§1); the loader borrows this one
// seam to recurse into imported modules.
type SourceParser interface {
	Parse(path string) (*ast.Program, error)
}

// HostResolver obtains the export table of a native host-language module by
// delegating to the host runtime (§4.7: "exactly how is a collaborator
// concern").
type HostResolver interface {
	Resolve(path string) (map[string]*values.Value, error)
}

func isHostModule(path string) bool {
	return strings.HasSuffix(path, ".ts") || strings.HasSuffix(path, ".js")
}

type loading struct {
	state    *engine.RuntimeState
	parser   SourceParser
	host     HostResolver
	visiting map[string]bool
}

// Load resolves every import transitively reachable from entryFile's program
// (leaves first), populating state.TSModules, state.SourceModules, and
// state.Registry's flat imported_names table.
func Load(state *engine.RuntimeState, entryFile string, parser SourceParser, host HostResolver) error {
	l := &loading{state: state, parser: parser, host: host, visiting: make(map[string]bool)}
	return l.loadImports(entryFile, state.Program)
}

func (l *loading) loadImports(fromFile string, prog *ast.Program) error {
	for _, stmt := range prog.Statements {
		imp, ok := stmt.(*ast.ImportStmt)
		if !ok {
			continue
		}
		resolved := registry.NormalizeModulePath(fromFile, imp.Path)

		var kind registry.ImportKind
		if isHostModule(resolved) {
			kind = registry.ImportKindHost
			if _, err := l.loadHostModule(resolved); err != nil {
				return err
			}
		} else {
			kind = registry.ImportKindSource
			if _, err := l.loadSourceModule(resolved); err != nil {
				return err
			}
		}

		for _, name := range imp.Names {
			if existing, ok := l.state.Registry.BindImport(name, resolved, kind); !ok {
				return engineerr.Import(imp.Position(), "'%s' already imported from '%s'", name, existing.SourcePath)
			}
		}
	}
	return nil
}

func (l *loading) loadHostModule(path string) (*engine.HostModule, error) {
	if mod, ok := l.state.TSModules[path]; ok {
		return mod, nil
	}
	exports, err := l.host.Resolve(path)
	if err != nil {
		return nil, engineerr.New(engineerr.KindImport, engineerr.ErrModuleNotFound, ast.Pos{}, "host module %q: %v", path, err)
	}
	mod := &engine.HostModule{Path: path, Exports: exports}
	l.state.TSModules[path] = mod
	return mod, nil
}

// loadSourceModule recursively loads path's own imports (leaves first), runs
// its top-level statements to completion in a throwaway frame to obtain the
// runtime values of its exported variables/models, and registers its
// exported functions as imported-source-function handles.
func (l *loading) loadSourceModule(path string) (*engine.SourceModule, error) {
	if mod, ok := l.state.SourceModules[path]; ok {
		return mod, nil
	}
	if l.visiting[path] {
		return nil, engineerr.New(engineerr.KindImport, engineerr.ErrModuleNotFound, ast.Pos{}, "import cycle detected at %q", path)
	}
	l.visiting[path] = true
	defer delete(l.visiting, path)

	prog, err := l.parser.Parse(path)
	if err != nil {
		return nil, engineerr.New(engineerr.KindImport, engineerr.ErrModuleNotFound, ast.Pos{}, "module %q: %v", path, err)
	}

	if err := l.loadImports(path, prog); err != nil {
		return nil, err
	}

	for _, stmt := range prog.Statements {
		if fn, ok := stmt.(*ast.FunctionStmt); ok {
			l.state.Registry.RegisterFunction(fn)
		}
		if exp, ok := stmt.(*ast.ExportStmt); ok {
			if fn, ok := exp.Decl.(*ast.FunctionStmt); ok {
				l.state.Registry.RegisterFunction(fn)
			}
		}
	}

	sub := engine.InitialState(prog, engine.Options{RootDir: l.state.RootDir})
	sub.Registry = l.state.Registry
	sub.TSModules = l.state.TSModules
	sub.SourceModules = l.state.SourceModules
	engine.RunUntilPause(sub)
	if sub.Status != engine.StatusCompleted {
		return nil, engineerr.New(engineerr.KindImport, engineerr.ErrModuleNotFound, ast.Pos{},
			"module %q suspended instead of completing (status %s) — top-level module code cannot perform AI/host operations", path, sub.Status)
	}

	mainFrame := sub.CallStack[0]
	exports := make(map[string]*values.Value)
	functions := make(map[string]*ast.FunctionStmt)
	for _, stmt := range prog.Statements {
		exp, ok := stmt.(*ast.ExportStmt)
		if !ok {
			continue
		}
		switch d := exp.Decl.(type) {
		case *ast.FunctionStmt:
			functions[d.Name] = d
			exports[d.Name] = values.NewImportedSourceFunctionHandle(path, d.Name)
		case *ast.LetStmt:
			if v, ok := mainFrame.Lookup(d.Name); ok {
				exports[d.Name] = v.Value
			}
		case *ast.ModelStmt:
			if v, ok := mainFrame.Lookup(d.Name); ok {
				exports[d.Name] = v.Value
			}
		default:
			return nil, fmt.Errorf("module %q: unsupported export kind for %T", path, d)
		}
	}

	mod := &engine.SourceModule{Path: path, Program: prog, Exports: exports, Functions: functions}
	l.state.SourceModules[path] = mod
	return mod, nil
}
