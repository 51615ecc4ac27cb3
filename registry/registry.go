// Package registry holds the symbol tables the engine consults when a name
// can't be resolved through the call-stack scope chain: declared functions,
// declared tools, and the flat imported-name table the module loader builds.
// These are plain fields of a RuntimeState in spirit (§9 "registry
// singletons... become fields of RuntimeState"); this package supplies their
// concrete, reusable shape.
package registry

import (
	"strings"
	"sync"

	"github.com/vibelang-org/vibe/ast"
)

// ParamSchema describes one declared tool/function parameter for the
// JSON-schema-like representation built in §4.8.
type ParamSchema struct {
	Name        string
	Type        string // "text" | "number" | "boolean" | "json" | an imported type name
	ArrayDepth  int
	Description string
	Imported    bool // true when Type resolves via ImportedNames rather than a primitive
}

// ToolDescriptor is a registered, AI-callable native tool.
type ToolDescriptor struct {
	Name        string
	Description string
	Params      []ParamSchema
	ReturnType  *ast.TypeAnnotation
	Decl        *ast.ToolStmt
}

// ImportKind distinguishes the two module kinds the loader resolves.
type ImportKind int

const (
	ImportKindHost ImportKind = iota
	ImportKindSource
)

// ImportBinding is one entry of the loader's flat imported_names table.
type ImportBinding struct {
	SourcePath string
	Kind       ImportKind
}

// Registry is the per-program symbol table: declared functions, declared
// tools, and the loader's import table. It belongs to one program's
// top-level RuntimeState; the throwaway sub-states the loader and
// engine.RunToolBody build share it by reference, but it is never shared
// between independently running programs (§5: no shared mutable memory
// between engines).
type Registry struct {
	mu            sync.Mutex
	Functions     map[string]*ast.FunctionStmt
	Tools         map[string]*ToolDescriptor
	ImportedNames map[string]ImportBinding
}

// New constructs an empty registry.
func New() *Registry {
	return &Registry{
		Functions:     make(map[string]*ast.FunctionStmt),
		Tools:         make(map[string]*ToolDescriptor),
		ImportedNames: make(map[string]ImportBinding),
	}
}

// RegisterFunction records a top-level function declaration, collected once
// at state construction (§4.3: "function declarations are collected at
// state construction; the statement handler is a no-op at runtime").
func (r *Registry) RegisterFunction(fn *ast.FunctionStmt) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Functions[fn.Name] = fn
}

func (r *Registry) LookupFunction(name string) (*ast.FunctionStmt, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn, ok := r.Functions[name]
	return fn, ok
}

// RegisterTool builds and stores a ToolDescriptor from a parsed tool
// declaration, resolving each parameter's schema (§4.8).
func (r *Registry) RegisterTool(decl *ast.ToolStmt) *ToolDescriptor {
	descs := make([]ParamSchema, 0, len(decl.Params))
	docs := make(map[string]string, len(decl.ParamDocs))
	for _, d := range decl.ParamDocs {
		if _, exists := docs[d.Name]; !exists { // first @param wins on duplicates
			docs[d.Name] = d.Description
		}
	}
	for _, p := range decl.Params {
		schema := ParamSchema{Name: p.Name, Description: docs[p.Name]}
		if p.Type != nil {
			schema.ArrayDepth = p.Type.ArrayDepth
			switch p.Type.Name {
			case "text", "number", "boolean", "json", "prompt":
				schema.Type = p.Type.Name
			default:
				schema.Type = p.Type.Name
				schema.Imported = true
			}
		} else {
			schema.Type = "json"
		}
		descs = append(descs, schema)
	}
	td := &ToolDescriptor{
		Name:        decl.Name,
		Description: decl.Description,
		Params:      descs,
		ReturnType:  decl.ReturnType,
		Decl:        decl,
	}
	r.mu.Lock()
	r.Tools[decl.Name] = td
	r.mu.Unlock()
	return td
}

func (r *Registry) LookupTool(name string) (*ToolDescriptor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.Tools[name]
	return t, ok
}

// BindImport records a local name claimed by an import, enforcing the
// loader's one-import-per-name collision rule. ok is false if name is
// already claimed, whichever source path claimed it (the same path
// included).
func (r *Registry) BindImport(name, sourcePath string, kind ImportKind) (existing ImportBinding, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, taken := r.ImportedNames[name]; taken {
		return b, false
	}
	binding := ImportBinding{SourcePath: sourcePath, Kind: kind}
	r.ImportedNames[name] = binding
	return binding, true
}

func (r *Registry) LookupImport(name string) (ImportBinding, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.ImportedNames[name]
	return b, ok
}

// NormalizeModulePath joins a relative import path against the importing
// file's directory, the way the loader resolves `import ... from "p"`.
func NormalizeModulePath(fromFile, importPath string) string {
	if strings.HasPrefix(importPath, "./") || strings.HasPrefix(importPath, "../") {
		dir := fromFile
		if idx := strings.LastIndex(fromFile, "/"); idx >= 0 {
			dir = fromFile[:idx]
		} else {
			dir = "."
		}
		return joinPath(dir, importPath)
	}
	return importPath
}

func joinPath(dir, rel string) string {
	for strings.HasPrefix(rel, "../") {
		rel = rel[3:]
		if idx := strings.LastIndex(dir, "/"); idx >= 0 {
			dir = dir[:idx]
		}
	}
	rel = strings.TrimPrefix(rel, "./")
	if dir == "" || dir == "." {
		return rel
	}
	return dir + "/" + rel
}
