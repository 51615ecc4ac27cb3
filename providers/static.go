package providers

import (
	"fmt"

	"github.com/vibelang-org/vibe/ast"
	"github.com/vibelang-org/vibe/values"
)

// RegisterStaticModels walks program's top-level `model` declarations and
// Registers each one directly from its literal field expressions, without
// running the program at all. This only works because every field of a
// model declaration the engine accepts (name/apiKey/url/provider/
// maxRetriesOnError/thinkingLevel/tools, see engine/model.go) is, in every
// program this module ships, written as a literal — it lets server.API
// pre-register a session's models once at creation time, before the
// program's own DeclareModel statement has even run, which
// Router.SetResolver's live-lookup approach can't do for a collaborator set
// shared across many concurrent sessions.
func RegisterStaticModels(r *Router, program *ast.Program) error {
	for _, stmt := range program.Statements {
		ms, ok := modelStmtOf(stmt)
		if !ok {
			continue
		}
		h, err := staticModelHandle(ms)
		if err != nil {
			return fmt.Errorf("providers: model %q: %w", ms.Name, err)
		}
		r.Register(ms.Name, h)
	}
	return nil
}

func modelStmtOf(stmt ast.Stmt) (*ast.ModelStmt, bool) {
	switch st := stmt.(type) {
	case *ast.ModelStmt:
		return st, true
	case *ast.ExportStmt:
		if ms, ok := st.Decl.(*ast.ModelStmt); ok {
			return ms, true
		}
	}
	return nil, false
}

func staticModelHandle(ms *ast.ModelStmt) (values.ModelHandle, error) {
	var h values.ModelHandle
	for _, f := range ms.Fields {
		switch f.Name {
		case "name":
			s, ok := staticString(f.Value)
			if !ok {
				return h, fmt.Errorf("field %q is not a string literal", f.Name)
			}
			h.Name = s
		case "apiKey":
			s, ok := staticString(f.Value)
			if !ok {
				return h, fmt.Errorf("field %q is not a string literal", f.Name)
			}
			h.APIKey = s
		case "url":
			s, ok := staticString(f.Value)
			if !ok {
				return h, fmt.Errorf("field %q is not a string literal", f.Name)
			}
			h.URL = s
		case "provider":
			s, ok := staticString(f.Value)
			if !ok {
				return h, fmt.Errorf("field %q is not a string literal", f.Name)
			}
			h.Provider = s
		case "thinkingLevel":
			s, ok := staticString(f.Value)
			if !ok {
				return h, fmt.Errorf("field %q is not a string literal", f.Name)
			}
			h.ThinkingLevel = s
		case "maxRetriesOnError":
			n, ok := f.Value.(*ast.NumberLit)
			if !ok {
				return h, fmt.Errorf("field %q is not a number literal", f.Name)
			}
			h.MaxRetriesOnError = int(n.Value)
		case "tools":
			arr, ok := f.Value.(*ast.ArrayLit)
			if !ok {
				return h, fmt.Errorf("field %q is not an array literal", f.Name)
			}
			tools := make([]string, len(arr.Elements))
			for i, el := range arr.Elements {
				s, ok := staticString(el)
				if !ok {
					return h, fmt.Errorf("field %q element %d is not a string literal", f.Name, i)
				}
				tools[i] = s
			}
			h.Tools = tools
		}
	}
	return h, nil
}

func staticString(e ast.Expr) (string, bool) {
	switch v := e.(type) {
	case *ast.StringLit:
		return v.Value, true
	case *ast.TemplateLit:
		return v.Value, true
	default:
		return "", false
	}
}
