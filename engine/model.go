package engine

import (
	"github.com/vibelang-org/vibe/ast"
	"github.com/vibelang-org/vibe/engineerr"
	"github.com/vibelang-org/vibe/values"
)

// valuesModelHandle accumulates a model declaration's fields (§4.3) before
// being frozen into a *values.Value model-handle.
type valuesModelHandle struct {
	h values.ModelHandle
}

func (m *valuesModelHandle) set(pos ast.Pos, name string, v *values.Value) error {
	switch name {
	case "name":
		s, ok := v.AsText()
		if !ok {
			return engineerr.TypeMismatch(pos, "name", "text", v.Underlying().Type.String())
		}
		m.h.Name = s
	case "apiKey":
		s, ok := v.AsText()
		if !ok {
			return engineerr.TypeMismatch(pos, "apiKey", "text", v.Underlying().Type.String())
		}
		m.h.APIKey = s
	case "url":
		s, ok := v.AsText()
		if !ok {
			return engineerr.TypeMismatch(pos, "url", "text", v.Underlying().Type.String())
		}
		m.h.URL = s
	case "provider":
		s, ok := v.AsText()
		if !ok {
			return engineerr.TypeMismatch(pos, "provider", "text", v.Underlying().Type.String())
		}
		m.h.Provider = s
	case "maxRetriesOnError":
		f, ok := v.AsNumber()
		if !ok {
			return engineerr.TypeMismatch(pos, "maxRetriesOnError", "number", v.Underlying().Type.String())
		}
		m.h.MaxRetriesOnError = int(f)
	case "thinkingLevel":
		s, ok := v.AsText()
		if !ok {
			return engineerr.TypeMismatch(pos, "thinkingLevel", "text", v.Underlying().Type.String())
		}
		m.h.ThinkingLevel = s
	case "tools":
		arr, ok := v.AsArray()
		if !ok {
			return engineerr.TypeMismatch(pos, "tools", "text[]", v.Underlying().Type.String())
		}
		tools := make([]string, len(arr.Elements))
		for i, el := range arr.Elements {
			str, ok := el.AsText()
			if !ok {
				return engineerr.TypeMismatch(pos, "tools", "text[]", "mixed array")
			}
			tools[i] = str
		}
		m.h.Tools = tools
	default:
		// Unknown fields are rejected by the semantic analyzer, not here (§4.3).
	}
	return nil
}

func (m *valuesModelHandle) build() *values.Value {
	h := m.h
	return values.NewModelHandle(&h)
}
