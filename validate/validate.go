// Package validate implements the language's semantic types and the
// validate_and_coerce rules of §4.6: text, json, prompt, boolean, number,
// plus a repeatable array suffix.
package validate

import (
	"encoding/json"

	"github.com/vibelang-org/vibe/ast"
	"github.com/vibelang-org/vibe/engineerr"
	"github.com/vibelang-org/vibe/values"
)

// Coerce validates value against declType (nil means "infer"), returning the
// coerced value and the inferred/declared type name. name is used only for
// diagnostics.
func Coerce(pos ast.Pos, value *values.Value, declType *ast.TypeAnnotation, name string) (*values.Value, string, error) {
	if declType == nil {
		return infer(value), inferredTypeName(value), nil
	}
	if declType.ArrayDepth > 0 {
		return coerceArray(pos, value, declType, name)
	}
	switch declType.Name {
	case "text", "prompt":
		s, ok := value.AsText()
		if !ok {
			return nil, "", engineerr.TypeMismatch(pos, name, declType.Name, value.Underlying().Type.String())
		}
		return values.NewText(s), declType.Name, nil
	case "json":
		return coerceJSON(pos, value, name)
	case "boolean":
		b, ok := value.AsBoolean()
		if !ok {
			return nil, "", engineerr.TypeMismatch(pos, name, "boolean", value.Underlying().Type.String())
		}
		return values.NewBoolean(b), "boolean", nil
	case "number":
		f, ok := value.AsNumber()
		if !ok || !values.IsFiniteNumber(f) {
			return nil, "", engineerr.TypeMismatch(pos, name, "number", value.Underlying().Type.String())
		}
		return values.NewNumber(f), "number", nil
	default:
		// Unknown declared type names are rejected by the semantic analyzer,
		// not the engine; accept as-is here.
		return value, declType.Name, nil
	}
}

func coerceArray(pos ast.Pos, value *values.Value, declType *ast.TypeAnnotation, name string) (*values.Value, string, error) {
	arr, ok := value.AsArray()
	if !ok {
		return nil, "", engineerr.TypeMismatch(pos, name, declType.Name+"[]", value.Underlying().Type.String())
	}
	elemType := &ast.TypeAnnotation{Name: declType.Name, ArrayDepth: declType.ArrayDepth - 1}
	out := make([]*values.Value, len(arr.Elements))
	for i, el := range arr.Elements {
		coerced, _, err := Coerce(pos, el, elemType, name)
		if err != nil {
			return nil, "", err
		}
		out[i] = coerced
	}
	return values.NewArrayValue(out), declType.Name + arraySuffix(declType.ArrayDepth), nil
}

func arraySuffix(depth int) string {
	s := ""
	for i := 0; i < depth; i++ {
		s += "[]"
	}
	return s
}

func coerceJSON(pos ast.Pos, value *values.Value, name string) (*values.Value, string, error) {
	u := value.Underlying()
	if u.IsObject() || u.IsArray() {
		return u, "json", nil
	}
	if s, ok := u.AsText(); ok {
		var raw interface{}
		if err := json.Unmarshal([]byte(s), &raw); err != nil {
			return nil, "", engineerr.TypeMismatch(pos, name, "json", "unparseable string")
		}
		parsed := fromJSON(raw)
		if !parsed.IsObject() && !parsed.IsArray() {
			return nil, "", engineerr.TypeMismatch(pos, name, "json (object/array)", parsed.Underlying().Type.String())
		}
		return parsed, "json", nil
	}
	return nil, "", engineerr.TypeMismatch(pos, name, "json", u.Type.String())
}

func fromJSON(raw interface{}) *values.Value {
	switch v := raw.(type) {
	case nil:
		return values.NewNull()
	case bool:
		return values.NewBoolean(v)
	case float64:
		return values.NewNumber(v)
	case string:
		return values.NewText(v)
	case []interface{}:
		elems := make([]*values.Value, len(v))
		for i, e := range v {
			elems[i] = fromJSON(e)
		}
		return values.NewArrayValue(elems)
	case map[string]interface{}:
		obj := values.NewObject()
		for k, val := range v {
			obj.Set(k, fromJSON(val))
		}
		return values.NewObjectValue(obj)
	default:
		return values.NewNull()
	}
}

func infer(value *values.Value) *values.Value { return value }

func inferredTypeName(value *values.Value) string {
	u := value.Underlying()
	switch {
	case u.IsText():
		return "text"
	case u.IsBoolean():
		return "boolean"
	case u.IsNumber():
		return "number"
	case u.IsObject(), u.IsArray():
		return "json"
	default:
		return "unknown"
	}
}
