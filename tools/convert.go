package tools

import (
	"fmt"

	"github.com/vibelang-org/vibe/values"
)

// ValueToAny converts an engine Value into a plain Go value suitable for
// JSON encoding (used both to hand tool results back over MCP and by
// server.API to render a RuntimeState's values over HTTP).
func ValueToAny(v *values.Value) any {
	u := v.Underlying()
	switch u.Type {
	case values.TypeNull:
		return nil
	case values.TypeText:
		s, _ := u.AsText()
		return s
	case values.TypeNumber:
		n, _ := u.AsNumber()
		return n
	case values.TypeBoolean:
		b, _ := u.AsBoolean()
		return b
	case values.TypeArray:
		arr, _ := u.AsArray()
		out := make([]any, len(arr.Elements))
		for i, e := range arr.Elements {
			out[i] = ValueToAny(e)
		}
		return out
	case values.TypeObject:
		obj, _ := u.AsObject()
		out := make(map[string]any, obj.Len())
		for _, k := range obj.Keys() {
			fv, _ := obj.Get(k)
			out[k] = ValueToAny(fv)
		}
		return out
	default:
		return values.ToDisplayString(u)
	}
}

// AnyToValue converts a plain Go value (as decoded from MCP or HTTP JSON)
// into an engine Value, the mirror of ValueToAny.
func AnyToValue(a any) *values.Value {
	switch x := a.(type) {
	case nil:
		return values.NewNull()
	case string:
		return values.NewText(x)
	case float64:
		return values.NewNumber(x)
	case int:
		return values.NewNumber(float64(x))
	case bool:
		return values.NewBoolean(x)
	case []any:
		elems := make([]*values.Value, len(x))
		for i, e := range x {
			elems[i] = AnyToValue(e)
		}
		return values.NewArrayValue(elems)
	case map[string]any:
		obj := values.NewObject()
		for k, v := range x {
			obj.Set(k, AnyToValue(v))
		}
		return values.NewObjectValue(obj)
	default:
		return values.NewText(fmt.Sprintf("%v", x))
	}
}
