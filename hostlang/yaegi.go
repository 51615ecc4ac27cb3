// Package hostlang is the reference HostEvaluator (engine.HostEvaluator)
// implementation: YaegiEvaluator interprets an inline `host { ... }` escape
// body as Go source using github.com/breadchris/yaegi, an embedded Go
// interpreter — about as literal a "host-language evaluator" as exists.
package hostlang

import (
	"context"
	"fmt"
	"reflect"

	"github.com/breadchris/yaegi/interp"

	"github.com/vibelang-org/vibe/values"
)

// YaegiEvaluator satisfies engine.HostEvaluator by wrapping the escape body
// in a closure that receives the bound params as typed arguments and
// returns its result as interface{}, then calling that closure immediately.
// A fresh interpreter is built per call: escape bodies are short, stateless
// snippets (string formatting, arithmetic Go's own operators don't give the
// language directly — see spec.md on `+` not concatenating strings), and a
// fresh interpreter rules out one escape leaking state into the next.
type YaegiEvaluator struct{}

// Eval implements engine.HostEvaluator.
func (YaegiEvaluator) Eval(ctx context.Context, params []string, args []*values.Value, body string) (*values.Value, error) {
	if len(params) != len(args) {
		return nil, fmt.Errorf("hostlang: %d params but %d arguments", len(params), len(args))
	}

	i := interp.New(interp.Options{})

	argVals := make([]reflect.Value, len(params))
	for idx := range params {
		argVals[idx] = reflect.ValueOf(valueToGo(args[idx]))
	}

	src := wrapEscape(params, body)
	res, err := i.Eval(src)
	if err != nil {
		return nil, fmt.Errorf("hostlang: eval: %w", err)
	}
	if !res.IsValid() || res.Kind() != reflect.Func {
		return nil, fmt.Errorf("hostlang: escape body did not evaluate to a function")
	}

	callArgs := make([]reflect.Value, len(argVals))
	copy(callArgs, argVals)
	out := res.Call(callArgs)
	if len(out) != 1 {
		return nil, fmt.Errorf("hostlang: escape closure must return exactly one value")
	}
	return goToValue(out[0].Interface()), nil
}

// wrapEscape turns a bare escape body into a func literal of the right
// arity so Eval can call it directly with the bound argument values,
// avoiding any dependency on yaegi's symbol-injection API for passing
// arguments in.
func wrapEscape(params []string, body string) string {
	src := "func("
	for i, p := range params {
		if i > 0 {
			src += ", "
		}
		src += p + " interface{}"
	}
	src += ") interface{} {\n" + body + "\n}"
	return src
}

// valueToGo projects an engine Value onto the nearest Go type yaegi can pass
// as an interface{} argument.
func valueToGo(v *values.Value) interface{} {
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
		out := make([]interface{}, len(arr.Elements))
		for i, e := range arr.Elements {
			out[i] = valueToGo(e)
		}
		return out
	case values.TypeObject:
		obj, _ := u.AsObject()
		out := make(map[string]interface{}, obj.Len())
		for _, k := range obj.Keys() {
			fv, _ := obj.Get(k)
			out[k] = valueToGo(fv)
		}
		return out
	default:
		return values.ToDisplayString(u)
	}
}

// goToValue is the inverse of valueToGo, for the escape's return value.
func goToValue(g interface{}) *values.Value {
	switch x := g.(type) {
	case nil:
		return values.NewNull()
	case string:
		return values.NewText(x)
	case bool:
		return values.NewBoolean(x)
	case float64:
		return values.NewNumber(x)
	case int:
		return values.NewNumber(float64(x))
	case []interface{}:
		elems := make([]*values.Value, len(x))
		for i, e := range x {
			elems[i] = goToValue(e)
		}
		return values.NewArrayValue(elems)
	case map[string]interface{}:
		obj := values.NewObject()
		for k, v := range x {
			obj.Set(k, goToValue(v))
		}
		return values.NewObjectValue(obj)
	default:
		return values.NewText(fmt.Sprintf("%v", x))
	}
}
