// Package values defines the dynamic value domain of the language: text,
// number, boolean, object, array, null, and a closed set of opaque internal
// handles. Representation is a tagged sum (Type + Data), dispatched by type
// switch rather than virtual methods, mirroring how the engine's AST and
// instruction sets are modeled.
package values

import (
	"fmt"
	"math"
	"strconv"
)

// Type identifies the dynamic kind of a Value.
type Type byte

const (
	TypeNull Type = iota
	TypeText
	TypeNumber
	TypeBoolean
	TypeObject
	TypeArray

	// Opaque internal handles. Tag names are semantic; representation is a
	// sum type the same as everything else.
	TypeModelHandle
	TypeUserFunctionHandle
	TypeImportedHostFunctionHandle
	TypeImportedSourceFunctionHandle
	TypeToolHandle
	TypeBoundMethodHandle

	// TypeAIResult wraps a primitive value returned by an AI call, exposing
	// per-call metadata through member access while behaving as its Value
	// for operators (see "AI result wrapper" in the glossary).
	TypeAIResult
)

func (t Type) String() string {
	switch t {
	case TypeNull:
		return "null"
	case TypeText:
		return "text"
	case TypeNumber:
		return "number"
	case TypeBoolean:
		return "boolean"
	case TypeObject:
		return "object"
	case TypeArray:
		return "array"
	case TypeModelHandle:
		return "model"
	case TypeUserFunctionHandle:
		return "function"
	case TypeImportedHostFunctionHandle:
		return "imported-host-function"
	case TypeImportedSourceFunctionHandle:
		return "imported-source-function"
	case TypeToolHandle:
		return "tool"
	case TypeBoundMethodHandle:
		return "bound-method"
	case TypeAIResult:
		return "ai-result"
	default:
		return "unknown"
	}
}

// Value is the dynamic runtime value. Data holds the variant payload:
//
//	TypeText    -> string
//	TypeNumber  -> float64
//	TypeBoolean -> bool
//	TypeObject  -> *Object
//	TypeArray   -> *Array
//	TypeNull    -> nil
//	TypeModelHandle                   -> *ModelHandle
//	TypeUserFunctionHandle            -> *UserFunctionHandle
//	TypeImportedHostFunctionHandle    -> *ImportedHostFunctionHandle
//	TypeImportedSourceFunctionHandle  -> *ImportedSourceFunctionHandle
//	TypeToolHandle                    -> *ToolHandle
//	TypeBoundMethodHandle             -> *BoundMethodHandle
//	TypeAIResult                      -> *AIResult
type Value struct {
	Type Type
	Data interface{}
}

// Object is an insertion-ordered mapping from field name to value.
type Object struct {
	keys   []string
	fields map[string]*Value
}

// NewObject constructs an empty insertion-ordered object.
func NewObject() *Object {
	return &Object{fields: make(map[string]*Value)}
}

// Set assigns a field, appending it to key order on first insertion.
func (o *Object) Set(key string, v *Value) {
	if _, ok := o.fields[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.fields[key] = v
}

// Get fetches a field by name.
func (o *Object) Get(key string) (*Value, bool) {
	v, ok := o.fields[key]
	return v, ok
}

// Keys returns field names in insertion order.
func (o *Object) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Len returns the number of fields.
func (o *Object) Len() int { return len(o.keys) }

// Clone returns a shallow copy: field order and the map are copied, the leaf
// Values are shared (consistent with the engine's copy-on-write of snapshots
// rather than values).
func (o *Object) Clone() *Object {
	n := NewObject()
	for _, k := range o.keys {
		n.Set(k, o.fields[k])
	}
	return n
}

// Array is an ordered sequence of values.
type Array struct {
	Elements []*Value
}

// NewArrayValue builds an array Value from a slice, taking ownership of it.
func NewArrayValue(elems []*Value) *Value {
	return &Value{Type: TypeArray, Data: &Array{Elements: elems}}
}

func (a *Array) Clone() *Array {
	elems := make([]*Value, len(a.Elements))
	copy(elems, a.Elements)
	return &Array{Elements: elems}
}

// ModelHandle is an immutable, const-bound value representing a configured
// AI endpoint.
type ModelHandle struct {
	Name              string
	APIKey            string
	URL               string
	Provider          string
	MaxRetriesOnError int
	ThinkingLevel     string
	Tools             []string
}

// UserFunctionHandle references a source-level function declaration by name;
// the body is resolved through RuntimeState.Registry at call time.
type UserFunctionHandle struct {
	Name string
}

// ImportedHostFunctionHandle references a function exported by a native
// host-language module.
type ImportedHostFunctionHandle struct {
	ModulePath string
	Name       string
}

// ImportedSourceFunctionHandle references a function exported by a
// same-language module.
type ImportedSourceFunctionHandle struct {
	ModulePath string
	Name       string
}

// ToolHandle references a registered, AI-callable native tool. Tools cannot
// be invoked from user code; calling one raises a RuntimeError.
type ToolHandle struct {
	Name string
}

// BoundMethodHandle is a built-in method bound to a receiver, e.g. arr.push.
type BoundMethodHandle struct {
	Receiver *Value
	Method   string
}

// AIResult wraps the primitive value produced by an AI call together with
// per-call metadata. It behaves as Value for operators and iteration, but
// also exposes ToolCalls/Raw through member access.
type AIResult struct {
	Value     *Value
	ToolCalls []string
	Raw       string
}

// Constructors

func NewNull() *Value { return &Value{Type: TypeNull} }

func NewText(s string) *Value { return &Value{Type: TypeText, Data: s} }

func NewNumber(f float64) *Value { return &Value{Type: TypeNumber, Data: f} }

func NewBoolean(b bool) *Value { return &Value{Type: TypeBoolean, Data: b} }

func NewObjectValue(o *Object) *Value { return &Value{Type: TypeObject, Data: o} }

func NewModelHandle(h *ModelHandle) *Value { return &Value{Type: TypeModelHandle, Data: h} }

func NewUserFunctionHandle(name string) *Value {
	return &Value{Type: TypeUserFunctionHandle, Data: &UserFunctionHandle{Name: name}}
}

func NewImportedHostFunctionHandle(module, name string) *Value {
	return &Value{Type: TypeImportedHostFunctionHandle, Data: &ImportedHostFunctionHandle{ModulePath: module, Name: name}}
}

func NewImportedSourceFunctionHandle(module, name string) *Value {
	return &Value{Type: TypeImportedSourceFunctionHandle, Data: &ImportedSourceFunctionHandle{ModulePath: module, Name: name}}
}

func NewToolHandle(name string) *Value {
	return &Value{Type: TypeToolHandle, Data: &ToolHandle{Name: name}}
}

func NewBoundMethodHandle(receiver *Value, method string) *Value {
	return &Value{Type: TypeBoundMethodHandle, Data: &BoundMethodHandle{Receiver: receiver, Method: method}}
}

func NewAIResult(val *Value, toolCalls []string, raw string) *Value {
	return &Value{Type: TypeAIResult, Data: &AIResult{Value: val, ToolCalls: toolCalls, Raw: raw}}
}

// Predicates

func (v *Value) IsNull() bool     { return v == nil || v.Type == TypeNull }
func (v *Value) IsText() bool     { return v.Type == TypeText }
func (v *Value) IsNumber() bool   { return v.Type == TypeNumber }
func (v *Value) IsBoolean() bool  { return v.Type == TypeBoolean }
func (v *Value) IsObject() bool   { return v.Type == TypeObject }
func (v *Value) IsArray() bool    { return v.Type == TypeArray }
func (v *Value) IsAIResult() bool { return v.Type == TypeAIResult }

func (v *Value) IsCallableHandle() bool {
	switch v.Type {
	case TypeUserFunctionHandle, TypeImportedHostFunctionHandle, TypeImportedSourceFunctionHandle,
		TypeToolHandle, TypeBoundMethodHandle:
		return true
	default:
		return false
	}
}

// Underlying returns v itself, except for an AIResult, which unwraps to its
// carried primitive. This is the projection operators and iteration use.
func (v *Value) Underlying() *Value {
	if v == nil {
		return NewNull()
	}
	if v.Type == TypeAIResult {
		r := v.Data.(*AIResult)
		return r.Value.Underlying()
	}
	return v
}

func (v *Value) AsText() (string, bool) {
	u := v.Underlying()
	if u.Type != TypeText {
		return "", false
	}
	return u.Data.(string), true
}

func (v *Value) AsNumber() (float64, bool) {
	u := v.Underlying()
	if u.Type != TypeNumber {
		return 0, false
	}
	return u.Data.(float64), true
}

func (v *Value) AsBoolean() (bool, bool) {
	u := v.Underlying()
	if u.Type != TypeBoolean {
		return false, false
	}
	return u.Data.(bool), true
}

func (v *Value) AsArray() (*Array, bool) {
	u := v.Underlying()
	if u.Type != TypeArray {
		return nil, false
	}
	return u.Data.(*Array), true
}

func (v *Value) AsObject() (*Object, bool) {
	u := v.Underlying()
	if u.Type != TypeObject {
		return nil, false
	}
	return u.Data.(*Object), true
}

// IsFiniteNumber reports whether f is usable by arithmetic operators and the
// "number" declared type.
func IsFiniteNumber(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// ToDisplayString renders a value for diagnostics and host-escape bridging.
// It performs no type coercion.
func ToDisplayString(v *Value) string {
	if v == nil {
		return "null"
	}
	u := v.Underlying()
	switch u.Type {
	case TypeNull:
		return "null"
	case TypeText:
		return u.Data.(string)
	case TypeNumber:
		f := u.Data.(float64)
		if f == math.Trunc(f) && !math.IsInf(f, 0) {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return strconv.FormatFloat(f, 'g', -1, 64)
	case TypeBoolean:
		if u.Data.(bool) {
			return "true"
		}
		return "false"
	case TypeArray:
		arr := u.Data.(*Array)
		parts := make([]string, len(arr.Elements))
		for i, e := range arr.Elements {
			parts[i] = ToDisplayString(e)
		}
		return "[" + joinComma(parts) + "]"
	case TypeObject:
		obj := u.Data.(*Object)
		parts := make([]string, 0, obj.Len())
		for _, k := range obj.Keys() {
			val, _ := obj.Get(k)
			parts = append(parts, fmt.Sprintf("%s: %s", k, ToDisplayString(val)))
		}
		return "{" + joinComma(parts) + "}"
	default:
		return fmt.Sprintf("<%s>", u.Type)
	}
}

func joinComma(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}

// StrictEqual implements the `==`/`!=` strict identity comparison on
// primitives: same type, same value. Arrays/objects compare by reference
// identity of their underlying pointer, never structurally.
func StrictEqual(a, b *Value) bool {
	ua, ub := a.Underlying(), b.Underlying()
	if ua.Type != ub.Type {
		return false
	}
	switch ua.Type {
	case TypeNull:
		return true
	case TypeText:
		return ua.Data.(string) == ub.Data.(string)
	case TypeNumber:
		return ua.Data.(float64) == ub.Data.(float64)
	case TypeBoolean:
		return ua.Data.(bool) == ub.Data.(bool)
	case TypeArray:
		return ua.Data.(*Array) == ub.Data.(*Array)
	case TypeObject:
		return ua.Data.(*Object) == ub.Data.(*Object)
	default:
		return ua.Data == ub.Data
	}
}
