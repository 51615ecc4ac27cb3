package tools

import (
	"testing"

	"github.com/vibelang-org/vibe/values"
)

func TestValueToAnyRoundTrip(t *testing.T) {
	obj := values.NewObject()
	obj.Set("a", values.NewNumber(1))
	obj.Set("b", values.NewArrayValue([]*values.Value{values.NewText("x"), values.NewBoolean(true)}))
	v := values.NewObjectValue(obj)

	got := ValueToAny(v)
	m, ok := got.(map[string]any)
	if !ok {
		t.Fatalf("expected map[string]any, got %T", got)
	}
	if m["a"] != float64(1) {
		t.Errorf("a = %v, want 1", m["a"])
	}
	arr, ok := m["b"].([]any)
	if !ok || len(arr) != 2 {
		t.Fatalf("b = %v, want 2-element slice", m["b"])
	}
}

func TestAnyToValuePrimitives(t *testing.T) {
	if s, ok := AnyToValue("hi").AsText(); !ok || s != "hi" {
		t.Errorf("string roundtrip failed: %q %v", s, ok)
	}
	if n, ok := AnyToValue(float64(3)).AsNumber(); !ok || n != 3 {
		t.Errorf("number roundtrip failed: %v %v", n, ok)
	}
	if b, ok := AnyToValue(true).AsBoolean(); !ok || !b {
		t.Errorf("boolean roundtrip failed: %v %v", b, ok)
	}
	if !AnyToValue(nil).IsNull() {
		t.Error("nil should convert to a null Value")
	}
}

func TestBuildInputSchemaRequiresAllParams(t *testing.T) {
	td := toolDescriptorForTest()
	schema := buildInputSchema(td)
	if schema.Type != "object" {
		t.Fatalf("expected object schema, got %q", schema.Type)
	}
	if len(schema.Required) != len(td.Params) {
		t.Fatalf("expected all %d params required, got %d", len(td.Params), len(schema.Required))
	}
	if schema.Properties["count"].Type != "number" {
		t.Errorf("count should render as number, got %q", schema.Properties["count"].Type)
	}
}
