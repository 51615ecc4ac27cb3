package values

import (
	"math"
	"testing"
)

func TestStrictEqualPrimitives(t *testing.T) {
	if !StrictEqual(NewNumber(2), NewNumber(2)) {
		t.Fatal("expected 2 == 2")
	}
	if StrictEqual(NewNumber(2), NewText("2")) {
		t.Fatal("number and text must never be strictly equal")
	}
	if StrictEqual(NewArrayValue(nil), NewArrayValue(nil)) {
		t.Fatal("two distinct empty arrays are not identical")
	}
}

func TestAIResultUnwrapsForOperators(t *testing.T) {
	wrapped := NewAIResult(NewNumber(7), []string{"search"}, "7")
	if !StrictEqual(wrapped, NewNumber(7)) {
		t.Fatal("AI result must compare equal to its carried value")
	}
	if !wrapped.IsAIResult() {
		t.Fatal("expected IsAIResult true")
	}
}

func TestObjectPreservesInsertionOrder(t *testing.T) {
	o := NewObject()
	o.Set("z", NewNumber(1))
	o.Set("a", NewNumber(2))
	o.Set("z", NewNumber(3)) // re-assignment must not move the key
	keys := o.Keys()
	if len(keys) != 2 || keys[0] != "z" || keys[1] != "a" {
		t.Fatalf("unexpected key order: %v", keys)
	}
	v, _ := o.Get("z")
	if f, _ := v.AsNumber(); f != 3 {
		t.Fatalf("expected updated value 3, got %v", f)
	}
}

func TestIsFiniteNumber(t *testing.T) {
	if !IsFiniteNumber(1.5) {
		t.Fatal("1.5 should be finite")
	}
	if IsFiniteNumber(math.NaN()) {
		t.Fatal("NaN must not be finite")
	}
	if IsFiniteNumber(math.Inf(1)) {
		t.Fatal("+Inf must not be finite")
	}
}
