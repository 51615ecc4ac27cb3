package hostlang

import (
	"testing"

	"github.com/vibelang-org/vibe/values"
)

func TestWrapEscapeArity(t *testing.T) {
	src := wrapEscape([]string{"a", "b"}, "return a")
	want := "func(a interface{}, b interface{}) interface{} {\nreturn a\n}"
	if src != want {
		t.Fatalf("wrapEscape mismatch:\ngot:  %q\nwant: %q", src, want)
	}
}

func TestValueToGoRoundTrip(t *testing.T) {
	if got := valueToGo(values.NewText("hi")); got != "hi" {
		t.Errorf("text: got %v", got)
	}
	if got := valueToGo(values.NewNumber(3)); got != float64(3) {
		t.Errorf("number: got %v", got)
	}
	if got := valueToGo(values.NewNull()); got != nil {
		t.Errorf("null: got %v", got)
	}
}

func TestGoToValueRoundTrip(t *testing.T) {
	v := goToValue("concatenated")
	s, ok := v.AsText()
	if !ok || s != "concatenated" {
		t.Fatalf("expected text 'concatenated', got %v (%v)", s, ok)
	}
}
