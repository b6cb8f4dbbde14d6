package tree

import "testing"

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want Value
	}{
		{"", Null()},
		{"null", Null()},
		{"true", BoolValue(true)},
		{"false", BoolValue(false)},
		{"42", NumberValue(42)},
		{"-1.5", NumberValue(-1.5)},
		{"NaN", StringValue("NaN")},
		{"Inf", StringValue("Inf")},
		{"hello world", StringValue("hello world")},
		{"True", StringValue("True")},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseValue(tt.in); !got.Equal(tt.want) {
				t.Fatalf("expected %#v, got %#v", tt.want, got)
			}
		})
	}
}

func TestValue_StringAndAny(t *testing.T) {
	if got := NumberValue(3).String(); got != "3" {
		t.Fatalf("expected 3, got %q", got)
	}
	if got := NumberValue(0.25).String(); got != "0.25" {
		t.Fatalf("expected 0.25, got %q", got)
	}
	if got := Null().String(); got != "" {
		t.Fatalf("expected empty display for null, got %q", got)
	}
	if Null().Any() != nil {
		t.Fatalf("expected nil interchange form for null")
	}
	if v, ok := ValueOf(7); !ok || !v.Equal(NumberValue(7)) {
		t.Fatalf("expected int to convert to number, got %#v %v", v, ok)
	}
	if _, ok := ValueOf([]int{1}); ok {
		t.Fatalf("expected slices to be rejected")
	}
}
