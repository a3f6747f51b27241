package number

import (
	"encoding/json"
	"testing"
)

func TestToFloat64(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input any
		ok    bool
		want  float64
	}{
		{name: "int", input: int(10), ok: true, want: 10},
		{name: "uint64", input: uint64(7), ok: true, want: 7},
		{name: "float64", input: 12.5, ok: true, want: 12.5},
		{name: "json_number", input: json.Number("42"), ok: true, want: 42},
		{name: "numeric_string", input: "3", ok: false, want: 0},
		{name: "non_numeric", input: "x", ok: false, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToFloat64(tt.input)
			if ok != tt.ok {
				t.Fatalf("ToFloat64(%v) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if got != tt.want {
				t.Fatalf("ToFloat64(%v) value = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLoose(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input any
		ok    bool
		want  float64
	}{
		{name: "number", input: 5, ok: true, want: 5},
		{name: "numeric_string", input: " 2.5 ", ok: true, want: 2.5},
		{name: "exponent_string", input: "1e3", ok: true, want: 1000},
		{name: "empty_string", input: "", ok: false},
		{name: "nan_string", input: "NaN", ok: false},
		{name: "word", input: "ten", ok: false},
		{name: "bool", input: true, ok: false},
		{name: "nil", input: nil, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Loose(tt.input)
			if ok != tt.ok || got != tt.want {
				t.Fatalf("Loose(%v) = (%v, %v), want (%v, %v)", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestIsInteger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input any
		want  bool
	}{
		{input: 1, want: true},
		{input: uint64(1), want: true},
		{input: 1.0, want: false},
		{input: json.Number("10"), want: true},
		{input: json.Number("10.5"), want: false},
		{input: json.Number("1e2"), want: false},
		{input: "1", want: false},
	}

	for _, tt := range tests {
		if got := IsInteger(tt.input); got != tt.want {
			t.Errorf("IsInteger(%#v) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestFormat(t *testing.T) {
	t.Parallel()

	if got := Format(3); got != "3" {
		t.Fatalf("Format(3) = %q, want %q", got, "3")
	}
	if got := Format(2.25); got != "2.25" {
		t.Fatalf("Format(2.25) = %q, want %q", got, "2.25")
	}
}
