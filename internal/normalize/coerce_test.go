package normalize

import (
	"math"
	"testing"
)

func TestNumber(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
	}{
		{"float", 12.5, 12.5},
		{"int", 3, 3},
		{"numeric string", " 42.25 ", 42.25},
		{"nil", nil, 0},
		{"empty string", "", 0},
		{"blank string", "   ", 0},
		{"text", "n/a", 0},
		{"bool true", true, 0},
		{"bool false", false, 0},
		{"negative", -5.0, 0},
		{"NaN", math.NaN(), 0},
		{"Inf", math.Inf(1), 0},
		{"NaN string", "NaN", 0},
		{"map", map[string]any{"v": 1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Number(tt.in); got != tt.want {
				t.Errorf("Number(%#v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseNumber(t *testing.T) {
	if v, ok := ParseNumber("1500"); !ok || v != 1500 {
		t.Errorf("ParseNumber(\"1500\") = %v, %v", v, ok)
	}
	if v, ok := ParseNumber(-20.0); !ok || v != -20 {
		t.Errorf("ParseNumber(-20) = %v, %v; strict read should not clamp", v, ok)
	}
	for _, bad := range []any{nil, "", "abc", true, math.NaN()} {
		if _, ok := ParseNumber(bad); ok {
			t.Errorf("ParseNumber(%#v) should report false", bad)
		}
	}
}

func TestPresent(t *testing.T) {
	if Present(nil) || Present("") || Present("  \t") {
		t.Error("Expected nil and blank strings to be absent")
	}
	if !Present("x") || !Present(0.0) || !Present(false) {
		t.Error("Expected non-blank values to be present")
	}
}

func TestLabel(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"A101", "A101"},
		{"  B2 ", "B2"},
		{101.0, "101"},
		{12.5, "12.5"},
		{nil, "-"},
		{"", "-"},
		{math.NaN(), "-"},
		{[]int{1}, "-"},
	}
	for _, tt := range tests {
		if got := Label(tt.in, "-"); got != tt.want {
			t.Errorf("Label(%#v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
