package loaders

import (
	"errors"
	"testing"

	"github.com/df07/go-sphere-raytracer/pkg/core"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		input    string
		expected core.Vec3
	}{
		{"#ff0000", core.NewVec3(255, 0, 0)},
		{"#9BC89B", core.NewVec3(155, 200, 155)},
		{"  #000000  ", core.NewVec3(0, 0, 0)},
		{"rgb(10, 20, 30)", core.NewVec3(10, 20, 30)},
		{"rgb(10,20,30)", core.NewVec3(10, 20, 30)},
		{"RGB(1, 2, 3)", core.NewVec3(1, 2, 3)},
		{"rgba(255, 128, 0, 0.5)", core.NewVec3(255, 128, 0)},
		{"rgb(12.5, 0, 300)", core.NewVec3(12.5, 0, 300)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseColor(tt.input)
			if err != nil {
				t.Fatalf("ParseColor(%q) failed: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParseColor(%q) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseColor_Invalid(t *testing.T) {
	inputs := []string{
		"",
		"red",
		"#fff",
		"#gg0000",
		"rgb(1, 2)",
		"rgb(1, 2, 3, 4)",
		"rgba(1, 2, 3)",
		"rgb(a, b, c)",
		"rgb(1, 2, 3",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			if _, err := ParseColor(input); !errors.Is(err, ErrInvalidColor) {
				t.Errorf("ParseColor(%q): expected ErrInvalidColor, got %v", input, err)
			}
		})
	}
}
