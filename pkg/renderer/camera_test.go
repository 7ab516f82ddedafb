package renderer

import (
	"errors"
	"math"
	"testing"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/scene"
)

func lookDownNegativeZ() scene.CameraConfig {
	return scene.CameraConfig{
		Location:    core.NewVec3(0, 0, 10),
		LookAt:      core.NewVec3(0, 0, 0),
		FieldOfView: 45,
	}
}

func vecClose(a, b core.Vec3) bool {
	return a.Subtract(b).Length() < 1e-9
}

func TestCameraCenterPixelLooksAlongView(t *testing.T) {
	// Odd sizes put a pixel exactly on the view axis
	camera, err := NewCamera(lookDownNegativeZ(), 5, 3)
	if err != nil {
		t.Fatalf("NewCamera failed: %v", err)
	}

	ray := camera.GetRay(2, 1)
	if ray.Origin != core.NewVec3(0, 0, 10) {
		t.Errorf("Expected ray origin at camera location, got %v", ray.Origin)
	}
	if !vecClose(ray.Direction, core.NewVec3(0, 0, -1)) {
		t.Errorf("Expected center ray along -Z, got %v", ray.Direction)
	}
}

func TestCameraCornerRays(t *testing.T) {
	camera, err := NewCamera(lookDownNegativeZ(), 4, 2)
	if err != nil {
		t.Fatalf("NewCamera failed: %v", err)
	}

	halfWidth := math.Tan(math.Pi * 22.5 / 180)
	halfHeight := halfWidth * 2 / 4

	tests := []struct {
		name     string
		col, row int
		expected core.Vec3
	}{
		{"bottom left", 0, 0, core.NewVec3(-halfWidth, -halfHeight, -1)},
		{"bottom right", 3, 0, core.NewVec3(halfWidth, -halfHeight, -1)},
		{"top left", 0, 1, core.NewVec3(-halfWidth, halfHeight, -1)},
		{"top right", 3, 1, core.NewVec3(halfWidth, halfHeight, -1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := camera.GetRay(tt.col, tt.row).Direction
			if !vecClose(got, tt.expected.Normalize()) {
				t.Errorf("Expected %v, got %v", tt.expected.Normalize(), got)
			}
		})
	}
}

func TestCameraRaysAreUnitLength(t *testing.T) {
	config := scene.CameraConfig{
		Location:    core.NewVec3(3, -2, 7),
		LookAt:      core.NewVec3(-1, 4, 0),
		FieldOfView: 70,
	}
	camera, err := NewCamera(config, 16, 9)
	if err != nil {
		t.Fatalf("NewCamera failed: %v", err)
	}

	for row := 0; row < 9; row++ {
		for col := 0; col < 16; col++ {
			length := camera.GetRay(col, row).Direction.Length()
			if math.Abs(length-1) > 1e-12 {
				t.Fatalf("Ray (%d,%d) has length %f", col, row, length)
			}
		}
	}
}

func TestCameraZeroFieldOfViewUsesDefault(t *testing.T) {
	config := lookDownNegativeZ()
	withDefault, err := NewCamera(config, 8, 8)
	if err != nil {
		t.Fatalf("NewCamera failed: %v", err)
	}

	config.FieldOfView = 0
	withZero, err := NewCamera(config, 8, 8)
	if err != nil {
		t.Fatalf("NewCamera with zero field of view failed: %v", err)
	}

	if withDefault.GetRay(0, 0) != withZero.GetRay(0, 0) {
		t.Errorf("Expected zero field of view to behave like %g degrees", scene.DefaultFieldOfView)
	}
}

func TestCameraRejectsInvalidConfigs(t *testing.T) {
	tests := []struct {
		name          string
		config        scene.CameraConfig
		width, height int
		expected      error
	}{
		{"single column", lookDownNegativeZ(), 1, 10, ErrImageTooSmall},
		{"single row", lookDownNegativeZ(), 10, 1, ErrImageTooSmall},
		{"zero size", lookDownNegativeZ(), 0, 0, ErrImageTooSmall},
		{
			name:     "field of view too wide",
			config:   scene.CameraConfig{Location: core.NewVec3(0, 0, 10), FieldOfView: 180},
			width:    10,
			height:   10,
			expected: ErrFieldOfView,
		},
		{
			name:     "negative field of view",
			config:   scene.CameraConfig{Location: core.NewVec3(0, 0, 10), FieldOfView: -30},
			width:    10,
			height:   10,
			expected: ErrFieldOfView,
		},
		{
			name:     "location equals look-at",
			config:   scene.CameraConfig{Location: core.NewVec3(1, 2, 3), LookAt: core.NewVec3(1, 2, 3)},
			width:    10,
			height:   10,
			expected: ErrDegenerateCamera,
		},
		{
			name:     "looking straight down",
			config:   scene.CameraConfig{Location: core.NewVec3(0, 10, 0), LookAt: core.NewVec3(0, 0, 0)},
			width:    10,
			height:   10,
			expected: ErrDegenerateCamera,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			camera, err := NewCamera(tt.config, tt.width, tt.height)
			if !errors.Is(err, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, err)
			}
			if camera != nil {
				t.Error("Expected nil camera on error")
			}
		})
	}
}
