package integrator

import (
	"math"
	"testing"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/scene"
)

// towardOrigin looks down -Z at a unit sphere centered on the origin, hitting it at (0, 0, 1)
var towardOrigin = core.NewRay(core.NewVec3(0, 0, 10), core.NewVec3(0, 0, -1))

func newTestSphere(color core.Vec3, lambert, specular, ambient float64) geometry.Sphere {
	sphere := geometry.NewSphere(core.NewVec3(0, 0, 0), 1, color)
	sphere.Lambert = lambert
	sphere.Specular = specular
	sphere.Ambient = ambient
	return sphere
}

func newTestScene(spheres []geometry.Sphere, lightPositions ...core.Vec3) *scene.Scene {
	s := scene.NewScene(scene.CameraConfig{
		Location: towardOrigin.Origin,
		LookAt:   core.NewVec3(0, 0, 0),
	})
	for _, sphere := range spheres {
		s.AddSphere(sphere)
	}
	for _, position := range lightPositions {
		s.AddLight(position)
	}
	return s
}

func assertColor(t *testing.T, expected, got core.Vec3) {
	t.Helper()
	if got.Subtract(expected).Length() > 1e-9 {
		t.Errorf("Expected color %v, got %v", expected, got)
	}
}

func TestWhitted_MissReturnsBackground(t *testing.T) {
	w := NewWhittedIntegrator()
	s := newTestScene(nil, core.NewVec3(0, 10, 0))

	color, ok := w.Trace(towardOrigin, s, 0)
	if !ok {
		t.Fatal("Expected a color for a miss")
	}
	assertColor(t, core.NewVec3(255, 255, 255), color)
}

func TestWhitted_DepthLimit(t *testing.T) {
	w := NewWhittedIntegrator()
	s := newTestScene([]geometry.Sphere{newTestSphere(core.NewVec3(10, 20, 30), 0, 0, 1)})

	if _, ok := w.Trace(towardOrigin, s, MaxDepth); !ok {
		t.Errorf("Expected depth %d to still produce a color", MaxDepth)
	}
	if color, ok := w.Trace(towardOrigin, s, MaxDepth+1); ok {
		t.Errorf("Expected no contribution past the depth limit, got %v", color)
	}
}

func TestWhitted_DirectLambert(t *testing.T) {
	w := NewWhittedIntegrator()
	color := core.NewVec3(200, 100, 50)

	tests := []struct {
		name     string
		sphere   geometry.Sphere
		lights   []core.Vec3
		expected core.Vec3
	}{
		{
			name:     "light straight ahead",
			sphere:   newTestSphere(color, 1, 0, 0),
			lights:   []core.Vec3{core.NewVec3(0, 0, 10)},
			expected: color,
		},
		{
			name:     "light perpendicular to the normal leaves ambient only",
			sphere:   newTestSphere(color, 1, 0, 0.1),
			lights:   []core.Vec3{core.NewVec3(10, 0, 1)},
			expected: core.NewVec3(20, 10, 5),
		},
		{
			name:     "light behind the surface",
			sphere:   newTestSphere(color, 1, 0, 0),
			lights:   []core.Vec3{core.NewVec3(0, 0, -10)},
			expected: core.NewVec3(0, 0, 0),
		},
		{
			name:     "two lights sum and cap at one",
			sphere:   newTestSphere(color, 0.5, 0, 0),
			lights:   []core.Vec3{core.NewVec3(0, 0, 10), core.NewVec3(0, 0, 20)},
			expected: core.NewVec3(100, 50, 25),
		},
		{
			name:     "angled light scales by cosine",
			sphere:   newTestSphere(color, 1, 0, 0),
			lights:   []core.Vec3{core.NewVec3(10, 0, 11)},
			expected: color.Multiply(math.Sqrt2 / 2),
		},
		{
			name:     "zero lambert ignores lights",
			sphere:   newTestSphere(color, 0, 0, 0.5),
			lights:   []core.Vec3{core.NewVec3(0, 0, 10)},
			expected: core.NewVec3(100, 50, 25),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestScene([]geometry.Sphere{tt.sphere}, tt.lights...)
			got, ok := w.Trace(towardOrigin, s, 0)
			if !ok {
				t.Fatal("Expected a color")
			}
			assertColor(t, tt.expected, got)
		})
	}
}

func TestWhitted_ShadowedLight(t *testing.T) {
	w := NewWhittedIntegrator()
	color := core.NewVec3(200, 100, 50)
	target := newTestSphere(color, 1, 0, 0.1)
	blocker := geometry.NewSphere(core.NewVec3(5, 0, 6), 1, core.NewVec3(0, 0, 0))
	light := core.NewVec3(10, 0, 11)

	s := newTestScene([]geometry.Sphere{target, blocker}, light)
	got, _ := w.Trace(towardOrigin, s, 0)
	assertColor(t, color.Multiply(0.1), got)
}

func TestWhitted_SpecularRecursesFourLevels(t *testing.T) {
	w := NewWhittedIntegrator()
	// The reflected ray starts on the mirror's surface and re-hits it at distance 0,
	// so each level adds the ambient term scaled by one more factor of specular.
	mirror := newTestSphere(core.NewVec3(100, 100, 100), 0, 0.5, 1)
	s := newTestScene([]geometry.Sphere{mirror})

	got, ok := w.Trace(towardOrigin, s, 0)
	if !ok {
		t.Fatal("Expected a color")
	}
	expected := 100 * (1 + 0.5 + 0.25 + 0.125)
	assertColor(t, core.NewVec3(expected, expected, expected), got)

	// At the last level the bounce is cut off
	got, _ = w.Trace(towardOrigin, s, MaxDepth)
	assertColor(t, core.NewVec3(100, 100, 100), got)
}

func TestWhitted_FacingMirrorsTerminate(t *testing.T) {
	w := NewWhittedIntegrator()
	left := geometry.NewSphere(core.NewVec3(-3, 0, 0), 2, core.NewVec3(255, 255, 255))
	left.Specular = 1
	right := geometry.NewSphere(core.NewVec3(3, 0, 0), 2, core.NewVec3(255, 255, 255))
	right.Specular = 1

	s := newTestScene([]geometry.Sphere{left, right}, core.NewVec3(0, 10, 0))
	rays := []core.Ray{
		core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0)),
		core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(-1, 0, 0)),
		core.NewRay(core.NewVec3(0, 0, 10), core.NewVec3(0.3, 0, -1).Normalize()),
	}

	for _, ray := range rays {
		got, ok := w.Trace(ray, s, 0)
		if !ok {
			t.Fatalf("Expected a color for %v", ray)
		}
		if !got.IsFinite() {
			t.Errorf("Expected a finite color for %v, got %v", ray, got)
		}
		// Pure mirrors with nothing to reflect but themselves stay black
		assertColor(t, core.NewVec3(0, 0, 0), got)
	}
}

func TestWhitted_RayColorMatchesTraceAtDepthZero(t *testing.T) {
	w := NewWhittedIntegrator()
	s := newTestScene([]geometry.Sphere{newTestSphere(core.NewVec3(50, 60, 70), 0.8, 0.3, 0.2)}, core.NewVec3(3, 4, 10))

	traced, _ := w.Trace(towardOrigin, s, 0)
	assertColor(t, traced, w.RayColor(towardOrigin, s))
}

func TestWhitted_ColorsAreNotClamped(t *testing.T) {
	w := NewWhittedIntegrator()
	s := newTestScene([]geometry.Sphere{newTestSphere(core.NewVec3(255, 255, 255), 1, 0, 2)}, core.NewVec3(0, 0, 10))

	got, _ := w.Trace(towardOrigin, s, 0)
	assertColor(t, core.NewVec3(765, 765, 765), got)
}

func TestWhitted_CoefficientsAreNotBounded(t *testing.T) {
	w := NewWhittedIntegrator()
	color := core.NewVec3(200, 100, 50)
	light := core.NewVec3(0, 0, 10)

	tests := []struct {
		name     string
		sphere   geometry.Sphere
		expected core.Vec3
	}{
		{"negative ambient darkens", newTestSphere(color, 1, 0, -0.5), core.NewVec3(100, 50, 25)},
		{"negative lambert goes below zero", newTestSphere(color, -1, 0, 0), core.NewVec3(-200, -100, -50)},
		{"lambert above one", newTestSphere(color, 1.5, 0, 0), core.NewVec3(300, 150, 75)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestScene([]geometry.Sphere{tt.sphere}, light)
			got, ok := w.Trace(towardOrigin, s, 0)
			if !ok {
				t.Fatal("Expected a color")
			}
			assertColor(t, tt.expected, got)
		})
	}
}
