package scene

import (
	"math"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/lights"
)

// DefaultFieldOfView is used when a camera has no usable field of view
const DefaultFieldOfView = 45.0

// Default output size when a scene does not specify one
const (
	DefaultWidth  = 1280
	DefaultHeight = 720
)

// CameraConfig describes where the camera sits and what it looks at
type CameraConfig struct {
	Location    core.Vec3 // Eye position
	LookAt      core.Vec3 // Point the camera faces; the view direction is LookAt - Location
	FieldOfView float64   // Full field of view in degrees
}

// EffectiveFieldOfView returns the field of view, falling back to the default when it is zero or NaN
func (c CameraConfig) EffectiveFieldOfView() float64 {
	if c.FieldOfView == 0 || math.IsNaN(c.FieldOfView) {
		return DefaultFieldOfView
	}
	return c.FieldOfView
}

// Scene contains all the elements needed for rendering.
// A scene is read-only while a render is in progress.
type Scene struct {
	Camera  CameraConfig
	Lights  []lights.PointLight // Summed, so order does not matter
	Spheres []geometry.Sphere   // Order decides which sphere wins an exact distance tie
	Width   int                 // Preferred image width
	Height  int                 // Preferred image height
}

// NewScene creates an empty scene with the default image size
func NewScene(camera CameraConfig) *Scene {
	return &Scene{
		Camera:  camera,
		Lights:  make([]lights.PointLight, 0),
		Spheres: make([]geometry.Sphere, 0),
		Width:   DefaultWidth,
		Height:  DefaultHeight,
	}
}

// AddLight adds a point light at the given position
func (s *Scene) AddLight(position core.Vec3) {
	s.Lights = append(s.Lights, lights.NewPointLight(position))
}

// AddSphere appends a sphere to the scene
func (s *Scene) AddSphere(sphere geometry.Sphere) {
	s.Spheres = append(s.Spheres, sphere)
}

// GetPrimitiveCount returns the total number of primitive objects in the scene
func (s *Scene) GetPrimitiveCount() int {
	return len(s.Spheres)
}
