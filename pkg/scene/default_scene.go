package scene

import (
	"errors"
	"fmt"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
)

// ErrUnknownScene is returned when a scene name matches no built-in scene or file
var ErrUnknownScene = errors.New("unknown scene")

// Built-in scene identifiers
const (
	DefaultSceneID = "default"
	MirrorsSceneID = "mirrors"
	EmptySceneID   = "empty"
)

// NewBuiltinScene creates one of the built-in scenes by ID
func NewBuiltinScene(id string) (*Scene, error) {
	switch id {
	case DefaultSceneID:
		return NewDefaultScene(), nil
	case MirrorsSceneID:
		return NewMirrorsScene(), nil
	case EmptySceneID:
		return NewEmptyScene(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScene, id)
	}
}

// newSphere builds a sphere with all three surface coefficients set
func newSphere(center core.Vec3, radius float64, color core.Vec3, lambert, specular, ambient float64) geometry.Sphere {
	sphere := geometry.NewSphere(center, radius, color)
	sphere.Lambert = lambert
	sphere.Specular = specular
	sphere.Ambient = ambient
	return sphere
}

// NewDefaultScene creates a large matte sphere with two small shiny moons and one light
func NewDefaultScene() *Scene {
	s := NewScene(CameraConfig{
		Location:    core.NewVec3(0, 1.8, 10),
		LookAt:      core.NewVec3(0, 3, 0),
		FieldOfView: 45,
	})
	s.Width = 640
	s.Height = 480

	s.AddLight(core.NewVec3(-30, -10, 20))

	s.AddSphere(newSphere(core.NewVec3(0, 3.5, -3), 3, core.NewVec3(155, 200, 155), 0.7, 0.2, 0.1))
	s.AddSphere(newSphere(core.NewVec3(-4, 2, -1), 0.2, core.NewVec3(155, 155, 155), 0.9, 0.1, 0.0))
	s.AddSphere(newSphere(core.NewVec3(-4, 3, -1), 0.1, core.NewVec3(255, 255, 255), 0.9, 0.1, 0.0))

	return s
}

// NewMirrorsScene creates two fully reflective spheres facing each other beside a colored sphere
func NewMirrorsScene() *Scene {
	s := NewScene(CameraConfig{
		Location:    core.NewVec3(0, 2, 12),
		LookAt:      core.NewVec3(0, 0, 0),
		FieldOfView: 50,
	})
	s.Width = 640
	s.Height = 360

	s.AddLight(core.NewVec3(0, 20, 10))
	s.AddLight(core.NewVec3(-15, 5, 5))

	s.AddSphere(newSphere(core.NewVec3(-3, 0, 0), 2, core.NewVec3(200, 200, 220), 0, 1, 0))
	s.AddSphere(newSphere(core.NewVec3(3, 0, 0), 2, core.NewVec3(200, 200, 220), 0, 1, 0))
	s.AddSphere(newSphere(core.NewVec3(0, -1, 3), 1, core.NewVec3(220, 60, 40), 0.8, 0.1, 0.15))

	return s
}

// NewEmptyScene creates a scene with a light and nothing to light; every pixel is background
func NewEmptyScene() *Scene {
	s := NewScene(CameraConfig{
		Location:    core.NewVec3(0, 0, 5),
		LookAt:      core.NewVec3(0, 0, 0),
		FieldOfView: DefaultFieldOfView,
	})
	s.Width = 320
	s.Height = 240

	s.AddLight(core.NewVec3(0, 10, 0))

	return s
}
