package integrator

import (
	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/lights"
	"github.com/df07/go-sphere-raytracer/pkg/scene"
)

// MaxDepth is the deepest recursion level that still produces a color.
// Depths 0 through MaxDepth shade; a trace at MaxDepth+1 contributes nothing.
const MaxDepth = 3

// Background is the color of rays that escape the scene
var Background = core.NewVec3(255, 255, 255)

// WhittedIntegrator shades spheres with Lambert, ambient and mirror reflection
// terms under hard-shadowed point lights. It holds no state.
type WhittedIntegrator struct{}

// NewWhittedIntegrator creates a new Whitted-style integrator
func NewWhittedIntegrator() *WhittedIntegrator {
	return &WhittedIntegrator{}
}

// RayColor traces a primary ray at depth 0
func (w *WhittedIntegrator) RayColor(ray core.Ray, s *scene.Scene) core.Vec3 {
	color, _ := w.Trace(ray, s, 0)
	return color
}

// Trace returns the color seen along ray. The boolean is false once depth
// exceeds MaxDepth, meaning the ray contributes nothing at all.
func (w *WhittedIntegrator) Trace(ray core.Ray, s *scene.Scene, depth int) (core.Vec3, bool) {
	if depth > MaxDepth {
		return core.Vec3{}, false
	}

	intersection := geometry.IntersectSpheres(ray, s.Spheres)
	if !intersection.Hit() {
		return Background, true
	}

	point := ray.At(intersection.Distance)
	return w.surface(ray, s, intersection.Sphere, point, depth), true
}

// surface computes the color of sphere at point as seen along ray
func (w *WhittedIntegrator) surface(ray core.Ray, s *scene.Scene, sphere *geometry.Sphere, point core.Vec3, depth int) core.Vec3 {
	normal := sphere.Normal(point)
	color := core.Vec3{}

	lambertAmount := 0.0
	if sphere.Lambert != 0 {
		for _, light := range s.Lights {
			if !lights.IsVisible(point, s.Spheres, light) {
				continue
			}
			contribution := light.DirectionFrom(point).Dot(normal)
			if contribution > 0 {
				lambertAmount += contribution
			}
		}
	}

	if sphere.Specular != 0 {
		reflectedRay := core.NewRay(point, ray.Direction.Reflect(normal))
		if reflected, ok := w.Trace(reflectedRay, s, depth+1); ok {
			color = color.Add(reflected.Multiply(sphere.Specular))
		}
	}

	// Capped above only; the sum holds positive terms so it never drops below zero
	lambertAmount = min(1, lambertAmount)

	return color.
		Add(sphere.Color.Multiply(lambertAmount * sphere.Lambert)).
		Add(sphere.Color.Multiply(sphere.Ambient))
}
