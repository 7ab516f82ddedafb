package integrator

import (
	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/scene"
)

// Integrator defines the interface for light transport algorithms.
// Implementations must be safe for concurrent use: the renderer calls
// RayColor from many workers against one shared, read-only scene.
type Integrator interface {
	// RayColor computes the color seen along a primary camera ray, in the 0-255 range (unclamped)
	RayColor(ray core.Ray, scene *scene.Scene) core.Vec3
}
