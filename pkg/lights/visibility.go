package lights

import (
	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
)

// ShadowBias is the distance threshold for the shadow test. A surface point
// sees itself at distance ~0 (or slightly below from rounding), and anything
// between the point and the light shows up at a clearly negative distance.
const ShadowBias = -0.005

// IsVisible reports whether light reaches point unobstructed.
//
// The shadow ray starts at point and heads away from the light, so blockers
// between the point and the light sit behind the ray origin and produce large
// negative distances. The ray direction and the negative bias go together:
// changing either one makes surfaces shadow themselves.
func IsVisible(point core.Vec3, spheres []geometry.Sphere, light PointLight) bool {
	shadowRay := core.NewRay(point, point.Subtract(light.Position).Normalize())
	intersection := geometry.IntersectSpheres(shadowRay, spheres)
	return intersection.Distance > ShadowBias
}
