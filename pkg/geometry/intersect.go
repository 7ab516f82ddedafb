package geometry

import (
	"math"

	"github.com/df07/go-sphere-raytracer/pkg/core"
)

// NoHit is the distance reported when a ray misses every sphere
var NoHit = math.Inf(1)

// Intersection is the nearest sphere along a ray.
// Sphere points into the caller's slice and must not be modified.
type Intersection struct {
	Distance float64
	Sphere   *Sphere
}

// Hit reports whether the ray struck anything
func (i Intersection) Hit() bool {
	return i.Distance != NoHit
}

// IntersectSpheres finds the sphere with the smallest intersection distance.
// A candidate must be strictly closer to replace the current best, so when two
// spheres report the same distance the one earlier in the slice wins.
func IntersectSpheres(ray core.Ray, spheres []Sphere) Intersection {
	closest := Intersection{Distance: NoHit}

	for i := range spheres {
		distance, ok := spheres[i].Intersect(ray)
		if ok && distance < closest.Distance {
			closest = Intersection{Distance: distance, Sphere: &spheres[i]}
		}
	}

	return closest
}
