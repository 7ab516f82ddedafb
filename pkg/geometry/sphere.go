package geometry

import (
	"math"

	"github.com/df07/go-sphere-raytracer/pkg/core"
)

// Sphere represents a sphere shape together with its surface coefficients
type Sphere struct {
	Center core.Vec3
	Radius float64
	Color  core.Vec3 // RGB in the 0-255 range, kept as floats until the pixel write

	Lambert  float64 // Diffuse strength
	Specular float64 // Reflectivity strength
	Ambient  float64 // Self-illumination strength
}

// NewSphere creates a new sphere with no surface response; set the coefficients on the result
func NewSphere(center core.Vec3, radius float64, color core.Vec3) Sphere {
	return Sphere{
		Center: center,
		Radius: radius,
		Color:  color,
	}
}

// Intersect returns the distance along the ray to the near side of the sphere.
// The distance is not bounded below: a ray starting on or inside the sphere
// reports zero or a negative distance. The ray direction must be unit length.
func (s *Sphere) Intersect(ray core.Ray) (float64, bool) {
	eyeToCenter := s.Center.Subtract(ray.Origin)
	v := eyeToCenter.Dot(ray.Direction)
	eyeToCenterDistSq := eyeToCenter.Dot(eyeToCenter)

	discriminant := s.Radius*s.Radius - eyeToCenterDistSq + v*v
	if discriminant < 0 {
		return 0, false
	}

	return v - math.Sqrt(discriminant), true
}

// Normal returns the outward unit normal at a point on the surface
func (s *Sphere) Normal(point core.Vec3) core.Vec3 {
	return point.Subtract(s.Center).Normalize()
}
