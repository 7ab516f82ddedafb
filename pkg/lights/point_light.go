package lights

import "github.com/df07/go-sphere-raytracer/pkg/core"

// PointLight is a full-strength white light at a single position.
// It has no color or falloff: a visible light contributes only through the cosine term.
type PointLight struct {
	Position core.Vec3
}

// NewPointLight creates a point light at the given position
func NewPointLight(position core.Vec3) PointLight {
	return PointLight{Position: position}
}

// DirectionFrom returns the unit direction from point toward the light
func (l PointLight) DirectionFrom(point core.Vec3) core.Vec3 {
	return l.Position.Subtract(point).Normalize()
}
