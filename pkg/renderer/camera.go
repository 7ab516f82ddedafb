package renderer

import (
	"errors"
	"fmt"
	"math"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/scene"
)

var (
	// ErrImageTooSmall is returned for images narrower or shorter than 2 pixels;
	// pixel spacing divides by (dimension - 1)
	ErrImageTooSmall = errors.New("image must be at least 2x2 pixels")

	// ErrFieldOfView is returned when the field of view is not strictly between 0 and 180 degrees
	ErrFieldOfView = errors.New("field of view must be between 0 and 180 degrees")

	// ErrDegenerateCamera is returned when the camera basis cannot be built:
	// the camera sits on its look-at point or looks straight up or down
	ErrDegenerateCamera = errors.New("degenerate camera orientation")
)

// Camera generates one primary ray per pixel
type Camera struct {
	origin      core.Vec3
	eye         core.Vec3 // Unit view direction
	right       core.Vec3
	up          core.Vec3
	halfWidth   float64
	halfHeight  float64
	pixelWidth  float64
	pixelHeight float64
}

// NewCamera builds the view basis and pixel grid for a width x height image
func NewCamera(config scene.CameraConfig, width, height int) (*Camera, error) {
	if width < 2 || height < 2 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrImageTooSmall, width, height)
	}

	fieldOfView := config.EffectiveFieldOfView()
	if !(fieldOfView > 0 && fieldOfView < 180) {
		return nil, fmt.Errorf("%w: got %g", ErrFieldOfView, fieldOfView)
	}

	view := config.LookAt.Subtract(config.Location)
	if view.LengthSquared() == 0 {
		return nil, fmt.Errorf("%w: location and look-at are both %v", ErrDegenerateCamera, config.Location)
	}
	eye := view.Normalize()

	rightAxis := eye.Cross(core.WorldUp)
	if rightAxis.LengthSquared() == 0 {
		return nil, fmt.Errorf("%w: view direction %v is parallel to world up", ErrDegenerateCamera, eye)
	}
	right := rightAxis.Normalize()
	up := right.Cross(eye).Normalize()

	if !eye.IsFinite() || !right.IsFinite() || !up.IsFinite() {
		return nil, fmt.Errorf("%w: non-finite camera basis", ErrDegenerateCamera)
	}

	fovRadians := math.Pi * (fieldOfView / 2) / 180
	aspectRatio := float64(height) / float64(width)
	halfWidth := math.Tan(fovRadians)
	halfHeight := aspectRatio * halfWidth

	return &Camera{
		origin:      config.Location,
		eye:         eye,
		right:       right,
		up:          up,
		halfWidth:   halfWidth,
		halfHeight:  halfHeight,
		pixelWidth:  (halfWidth * 2) / float64(width-1),
		pixelHeight: (halfHeight * 2) / float64(height-1),
	}, nil
}

// GetRay returns the primary ray through pixel (col, row)
func (c *Camera) GetRay(col, row int) core.Ray {
	xComp := c.right.Multiply(float64(col)*c.pixelWidth - c.halfWidth)
	yComp := c.up.Multiply(float64(row)*c.pixelHeight - c.halfHeight)

	direction := c.eye.Add(xComp).Add(yComp).Normalize()
	return core.NewRay(c.origin, direction)
}
