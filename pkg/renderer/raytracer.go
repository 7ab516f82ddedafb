package renderer

import (
	"image"
	"image/color"
	"math"
	"time"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/integrator"
	"github.com/df07/go-sphere-raytracer/pkg/scene"
)

// Raytracer renders pixels of one scene at a fixed resolution.
// It is read-only after construction and safe to share between workers.
type Raytracer struct {
	scene      *scene.Scene
	width      int
	height     int
	camera     *Camera
	integrator integrator.Integrator
}

// NewRaytracer creates a new raytracer using the Whitted integrator
func NewRaytracer(s *scene.Scene, width, height int) (*Raytracer, error) {
	camera, err := NewCamera(s.Camera, width, height)
	if err != nil {
		return nil, err
	}

	return &Raytracer{
		scene:      s,
		width:      width,
		height:     height,
		camera:     camera,
		integrator: integrator.NewWhittedIntegrator(),
	}, nil
}

// Width returns the image width in pixels
func (rt *Raytracer) Width() int { return rt.width }

// Height returns the image height in pixels
func (rt *Raytracer) Height() int { return rt.height }

// PrimaryRay returns the camera ray for image pixel (x, y).
// Camera rows count up from the bottom edge, so image row 0 is camera row height-1.
func (rt *Raytracer) PrimaryRay(x, y int) core.Ray {
	return rt.camera.GetRay(x, rt.height-1-y)
}

// PixelColor returns the unclamped color for image pixel (x, y)
func (rt *Raytracer) PixelColor(x, y int) core.Vec3 {
	return rt.integrator.RayColor(rt.PrimaryRay(x, y), rt.scene)
}

// RenderBounds renders the pixels inside bounds into img.
// Concurrent calls are safe as long as their bounds do not overlap.
func (rt *Raytracer) RenderBounds(bounds image.Rectangle, img *image.RGBA) RenderStats {
	stats := RenderStats{TotalPixels: bounds.Dx() * bounds.Dy()}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			colorVec := rt.PixelColor(x, y)
			if !colorVec.IsFinite() {
				stats.NonFinitePixels++
			}
			img.SetRGBA(x, y, vec3ToColor(colorVec))
		}
	}

	return stats
}

// RenderPass renders the whole image on the calling goroutine, row by row
func (rt *Raytracer) RenderPass() (*image.RGBA, RenderStats) {
	startTime := time.Now()
	img := image.NewRGBA(image.Rect(0, 0, rt.width, rt.height))

	stats := rt.RenderBounds(img.Bounds(), img)
	stats.TotalTiles = 1
	stats.NumWorkers = 1
	stats.Elapsed = time.Since(startTime)

	return img, stats
}

// vec3ToColor converts a 0-255 range color to RGBA.
// Channels are clamped to [0, 255] and truncated; NaN becomes 0. Alpha is always opaque.
func vec3ToColor(colorVec core.Vec3) color.RGBA {
	colorVec = colorVec.Clamp(0, 255)
	return color.RGBA{
		R: toChannel(colorVec.X),
		G: toChannel(colorVec.Y),
		B: toChannel(colorVec.Z),
		A: 255,
	}
}

func toChannel(v float64) uint8 {
	if math.IsNaN(v) {
		return 0
	}
	return uint8(v)
}
