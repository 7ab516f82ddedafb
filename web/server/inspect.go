package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/renderer"
	"github.com/df07/go-sphere-raytracer/pkg/scene"
)

// ErrPixelOutOfBounds is returned when an inspected pixel lies outside the image
var ErrPixelOutOfBounds = errors.New("pixel coordinates out of bounds")

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit         bool                   `json:"hit"`
	SphereIndex int                    `json:"sphereIndex"` // Position in the scene's sphere list, -1 on a miss
	Point       [3]float64             `json:"point"`
	Normal      [3]float64             `json:"normal"`
	Distance    float64                `json:"distance"`
	Color       [3]float64             `json:"color"` // Traced color before clamping
	Properties  map[string]interface{} `json:"properties"`
}

// InspectResult contains information about the sphere hit by an inspection ray
type InspectResult struct {
	Ray          core.Ray
	Intersection geometry.Intersection
	SphereIndex  int
	Color        core.Vec3
}

// inspectPixel casts the primary ray through image pixel (pixelX, pixelY) and reports the nearest sphere it hits
func inspectPixel(sceneObj *scene.Scene, width, height, pixelX, pixelY int) (InspectResult, error) {
	raytracer, err := renderer.NewRaytracer(sceneObj, width, height)
	if err != nil {
		return InspectResult{}, err
	}

	if pixelX < 0 || pixelX >= raytracer.Width() || pixelY < 0 || pixelY >= raytracer.Height() {
		return InspectResult{}, fmt.Errorf("%w: (%d, %d) in %dx%d", ErrPixelOutOfBounds,
			pixelX, pixelY, raytracer.Width(), raytracer.Height())
	}

	ray := raytracer.PrimaryRay(pixelX, pixelY)
	intersection := geometry.IntersectSpheres(ray, sceneObj.Spheres)

	result := InspectResult{
		Ray:          ray,
		Intersection: intersection,
		SphereIndex:  -1,
		Color:        raytracer.PixelColor(pixelX, pixelY),
	}
	for i := range sceneObj.Spheres {
		if &sceneObj.Spheres[i] == intersection.Sphere {
			result.SphereIndex = i
			break
		}
	}

	return result, nil
}

// extractSphereInfo describes a sphere's geometry and surface coefficients
func extractSphereInfo(sphere *geometry.Sphere) map[string]interface{} {
	displayColor := sphere.Color.Clamp(0, 255)
	return map[string]interface{}{
		"center": [3]float64{sphere.Center.X, sphere.Center.Y, sphere.Center.Z},
		"radius": sphere.Radius,
		"color": fmt.Sprintf("#%02x%02x%02x",
			int(displayColor.X), int(displayColor.Y), int(displayColor.Z)),
		"lambert":  sphere.Lambert,
		"specular": sphere.Specular,
		"ambient":  sphere.Ambient,
	}
}

func vecArray(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

// handleInspect handles ray casting inspection requests
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	inspectReq := &RenderRequest{}
	sceneObj, err := s.parseCommonSceneParams(r, inspectReq)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid scene parameters: "+err.Error())
		return
	}

	pixelX, err := strconv.Atoi(r.URL.Query().Get("x"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid x coordinate")
		return
	}

	pixelY, err := strconv.Atoi(r.URL.Query().Get("y"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid y coordinate")
		return
	}

	result, err := inspectPixel(sceneObj, inspectReq.Width, inspectReq.Height, pixelX, pixelY)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	response := InspectResponse{
		Hit:         result.Intersection.Hit(),
		SphereIndex: result.SphereIndex,
	}
	// JSON has no NaN or Inf
	if result.Color.IsFinite() {
		response.Color = vecArray(result.Color)
	}
	if response.Hit {
		sphere := result.Intersection.Sphere
		point := result.Ray.At(result.Intersection.Distance)
		response.Point = vecArray(point)
		response.Normal = vecArray(sphere.Normal(point))
		response.Distance = result.Intersection.Distance
		response.Properties = map[string]interface{}{
			"geometry": extractSphereInfo(sphere),
		}
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}
