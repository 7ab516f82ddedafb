package loaders

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/scene"
)

// ErrInvalidScene is returned when markup does not describe a renderable scene
var ErrInvalidScene = errors.New("invalid scene markup")

// Markup element names
const (
	tagRayTracer = "ray-tracer"
	tagCamera    = "ray-tracer-camera"
	tagLight     = "ray-tracer-light"
	tagSphere    = "ray-tracer-sphere"
)

// LoadMarkupFile loads a markup scene file from the scenes directory
func LoadMarkupFile(filename string) (*scene.Scene, error) {
	if err := validateFilePath(filename, sceneRoots()...); err != nil {
		return nil, err
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open scene file: %w", err)
	}
	defer file.Close()

	s, err := LoadMarkup(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return s, nil
}

// LoadMarkup builds a scene from the first <ray-tracer> element in r:
//
//	<ray-tracer width="640" height="480">
//	  <ray-tracer-camera location="0,1.8,10" direction="0,3,0" field-of-view="45"></ray-tracer-camera>
//	  <ray-tracer-light location="-30,-10,20"></ray-tracer-light>
//	  <ray-tracer-sphere location="0,3.5,-3" color="#9bc89b" radius="3"
//	      lambert="0.7" specular="0.2" ambient="0.1"></ray-tracer-sphere>
//	</ray-tracer>
//
// The camera's direction attribute is the point it looks at. Elements are
// read in document order, so sphere order in the markup decides distance ties.
func LoadMarkup(r io.Reader) (*scene.Scene, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse markup: %w", err)
	}

	root := findElement(doc, tagRayTracer)
	if root == nil {
		return nil, fmt.Errorf("%w: no <%s> element", ErrInvalidScene, tagRayTracer)
	}

	s := scene.NewScene(scene.CameraConfig{})
	s.Width = intAttr(root, "width", scene.DefaultWidth)
	s.Height = intAttr(root, "height", scene.DefaultHeight)

	hasCamera := false
	// Custom elements are never void in HTML, so an unclosed child swallows its
	// siblings; walking all descendants keeps them in document order either way
	var walkErr error
	walkElements(root, func(n *html.Node) bool {
		switch n.Data {
		case tagCamera:
			camera, err := parseCamera(n)
			if err != nil {
				walkErr = err
				return false
			}
			s.Camera = camera
			hasCamera = true
		case tagLight:
			location, err := vectorAttr(n, "location")
			if err != nil {
				walkErr = err
				return false
			}
			s.AddLight(location)
		case tagSphere:
			sphere, err := parseSphere(n)
			if err != nil {
				walkErr = err
				return false
			}
			s.AddSphere(sphere)
		}
		return true
	})
	if walkErr != nil {
		return nil, walkErr
	}

	if !hasCamera {
		return nil, fmt.Errorf("%w: no <%s> element", ErrInvalidScene, tagCamera)
	}

	return s, nil
}

func parseCamera(n *html.Node) (scene.CameraConfig, error) {
	location, err := vectorAttr(n, "location")
	if err != nil {
		return scene.CameraConfig{}, err
	}
	lookAt, err := vectorAttr(n, "direction")
	if err != nil {
		return scene.CameraConfig{}, err
	}

	// Missing or unparseable field of view falls back to the default
	fieldOfView := scene.DefaultFieldOfView
	if value, ok := attr(n, "field-of-view"); ok {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil && parsed != 0 {
			fieldOfView = parsed
		}
	}

	return scene.CameraConfig{
		Location:    location,
		LookAt:      lookAt,
		FieldOfView: fieldOfView,
	}, nil
}

func parseSphere(n *html.Node) (geometry.Sphere, error) {
	location, err := vectorAttr(n, "location")
	if err != nil {
		return geometry.Sphere{}, err
	}

	value, ok := attr(n, "color")
	if !ok {
		return geometry.Sphere{}, missingAttr(n, "color")
	}
	color, err := ParseColor(value)
	if err != nil {
		return geometry.Sphere{}, fmt.Errorf("<%s> color: %w", n.Data, err)
	}

	radius, err := floatAttr(n, "radius", math.NaN())
	if err != nil {
		return geometry.Sphere{}, err
	}
	if math.IsNaN(radius) {
		return geometry.Sphere{}, missingAttr(n, "radius")
	}

	sphere := geometry.NewSphere(location, radius, color)
	if sphere.Lambert, err = floatAttr(n, "lambert", 0); err != nil {
		return geometry.Sphere{}, err
	}
	if sphere.Specular, err = floatAttr(n, "specular", 0); err != nil {
		return geometry.Sphere{}, err
	}
	if sphere.Ambient, err = floatAttr(n, "ambient", 0); err != nil {
		return geometry.Sphere{}, err
	}

	return sphere, nil
}

// findElement returns the first element named tag in document order
func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// walkElements visits the element descendants of n in document order until visit returns false
func walkElements(n *html.Node, visit func(*html.Node) bool) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if !visit(c) || !walkElements(c, visit) {
			return false
		}
	}
	return true
}

// attr looks up an attribute; the parser lowercases attribute names
func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func missingAttr(n *html.Node, key string) error {
	return fmt.Errorf("%w: <%s> is missing %q", ErrInvalidScene, n.Data, key)
}

func vectorAttr(n *html.Node, key string) (core.Vec3, error) {
	value, ok := attr(n, key)
	if !ok {
		return core.Vec3{}, missingAttr(n, key)
	}
	v, err := ParseVector(value)
	if err != nil {
		return core.Vec3{}, fmt.Errorf("<%s> %s: %w", n.Data, key, err)
	}
	return v, nil
}

func floatAttr(n *html.Node, key string, fallback float64) (float64, error) {
	value, ok := attr(n, key)
	if !ok {
		return fallback, nil
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: <%s> %s=%q", ErrInvalidScene, n.Data, key, value)
	}
	return parsed, nil
}

// intAttr returns a positive integer attribute, or fallback when it is missing or unusable
func intAttr(n *html.Node, key string, fallback int) int {
	value, ok := attr(n, key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

// ResolveScene returns a built-in scene by ID, or loads a markup file when name
// has the markup extension or the "markup:" prefix used by scene discovery
func ResolveScene(name string) (*scene.Scene, error) {
	if id, ok := strings.CutPrefix(name, "markup:"); ok {
		dir := scene.FindScenesDir()
		if dir == "" {
			return nil, fmt.Errorf("%w: %q: no scenes directory", scene.ErrUnknownScene, name)
		}
		return LoadMarkupFile(filepath.Join(dir, id+scene.MarkupExtension))
	}

	if strings.HasSuffix(strings.ToLower(name), scene.MarkupExtension) {
		return LoadMarkupFile(name)
	}

	return scene.NewBuiltinScene(name)
}

// sceneRoots returns the directories markup files may be loaded from
func sceneRoots() []string {
	roots := []string{os.TempDir()}
	if dir := scene.FindScenesDir(); dir != "" {
		roots = append(roots, dir)
	}
	return roots
}

// validateFilePath validates a file path for security issues.
// The file must resolve to a location inside one of roots.
func validateFilePath(filename string, roots ...string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	// Check for null bytes (could indicate path manipulation)
	if strings.Contains(filename, "\x00") {
		return fmt.Errorf("invalid file path: null bytes not allowed")
	}

	cleanPath := filepath.Clean(filename)

	if !strings.HasSuffix(strings.ToLower(cleanPath), scene.MarkupExtension) {
		return fmt.Errorf("invalid file type: only %s files are allowed", scene.MarkupExtension)
	}

	// Check for extremely long paths that could cause issues
	if len(cleanPath) > 512 {
		return fmt.Errorf("file path too long: maximum 512 characters allowed")
	}

	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return fmt.Errorf("invalid file path: %w", err)
	}
	for _, root := range roots {
		if isWithin(root, absPath) {
			return nil
		}
	}
	return fmt.Errorf("file path must be in the scenes directory")
}

// isWithin reports whether absPath lies inside root
func isWithin(root, absPath string) bool {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}
