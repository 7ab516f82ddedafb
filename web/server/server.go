package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"

	"github.com/df07/go-sphere-raytracer/pkg/config"
	"github.com/df07/go-sphere-raytracer/pkg/loaders"
	"github.com/df07/go-sphere-raytracer/pkg/output"
	"github.com/df07/go-sphere-raytracer/pkg/renderer"
	"github.com/df07/go-sphere-raytracer/pkg/scene"
)

// Request size limits
const (
	MinImageSize = 2
	MaxImageSize = 2000
)

// Server handles web requests for the raytracer
type Server struct {
	port      int
	config    config.Config
	staticDir string
}

// NewServer creates a new web server
func NewServer(port int, cfg config.Config) *Server {
	return &Server{
		port:      port,
		config:    cfg,
		staticDir: "static/",
	}
}

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene  string `json:"scene"`  // Scene ID or markup path
	Width  int    `json:"width"`  // Image width
	Height int    `json:"height"` // Image height
}

// Handler returns the routes served by the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Serve static files when the UI is present
	if info, err := os.Stat(s.staticDir); err == nil && info.IsDir() {
		mux.Handle("/", http.FileServer(http.Dir(s.staticDir)))
	}

	// API endpoints
	mux.HandleFunc("/api/render", s.handleRender)
	mux.HandleFunc("/api/image", s.handleImage)
	mux.HandleFunc("/api/inspect", s.handleInspect)
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/scenes", s.handleScenes)
	mux.HandleFunc("/api/scene-config", s.handleSceneConfig)

	return mux
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("Starting web server on http://localhost%s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleScenes lists built-in and markup scenes by group
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	response, err := scene.ListAllScenes()
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// handleSceneConfig returns the default size of a scene and the request limits
func (s *Server) handleSceneConfig(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	req := &RenderRequest{}
	sceneObj, err := s.parseCommonSceneParams(r, req)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	response := map[string]interface{}{
		"scene": req.Scene,
		"defaults": map[string]interface{}{
			"width":       sceneObj.Width,
			"height":      sceneObj.Height,
			"fieldOfView": sceneObj.Camera.EffectiveFieldOfView(),
			"spheres":     sceneObj.GetPrimitiveCount(),
			"lights":      len(sceneObj.Lights),
		},
		"limits": map[string]interface{}{
			"width":  map[string]int{"min": MinImageSize, "max": MaxImageSize},
			"height": map[string]int{"min": MinImageSize, "max": MaxImageSize},
		},
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// handleImage renders the whole image and returns it encoded in the requested format
func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	req := &RenderRequest{}
	sceneObj, err := s.parseCommonSceneParams(r, req)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	formatName := r.URL.Query().Get("format")
	if formatName == "" {
		formatName = string(output.FormatPNG)
	}
	format, err := output.ParseFormat(formatName)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	raytracer, err := renderer.NewParallelRaytracer(sceneObj, req.Width, req.Height, s.renderConfig(), nil)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	img, _, err := raytracer.Render(r.Context(), nil)
	if err != nil {
		// Client went away
		if errors.Is(err, r.Context().Err()) {
			return
		}
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var buf bytes.Buffer
	if err := output.Encode(&buf, img, format); err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// renderConfig builds the tile settings from server configuration
func (s *Server) renderConfig() renderer.RenderConfig {
	config := renderer.DefaultRenderConfig()
	if s.config.TileSize > 0 {
		config.TileSize = s.config.TileSize
	}
	config.NumWorkers = s.config.Workers
	return config
}

// parseCommonSceneParams reads the scene, width and height parameters shared by every scene endpoint.
// Width and height default to the scene's own size.
func (s *Server) parseCommonSceneParams(r *http.Request, req *RenderRequest) (*scene.Scene, error) {
	values := r.URL.Query()

	req.Scene = values.Get("scene")
	if req.Scene == "" {
		req.Scene = scene.DefaultSceneID
	}

	sceneObj, err := s.createScene(req.Scene)
	if err != nil {
		return nil, err
	}

	if req.Width, err = parseIntParam(values, "width", sceneObj.Width, MinImageSize, MaxImageSize); err != nil {
		return nil, err
	}
	if req.Height, err = parseIntParam(values, "height", sceneObj.Height, MinImageSize, MaxImageSize); err != nil {
		return nil, err
	}

	return sceneObj, nil
}

// createScene resolves a built-in scene ID, "markup:<name>" or markup file path
func (s *Server) createScene(sceneName string) (*scene.Scene, error) {
	sceneObj, err := loaders.ResolveScene(sceneName)
	if err != nil {
		return nil, fmt.Errorf("unknown scene %q: %w", sceneName, err)
	}
	return sceneObj, nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// imageToBase64PNG converts an image to base64-encoded PNG
func imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// writeJSONError writes {"error": message} with the given status
func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
