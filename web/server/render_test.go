package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// sseEvents splits an SSE body into (event, data) pairs
func sseEvents(body string) [][2]string {
	var events [][2]string
	for _, block := range strings.Split(body, "\n\n") {
		var event, data string
		for _, line := range strings.Split(block, "\n") {
			if value, ok := strings.CutPrefix(line, "event: "); ok {
				event = value
			}
			if value, ok := strings.CutPrefix(line, "data: "); ok {
				data = value
			}
		}
		if event != "" {
			events = append(events, [2]string{event, data})
		}
	}
	return events
}

func TestHandleRenderStreamsTiles(t *testing.T) {
	rec := serve(t, newTestServer(), "/api/render?scene=default&width=40&height=20")

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Expected text/event-stream, got %q", ct)
	}

	events := sseEvents(rec.Body.String())
	counts := make(map[string]int)
	for _, event := range events {
		counts[event[0]]++
	}

	// 40x20 with 16 pixel tiles: 3 columns, 2 rows
	if counts["tile"] != 6 {
		t.Errorf("Expected 6 tile events, got %d", counts["tile"])
	}
	if counts["frameComplete"] != 1 {
		t.Errorf("Expected 1 frameComplete event, got %d", counts["frameComplete"])
	}
	if counts["error"] != 0 {
		t.Errorf("Expected no errors, got %v", events)
	}
	if counts["complete"] != 1 {
		t.Errorf("Expected 1 complete event, got %d", counts["complete"])
	}
	// Console messages may trail, but render events never follow completion
	completed := false
	for _, event := range events {
		switch event[0] {
		case "complete":
			completed = true
		case "tile", "frameComplete":
			if completed {
				t.Errorf("Got %s after complete", event[0])
			}
		}
	}

	for _, event := range events {
		switch event[0] {
		case "tile":
			var update TileUpdate
			if err := json.Unmarshal([]byte(event[1]), &update); err != nil {
				t.Fatalf("Failed to decode tile update: %v", err)
			}
			if update.ImageData == "" || update.TotalTiles != 6 || update.TileSize != 16 {
				t.Errorf("Unexpected tile update %+v", update)
			}
		case "frameComplete":
			var update FrameUpdate
			if err := json.Unmarshal([]byte(event[1]), &update); err != nil {
				t.Fatalf("Failed to decode frame update: %v", err)
			}
			if update.TotalPixels != 800 || update.PrimitiveCount != 3 {
				t.Errorf("Unexpected frame update %+v", update)
			}
		}
	}
}

func TestHandleRenderInvalidScene(t *testing.T) {
	rec := serve(t, newTestServer(), "/api/render?scene=nonexistent")

	events := sseEvents(rec.Body.String())
	if len(events) != 1 || events[0][0] != "error" {
		t.Fatalf("Expected a single error event, got %v", events)
	}
	if !strings.Contains(events[0][1], "nonexistent") {
		t.Errorf("Expected error to name the scene, got %q", events[0][1])
	}
}

// brokenResponseWriter fails every write, like a client that has gone away
type brokenResponseWriter struct {
	header http.Header
}

func (w *brokenResponseWriter) Header() http.Header { return w.header }
func (w *brokenResponseWriter) WriteHeader(statusCode int) {}
func (w *brokenResponseWriter) Write(p []byte) (int, error) {
	return 0, errors.New("connection reset by peer")
}

func TestHandleRenderStopsWhenWritesFail(t *testing.T) {
	// 400x400 with 16 pixel tiles queues far more events than the channel buffers
	req := httptest.NewRequest(http.MethodGet, "/api/render?scene=default&width=400&height=400", nil)
	w := &brokenResponseWriter{header: make(http.Header)}

	done := make(chan struct{})
	go func() {
		defer close(done)
		newTestServer().Handler().ServeHTTP(w, req)
	}()

	select {
	case <-done:
	case <-time.After(30 * time.Second):
		t.Fatal("Render handler kept running after the client stopped accepting writes")
	}
}

func TestWriteSSEEventsCancelsOnWriteFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan SSEEvent, 1)
	events <- SSEEvent{Type: "tile", Data: "{}"}

	newTestServer().writeSSEEvents(ctx, cancel, &brokenResponseWriter{header: make(http.Header)}, events)

	select {
	case <-ctx.Done():
	default:
		t.Error("Expected a failed write to cancel the render context")
	}
}
