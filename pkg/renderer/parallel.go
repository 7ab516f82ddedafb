package renderer

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"time"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/scene"
)

// RenderConfig contains configuration for parallel rendering
type RenderConfig struct {
	TileSize   int // Size of each tile (64x64 recommended)
	NumWorkers int // Number of parallel workers (0 = use CPU count)
}

// DefaultRenderConfig returns sensible default values
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		TileSize:   64,
		NumWorkers: 0, // Auto-detect CPU count
	}
}

// ParallelRaytracer renders an image by splitting it into tiles and tracing them on a worker pool
type ParallelRaytracer struct {
	width, height int
	config        RenderConfig
	tiles         []*Tile
	raytracer     *Raytracer
	logger        core.Logger
}

// NewParallelRaytracer creates a new tiled raytracer. A nil logger discards output.
func NewParallelRaytracer(s *scene.Scene, width, height int, config RenderConfig, logger core.Logger) (*ParallelRaytracer, error) {
	raytracer, err := NewRaytracer(s, width, height)
	if err != nil {
		return nil, err
	}

	if config.TileSize <= 0 {
		config.TileSize = DefaultRenderConfig().TileSize
	}
	if logger == nil {
		logger = discardLogger{}
	}

	return &ParallelRaytracer{
		width:     width,
		height:    height,
		config:    config,
		tiles:     NewTileGrid(width, height, config.TileSize),
		raytracer: raytracer,
		logger:    logger,
	}, nil
}

// TileCompletionResult contains information about a completed tile for callbacks
type TileCompletionResult struct {
	TileX     int // Tile coordinates (not pixel coordinates)
	TileY     int
	TileImage *image.RGBA // Image data for just this tile

	// Progress information
	TileNumber int // Completion order (1-based)
	TotalTiles int // Total number of tiles in the image
}

// Render traces every tile in parallel and returns the assembled image.
// tileCallback, if set, runs on the calling goroutine once per finished tile.
func (pr *ParallelRaytracer) Render(ctx context.Context, tileCallback func(TileCompletionResult)) (*image.RGBA, RenderStats, error) {
	startTime := time.Now()
	img := image.NewRGBA(image.Rect(0, 0, pr.width, pr.height))

	workerPool := NewWorkerPool(pr.raytracer, len(pr.tiles), pr.config.NumWorkers)
	workerPool.Start()
	defer workerPool.Stop()

	pr.logger.Printf("Rendering %dx%d in %d tiles (using %d workers)...\n",
		pr.width, pr.height, len(pr.tiles), workerPool.GetNumWorkers())

	for taskID, tile := range pr.tiles {
		workerPool.SubmitTask(TileTask{
			Ctx:    ctx,
			Tile:   tile,
			TaskID: taskID,
			Image:  img,
		})
	}

	stats := RenderStats{
		TotalTiles: len(pr.tiles),
		NumWorkers: workerPool.GetNumWorkers(),
	}

	// Every submitted task produces exactly one result, so draining them all lets Stop return
	var firstErr error
	for i := 0; i < len(pr.tiles); i++ {
		result, ok := workerPool.GetResult()
		if !ok {
			return nil, RenderStats{}, fmt.Errorf("worker pool closed unexpectedly")
		}
		if result.Error != nil {
			if firstErr == nil {
				firstErr = result.Error
			}
			continue
		}
		stats.Merge(result.Stats)

		if tileCallback != nil && firstErr == nil {
			tile := pr.tiles[result.TaskID]
			tileCallback(TileCompletionResult{
				TileX:      tile.Bounds.Min.X / pr.config.TileSize,
				TileY:      tile.Bounds.Min.Y / pr.config.TileSize,
				TileImage:  extractTileImage(img, tile),
				TileNumber: i + 1,
				TotalTiles: len(pr.tiles),
			})
		}
	}

	if firstErr != nil {
		return nil, RenderStats{}, firstErr
	}

	stats.Elapsed = time.Since(startTime)
	if stats.NonFinitePixels > 0 {
		pr.logger.Printf("Warning: %d pixels had non-finite colors\n", stats.NonFinitePixels)
	}

	return img, stats, nil
}

// extractTileImage copies a finished tile out of the shared image
func extractTileImage(img *image.RGBA, tile *Tile) *image.RGBA {
	bounds := tile.Bounds
	tileImage := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(tileImage, tileImage.Bounds(), img, bounds.Min, draw.Src)
	return tileImage
}

// FrameResult contains the finished image of a streamed render
type FrameResult struct {
	Image *image.RGBA
	Stats RenderStats
}

// RenderOptions configures streamed rendering behavior
type RenderOptions struct {
	TileUpdates bool // Whether to generate tile completion events
}

// RenderStream renders with channel-based communication.
// The caller should read from these channels in separate goroutines.
// If options.TileUpdates is false, the tile channel will be closed immediately and no tile events will be generated.
func (pr *ParallelRaytracer) RenderStream(ctx context.Context, options RenderOptions) (<-chan FrameResult, <-chan TileCompletionResult, <-chan error) {
	frameChan := make(chan FrameResult, 1)
	tileChan := make(chan TileCompletionResult, 100) // Buffer for tiles
	errChan := make(chan error, 1)

	if !options.TileUpdates {
		close(tileChan)
	}

	go func() {
		defer close(frameChan)
		if options.TileUpdates {
			defer close(tileChan)
		}
		defer close(errChan)

		select {
		case <-ctx.Done():
			pr.logger.Printf("Rendering cancelled before start\n")
			errChan <- ctx.Err()
			return
		default:
		}

		var tileCallback func(TileCompletionResult)
		if options.TileUpdates {
			tileCallback = func(result TileCompletionResult) {
				select {
				case tileChan <- result:
				case <-ctx.Done():
				default:
					// Channel full; the final frame still carries every pixel
				}
			}
		}

		img, stats, err := pr.Render(ctx, tileCallback)
		if err != nil {
			errChan <- err
			return
		}

		pr.logger.Printf("Render completed in %v\n", stats.Elapsed)

		select {
		case frameChan <- FrameResult{Image: img, Stats: stats}:
		case <-ctx.Done():
		}
	}()

	return frameChan, tileChan, errChan
}
