package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/df07/go-sphere-raytracer/pkg/config"
	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/loaders"
	"github.com/df07/go-sphere-raytracer/pkg/output"
	"github.com/df07/go-sphere-raytracer/pkg/renderer"
	"github.com/df07/go-sphere-raytracer/pkg/scene"
)

// cliOptions holds command line settings; zero or negative values fall back to config
type cliOptions struct {
	scene     string
	width     int
	height    int
	outDir    string
	format    string
	workers   int
	tileSize  int
	thumbnail int
	upload    bool
}

func main() {
	var opts cliOptions
	flag.StringVar(&opts.scene, "scene", scene.DefaultSceneID, "Built-in scene ID, 'markup:<name>', or path to a scenes/*.html file")
	flag.IntVar(&opts.width, "width", 0, "Image width in pixels (0 = scene default)")
	flag.IntVar(&opts.height, "height", 0, "Image height in pixels (0 = scene default)")
	flag.StringVar(&opts.outDir, "out", "", "Output directory, or an image file name such as render.png (default from "+config.EnvOutputDir+")")
	flag.StringVar(&opts.format, "format", "", "Image format: png, jpeg, bmp or tiff (default from "+config.EnvFormat+")")
	flag.IntVar(&opts.workers, "workers", -1, "Number of parallel workers (0 = use CPU count)")
	flag.IntVar(&opts.tileSize, "tile", 0, "Tile size in pixels")
	flag.IntVar(&opts.thumbnail, "thumbnail", -1, "Also write a thumbnail no larger than this many pixels (0 = none)")
	flag.BoolVar(&opts.upload, "upload", false, "Upload the render to S3 (requires "+config.EnvS3Bucket+")")
	envFile := flag.String("env", config.DefaultEnvFile, "Environment file to load")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	if *help {
		printHelp()
		return
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}
	applyOptions(&cfg, opts)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts, cfg, renderer.NewDefaultLogger()); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func printHelp() {
	fmt.Println("Sphere Raytracer")
	fmt.Println("Usage: raytracer [options]")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Available scenes:")
	for _, info := range scene.BuiltinScenes() {
		fmt.Printf("  %-8s - %s\n", info.ID, info.Description)
	}
	if markupScenes, err := scene.ListMarkupScenes(scene.FindScenesDir()); err == nil {
		for _, info := range markupScenes {
			fmt.Printf("  %s - %s\n", info.ID, info.DisplayName)
		}
	}
	fmt.Println()
	fmt.Println("Output will be saved to <out>/<scene>/render_<timestamp>.<format>,")
	fmt.Println("or to <out> itself when it ends in an image extension")
}

// applyOptions overrides cfg with the command line values that were set
func applyOptions(cfg *config.Config, opts cliOptions) {
	if opts.outDir != "" && !namesImageFile(opts.outDir) {
		cfg.OutputDir = opts.outDir
	}
	if opts.format != "" {
		cfg.Format = opts.format
	}
	if opts.workers >= 0 {
		cfg.Workers = opts.workers
	}
	if opts.tileSize > 0 {
		cfg.TileSize = opts.tileSize
	}
	if opts.thumbnail >= 0 {
		cfg.ThumbnailWidth = opts.thumbnail
	}
}

// createScene resolves a scene name to a scene
func createScene(name string) (*scene.Scene, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty scene name", scene.ErrUnknownScene)
	}
	return loaders.ResolveScene(name)
}

// imageSize picks the requested size, falling back to the scene's own
func imageSize(s *scene.Scene, width, height int) (int, int) {
	if width <= 0 {
		width = s.Width
	}
	if height <= 0 {
		height = s.Height
	}
	return width, height
}

// outputName turns a scene name into a directory name
func outputName(sceneName string) string {
	name := strings.TrimPrefix(sceneName, "markup:")
	name = filepath.Base(name)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// namesImageFile reports whether an -out value is a file name rather than a directory
func namesImageFile(out string) bool {
	_, err := output.FormatFromPath(out)
	return err == nil
}

// outputTarget returns the directory, base name and format of the render file.
// An -out value with an image extension names the file directly and its extension picks the format.
func outputTarget(out, sceneName, outputDir string, format output.Format, now time.Time) (string, string, output.Format) {
	if fileFormat, err := output.FormatFromPath(out); err == nil {
		return filepath.Dir(out), strings.TrimSuffix(filepath.Base(out), filepath.Ext(out)), fileFormat
	}
	return filepath.Join(outputDir, outputName(sceneName)), "render_" + now.Format("20060102_150405"), format
}

func run(ctx context.Context, opts cliOptions, cfg config.Config, logger core.Logger) error {
	format, err := output.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}

	selectedScene, err := createScene(opts.scene)
	if err != nil {
		return err
	}
	width, height := imageSize(selectedScene, opts.width, opts.height)

	logger.Printf("Rendering scene %q at %dx%d (%d spheres, %d lights)...\n",
		opts.scene, width, height, selectedScene.GetPrimitiveCount(), len(selectedScene.Lights))

	pr, err := renderer.NewParallelRaytracer(selectedScene, width, height, renderer.RenderConfig{
		TileSize:   cfg.TileSize,
		NumWorkers: cfg.Workers,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to set up renderer: %w", err)
	}

	img, stats, err := pr.Render(ctx, nil)
	if err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	logger.Printf("Render completed in %v (%d tiles, %d workers, average luminance %.3f)\n",
		stats.Elapsed, stats.TotalTiles, stats.NumWorkers, renderer.CalculateAverageLuminance(img))

	dir, name, format := outputTarget(opts.outDir, opts.scene, cfg.OutputDir, format, time.Now())
	publisher := &output.Publisher{
		Dir:            dir,
		Format:         format,
		ThumbnailWidth: cfg.ThumbnailWidth,
		Logger:         logger,
	}
	if opts.upload {
		if !cfg.S3.Enabled() {
			return errors.New("upload requested but " + config.EnvS3Bucket + " is not set")
		}
		client, err := output.NewS3Client(cfg.S3)
		if err != nil {
			return err
		}
		publisher.Uploader = output.NewS3Uploader(client, cfg.S3.Bucket, cfg.S3.Prefix, logger)
	}

	if _, err := publisher.Publish(ctx, name, img); err != nil {
		return fmt.Errorf("failed to save render: %w", err)
	}

	return nil
}
