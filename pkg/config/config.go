package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// ErrInvalidValue is returned when an environment variable cannot be parsed
var ErrInvalidValue = errors.New("invalid configuration value")

// DefaultEnvFile is loaded when no other file is named
const DefaultEnvFile = ".env"

// Environment variable names
const (
	EnvOutputDir      = "RAYTRACER_OUTPUT_DIR"
	EnvFormat         = "RAYTRACER_FORMAT"
	EnvWorkers        = "RAYTRACER_WORKERS"
	EnvTileSize       = "RAYTRACER_TILE_SIZE"
	EnvThumbnailWidth = "RAYTRACER_THUMBNAIL_WIDTH"
	EnvPort           = "PORT"
	EnvS3AccessKey    = "S3_ACCESS_KEY"
	EnvS3SecretKey    = "S3_SECRET_KEY"
	EnvS3Endpoint     = "S3_ENDPOINT"
	EnvS3Region       = "S3_REGION"
	EnvS3Bucket       = "S3_BUCKET"
	EnvS3Prefix       = "S3_PREFIX"
)

// S3Config holds the object storage settings used for uploads
type S3Config struct {
	AccessKey string
	SecretKey string
	Endpoint  string // Empty uses the AWS endpoint for Region
	Region    string
	Bucket    string
	Prefix    string // Key prefix for uploaded renders
}

// Enabled reports whether enough is configured to upload
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

// Config holds settings shared by the CLI and the web server.
// Command-line flags override these values.
type Config struct {
	OutputDir      string
	Format         string
	Workers        int // 0 = use CPU count
	TileSize       int
	ThumbnailWidth int // 0 = no thumbnail
	Port           int
	S3             S3Config
}

// Default returns the configuration used when nothing is set
func Default() Config {
	return Config{
		OutputDir: "output",
		Format:    "png",
		Workers:   0,
		TileSize:  64,
		Port:      8080,
		S3: S3Config{
			Region: "us-east-1",
			Prefix: "renders/",
		},
	}
}

// Load reads envFile into the environment (if it exists) and builds a Config from it.
// Variables already set in the environment take precedence over the file.
func Load(envFile string) (Config, error) {
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	return FromEnv()
}

// FromEnv builds a Config from environment variables over the defaults
func FromEnv() (Config, error) {
	cfg := Default()

	cfg.OutputDir = getEnv(EnvOutputDir, cfg.OutputDir)
	cfg.Format = getEnv(EnvFormat, cfg.Format)

	var err error
	if cfg.Workers, err = getEnvInt(EnvWorkers, cfg.Workers); err != nil {
		return Config{}, err
	}
	if cfg.TileSize, err = getEnvInt(EnvTileSize, cfg.TileSize); err != nil {
		return Config{}, err
	}
	if cfg.ThumbnailWidth, err = getEnvInt(EnvThumbnailWidth, cfg.ThumbnailWidth); err != nil {
		return Config{}, err
	}
	if cfg.Port, err = getEnvInt(EnvPort, cfg.Port); err != nil {
		return Config{}, err
	}

	cfg.S3 = S3Config{
		AccessKey: os.Getenv(EnvS3AccessKey),
		SecretKey: os.Getenv(EnvS3SecretKey),
		Endpoint:  os.Getenv(EnvS3Endpoint),
		Region:    getEnv(EnvS3Region, cfg.S3.Region),
		Bucket:    os.Getenv(EnvS3Bucket),
		Prefix:    getEnv(EnvS3Prefix, cfg.S3.Prefix),
	}

	return cfg, nil
}

// getEnv returns the environment variable value or fallback when unset
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidValue, key, value)
	}
	return parsed, nil
}
