package output

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/df07/go-sphere-raytracer/pkg/core"
)

// Uploader stores an encoded image remotely
type Uploader interface {
	Upload(ctx context.Context, name string, data []byte, contentType string) error
}

// Publisher writes rendered images to a directory and optionally uploads them
type Publisher struct {
	Dir            string
	Format         Format
	ThumbnailWidth int      // 0 = no thumbnail
	Uploader       Uploader // nil = local files only
	Logger         core.Logger
}

// Published lists where an image ended up
type Published struct {
	ImagePath     string
	ThumbnailPath string   // Empty without a thumbnail
	Uploaded      []string // Names passed to the uploader
}

// ThumbnailSuffix is appended to the image name for its thumbnail
const ThumbnailSuffix = "_thumb"

type artifact struct {
	name string
	path string
	img  image.Image
	data []byte
}

// Publish encodes img (and its thumbnail) and writes every artifact to disk and
// the uploader concurrently. The first failure cancels the remaining uploads.
func (p *Publisher) Publish(ctx context.Context, name string, img image.Image) (*Published, error) {
	if err := os.MkdirAll(p.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	artifacts := []*artifact{{name: name + p.Format.Extension(), img: img}}
	if p.ThumbnailWidth > 0 {
		artifacts = append(artifacts, &artifact{
			name: name + ThumbnailSuffix + p.Format.Extension(),
			img:  Thumbnail(img, p.ThumbnailWidth),
		})
	}

	encodeGroup := new(errgroup.Group)
	for _, a := range artifacts {
		a.path = filepath.Join(p.Dir, a.name)
		encodeGroup.Go(func() error {
			var buf bytes.Buffer
			if err := Encode(&buf, a.img, p.Format); err != nil {
				return fmt.Errorf("%s: %w", a.name, err)
			}
			a.data = buf.Bytes()
			return nil
		})
	}
	if err := encodeGroup.Wait(); err != nil {
		return nil, err
	}

	group, groupCtx := errgroup.WithContext(ctx)
	for _, a := range artifacts {
		group.Go(func() error {
			if err := os.WriteFile(a.path, a.data, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", a.path, err)
			}
			return nil
		})
		if p.Uploader != nil {
			group.Go(func() error {
				return p.Uploader.Upload(groupCtx, a.name, a.data, p.Format.ContentType())
			})
		}
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	result := &Published{ImagePath: artifacts[0].path}
	if len(artifacts) > 1 {
		result.ThumbnailPath = artifacts[1].path
	}
	if p.Uploader != nil {
		for _, a := range artifacts {
			result.Uploaded = append(result.Uploaded, a.name)
		}
	}

	if p.Logger != nil {
		p.Logger.Printf("Saved %s\n", result.ImagePath)
	}
	return result, nil
}
