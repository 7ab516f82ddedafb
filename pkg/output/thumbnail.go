package output

import (
	"image"

	"github.com/nfnt/resize"
)

// Thumbnail scales img down to fit in a maxSize x maxSize box, keeping its aspect ratio.
// Images that already fit are returned unchanged.
func Thumbnail(img image.Image, maxSize int) image.Image {
	if maxSize <= 0 {
		return img
	}
	return resize.Thumbnail(uint(maxSize), uint(maxSize), img, resize.Bilinear)
}
