package output

import (
	"image"
	"testing"
)

func TestThumbnail(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		maxSize       int
		expected      image.Rectangle
	}{
		{"landscape", 64, 32, 16, image.Rect(0, 0, 16, 8)},
		{"portrait", 30, 60, 20, image.Rect(0, 0, 10, 20)},
		{"already small", 10, 8, 16, image.Rect(0, 0, 10, 8)},
		{"disabled", 64, 32, 0, image.Rect(0, 0, 64, 32)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			thumb := Thumbnail(testImage(tt.width, tt.height), tt.maxSize)
			if thumb.Bounds() != tt.expected {
				t.Errorf("Expected bounds %v, got %v", tt.expected, thumb.Bounds())
			}
		})
	}
}
