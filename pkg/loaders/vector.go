package loaders

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/df07/go-sphere-raytracer/pkg/core"
)

// ErrInvalidVector is returned when a string is not three comma-separated numbers
var ErrInvalidVector = errors.New("invalid vector")

// ParseVector parses "x, y, z"
func ParseVector(str string) (core.Vec3, error) {
	parts := strings.Split(str, ",")
	if len(parts) != 3 {
		return core.Vec3{}, fmt.Errorf("%w: %q: expected 3 components, got %d", ErrInvalidVector, str, len(parts))
	}

	var values [3]float64
	for i, part := range parts {
		value, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return core.Vec3{}, fmt.Errorf("%w: %q: %v", ErrInvalidVector, str, err)
		}
		values[i] = value
	}

	return core.NewVec3(values[0], values[1], values[2]), nil
}
