package loaders

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/df07/go-sphere-raytracer/pkg/core"
)

// ErrInvalidColor is returned when a color string matches none of the supported forms
var ErrInvalidColor = errors.New("invalid color")

// ParseColor parses "#RRGGBB", "rgb(r, g, b)" or "rgba(r, g, b, a)" into 0-255 channels.
// Alpha is accepted and ignored.
func ParseColor(str string) (core.Vec3, error) {
	str = strings.TrimSpace(str)

	if hex, ok := strings.CutPrefix(str, "#"); ok {
		return parseHexColor(hex)
	}

	lower := strings.ToLower(str)
	for _, prefix := range []string{"rgba(", "rgb("} {
		if strings.HasPrefix(lower, prefix) && strings.HasSuffix(lower, ")") {
			return parseFunctionalColor(str[len(prefix):len(str)-1], prefix == "rgba(")
		}
	}

	return core.Vec3{}, fmt.Errorf("%w: %q", ErrInvalidColor, str)
}

func parseHexColor(hex string) (core.Vec3, error) {
	if len(hex) != 6 {
		return core.Vec3{}, fmt.Errorf("%w: %q: expected 6 hex digits", ErrInvalidColor, "#"+hex)
	}

	var channels [3]float64
	for i := range channels {
		value, err := strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
		if err != nil {
			return core.Vec3{}, fmt.Errorf("%w: %q: %v", ErrInvalidColor, "#"+hex, err)
		}
		channels[i] = float64(value)
	}

	return core.NewVec3(channels[0], channels[1], channels[2]), nil
}

func parseFunctionalColor(args string, hasAlpha bool) (core.Vec3, error) {
	parts := strings.Split(args, ",")
	expected := 3
	if hasAlpha {
		expected = 4
	}
	if len(parts) != expected {
		return core.Vec3{}, fmt.Errorf("%w: expected %d components, got %d", ErrInvalidColor, expected, len(parts))
	}

	var channels [3]float64
	for i := range channels {
		value, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil {
			return core.Vec3{}, fmt.Errorf("%w: component %d %q: %v", ErrInvalidColor, i, strings.TrimSpace(parts[i]), err)
		}
		channels[i] = value
	}

	return core.NewVec3(channels[0], channels[1], channels[2]), nil
}
