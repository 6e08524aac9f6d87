package render

import (
	"image/color"
	"math"
	"strconv"
	"strings"
)

// ParseColor converts a "#RRGGBB" or "#RGB" string into a color whose alpha
// is round(255*opacity). The leading '#' is optional. Anything else yields
// white at the requested opacity.
func ParseColor(hex string, opacity float64) color.NRGBA {
	c := color.NRGBA{R: 255, G: 255, B: 255, A: Alpha(opacity)}

	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return c
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return c
	}

	c.R = uint8(v >> 16)
	c.G = uint8(v >> 8)
	c.B = uint8(v)
	return c
}

// Alpha maps an opacity in [0, 1] onto an 8-bit alpha channel.
func Alpha(opacity float64) uint8 {
	opacity = math.Max(0, math.Min(1, opacity))
	return uint8(math.Round(255 * opacity))
}
