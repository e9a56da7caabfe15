// Package pixel implements the per-pixel color math behind hat recoloring,
// logo background removal, palette extraction and the logo editor's filter
// pass. All functions read a source buffer and return a fresh one; sources
// are never modified.
package pixel

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RGB is an 8-bit color without alpha.
type RGB struct {
	R, G, B uint8
}

// ParseHex parses "#rrggbb" or "rrggbb". Malformed input reports false so
// callers can skip the color instead of failing the whole pass.
func ParseHex(s string) (RGB, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return RGB{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGB{}, false
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, true
}

// Hex formats the color as lower-case "#rrggbb".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Max returns the largest channel value.
func (c RGB) Max() uint8 {
	return max(c.R, c.G, c.B)
}

// Distance is the Euclidean distance between two colors in RGB space.
func Distance(a, b RGB) float64 {
	dr := float64(a.R) - float64(b.R)
	dg := float64(a.G) - float64(b.G)
	db := float64(a.B) - float64(b.B)
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

// Within reports whether two colors are closer than tolerance. The
// comparison is strict: a distance equal to the tolerance does not match.
func Within(a, b RGB, tolerance float64) bool {
	return Distance(a, b) < tolerance
}

// clampChannel rounds v to the nearest integer and clamps it to [0,255].
func clampChannel(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
