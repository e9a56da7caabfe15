package pixel

import (
	"image"
	"math"
	"sort"
)

const (
	DefaultPaletteSize = 12

	// PaletteBucket is the quantization step per channel.
	PaletteBucket = 32

	// MinPaletteAlpha skips mostly transparent pixels.
	MinPaletteAlpha = 128
)

// Swatch is one palette entry.
type Swatch struct {
	Hex   string `json:"hex"`
	R     uint8  `json:"r"`
	G     uint8  `json:"g"`
	B     uint8  `json:"b"`
	Count int    `json:"count"`
}

// RGB returns the swatch color.
func (s Swatch) RGB() RGB {
	return RGB{R: s.R, G: s.G, B: s.B}
}

// ExtractPalette returns up to maxColors of the most common quantized colors
// of the opaque pixels, most frequent first. Buckets with equal counts keep
// the order in which a row-major scan first met them, so the result is
// stable for a given buffer.
func ExtractPalette(src *image.NRGBA, maxColors int) []Swatch {
	if src == nil {
		return nil
	}
	if maxColors <= 0 {
		maxColors = DefaultPaletteSize
	}

	counts := make(map[RGB]int)
	var order []RGB

	b := src.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := src.Pix[src.PixOffset(b.Min.X, y):]
		for x := 0; x < b.Dx(); x++ {
			off := x * 4
			if row[off+3] < MinPaletteAlpha {
				continue
			}
			key := RGB{
				R: quantize(row[off]),
				G: quantize(row[off+1]),
				B: quantize(row[off+2]),
			}
			if _, seen := counts[key]; !seen {
				order = append(order, key)
			}
			counts[key]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > maxColors {
		order = order[:maxColors]
	}

	palette := make([]Swatch, len(order))
	for i, c := range order {
		palette[i] = Swatch{Hex: c.Hex(), R: c.R, G: c.G, B: c.B, Count: counts[c]}
	}
	return palette
}

func quantize(c uint8) uint8 {
	return clampChannel(math.Round(float64(c)/PaletteBucket) * PaletteBucket)
}
