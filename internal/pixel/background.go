package pixel

import "image"

// RemoveBackgroundByColor makes every pixel within tolerance of target fully
// transparent. Other pixels are copied unchanged.
func RemoveBackgroundByColor(src *image.NRGBA, target RGB, tolerance float64) *image.NRGBA {
	dst := Clone(src)
	if dst == nil {
		return nil
	}
	p := dst.Pix
	for i := 0; i+3 < len(p); i += 4 {
		if Within(RGB{R: p[i], G: p[i+1], B: p[i+2]}, target, tolerance) {
			p[i+3] = 0
		}
	}
	return dst
}

// CornerColor samples the top-left pixel, the usual background of an
// uploaded logo.
func CornerColor(src *image.NRGBA) RGB {
	if src == nil || src.Bounds().Empty() {
		return RGB{R: 255, G: 255, B: 255}
	}
	b := src.Bounds()
	c := src.NRGBAAt(b.Min.X, b.Min.Y)
	return RGB{R: c.R, G: c.G, B: c.B}
}
