package pixel

import (
	"image"
	"math"
)

// Filters mirrors the CSS filter functions the logo editor offers.
// Brightness, Contrast and Saturation are percentages (100 = unchanged);
// HueRotate is in degrees.
type Filters struct {
	Brightness float64 `json:"brightness"`
	Contrast   float64 `json:"contrast"`
	Saturation float64 `json:"saturation"`
	HueRotate  float64 `json:"hueRotate"`
}

func DefaultFilters() Filters {
	return Filters{Brightness: 100, Contrast: 100, Saturation: 100}
}

func (f Filters) IsIdentity() bool {
	return f.Brightness == 100 && f.Contrast == 100 && f.Saturation == 100 &&
		math.Mod(f.HueRotate, 360) == 0
}

// ApplyFilters runs brightness, contrast, saturate and hue-rotate in that
// order, clamping to [0,1] after each step the way a browser does. Alpha is
// preserved.
func ApplyFilters(src *image.NRGBA, f Filters) *image.NRGBA {
	dst := Clone(src)
	if dst == nil || f.IsIdentity() {
		return dst
	}

	b := f.Brightness / 100
	c := f.Contrast / 100
	doSat := f.Saturation != 100
	doHue := math.Mod(f.HueRotate, 360) != 0
	sat := saturateMatrix(f.Saturation / 100)
	hue := hueRotateMatrix(f.HueRotate * math.Pi / 180)

	p := dst.Pix
	for i := 0; i+3 < len(p); i += 4 {
		if p[i+3] == 0 {
			continue
		}
		v := [3]float64{float64(p[i]) / 255, float64(p[i+1]) / 255, float64(p[i+2]) / 255}

		if b != 1 {
			for k := range v {
				v[k] = clamp01(v[k] * b)
			}
		}
		if c != 1 {
			for k := range v {
				v[k] = clamp01((v[k]-0.5)*c + 0.5)
			}
		}
		if doSat {
			v = sat.apply(v)
		}
		if doHue {
			v = hue.apply(v)
		}

		p[i] = clampChannel(v[0] * 255)
		p[i+1] = clampChannel(v[1] * 255)
		p[i+2] = clampChannel(v[2] * 255)
	}
	return dst
}

type colorMatrix [3][3]float64

func (m colorMatrix) apply(v [3]float64) [3]float64 {
	var out [3]float64
	for r := 0; r < 3; r++ {
		out[r] = clamp01(m[r][0]*v[0] + m[r][1]*v[1] + m[r][2]*v[2])
	}
	return out
}

// Coefficients from the W3C Filter Effects module (feColorMatrix saturate and
// hueRotate).
func saturateMatrix(s float64) colorMatrix {
	return colorMatrix{
		{0.213 + 0.787*s, 0.715 - 0.715*s, 0.072 - 0.072*s},
		{0.213 - 0.213*s, 0.715 + 0.285*s, 0.072 - 0.072*s},
		{0.213 - 0.213*s, 0.715 - 0.715*s, 0.072 + 0.928*s},
	}
}

func hueRotateMatrix(rad float64) colorMatrix {
	cos, sin := math.Cos(rad), math.Sin(rad)
	return colorMatrix{
		{0.213 + cos*0.787 - sin*0.213, 0.715 - cos*0.715 - sin*0.715, 0.072 - cos*0.072 + sin*0.928},
		{0.213 - cos*0.213 + sin*0.143, 0.715 + cos*0.285 + sin*0.140, 0.072 - cos*0.072 - sin*0.283},
		{0.213 - cos*0.213 - sin*0.787, 0.715 - cos*0.715 + sin*0.715, 0.072 + cos*0.928 + sin*0.072},
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
