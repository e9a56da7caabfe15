package pixel

import (
	"image"
	"log/slog"
)

// MinRecolorAlpha is the alpha below which a pixel counts as transparent and
// is left alone by recoloring.
const MinRecolorAlpha = 10

// Replacement maps pixels near From to To.
type Replacement struct {
	From RGB
	To   RGB
}

// BuildReplacements pairs marker colors with user colors in the given part
// order. Parts with a missing or malformed color on either side are skipped.
func BuildReplacements[K ~string](order []K, userColors, markerColors map[K]string) []Replacement {
	rules := make([]Replacement, 0, len(order))
	for _, part := range order {
		markerHex, ok := markerColors[part]
		if !ok {
			continue
		}
		userHex, ok := userColors[part]
		if !ok {
			continue
		}
		marker, ok := ParseHex(markerHex)
		if !ok {
			slog.Debug("skip malformed marker color", "part", string(part), "hex", markerHex)
			continue
		}
		user, ok := ParseHex(userHex)
		if !ok {
			slog.Debug("skip malformed user color", "part", string(part), "hex", userHex)
			continue
		}
		rules = append(rules, Replacement{From: marker, To: user})
	}
	return rules
}

// ReplaceMarkerColors recolors every non-transparent pixel that lies within
// tolerance of a rule's marker color. The replacement is scaled by the
// pixel's brightness relative to the marker (max channel over max channel)
// so shading baked into the photo survives. The first matching rule wins;
// unmatched pixels are copied unchanged.
func ReplaceMarkerColors(src *image.NRGBA, rules []Replacement, tolerance float64) *image.NRGBA {
	dst := Clone(src)
	if dst == nil || len(rules) == 0 {
		return dst
	}

	p := dst.Pix
	for i := 0; i+3 < len(p); i += 4 {
		if p[i+3] < MinRecolorAlpha {
			continue
		}
		px := RGB{R: p[i], G: p[i+1], B: p[i+2]}
		for _, rule := range rules {
			if !Within(px, rule.From, tolerance) {
				continue
			}
			out := shade(rule.To, luminanceFactor(px, rule.From))
			p[i], p[i+1], p[i+2] = out.R, out.G, out.B
			break
		}
	}
	return dst
}

// ReplaceColors is ReplaceMarkerColors for the logo editor's free-form
// original-to-new color map, keyed by hex. Malformed entries are skipped.
// Keys are visited in the order given by order.
func ReplaceColors(src *image.NRGBA, order []string, replacements map[string]string, tolerance float64) *image.NRGBA {
	rules := make([]Replacement, 0, len(order))
	for _, from := range order {
		to, ok := replacements[from]
		if !ok {
			continue
		}
		f, okF := ParseHex(from)
		t, okT := ParseHex(to)
		if !okF || !okT {
			continue
		}
		rules = append(rules, Replacement{From: f, To: t})
	}
	return ReplaceMarkerColors(src, rules, tolerance)
}

func luminanceFactor(px, marker RGB) float64 {
	m := marker.Max()
	if m == 0 {
		return 1
	}
	return float64(px.Max()) / float64(m)
}

func shade(c RGB, factor float64) RGB {
	return RGB{
		R: clampChannel(float64(c.R) * factor),
		G: clampChannel(float64(c.G) * factor),
		B: clampChannel(float64(c.B) * factor),
	}
}
