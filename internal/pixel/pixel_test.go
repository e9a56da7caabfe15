package pixel

import (
	"image"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var frontMarker = RGB{R: 23, G: 44, B: 99}

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestParseHex(t *testing.T) {
	tests := []struct {
		in   string
		want RGB
		ok   bool
	}{
		{in: "#ff0000", want: RGB{R: 255}, ok: true},
		{in: "00FF00", want: RGB{G: 255}, ok: true},
		{in: "#172c63", want: frontMarker, ok: true},
		{in: "#fff", ok: false},
		{in: "#gg0000", ok: false},
		{in: "", ok: false},
		{in: "#+12345", ok: false},
	}
	for _, tt := range tests {
		got, ok := ParseHex(tt.in)
		if ok != tt.ok {
			t.Errorf("ParseHex(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("ParseHex(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if got := frontMarker.Hex(); got != "#172c63" {
		t.Errorf("Hex() = %q", got)
	}
}

func TestDistanceSymmetric(t *testing.T) {
	colors := []RGB{{}, {R: 255, G: 255, B: 255}, frontMarker, {R: 12, G: 200, B: 7}, {R: 90, G: 1, B: 254}}
	for _, a := range colors {
		for _, b := range colors {
			if Distance(a, b) != Distance(b, a) {
				t.Errorf("Distance(%v, %v) != Distance(%v, %v)", a, b, b, a)
			}
		}
	}
	if got := Distance(RGB{}, RGB{R: 3, G: 4}); got != 5 {
		t.Errorf("Distance = %v, want 5", got)
	}
}

func TestToleranceBoundaryIsExclusive(t *testing.T) {
	// (103,44,99) is exactly 80 away from the front marker.
	edge := RGB{R: 103, G: 44, B: 99}
	if d := Distance(edge, frontMarker); d != 80 {
		t.Fatalf("setup: distance = %v, want 80", d)
	}

	src := solid(1, 1, color.NRGBA{R: edge.R, G: edge.G, B: edge.B, A: 255})
	rules := []Replacement{{From: frontMarker, To: RGB{R: 255}}}

	out := ReplaceMarkerColors(src, rules, 80)
	if got := out.NRGBAAt(0, 0); got != (color.NRGBA{R: 103, G: 44, B: 99, A: 255}) {
		t.Errorf("pixel at distance == tolerance was recolored: %v", got)
	}

	out = ReplaceMarkerColors(src, rules, 80.001)
	if got := out.NRGBAAt(0, 0); got.R == 103 {
		t.Errorf("pixel just inside tolerance was not recolored: %v", got)
	}
}

func TestReplaceMarkerColorsIdempotent(t *testing.T) {
	src := solid(4, 3, color.NRGBA{R: 23, G: 44, B: 99, A: 255})
	src.SetNRGBA(0, 0, color.NRGBA{R: 20, G: 38, B: 85, A: 255}) // shaded
	src.SetNRGBA(3, 2, color.NRGBA{R: 23, G: 44, B: 99, A: 0})   // transparent
	original := Clone(src)

	markers := map[string]string{"front": "#172c63"}
	red := BuildReplacements([]string{"front"}, map[string]string{"front": "#ff0000"}, markers)
	green := BuildReplacements([]string{"front"}, map[string]string{"front": "#00ff00"}, markers)

	first := ReplaceMarkerColors(src, red, 80)
	if got := first.NRGBAAt(1, 1); got != (color.NRGBA{R: 255, A: 255}) {
		t.Errorf("marker pixel = %v, want pure red", got)
	}
	// 85/99 of 255 rounds to 219.
	if got := first.NRGBAAt(0, 0); got != (color.NRGBA{R: 219, A: 255}) {
		t.Errorf("shaded pixel = %v, want luminance-scaled red", got)
	}
	if got := first.NRGBAAt(3, 2); got != (color.NRGBA{R: 23, G: 44, B: 99, A: 0}) {
		t.Errorf("transparent pixel changed: %v", got)
	}

	second := ReplaceMarkerColors(src, green, 80)
	if got := second.NRGBAAt(1, 1); got != (color.NRGBA{G: 255, A: 255}) {
		t.Errorf("after switching colors pixel = %v, want pure green", got)
	}

	again := ReplaceMarkerColors(src, green, 80)
	if diff := cmp.Diff(second.Pix, again.Pix); diff != "" {
		t.Errorf("recoloring is not idempotent: %s", diff)
	}
	if diff := cmp.Diff(original.Pix, src.Pix); diff != "" {
		t.Errorf("source buffer was mutated: %s", diff)
	}
}

func TestReplaceMarkerColorsClampsBrightReplacement(t *testing.T) {
	// A highlight brighter than the marker pushes the factor above 1.
	src := solid(1, 1, color.NRGBA{R: 40, G: 60, B: 140, A: 255})
	rules := []Replacement{{From: frontMarker, To: RGB{R: 200, G: 200, B: 200}}}
	got := ReplaceMarkerColors(src, rules, 80).NRGBAAt(0, 0)
	if got != (color.NRGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("got %v, want channels clamped to 255", got)
	}
}

func TestBuildReplacementsSkipsMalformed(t *testing.T) {
	order := []string{"front", "mesh", "brim"}
	user := map[string]string{"front": "#ff0000", "mesh": "nope", "brim": "#0000ff"}
	markers := map[string]string{"front": "#172c63", "mesh": "#1f7a3a", "brim": "#zz261e"}

	got := BuildReplacements(order, user, markers)
	want := []Replacement{{From: frontMarker, To: RGB{R: 255}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("BuildReplacements mismatch (-want +got):\n%s", diff)
	}
}

func TestFirstMatchingMarkerWins(t *testing.T) {
	src := solid(1, 1, color.NRGBA{R: 100, G: 100, B: 100, A: 255})
	rules := []Replacement{
		{From: RGB{R: 110, G: 100, B: 100}, To: RGB{R: 10}},
		{From: RGB{R: 100, G: 100, B: 100}, To: RGB{G: 10}},
	}
	got := ReplaceMarkerColors(src, rules, 50).NRGBAAt(0, 0)
	if got.R == 0 || got.G != 0 {
		t.Errorf("got %v, want the first rule applied", got)
	}
}

func TestRemoveBackgroundByColor(t *testing.T) {
	src := solid(3, 1, color.NRGBA{R: 250, G: 250, B: 250, A: 255})
	src.SetNRGBA(1, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	out := RemoveBackgroundByColor(src, RGB{R: 255, G: 255, B: 255}, 30)
	if out.NRGBAAt(0, 0).A != 0 || out.NRGBAAt(2, 0).A != 0 {
		t.Errorf("background pixels still opaque")
	}
	if got := out.NRGBAAt(1, 0); got != (color.NRGBA{R: 10, G: 20, B: 30, A: 255}) {
		t.Errorf("foreground pixel changed: %v", got)
	}
	if src.NRGBAAt(0, 0).A != 255 {
		t.Errorf("source buffer was mutated")
	}
	if got := CornerColor(src); got != (RGB{R: 250, G: 250, B: 250}) {
		t.Errorf("CornerColor = %v", got)
	}
}

func TestExtractPalette(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 3, 3))
	red := color.NRGBA{R: 255, A: 255}
	blue := color.NRGBA{B: 255, A: 255}
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	layout := [][]color.NRGBA{
		{red, blue, red},
		{white, blue, red},
		{red, white, blue},
	}
	for y, row := range layout {
		for x, c := range row {
			src.SetNRGBA(x, y, c)
		}
	}

	got := ExtractPalette(src, 12)
	want := []Swatch{
		{Hex: "#ff0000", R: 255, Count: 4},
		{Hex: "#0000ff", B: 255, Count: 3},
		{Hex: "#ffffff", R: 255, G: 255, B: 255, Count: 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ExtractPalette mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(got, ExtractPalette(src, 12)); diff != "" {
		t.Errorf("ExtractPalette is not deterministic: %s", diff)
	}
	if got := ExtractPalette(src, 2); len(got) != 2 {
		t.Errorf("ExtractPalette(max 2) returned %d entries", len(got))
	}
}

func TestExtractPaletteTiesKeepScanOrder(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(0, 0, color.NRGBA{G: 255, A: 255})
	src.SetNRGBA(1, 0, color.NRGBA{R: 255, A: 255})

	got := ExtractPalette(src, 0)
	if len(got) != 2 || got[0].Hex != "#00ff00" || got[1].Hex != "#ff0000" {
		t.Errorf("tie order = %+v", got)
	}
}

func TestExtractPaletteSkipsTransparent(t *testing.T) {
	src := solid(2, 2, color.NRGBA{R: 255, A: 100})
	if got := ExtractPalette(src, 12); len(got) != 0 {
		t.Errorf("palette of transparent image = %+v", got)
	}
}

func TestQuantize(t *testing.T) {
	tests := map[uint8]uint8{0: 0, 15: 0, 16: 32, 47: 32, 48: 64, 250: 255, 255: 255}
	for in, want := range tests {
		if got := quantize(in); got != want {
			t.Errorf("quantize(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestApplyFilters(t *testing.T) {
	src := solid(1, 1, color.NRGBA{R: 100, G: 150, B: 200, A: 255})

	identity := ApplyFilters(src, DefaultFilters())
	if diff := cmp.Diff(src.Pix, identity.Pix); diff != "" {
		t.Errorf("identity filters changed pixels: %s", diff)
	}

	bright := ApplyFilters(src, Filters{Brightness: 200, Contrast: 100, Saturation: 100})
	if got := bright.NRGBAAt(0, 0); got != (color.NRGBA{R: 200, G: 255, B: 255, A: 255}) {
		t.Errorf("brightness 200%% = %v", got)
	}

	gray := ApplyFilters(src, Filters{Brightness: 100, Contrast: 100, Saturation: 0})
	g := gray.NRGBAAt(0, 0)
	if g.R != g.G || g.G != g.B {
		t.Errorf("saturate(0) is not gray: %v", g)
	}

	flat := ApplyFilters(src, Filters{Brightness: 100, Contrast: 0, Saturation: 100})
	if got := flat.NRGBAAt(0, 0); got != (color.NRGBA{R: 128, G: 128, B: 128, A: 255}) {
		t.Errorf("contrast(0) = %v", got)
	}
}

func TestFromImage(t *testing.T) {
	rgba := image.NewRGBA(image.Rect(10, 10, 12, 11))
	rgba.Set(10, 10, color.RGBA{R: 255, A: 255})

	got := FromImage(rgba)
	if got.Bounds() != image.Rect(0, 0, 2, 1) {
		t.Fatalf("bounds = %v", got.Bounds())
	}
	if c := got.NRGBAAt(0, 0); c != (color.NRGBA{R: 255, A: 255}) {
		t.Errorf("pixel = %v", c)
	}
}
