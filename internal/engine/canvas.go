package engine

import (
	"image"
	"image/color"
	"log/slog"
	"math"

	"github.com/srwiley/rasterx"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/hatworks/designer/internal/document"
	"github.com/hatworks/designer/internal/pixel"
)

// Canvas is an RGBA drawing surface with anti-aliased strokes, text and
// scaled images.
type Canvas struct {
	img     *image.RGBA
	scanner *rasterx.ScannerGV
	dasher  *rasterx.Dasher
	fonts   *FontSet
}

// NewCanvas allocates a transparent w x h canvas.
func NewCanvas(w, h int, fonts *FontSet) *Canvas {
	if fonts == nil {
		fonts = sharedFonts()
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	scanner.SetClip(img.Bounds())
	return &Canvas{
		img:     img,
		scanner: scanner,
		dasher:  rasterx.NewDasher(w, h, scanner),
		fonts:   fonts,
	}
}

// Image returns the backing image.
func (c *Canvas) Image() *image.RGBA {
	return c.img
}

// Fill paints the whole canvas.
func (c *Canvas) Fill(col color.Color) {
	xdraw.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{}, xdraw.Src)
}

// FillRect paints r over what is already there.
func (c *Canvas) FillRect(r document.Rect, col color.Color) {
	xdraw.Draw(c.img, pixelRect(r), image.NewUniform(col), image.Point{}, xdraw.Over)
}

// Stroke draws a polyline. A single point becomes a dot of the stroke width.
// Dashed strokes use butt caps so the gaps stay visible.
func (c *Canvas) Stroke(pts []document.Point, col color.Color, width float64, dashes []float64, closed bool) {
	if len(pts) == 0 || width <= 0 {
		return
	}
	if len(pts) == 1 {
		c.Dot(pts[0], width/2, col)
		return
	}

	capFn, join := rasterx.RoundCap, rasterx.Round
	if len(dashes) > 0 {
		capFn, join = rasterx.ButtCap, rasterx.Miter
	}
	c.dasher.SetStroke(toFixed(width), toFixed(4), capFn, capFn, rasterx.RoundGap, join, dashes, 0)
	c.dasher.Start(toPoint(pts[0]))
	for _, p := range pts[1:] {
		c.dasher.Line(toPoint(p))
	}
	c.dasher.Stop(closed)
	c.dasher.SetColor(col)
	c.dasher.Draw()
	c.dasher.Clear()
}

// Dot fills a circle.
func (c *Canvas) Dot(p document.Point, radius float64, col color.Color) {
	f := &c.dasher.Filler
	f.Clear()
	rasterx.AddCircle(p.X, p.Y, radius, f)
	f.SetColor(col)
	f.Draw()
	f.Clear()
}

// StrokeRect outlines r.
func (c *Canvas) StrokeRect(r document.Rect, col color.Color, width float64, dashes []float64) {
	c.Stroke([]document.Point{
		{X: r.X, Y: r.Y},
		{X: r.Right(), Y: r.Y},
		{X: r.Right(), Y: r.Bottom()},
		{X: r.X, Y: r.Bottom()},
	}, col, width, dashes, true)
}

// DrawImage scales src into r.
func (c *Canvas) DrawImage(src image.Image, r document.Rect) {
	dr := pixelRect(r)
	if src == nil || dr.Empty() {
		return
	}
	sb := src.Bounds()
	if dr.Dx() == sb.Dx() && dr.Dy() == sb.Dy() {
		xdraw.Copy(c.img, dr.Min, src, sb, xdraw.Over, nil)
		return
	}
	xdraw.BiLinear.Scale(c.img, dr, src, sb, xdraw.Over, nil)
}

// Text draws s centered horizontally and vertically on (cx, cy).
func (c *Canvas) Text(s, family string, size float64, col color.Color, cx, cy float64) {
	if s == "" {
		return
	}
	face := c.fonts.Face(family, size)
	m := face.Metrics()
	d := &font.Drawer{Dst: c.img, Src: image.NewUniform(col), Face: face}
	w := d.MeasureString(s)
	d.Dot = fixed.Point26_6{
		X: toFixed(cx) - w/2,
		Y: toFixed(cy) + (m.Ascent-m.Descent)/2,
	}
	d.DrawString(s)
}

func toFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}

func toPoint(p document.Point) fixed.Point26_6 {
	return fixed.Point26_6{X: toFixed(p.X), Y: toFixed(p.Y)}
}

func pixelRect(r document.Rect) image.Rectangle {
	return image.Rect(
		int(math.Round(r.X)), int(math.Round(r.Y)),
		int(math.Round(r.Right())), int(math.Round(r.Bottom())),
	)
}

// parseColor turns an element color into a drawable color. Bad values fall
// back so one malformed element does not stop the render.
func parseColor(hex string, fallback color.Color) color.Color {
	if hex == "" {
		return fallback
	}
	rgb, ok := pixel.ParseHex(hex)
	if !ok {
		slog.Debug("invalid element color", "color", hex)
		return fallback
	}
	return color.NRGBA{R: rgb.R, G: rgb.G, B: rgb.B, A: 255}
}
