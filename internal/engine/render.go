package engine

import (
	"image"
	"image/color"
	"math"

	"github.com/hatworks/designer/internal/document"
)

var (
	selectionColor   = color.NRGBA{R: 0x3b, G: 0x82, B: 0xf6, A: 0xff}
	guideColor       = color.NRGBA{R: 0x9c, G: 0xa3, B: 0xaf, A: 0xff}
	placeholderFill  = color.NRGBA{R: 0xf3, G: 0xf4, B: 0xf6, A: 0xff}
	placeholderInk   = color.NRGBA{R: 0x6b, G: 0x72, B: 0x80, A: 0xff}
	defaultInk       = color.NRGBA{A: 0xff}
	selectionDash    = []float64{6, 4}
	handleSize       = 10.0
	textCornerLength = 8.0
)

// BitmapSource resolves an image element's Src to a decoded bitmap.
type BitmapSource interface {
	Bitmap(src string) (image.Image, bool)
}

// Bitmaps is a BitmapSource backed by a map.
type Bitmaps map[string]image.Image

func (b Bitmaps) Bitmap(src string) (image.Image, bool) {
	img, ok := b[src]
	return img, ok
}

// RenderElements draws every element of view in list order.
func RenderElements(c *Canvas, l Layout, elements []document.Element, view document.View, bitmaps BitmapSource) {
	for _, el := range elements {
		if visible(el, view) {
			drawElement(c, l, el, bitmaps)
		}
	}
}

func strokeWidth(el document.Element) float64 {
	if el.StrokeWidth > 0 {
		return el.StrokeWidth
	}
	return document.DefaultStrokeWidth
}

func drawElement(c *Canvas, l Layout, el document.Element, bitmaps BitmapSource) {
	ink := parseColor(el.Color, defaultInk)

	switch el.Type {
	case document.ElementPencil:
		c.Stroke(el.Points, ink, strokeWidth(el), nil, false)

	case document.ElementLine:
		c.Stroke(linePoints(el), ink, strokeWidth(el), nil, false)

	case document.ElementArrow:
		w := strokeWidth(el)
		c.Stroke(linePoints(el), ink, w, nil, false)
		for _, tick := range arrowTicks(el.X1, el.Y1, el.X2, el.Y2, max(10, w*3)) {
			c.Stroke([]document.Point{{X: el.X2, Y: el.Y2}, tick}, ink, w, nil, false)
		}

	case document.ElementText:
		size := el.FontSize
		if size <= 0 {
			size = document.DefaultFontSize
		}
		c.Text(el.Text, el.FontFamily, size, ink, el.X, el.Y)

	case document.ElementImage:
		r := l.ImageRect(el)
		var img image.Image
		if bitmaps != nil {
			img, _ = bitmaps.Bitmap(el.Src)
		}
		if img == nil {
			c.FillRect(r, placeholderFill)
			c.StrokeRect(r, guideColor, 1, nil)
			return
		}
		c.DrawImage(img, r)
	}
}

func linePoints(el document.Element) []document.Point {
	return []document.Point{{X: el.X1, Y: el.Y1}, {X: el.X2, Y: el.Y2}}
}

// arrowTicks returns the outer ends of the two head strokes at (x2, y2),
// each 30 degrees off the shaft.
func arrowTicks(x1, y1, x2, y2, length float64) []document.Point {
	dx, dy := x1-x2, y1-y2
	n := math.Hypot(dx, dy)
	if n == 0 {
		return nil
	}
	back := document.Point{X: dx / n * length, Y: dy / n * length}

	ticks := make([]document.Point, 0, 2)
	for _, a := range []float64{math.Pi / 6, -math.Pi / 6} {
		x, y := Translate(x2, y2).Multiply(Rotate(a)).TransformPoint(back.X, back.Y)
		ticks = append(ticks, document.Point{X: x, Y: y})
	}
	return ticks
}

// drawSelection draws the outline and affordances of the selected element:
// corner handles for images, a corner tick for text.
func drawSelection(c *Canvas, l Layout, el document.Element) {
	b, ok := l.BoundsOf(el)
	if !ok {
		return
	}

	switch el.Type {
	case document.ElementImage:
		c.StrokeRect(b, selectionColor, 1.5, selectionDash)
		half := handleSize / 2
		for _, p := range []document.Point{
			{X: b.X, Y: b.Y}, {X: b.Right(), Y: b.Y},
			{X: b.X, Y: b.Bottom()}, {X: b.Right(), Y: b.Bottom()},
		} {
			c.FillRect(document.Rect{X: p.X - half, Y: p.Y - half, Width: handleSize, Height: handleSize}, selectionColor)
		}

	case document.ElementText:
		c.StrokeRect(b, selectionColor, 1.5, selectionDash)
		c.Stroke([]document.Point{
			{X: b.Right() - textCornerLength, Y: b.Bottom()},
			{X: b.Right(), Y: b.Bottom()},
			{X: b.Right(), Y: b.Bottom() - textCornerLength},
		}, selectionColor, 2, nil, false)

	default:
		c.StrokeRect(b.Inset(textPad+strokeWidth(el)/2), selectionColor, 1.5, selectionDash)
	}
}
