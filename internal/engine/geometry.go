package engine

import (
	"math"
	"unicode/utf8"

	"github.com/hatworks/designer/internal/document"
)

// Anchor says what an image element's (x, y) refers to. The whiteboard
// stores the top-left corner, the hat designer stores the center. Hit
// testing, drawing and drag math all go through ImageRect so the two never
// disagree within one renderer.
type Anchor int

const (
	AnchorTopLeft Anchor = iota
	AnchorCenter
)

// Handle names a resize corner of an image.
type Handle string

const (
	HandleNone Handle = ""
	HandleNW   Handle = "nw"
	HandleNE   Handle = "ne"
	HandleSW   Handle = "sw"
	HandleSE   Handle = "se"
)

// textPad is the space between measured text and its box.
const textPad = 4

// TextMeasurer returns the advance width of text in pixels.
type TextMeasurer interface {
	MeasureText(text, family string, size float64) float64
}

// Layout bundles what geometry needs to know about one renderer.
type Layout struct {
	Anchor       Anchor
	Measurer     TextMeasurer
	HandleRadius float64
	HitSlop      float64
}

// ImageRect returns the top-left based rect of an image element.
func (l Layout) ImageRect(el document.Element) document.Rect {
	if l.Anchor == AnchorCenter {
		return document.Rect{X: el.X - el.Width/2, Y: el.Y - el.Height/2, Width: el.Width, Height: el.Height}
	}
	return document.Rect{X: el.X, Y: el.Y, Width: el.Width, Height: el.Height}
}

// fromImageRect stores r back into el using the layout's anchor.
func (l Layout) fromImageRect(el *document.Element, r document.Rect) {
	el.Width, el.Height = r.Width, r.Height
	if l.Anchor == AnchorCenter {
		el.X, el.Y = r.Center()
		return
	}
	el.X, el.Y = r.X, r.Y
}

func (l Layout) textWidth(el document.Element) float64 {
	size := el.FontSize
	if size <= 0 {
		size = document.DefaultFontSize
	}
	if l.Measurer != nil {
		return l.Measurer.MeasureText(el.Text, el.FontFamily, size)
	}
	return 0.6 * size * float64(utf8.RuneCountInString(el.Text))
}

// BoundsOf returns the axis-aligned box of an element. The same box is used
// for hit testing and for the selection outline. ok is false for elements
// with nothing to measure (a pencil stroke without points).
func (l Layout) BoundsOf(el document.Element) (document.Rect, bool) {
	switch el.Type {
	case document.ElementPencil:
		if len(el.Points) == 0 {
			return document.Rect{}, false
		}
		minX, minY := el.Points[0].X, el.Points[0].Y
		maxX, maxY := minX, minY
		for _, p := range el.Points[1:] {
			minX, maxX = min(minX, p.X), max(maxX, p.X)
			minY, maxY = min(minY, p.Y), max(maxY, p.Y)
		}
		return document.Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}, true

	case document.ElementLine, document.ElementArrow:
		minX, maxX := min(el.X1, el.X2), max(el.X1, el.X2)
		minY, maxY := min(el.Y1, el.Y2), max(el.Y1, el.Y2)
		return document.Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}, true

	case document.ElementText:
		size := el.FontSize
		if size <= 0 {
			size = document.DefaultFontSize
		}
		w := l.textWidth(el)
		return document.Rect{
			X:      el.X - w/2 - textPad,
			Y:      el.Y - size/2 - textPad,
			Width:  w + 2*textPad,
			Height: size + 2*textPad,
		}, true

	case document.ElementImage:
		return l.ImageRect(el), true
	}
	return document.Rect{}, false
}

// hitBounds widens thin strokes so a horizontal line can still be clicked.
func (l Layout) hitBounds(el document.Element) (document.Rect, bool) {
	b, ok := l.BoundsOf(el)
	if !ok {
		return b, false
	}
	switch el.Type {
	case document.ElementPencil, document.ElementLine, document.ElementArrow:
		b = b.Inset(max(l.HitSlop, el.StrokeWidth/2))
	}
	return b, true
}

// visible reports whether el belongs to view. An empty view shows everything.
func visible(el document.Element, view document.View) bool {
	return view == "" || el.Placement == view
}

// HitTest returns the id of the topmost element of view under (x, y), or "".
// Elements are scanned last-drawn first.
func (l Layout) HitTest(x, y float64, elements []document.Element, view document.View) string {
	for i := len(elements) - 1; i >= 0; i-- {
		el := elements[i]
		if !visible(el, view) {
			continue
		}
		if b, ok := l.hitBounds(el); ok && b.Contains(x, y) {
			return el.ID
		}
	}
	return ""
}

// ResizeHandleAt returns the corner of an image element nearest to (x, y)
// when it lies within the handle radius.
func (l Layout) ResizeHandleAt(x, y float64, el document.Element) Handle {
	if el.Type != document.ElementImage {
		return HandleNone
	}
	r := l.ImageRect(el)
	corners := []struct {
		h    Handle
		x, y float64
	}{
		{HandleNW, r.X, r.Y},
		{HandleNE, r.Right(), r.Y},
		{HandleSW, r.X, r.Bottom()},
		{HandleSE, r.Right(), r.Bottom()},
	}

	best, bestDist := HandleNone, math.Inf(1)
	for _, c := range corners {
		d := math.Hypot(x-c.x, y-c.y)
		if d <= l.HandleRadius && d < bestDist {
			best, bestDist = c.h, d
		}
	}
	return best
}

// ClampRect keeps a rect inside a canvas of cw x ch. The position is pulled
// inside first, then width and height are cut to the space left from there.
func ClampRect(x, y, w, h, cw, ch float64) document.Rect {
	return clampRectTo(document.Rect{X: x, Y: y, Width: w, Height: h}, document.Rect{Width: cw, Height: ch})
}

func clampRectTo(r, area document.Rect) document.Rect {
	r.X = clamp(r.X, area.X, area.Right()-r.Width)
	r.Y = clamp(r.Y, area.Y, area.Bottom()-r.Height)
	r.Width = min(r.Width, area.Right()-r.X)
	r.Height = min(r.Height, area.Bottom()-r.Y)
	return r
}

// clampDelta limits a drag of box b so it stays inside area. A box larger
// than the area is pinned to the area's top-left.
func clampDelta(b document.Rect, dx, dy float64, area document.Rect) (float64, float64) {
	return clamp(dx, area.X-b.X, area.Right()-b.Right()),
		clamp(dy, area.Y-b.Y, area.Bottom()-b.Bottom())
}

// clamp bounds v to [lo, hi]; lo wins when the range is empty.
func clamp(v, lo, hi float64) float64 {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

// resizeRect drags one corner of start by (dx, dy). Width follows the
// horizontal delta and height is derived from ratio, so the aspect never
// changes. The opposite corner stays fixed. The result is at least minSize
// on both sides unless the area is too small to allow it.
func resizeRect(start document.Rect, h Handle, dx, ratio, minSize float64, area document.Rect) document.Rect {
	if ratio <= 0 {
		ratio = 1
	}

	var w, maxW float64
	switch h {
	case HandleSE:
		w = start.Width + dx
		maxW = min(area.Right()-start.X, (area.Bottom()-start.Y)*ratio)
	case HandleNE:
		w = start.Width + dx
		maxW = min(area.Right()-start.X, (start.Bottom()-area.Y)*ratio)
	case HandleSW:
		w = start.Width - dx
		maxW = min(start.Right()-area.X, (area.Bottom()-start.Y)*ratio)
	case HandleNW:
		w = start.Width - dx
		maxW = min(start.Right()-area.X, (start.Bottom()-area.Y)*ratio)
	default:
		return start
	}

	w = max(w, minSize, minSize*ratio)
	w = min(w, maxW)
	hgt := w / ratio

	out := document.Rect{Width: w, Height: hgt}
	switch h {
	case HandleSE:
		out.X, out.Y = start.X, start.Y
	case HandleNE:
		out.X, out.Y = start.X, start.Bottom()-hgt
	case HandleSW:
		out.X, out.Y = start.Right()-w, start.Y
	case HandleNW:
		out.X, out.Y = start.Right()-w, start.Bottom()-hgt
	}
	return out
}

// PointerEvent is a mouse or touch event in CSS pixels. When Touches is not
// empty the first touch is used.
type PointerEvent struct {
	ClientX float64          `json:"clientX"`
	ClientY float64          `json:"clientY"`
	Touches []document.Point `json:"touches,omitempty"`
}

// ClientRect is the canvas element's bounding rect in CSS pixels.
type ClientRect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ClientToCanvas maps CSS pixels to canvas pixels for a canvas of w x h
// displayed at rect.
func ClientToCanvas(rect ClientRect, w, h int) Matrix2D {
	sx, sy := 1.0, 1.0
	if rect.Width > 0 {
		sx = float64(w) / rect.Width
	}
	if rect.Height > 0 {
		sy = float64(h) / rect.Height
	}
	return Scale(sx, sy).Multiply(Translate(-rect.Left, -rect.Top))
}

// CanvasPoint converts a pointer event into canvas coordinates.
func CanvasPoint(ev PointerEvent, rect ClientRect, w, h int) document.Point {
	cx, cy := ev.ClientX, ev.ClientY
	if len(ev.Touches) > 0 {
		cx, cy = ev.Touches[0].X, ev.Touches[0].Y
	}
	x, y := ClientToCanvas(rect, w, h).TransformPoint(cx, cy)
	return document.Point{X: x, Y: y}
}
