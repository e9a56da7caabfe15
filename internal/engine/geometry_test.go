package engine

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hatworks/designer/internal/document"
)

func imageEl(id string, x, y, w, h float64) document.Element {
	return document.Element{ID: id, Type: document.ElementImage, Placement: document.ViewFront, X: x, Y: y, Width: w, Height: h, AspectRatio: w / h}
}

func TestBoundsOf(t *testing.T) {
	l := Layout{Anchor: AnchorTopLeft}
	tests := []struct {
		name   string
		el     document.Element
		want   document.Rect
		wantOK bool
	}{
		{
			name:   "pencil",
			el:     document.Element{Type: document.ElementPencil, Points: []document.Point{{X: 10, Y: 40}, {X: 30, Y: 5}, {X: 20, Y: 20}}},
			want:   document.Rect{X: 10, Y: 5, Width: 20, Height: 35},
			wantOK: true,
		},
		{
			name: "empty pencil",
			el:   document.Element{Type: document.ElementPencil},
		},
		{
			name:   "arrow drawn right to left",
			el:     document.Element{Type: document.ElementArrow, X1: 100, Y1: 50, X2: 20, Y2: 70},
			want:   document.Rect{X: 20, Y: 50, Width: 80, Height: 20},
			wantOK: true,
		},
		{
			// 0.6 * 20 * 2 runes = 24 wide, padded by 4.
			name:   "text without measurer",
			el:     document.Element{Type: document.ElementText, X: 100, Y: 100, Text: "Hi", FontSize: 20},
			want:   document.Rect{X: 84, Y: 86, Width: 32, Height: 28},
			wantOK: true,
		},
		{
			name:   "image",
			el:     imageEl("a", 10, 20, 30, 40),
			want:   document.Rect{X: 10, Y: 20, Width: 30, Height: 40},
			wantOK: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := l.BoundsOf(tt.el)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("bounds mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCenterAnchoredImageRect(t *testing.T) {
	l := Layout{Anchor: AnchorCenter}
	got := l.ImageRect(imageEl("a", 100, 100, 60, 40))
	want := document.Rect{X: 70, Y: 80, Width: 60, Height: 40}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("rect mismatch (-want +got):\n%s", diff)
	}

	var el document.Element
	l.fromImageRect(&el, want)
	if el.X != 100 || el.Y != 100 {
		t.Errorf("fromImageRect center = (%v, %v), want (100, 100)", el.X, el.Y)
	}
}

func TestHitTest(t *testing.T) {
	l := Layout{Anchor: AnchorTopLeft, HitSlop: 4}
	line := document.Element{ID: "line", Type: document.ElementLine, Placement: document.ViewFront, X1: 0, Y1: 200, X2: 100, Y2: 200, StrokeWidth: 2}
	back := imageEl("back", 0, 300, 50, 50)
	back.Placement = document.ViewBack
	elements := []document.Element{imageEl("a", 0, 0, 100, 100), imageEl("b", 50, 50, 100, 100), line, back}

	tests := []struct {
		name string
		x, y float64
		view document.View
		want string
	}{
		{"topmost wins", 75, 75, document.ViewFront, "b"},
		{"only lower", 10, 10, document.ViewFront, "a"},
		{"edge counts", 150, 150, document.ViewFront, "b"},
		{"miss", 400, 400, document.ViewFront, ""},
		{"thin line within slop", 50, 203, document.ViewFront, "line"},
		{"thin line outside slop", 50, 206, document.ViewFront, ""},
		{"other view hidden", 10, 310, document.ViewFront, ""},
		{"other view", 10, 310, document.ViewBack, "back"},
		{"all views", 10, 310, "", "back"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := l.HitTest(tt.x, tt.y, elements, tt.view); got != tt.want {
				t.Errorf("HitTest(%v, %v) = %q, want %q", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestResizeHandleAt(t *testing.T) {
	l := Layout{Anchor: AnchorCenter, HandleRadius: 12}
	el := imageEl("a", 100, 100, 100, 50) // rect 50,75 .. 150,125

	tests := []struct {
		x, y float64
		want Handle
	}{
		{151, 126, HandleSE},
		{50, 75, HandleNW},
		{145, 80, HandleNE},
		{55, 120, HandleSW},
		{100, 100, HandleNone},
		{170, 125, HandleNone},
	}
	for _, tt := range tests {
		if got := l.ResizeHandleAt(tt.x, tt.y, el); got != tt.want {
			t.Errorf("ResizeHandleAt(%v, %v) = %q, want %q", tt.x, tt.y, got, tt.want)
		}
	}

	text := document.Element{Type: document.ElementText, X: 50, Y: 75}
	if got := l.ResizeHandleAt(50, 75, text); got != HandleNone {
		t.Errorf("text element got handle %q", got)
	}
}

func TestClampRect(t *testing.T) {
	tests := []struct {
		name       string
		x, y, w, h float64
		want       document.Rect
	}{
		{"inside", 10, 10, 50, 50, document.Rect{X: 10, Y: 10, Width: 50, Height: 50}},
		{"pulled in", -10, 480, 100, 50, document.Rect{X: 0, Y: 450, Width: 100, Height: 50}},
		{"too wide", 10, 10, 600, 50, document.Rect{X: 0, Y: 10, Width: 500, Height: 50}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClampRect(tt.x, tt.y, tt.w, tt.h, 500, 500)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("rect mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestClampDelta(t *testing.T) {
	area := document.Rect{Width: 500, Height: 500}
	b := document.Rect{X: 100, Y: 100, Width: 50, Height: 50}
	dx, dy := clampDelta(b, 1000, -1000, area)
	if dx != 350 || dy != -100 {
		t.Errorf("clampDelta = (%v, %v), want (350, -100)", dx, dy)
	}
}

func TestResizeRect(t *testing.T) {
	area := document.Rect{Width: 500, Height: 500}
	start := document.Rect{X: 100, Y: 100, Width: 100, Height: 50}

	tests := []struct {
		name string
		h    Handle
		dx   float64
		want document.Rect
	}{
		{"se grows with ratio", HandleSE, 40, document.Rect{X: 100, Y: 100, Width: 140, Height: 70}},
		{"se keeps minimum", HandleSE, -200, document.Rect{X: 100, Y: 100, Width: 60, Height: 30}},
		{"nw clamps to area", HandleNW, -1000, document.Rect{X: 0, Y: 50, Width: 200, Height: 100}},
		{"sw grows left", HandleSW, -20, document.Rect{X: 80, Y: 100, Width: 120, Height: 60}},
		{"ne keeps bottom left", HandleNE, 20, document.Rect{X: 100, Y: 90, Width: 120, Height: 60}},
		{"no handle", HandleNone, 20, start},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resizeRect(start, tt.h, tt.dx, 2, 30, area)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("rect mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCanvasPoint(t *testing.T) {
	rect := ClientRect{Left: 10, Top: 20, Width: 250, Height: 250}
	tests := []struct {
		name string
		ev   PointerEvent
		want document.Point
	}{
		{"mouse", PointerEvent{ClientX: 135, ClientY: 145}, document.Point{X: 250, Y: 250}},
		{"touch wins", PointerEvent{ClientX: 135, ClientY: 145, Touches: []document.Point{{X: 60, Y: 70}}}, document.Point{X: 100, Y: 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CanvasPoint(tt.ev, rect, 500, 500)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("point mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
