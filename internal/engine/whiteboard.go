package engine

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"strings"

	"github.com/hatworks/designer/internal/document"
	"github.com/hatworks/designer/internal/export"
	"github.com/hatworks/designer/internal/pixel"
	"github.com/hatworks/designer/internal/typeid"
)

// Tool is the active whiteboard tool.
type Tool string

const (
	ToolSelect Tool = "select"
	ToolPencil Tool = "pencil"
	ToolLine   Tool = "line"
	ToolArrow  Tool = "arrow"
	ToolText   Tool = "text"
	ToolImage  Tool = "image"
)

func (t Tool) valid() bool {
	switch t {
	case ToolSelect, ToolPencil, ToolLine, ToolArrow, ToolText, ToolImage:
		return true
	}
	return false
}

// Key is a keyboard event. Key follows KeyboardEvent.key.
type Key struct {
	Key   string `json:"key"`
	Ctrl  bool   `json:"ctrl"`
	Meta  bool   `json:"meta"`
	Shift bool   `json:"shift"`
}

// Whiteboard is the freehand sketch surface attached to quote requests.
// Image elements are anchored at their top-left corner.
//
// Methods that change what is on screen return true; the host redraws by
// calling Render.
type Whiteboard struct {
	width, height int
	opts          Options

	scene   *Scene
	m       manipulator
	bitmaps Bitmaps

	tool        Tool
	color       string
	strokeWidth float64
	fontFamily  string
	fontSize    float64

	draft      *document.Element
	composing  *document.Point
	fullscreen bool
}

// NewWhiteboard creates an empty w x h whiteboard.
func NewWhiteboard(w, h int, opts Options) *Whiteboard {
	scene := NewScene()
	return &Whiteboard{
		width:  w,
		height: h,
		opts:   opts,
		scene:  scene,
		m: manipulator{
			scene:   scene,
			layout:  opts.layout(AnchorTopLeft),
			minSize: opts.MinImageSize,
		},
		bitmaps:     make(Bitmaps),
		tool:        ToolPencil,
		color:       opts.Color,
		strokeWidth: opts.StrokeWidth,
		fontFamily:  opts.FontFamily,
		fontSize:    opts.FontSize,
	}
}

func (wb *Whiteboard) Size() (int, int) { return wb.width, wb.height }
func (wb *Whiteboard) Tool() Tool       { return wb.tool }
func (wb *Whiteboard) Selected() string { return wb.m.selected }
func (wb *Whiteboard) Scene() *Scene    { return wb.scene }
func (wb *Whiteboard) Fullscreen() bool { return wb.fullscreen }

// Elements returns a copy of the committed and live elements.
func (wb *Whiteboard) Elements() []document.Element {
	return wb.scene.Elements()
}

// SetTool switches tools. Switching away from select drops the selection.
func (wb *Whiteboard) SetTool(t Tool) bool {
	if !t.valid() || t == wb.tool {
		return false
	}
	wb.tool = t
	wb.draft = nil
	wb.composing = nil
	wb.m.act = interaction{}
	if t != ToolSelect {
		wb.m.clearSelection()
	}
	return true
}

// SetColor sets the ink for new elements. Invalid hex values are ignored.
func (wb *Whiteboard) SetColor(hex string) {
	if _, ok := pixel.ParseHex(hex); ok {
		wb.color = hex
	}
}

func (wb *Whiteboard) SetStrokeWidth(w float64) {
	if w > 0 {
		wb.strokeWidth = w
	}
}

func (wb *Whiteboard) SetFont(family string, size float64) {
	if family != "" {
		wb.fontFamily = family
	}
	if size > 0 {
		wb.fontSize = size
	}
}

func (wb *Whiteboard) canvasRect() document.Rect {
	return document.Rect{Width: float64(wb.width), Height: float64(wb.height)}
}

// PointerDown starts a gesture at canvas point p.
func (wb *Whiteboard) PointerDown(p document.Point) bool {
	wb.composing = nil

	switch wb.tool {
	case ToolSelect:
		return wb.m.pointerDown(p, "")

	case ToolPencil:
		wb.draft = &document.Element{
			ID:          typeid.NewElementID(),
			Type:        document.ElementPencil,
			Points:      []document.Point{p},
			Color:       wb.color,
			StrokeWidth: wb.strokeWidth,
		}
		return true

	case ToolLine, ToolArrow:
		typ := document.ElementLine
		if wb.tool == ToolArrow {
			typ = document.ElementArrow
		}
		wb.draft = &document.Element{
			ID:          typeid.NewElementID(),
			Type:        typ,
			X1:          p.X,
			Y1:          p.Y,
			X2:          p.X,
			Y2:          p.Y,
			Color:       wb.color,
			StrokeWidth: wb.strokeWidth,
		}
		return true

	case ToolText:
		wb.composing = &p
		return true
	}
	return false
}

// PointerMove extends the stroke being drawn or moves the drag.
func (wb *Whiteboard) PointerMove(p document.Point) bool {
	if wb.draft != nil {
		switch wb.draft.Type {
		case document.ElementPencil:
			wb.draft.Points = append(wb.draft.Points, p)
		default:
			wb.draft.X2, wb.draft.Y2 = p.X, p.Y
		}
		return true
	}
	return wb.m.pointerMove(p, wb.canvasRect())
}

// PointerUp commits the gesture as one history entry.
func (wb *Whiteboard) PointerUp(p document.Point) bool {
	if wb.draft != nil {
		if n := len(wb.draft.Points); wb.draft.Type != document.ElementPencil || n == 0 || wb.draft.Points[n-1] != p {
			wb.PointerMove(p)
		}
		wb.scene.Add(*wb.draft)
		wb.draft = nil
		return true
	}
	return wb.m.pointerUp()
}

// Composing returns the anchor of the text being typed, if any.
func (wb *Whiteboard) Composing() (document.Point, bool) {
	if wb.composing == nil {
		return document.Point{}, false
	}
	return *wb.composing, true
}

// ConfirmText places text at the composing anchor. Blank input cancels.
func (wb *Whiteboard) ConfirmText(s string) bool {
	if wb.composing == nil {
		return false
	}
	at := *wb.composing
	wb.composing = nil

	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	wb.scene.Add(document.Element{
		ID:         typeid.NewElementID(),
		Type:       document.ElementText,
		X:          at.X,
		Y:          at.Y,
		Text:       s,
		FontFamily: wb.fontFamily,
		FontSize:   wb.fontSize,
		Color:      wb.color,
	})
	return true
}

// CancelText leaves the composing state without adding anything.
func (wb *Whiteboard) CancelText() bool {
	if wb.composing == nil {
		return false
	}
	wb.composing = nil
	return true
}

// KeyDown handles the whiteboard shortcuts. While text is being composed
// only Escape is handled; other keys belong to the text field.
func (wb *Whiteboard) KeyDown(k Key) bool {
	if wb.composing != nil {
		if k.Key == "Escape" {
			return wb.CancelText()
		}
		return false
	}

	mod := k.Ctrl || k.Meta
	switch {
	case k.Key == "Delete" || k.Key == "Backspace":
		return wb.DeleteSelected()
	case mod && strings.EqualFold(k.Key, "z") && k.Shift:
		return wb.Redo()
	case mod && strings.EqualFold(k.Key, "z"):
		return wb.Undo()
	case k.Ctrl && strings.EqualFold(k.Key, "y"):
		return wb.Redo()
	case k.Key == "Escape":
		return wb.m.clearSelection()
	}
	return false
}

func (wb *Whiteboard) DeleteSelected() bool { return wb.m.deleteSelected() }

func (wb *Whiteboard) Undo() bool {
	wb.draft = nil
	return wb.m.undo()
}

func (wb *Whiteboard) Redo() bool {
	wb.draft = nil
	return wb.m.redo()
}

// ImportImage adds a decoded bitmap scaled to fit the import share of the
// canvas, centered, and selects it. src names the bitmap; an empty src gets
// a generated handle. It returns the new element id.
func (wb *Whiteboard) ImportImage(src string, img image.Image) string {
	b := img.Bounds()
	if b.Empty() {
		return ""
	}
	if src == "" {
		src = typeid.NewBitmapID()
	}
	wb.bitmaps[src] = img

	nw, nh := float64(b.Dx()), float64(b.Dy())
	scale := min(float64(wb.width)*wb.opts.ImportFit/nw, float64(wb.height)*wb.opts.ImportFit/nh)
	w, h := nw*scale, nh*scale

	el := document.Element{
		ID:          typeid.NewElementID(),
		Type:        document.ElementImage,
		X:           (float64(wb.width) - w) / 2,
		Y:           (float64(wb.height) - h) / 2,
		Width:       w,
		Height:      h,
		Src:         src,
		AspectRatio: nw / nh,
	}
	wb.scene.Add(el)
	wb.tool = ToolSelect
	wb.m.selected = el.ID
	return el.ID
}

// ClearCanvas drops every element and all history.
func (wb *Whiteboard) ClearCanvas() {
	wb.scene.Clear()
	wb.bitmaps = make(Bitmaps)
	wb.m.selected = ""
	wb.m.act = interaction{}
	wb.draft = nil
	wb.composing = nil
}

// ToggleFullscreen flips the wanted fullscreen state and returns it. The
// host requests or exits fullscreen accordingly.
func (wb *Whiteboard) ToggleFullscreen() bool {
	wb.fullscreen = !wb.fullscreen
	return wb.fullscreen
}

// SyncFullscreen records the real fullscreen state, e.g. after the user
// left fullscreen with Escape.
func (wb *Whiteboard) SyncFullscreen(active bool) bool {
	changed := wb.fullscreen != active
	wb.fullscreen = active
	return changed
}

func (wb *Whiteboard) paint(chrome bool) *image.RGBA {
	c := NewCanvas(wb.width, wb.height, wb.opts.fonts())
	c.Fill(color.White)
	RenderElements(c, wb.m.layout, wb.scene.elements, "", wb.bitmaps)
	if !chrome {
		return c.Image()
	}
	if wb.draft != nil {
		drawElement(c, wb.m.layout, *wb.draft, wb.bitmaps)
	}
	if el, ok := wb.m.selectedElement(); ok {
		drawSelection(c, wb.m.layout, el)
	}
	return c.Image()
}

// Render draws the scene as displayed, with the stroke in progress and the
// selection outline.
func (wb *Whiteboard) Render() *image.RGBA {
	return wb.paint(true)
}

// ExportPNG encodes the elements on white without selection decorations.
func (wb *Whiteboard) ExportPNG() ([]byte, error) {
	return export.PNG(wb.paint(false))
}

// ExportCanvas returns ExportPNG as a data URL.
func (wb *Whiteboard) ExportCanvas() (string, error) {
	return export.DataURL(wb.paint(false))
}

// ExportPDF writes the elements as a vector page the size of the canvas.
func (wb *Whiteboard) ExportPDF(w io.Writer) error {
	sketch := export.Sketch{Width: float64(wb.width), Height: float64(wb.height)}
	for _, el := range wb.scene.elements {
		ink := el.Color
		if ink == "" {
			ink = document.DefaultElementColor
		}
		switch el.Type {
		case document.ElementPencil:
			sketch.Marks = append(sketch.Marks, export.Stroke{Points: el.Points, Color: ink, Width: strokeWidth(el)})
		case document.ElementLine:
			sketch.Marks = append(sketch.Marks, export.Stroke{Points: linePoints(el), Color: ink, Width: strokeWidth(el)})
		case document.ElementArrow:
			sw := strokeWidth(el)
			sketch.Marks = append(sketch.Marks, export.Stroke{Points: linePoints(el), Color: ink, Width: sw})
			for _, tick := range arrowTicks(el.X1, el.Y1, el.X2, el.Y2, max(10, sw*3)) {
				sketch.Marks = append(sketch.Marks, export.Stroke{
					Points: []document.Point{{X: el.X2, Y: el.Y2}, tick},
					Color:  ink,
					Width:  sw,
				})
			}
		case document.ElementText:
			size := el.FontSize
			if size <= 0 {
				size = document.DefaultFontSize
			}
			sketch.Marks = append(sketch.Marks, export.Label{
				Text: el.Text, X: el.X, Y: el.Y, Size: size, Color: ink, Family: resolve(el.FontFamily),
			})
		case document.ElementImage:
			img, ok := wb.bitmaps[el.Src]
			if !ok {
				continue
			}
			data, err := export.PNG(img)
			if err != nil {
				return fmt.Errorf("export image %s: %w", el.ID, err)
			}
			sketch.Marks = append(sketch.Marks, export.Picture{PNG: data, Rect: wb.m.layout.ImageRect(el)})
		}
	}
	return export.WriteSketchPDF(w, sketch)
}
