package engine

import "github.com/hatworks/designer/internal/document"

type interactionKind int

const (
	interactionIdle interactionKind = iota
	interactionDrawing
	interactionDragging
	interactionResizing
)

// interaction is the state of one pointer gesture. It lives beside the
// scene, never inside elements, and is dropped on pointer-up.
type interaction struct {
	kind   interactionKind
	id     string
	handle Handle

	// start is the element as it was on pointer-down and startBounds its box.
	start       document.Element
	startBounds document.Rect
	origin      document.Point
}

// translate moves every coordinate of el by (dx, dy).
func translate(el document.Element, dx, dy float64) document.Element {
	el = el.Clone()
	switch el.Type {
	case document.ElementPencil:
		for i := range el.Points {
			el.Points[i].X += dx
			el.Points[i].Y += dy
		}
	case document.ElementLine, document.ElementArrow:
		el.X1 += dx
		el.Y1 += dy
		el.X2 += dx
		el.Y2 += dy
	default:
		el.X += dx
		el.Y += dy
	}
	return el
}

// manipulator implements select, drag and resize on a scene. Both renderers
// use it; they differ in anchor convention and in the area drags are kept
// inside.
type manipulator struct {
	scene    *Scene
	layout   Layout
	minSize  float64
	selected string
	act      interaction
}

// selectedElement returns the selection if it still exists.
func (m *manipulator) selectedElement() (document.Element, bool) {
	return m.scene.Find(m.selected)
}

// syncSelection drops a selection whose element is gone, e.g. after undo.
func (m *manipulator) syncSelection() {
	if _, ok := m.selectedElement(); !ok {
		m.selected = ""
	}
}

func (m *manipulator) clearSelection() bool {
	changed := m.selected != ""
	m.selected = ""
	return changed
}

// pointerDown starts resizing when a handle of the selected image is hit,
// dragging when any element of view is hit, and clears the selection
// otherwise.
func (m *manipulator) pointerDown(p document.Point, view document.View) bool {
	if el, ok := m.selectedElement(); ok {
		if h := m.layout.ResizeHandleAt(p.X, p.Y, el); h != HandleNone {
			m.begin(interactionResizing, el, p)
			m.act.handle = h
			return true
		}
	}

	id := m.layout.HitTest(p.X, p.Y, m.scene.elements, view)
	if id == "" {
		m.act = interaction{}
		return m.clearSelection()
	}
	el, _ := m.scene.Find(id)
	m.selected = id
	m.begin(interactionDragging, el, p)
	return true
}

func (m *manipulator) begin(kind interactionKind, el document.Element, p document.Point) {
	b, _ := m.layout.BoundsOf(el)
	m.act = interaction{kind: kind, id: el.ID, start: el, startBounds: b, origin: p}
}

// pointerMove applies the gesture to the live element. Drags are kept
// inside area; resizes keep the aspect ratio and the minimum size.
func (m *manipulator) pointerMove(p document.Point, area document.Rect) bool {
	switch m.act.kind {
	case interactionDragging:
		dx, dy := clampDelta(m.act.startBounds, p.X-m.act.origin.X, p.Y-m.act.origin.Y, area)
		return m.scene.Replace(translate(m.act.start, dx, dy))

	case interactionResizing:
		start := m.layout.ImageRect(m.act.start)
		ratio := m.act.start.AspectRatio
		if ratio <= 0 && start.Height > 0 {
			ratio = start.Width / start.Height
		}
		r := resizeRect(start, m.act.handle, p.X-m.act.origin.X, ratio, m.minSize, area)
		el := m.act.start.Clone()
		m.layout.fromImageRect(&el, r)
		return m.scene.Replace(el)
	}
	return false
}

// pointerUp ends a drag or resize and commits it as one history entry.
func (m *manipulator) pointerUp() bool {
	kind := m.act.kind
	m.act = interaction{}
	if kind == interactionDragging || kind == interactionResizing {
		return m.scene.Commit()
	}
	return false
}

func (m *manipulator) deleteSelected() bool {
	if m.selected == "" {
		return false
	}
	id := m.selected
	m.selected = ""
	m.act = interaction{}
	return m.scene.Delete(id)
}

func (m *manipulator) undo() bool {
	m.act = interaction{}
	if !m.scene.Undo() {
		return false
	}
	m.selected = ""
	return true
}

func (m *manipulator) redo() bool {
	m.act = interaction{}
	if !m.scene.Redo() {
		return false
	}
	m.syncSelection()
	return true
}
