package document

// ElementType discriminates the drawable element union.
type ElementType string

const (
	ElementPencil ElementType = "pencil"
	ElementLine   ElementType = "line"
	ElementArrow  ElementType = "arrow"
	ElementText   ElementType = "text"
	ElementImage  ElementType = "image"
)

// View is one side of a product photo. Elements carry the view they were
// placed on as their Placement.
type View string

const (
	ViewFront View = "front"
	ViewBack  View = "back"
)

// Part names a recolorable region of a hat.
type Part string

const (
	PartFront Part = "front"
	PartMesh  Part = "mesh"
	PartBrim  Part = "brim"
	PartRope  Part = "rope"
)

// Parts is the canonical part order. Marker matching walks parts in this
// order and the first match wins.
var Parts = []Part{PartFront, PartMesh, PartBrim, PartRope}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned rectangle in canvas pixels.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Element is a drawable scene element. Which geometry fields are meaningful
// depends on Type:
//
//	pencil       Points, Color, StrokeWidth
//	line, arrow  X1, Y1, X2, Y2, Color, StrokeWidth
//	text         X, Y (visual center), Text, FontFamily, FontSize, Color
//	image        X, Y, Width, Height, Src, AspectRatio
//
// Elements hold persisted data only. Interaction state lives in the renderer.
type Element struct {
	ID        string      `json:"id"`
	Type      ElementType `json:"type"`
	Placement View        `json:"placement,omitempty"`

	Points []Point `json:"points,omitempty"`

	X1 float64 `json:"x1,omitempty"`
	Y1 float64 `json:"y1,omitempty"`
	X2 float64 `json:"x2,omitempty"`
	Y2 float64 `json:"y2,omitempty"`

	X float64 `json:"x,omitempty"`
	Y float64 `json:"y,omitempty"`

	Text       string  `json:"text,omitempty"`
	FontFamily string  `json:"fontFamily,omitempty"`
	FontSize   float64 `json:"fontSize,omitempty"`

	Width       float64 `json:"width,omitempty"`
	Height      float64 `json:"height,omitempty"`
	Src         string  `json:"src,omitempty"`
	AspectRatio float64 `json:"aspectRatio,omitempty"`

	Color       string  `json:"color,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
}

// Clone returns a deep copy of the element.
func (e Element) Clone() Element {
	if e.Points != nil {
		pts := make([]Point, len(e.Points))
		copy(pts, e.Points)
		e.Points = pts
	}
	return e
}

// CloneElements deep-copies an element list. A nil input yields an empty,
// non-nil slice so snapshots always serialize as [].
func CloneElements(elements []Element) []Element {
	out := make([]Element, len(elements))
	for i, el := range elements {
		out[i] = el.Clone()
	}
	return out
}

// Design is the hat designer's working state. It is handed to the quote
// request flow on completion and never persisted by the engine itself.
type Design struct {
	ID          string          `json:"id"`
	HatStyle    string          `json:"hatStyle"`
	Colors      map[Part]string `json:"colors"`
	Elements    []Element       `json:"elements"`
	CurrentView View            `json:"currentView"`
}

// DefaultUserColors are applied to a new design before the customer picks.
var DefaultUserColors = map[Part]string{
	PartFront: "#1a1a1a",
	PartMesh:  "#ffffff",
	PartBrim:  "#1a1a1a",
	PartRope:  "#ffffff",
}

// NewDesign starts a design for a hat style with the default colors.
func NewDesign(id, hatStyle string) *Design {
	colors := make(map[Part]string, len(DefaultUserColors))
	for k, v := range DefaultUserColors {
		colors[k] = v
	}
	return &Design{
		ID:          id,
		HatStyle:    hatStyle,
		Colors:      colors,
		Elements:    []Element{},
		CurrentView: ViewFront,
	}
}
