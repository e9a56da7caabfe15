package document

// Engine defaults used when a hat type omits optional configuration.
const (
	DefaultTolerance     = 80.0
	DefaultCanvasWidth   = 500
	DefaultCanvasHeight  = 500
	DefaultStrokeWidth   = 3.0
	DefaultFontFamily    = "Arial"
	DefaultFontSize      = 24.0
	DefaultElementColor  = "#000000"
	DefaultDesignAreaPad = 0.3
)

// DefaultMarkerColors are the reference colors painted into base photos
// when a hat type does not declare its own.
var DefaultMarkerColors = map[Part]string{
	PartFront: "#172c63",
	PartMesh:  "#1f7a3a",
	PartBrim:  "#b3261e",
	PartRope:  "#e0c341",
}

type ViewImages struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// For returns the image URL for a view.
func (v ViewImages) For(view View) string {
	if view == ViewBack {
		return v.Back
	}
	return v.Front
}

type CanvasConfig struct {
	Width      int           `json:"width"`
	Height     int           `json:"height"`
	DesignArea map[View]Rect `json:"designArea"`
}

// HatType is one entry of the hat-type catalog.
type HatType struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Parts        []Part          `json:"parts"`
	Images       ViewImages      `json:"images"`
	MarkerColors map[Part]string `json:"markerColors"`
	Canvas       CanvasConfig    `json:"canvas"`
	Tolerance    float64         `json:"tolerance,omitempty"`
}

// WithDefaults returns a copy with every missing optional field filled in.
func (h HatType) WithDefaults() HatType {
	if len(h.Parts) == 0 {
		h.Parts = append([]Part(nil), Parts...)
	}

	markers := make(map[Part]string, len(Parts))
	for k, v := range DefaultMarkerColors {
		markers[k] = v
	}
	for k, v := range h.MarkerColors {
		markers[k] = v
	}
	h.MarkerColors = markers

	if h.Canvas.Width <= 0 {
		h.Canvas.Width = DefaultCanvasWidth
	}
	if h.Canvas.Height <= 0 {
		h.Canvas.Height = DefaultCanvasHeight
	}

	areas := make(map[View]Rect, 2)
	for k, v := range h.Canvas.DesignArea {
		areas[k] = v
	}
	for _, view := range []View{ViewFront, ViewBack} {
		if r, ok := areas[view]; !ok || r.Width <= 0 || r.Height <= 0 {
			areas[view] = defaultDesignArea(h.Canvas.Width, h.Canvas.Height, view)
		}
	}
	h.Canvas.DesignArea = areas

	if h.Tolerance <= 0 {
		h.Tolerance = DefaultTolerance
	}
	return h
}

// DesignAreaFor returns the printable rectangle of a view.
func (h HatType) DesignAreaFor(view View) Rect {
	if r, ok := h.Canvas.DesignArea[view]; ok && r.Width > 0 && r.Height > 0 {
		return r
	}
	w, ht := h.Canvas.Width, h.Canvas.Height
	if w <= 0 {
		w = DefaultCanvasWidth
	}
	if ht <= 0 {
		ht = DefaultCanvasHeight
	}
	return defaultDesignArea(w, ht, view)
}

func defaultDesignArea(w, h int, view View) Rect {
	fw, fh := float64(w), float64(h)
	area := Rect{
		X:      fw * DefaultDesignAreaPad,
		Y:      fh * 0.25,
		Width:  fw * (1 - 2*DefaultDesignAreaPad),
		Height: fh * 0.25,
	}
	if view == ViewBack {
		area.Y = fh * 0.2
		area.Height = fh * 0.2
	}
	return area
}
