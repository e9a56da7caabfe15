package export

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/hatworks/designer/internal/document"
	"github.com/hatworks/designer/internal/pixel"
)

// QuoteSheet is the printable summary attached to a quote request.
type QuoteSheet struct {
	DesignID string
	HatName  string
	Parts    []document.Part
	Colors   map[document.Part]string
	Preview  []byte // PNG
	Notes    string
	Created  time.Time
}

// WriteQuoteSheet renders q as an A4 portrait PDF.
func WriteQuoteSheet(w io.Writer, q QuoteSheet) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Hat design "+q.DesignID, true)
	if !q.Created.IsZero() {
		pdf.SetCreationDate(q.Created)
	}
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	left, top, right, _ := pdf.GetMargins()
	contentW := pageW - left - right

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(contentW, 10, tr("Custom hat quote request"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	if q.HatName != "" {
		pdf.CellFormat(contentW, 6, tr("Style: "+q.HatName), "", 1, "L", false, 0, "")
	}
	if q.DesignID != "" {
		pdf.CellFormat(contentW, 6, tr("Design: "+q.DesignID), "", 1, "L", false, 0, "")
	}
	if !q.Created.IsZero() {
		pdf.CellFormat(contentW, 6, q.Created.Format("2006-01-02 15:04 MST"), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	y := pdf.GetY()
	if len(q.Preview) > 0 {
		opt := gofpdf.ImageOptions{ImageType: "PNG"}
		info := pdf.RegisterImageOptionsReader("preview", opt, bytes.NewReader(q.Preview))
		if pdf.Err() {
			return fmt.Errorf("add preview: %w", pdf.Error())
		}
		imgW := contentW * 0.7
		imgH := imgW * info.Height() / info.Width()
		pdf.ImageOptions("preview", left, y, imgW, imgH, false, opt, 0, "")
		y += imgH + 6
	}
	if y < top {
		y = top
	}
	pdf.SetY(y)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(contentW, 7, "Colors", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	parts := q.Parts
	if len(parts) == 0 {
		parts = document.Parts
	}
	for _, part := range parts {
		hex, ok := q.Colors[part]
		if !ok {
			continue
		}
		rgb, ok := pixel.ParseHex(hex)
		if !ok {
			continue
		}
		rowY := pdf.GetY()
		pdf.SetFillColor(int(rgb.R), int(rgb.G), int(rgb.B))
		pdf.SetDrawColor(120, 120, 120)
		pdf.Rect(left, rowY+1, 5, 5, "FD")
		pdf.SetX(left + 8)
		pdf.CellFormat(contentW-8, 7, tr(fmt.Sprintf("%s  %s", part, rgb.Hex())), "", 1, "L", false, 0, "")
	}

	if q.Notes != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(contentW, 7, "Notes", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(contentW, 5, tr(q.Notes), "", "L", false)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write quote sheet: %w", err)
	}
	return nil
}

// Mark is one item of a sketch page, drawn in order.
type Mark interface {
	draw(pdf *gofpdf.Fpdf, tr func(string) string, n int)
}

// Stroke is a polyline in canvas pixels.
type Stroke struct {
	Points []document.Point
	Color  string
	Width  float64
}

// Label is text centered on (X, Y). Family is one of regular, bold, medium
// or mono.
type Label struct {
	Text   string
	X, Y   float64
	Size   float64
	Color  string
	Family string
}

// Picture is a PNG placed at a rect.
type Picture struct {
	PNG  []byte
	Rect document.Rect
}

// Sketch is a whiteboard page. One canvas pixel maps to one point.
type Sketch struct {
	Width, Height float64
	Marks         []Mark
}

// WriteSketchPDF writes s as a single vector page sized to the canvas.
func WriteSketchPDF(w io.Writer, s Sketch) error {
	orientation := "P"
	if s.Width > s.Height {
		orientation = "L"
	}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: orientation,
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: s.Width, Ht: s.Height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	pdf.SetLineCapStyle("round")
	pdf.SetLineJoinStyle("round")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for i, m := range s.Marks {
		m.draw(pdf, tr, i)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write sketch pdf: %w", err)
	}
	return nil
}

func rgbOf(hex string) pixel.RGB {
	rgb, _ := pixel.ParseHex(hex)
	return rgb
}

func (s Stroke) draw(pdf *gofpdf.Fpdf, _ func(string) string, _ int) {
	if len(s.Points) == 0 {
		return
	}
	c := rgbOf(s.Color)
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
	pdf.SetLineWidth(s.Width)
	if len(s.Points) == 1 {
		pdf.Circle(s.Points[0].X, s.Points[0].Y, s.Width/2, "F")
		return
	}
	for i := 1; i < len(s.Points); i++ {
		a, b := s.Points[i-1], s.Points[i]
		pdf.Line(a.X, a.Y, b.X, b.Y)
	}
}

func (l Label) draw(pdf *gofpdf.Fpdf, tr func(string) string, _ int) {
	c := rgbOf(l.Color)
	pdf.SetTextColor(int(c.R), int(c.G), int(c.B))
	family, style := "Helvetica", ""
	switch l.Family {
	case "bold":
		style = "B"
	case "mono":
		family = "Courier"
	case "medium":
		family = "Times"
	}
	pdf.SetFont(family, style, l.Size)
	text := tr(l.Text)
	pdf.Text(l.X-pdf.GetStringWidth(text)/2, l.Y+l.Size*0.35, text)
}

func (p Picture) draw(pdf *gofpdf.Fpdf, _ func(string) string, n int) {
	if len(p.PNG) == 0 {
		return
	}
	name := fmt.Sprintf("picture-%d", n)
	opt := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(name, opt, bytes.NewReader(p.PNG))
	pdf.ImageOptions(name, p.Rect.X, p.Rect.Y, p.Rect.Width, p.Rect.Height, false, opt, 0, "")
}
