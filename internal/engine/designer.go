package engine

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"strconv"
	"strings"

	"github.com/hatworks/designer/internal/asset"
	"github.com/hatworks/designer/internal/bitmap"
	"github.com/hatworks/designer/internal/document"
	"github.com/hatworks/designer/internal/export"
	"github.com/hatworks/designer/internal/pixel"
	"github.com/hatworks/designer/internal/typeid"
)

const logoFolder = "logos"

// HatCatalog resolves hat styles.
type HatCatalog interface {
	Lookup(id string) (document.HatType, bool)
}

// Uploader stores a logo and returns where it can be fetched.
type Uploader interface {
	Upload(ctx context.Context, data []byte, folder string) (*asset.Asset, error)
}

// LogoFile is one file queued for import.
type LogoFile struct {
	Name string
	Data []byte
}

// ImportResult reports one logo import. Message is meant for the page.
type ImportResult struct {
	Name      string       `json:"name"`
	ElementID string       `json:"elementId,omitempty"`
	Asset     *asset.Asset `json:"asset,omitempty"`
	Err       error        `json:"-"`
	Message   string       `json:"message,omitempty"`
}

// ElementPatch holds the editable properties of a text or image overlay.
// Nil fields are left alone.
type ElementPatch struct {
	Text       *string  `json:"text,omitempty"`
	FontFamily *string  `json:"fontFamily,omitempty"`
	FontSize   *float64 `json:"fontSize,omitempty"`
	Color      *string  `json:"color,omitempty"`
}

type recolorMemo struct {
	orig *image.NRGBA
	sig  string
	buf  *image.NRGBA
}

// Designer composites a recolored hat photo with text and logo overlays.
// Image overlays are anchored at their center and every overlay stays
// inside the design area of its view.
type Designer struct {
	opts   Options
	hats   HatCatalog
	cache  *bitmap.Cache
	design document.Design
	scene  *Scene
	m      manipulator
	logos  Bitmaps
	memo   recolorMemo
}

// NewDesigner opens d for editing and starts loading its base photo.
func NewDesigner(hats HatCatalog, cache *bitmap.Cache, d document.Design, opts Options) *Designer {
	if d.ID == "" {
		d.ID = typeid.NewDesignID()
	}
	colors := make(map[document.Part]string, len(document.DefaultUserColors))
	for k, v := range document.DefaultUserColors {
		colors[k] = v
	}
	for k, v := range d.Colors {
		colors[k] = v
	}
	d.Colors = colors
	if d.CurrentView != document.ViewBack {
		d.CurrentView = document.ViewFront
	}

	scene := NewScene()
	scene.Reset(d.Elements)
	d.Elements = nil

	des := &Designer{
		opts:   opts,
		hats:   hats,
		cache:  cache,
		design: d,
		scene:  scene,
		m: manipulator{
			scene:   scene,
			layout:  opts.layout(AnchorCenter),
			minSize: opts.MinImageSize,
		},
		logos: make(Bitmaps),
	}
	des.requestBase()
	return des
}

// Design returns a copy of the design with its current elements.
func (d *Designer) Design() document.Design {
	out := d.design
	out.Colors = make(map[document.Part]string, len(d.design.Colors))
	for k, v := range d.design.Colors {
		out.Colors[k] = v
	}
	out.Elements = d.scene.Elements()
	return out
}

func (d *Designer) Selected() string { return d.m.selected }
func (d *Designer) Scene() *Scene    { return d.scene }

func (d *Designer) hat() document.HatType {
	if hat, ok := d.hats.Lookup(d.design.HatStyle); ok {
		return hat.WithDefaults()
	}
	return document.HatType{ID: d.design.HatStyle}.WithDefaults()
}

// Size returns the display canvas size of the current hat.
func (d *Designer) Size() (int, int) {
	hat := d.hat()
	return hat.Canvas.Width, hat.Canvas.Height
}

// DesignArea returns the printable rect of the current view.
func (d *Designer) DesignArea() document.Rect {
	return d.hat().DesignAreaFor(d.design.CurrentView)
}

func (d *Designer) baseKey() (bitmap.Key, string) {
	hat := d.hat()
	return bitmap.Key{HatStyle: d.design.HatStyle, View: d.design.CurrentView}, hat.Images.For(d.design.CurrentView)
}

// requestBase loads the photo of the current (hat, view) if it is missing
// or was cached from another URL.
func (d *Designer) requestBase() {
	key, src := d.baseKey()
	if src == "" {
		return
	}
	d.cache.Request(key, src)
}

// Loaded reports whether the base photo of the current view is available.
func (d *Designer) Loaded() bool {
	key, src := d.baseKey()
	_, ok := d.cache.Get(key, src)
	return ok
}

// SetHatStyle switches hats. Overlays are kept.
func (d *Designer) SetHatStyle(id string) bool {
	if id == "" || id == d.design.HatStyle {
		return false
	}
	d.design.HatStyle = id
	d.m.clearSelection()
	d.m.act = interaction{}
	d.requestBase()
	return true
}

// SetView switches between the front and back photo.
func (d *Designer) SetView(v document.View) bool {
	if v != document.ViewFront && v != document.ViewBack {
		return false
	}
	if v == d.design.CurrentView {
		return false
	}
	d.design.CurrentView = v
	d.m.clearSelection()
	d.m.act = interaction{}
	d.requestBase()
	return true
}

// Refresh asks for the base photo again, e.g. after the catalog changed.
func (d *Designer) Refresh() {
	d.requestBase()
}

// SetColor sets the color of one hat part. Invalid hex is ignored.
func (d *Designer) SetColor(part document.Part, hex string) bool {
	rgb, ok := pixel.ParseHex(hex)
	if !ok {
		slog.Debug("ignore invalid part color", "part", part, "color", hex)
		return false
	}
	if d.design.Colors[part] == rgb.Hex() {
		return false
	}
	d.design.Colors[part] = rgb.Hex()
	return true
}

// AddText places text in the middle of the design area and selects it.
func (d *Designer) AddText(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	cx, cy := d.DesignArea().Center()
	el := document.Element{
		ID:         typeid.NewElementID(),
		Type:       document.ElementText,
		Placement:  d.design.CurrentView,
		X:          cx,
		Y:          cy,
		Text:       text,
		FontFamily: d.opts.FontFamily,
		FontSize:   d.opts.FontSize,
		Color:      d.opts.Color,
	}
	d.scene.Add(el)
	d.m.selected = el.ID
	return el.ID
}

// AddLogo places a decoded logo, fitted into a share of the design area and
// centered in it, and selects it.
func (d *Designer) AddLogo(src string, img image.Image) string {
	b := img.Bounds()
	if b.Empty() {
		return ""
	}
	if src == "" {
		src = typeid.NewBitmapID()
	}
	d.logos[src] = img

	area := d.DesignArea()
	nw, nh := float64(b.Dx()), float64(b.Dy())
	scale := min(area.Width*d.opts.LogoFit/nw, area.Height*d.opts.LogoFit/nh)
	cx, cy := area.Center()

	el := document.Element{
		ID:          typeid.NewElementID(),
		Type:        document.ElementImage,
		Placement:   d.design.CurrentView,
		X:           cx,
		Y:           cy,
		Width:       nw * scale,
		Height:      nh * scale,
		Src:         src,
		AspectRatio: nw / nh,
	}
	d.scene.Add(el)
	d.m.selected = el.ID
	return el.ID
}

// ImportLogos uploads each file on its own. A failed file yields a result
// with Err and Message set and adds nothing to the scene.
func (d *Designer) ImportLogos(ctx context.Context, up Uploader, files []LogoFile) []ImportResult {
	results := make([]ImportResult, 0, len(files))
	for _, f := range files {
		res := ImportResult{Name: f.Name}

		img, _, err := bitmap.Decode(bytes.NewReader(f.Data))
		if err != nil {
			res.Err = err
			res.Message = fmt.Sprintf("%s is not a supported image", f.Name)
			slog.Warn("decode logo", "name", f.Name, "error", err)
			results = append(results, res)
			continue
		}

		a, err := up.Upload(ctx, f.Data, logoFolder)
		if err != nil {
			res.Err = err
			res.Message = fmt.Sprintf("Could not upload %s, please try again", f.Name)
			slog.Warn("upload logo", "name", f.Name, "error", err)
			results = append(results, res)
			continue
		}

		res.Asset = a
		res.ElementID = d.AddLogo(a.URL, img)
		results = append(results, res)
	}
	return results
}

// ReplaceImage swaps the bitmap of an image overlay, e.g. after color
// editing, keeping its placement.
func (d *Designer) ReplaceImage(id, src string, img image.Image) bool {
	el, ok := d.scene.Find(id)
	if !ok || el.Type != document.ElementImage || img == nil {
		return false
	}
	d.logos[src] = img
	return d.UpdateElement(id, func(el *document.Element) { el.Src = src })
}

// Bitmap returns the decoded image behind an overlay source.
func (d *Designer) Bitmap(src string) (image.Image, bool) {
	return d.logos.Bitmap(src)
}

// UpdateElement edits an element and commits the change.
func (d *Designer) UpdateElement(id string, fn func(*document.Element)) bool {
	ok := d.scene.Update(id, func(el *document.Element) {
		keepID, keepType, keepPlacement := el.ID, el.Type, el.Placement
		fn(el)
		el.ID, el.Type, el.Placement = keepID, keepType, keepPlacement
	})
	if !ok {
		return false
	}
	return d.scene.Commit()
}

// PatchElement applies the set fields of p.
func (d *Designer) PatchElement(id string, p ElementPatch) bool {
	return d.UpdateElement(id, func(el *document.Element) {
		if p.Text != nil && strings.TrimSpace(*p.Text) != "" {
			el.Text = *p.Text
		}
		if p.FontFamily != nil && *p.FontFamily != "" {
			el.FontFamily = *p.FontFamily
		}
		if p.FontSize != nil && *p.FontSize > 0 {
			el.FontSize = *p.FontSize
		}
		if p.Color != nil {
			if rgb, ok := pixel.ParseHex(*p.Color); ok {
				el.Color = rgb.Hex()
			}
		}
	})
}

func (d *Designer) PointerDown(p document.Point) bool {
	return d.m.pointerDown(p, d.design.CurrentView)
}

func (d *Designer) PointerMove(p document.Point) bool {
	return d.m.pointerMove(p, d.DesignArea())
}

func (d *Designer) PointerUp(document.Point) bool {
	return d.m.pointerUp()
}

func (d *Designer) DeleteSelected() bool { return d.m.deleteSelected() }
func (d *Designer) Undo() bool           { return d.m.undo() }
func (d *Designer) Redo() bool           { return d.m.redo() }

// partsOf returns the parts of hat in canonical order.
func partsOf(hat document.HatType) []document.Part {
	declared := make(map[document.Part]bool, len(hat.Parts))
	for _, p := range hat.Parts {
		declared[p] = true
	}
	parts := make([]document.Part, 0, len(document.Parts))
	for _, p := range document.Parts {
		if declared[p] {
			parts = append(parts, p)
		}
	}
	return parts
}

// recolored returns the base photo recolored with the design colors, or nil
// while it is not loaded. The result is recomputed from the cached original
// whenever colors, tolerance or the original change.
func (d *Designer) recolored(hat document.HatType) *image.NRGBA {
	key, src := d.baseKey()
	orig, ok := d.cache.Get(key, src)
	if !ok {
		return nil
	}

	tol := hat.Tolerance
	if tol <= 0 {
		tol = d.opts.Tolerance
	}
	parts := partsOf(hat)

	var sig strings.Builder
	sig.WriteString(strconv.FormatFloat(tol, 'f', -1, 64))
	for _, p := range parts {
		sig.WriteString("|" + d.design.Colors[p] + ">" + hat.MarkerColors[p])
	}
	if d.memo.orig == orig && d.memo.sig == sig.String() {
		return d.memo.buf
	}

	rules := pixel.BuildReplacements(parts, d.design.Colors, hat.MarkerColors)
	buf := pixel.ReplaceMarkerColors(orig, rules, tol)
	d.memo = recolorMemo{orig: orig, sig: sig.String(), buf: buf}
	return buf
}

func (d *Designer) paint() *Canvas {
	hat := d.hat()
	w, h := hat.Canvas.Width, hat.Canvas.Height
	full := document.Rect{Width: float64(w), Height: float64(h)}

	c := NewCanvas(w, h, d.opts.fonts())
	c.Fill(color.White)
	if buf := d.recolored(hat); buf != nil {
		c.DrawImage(buf, full)
	} else {
		c.FillRect(full, placeholderFill)
		c.Text("Loading...", "sans-serif", 16, placeholderInk, float64(w)/2, float64(h)/2)
	}

	c.StrokeRect(hat.DesignAreaFor(d.design.CurrentView), guideColor, 1, selectionDash)
	RenderElements(c, d.m.layout, d.scene.elements, d.design.CurrentView, d.logos)
	return c
}

// Render draws the display canvas: hat, design area guide, overlays of the
// current view and the selection.
func (d *Designer) Render() *image.RGBA {
	c := d.paint()
	if el, ok := d.m.selectedElement(); ok && visible(el, d.design.CurrentView) {
		drawSelection(c, d.m.layout, el)
	}
	return c.Image()
}

// ExportCanvas returns the display canvas as a PNG data URL.
func (d *Designer) ExportCanvas() (string, error) {
	return export.DataURL(d.Render())
}

// ExportPNG returns the display canvas as PNG bytes.
func (d *Designer) ExportPNG() ([]byte, error) {
	return export.PNG(d.Render())
}
