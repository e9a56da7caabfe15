package engine

import (
	"image"
	"slices"

	"github.com/hatworks/designer/internal/export"
	"github.com/hatworks/designer/internal/pixel"
)

const (
	DefaultReplaceTolerance    = 40.0
	DefaultBackgroundTolerance = 30.0
)

// EditorSettings is everything the logo color editor applies on top of the
// original image.
type EditorSettings struct {
	RemoveBackground    bool    `json:"removeBackground"`
	BackgroundColor     string  `json:"backgroundColor,omitempty"`
	BackgroundTolerance float64 `json:"backgroundTolerance"`

	// Replacements maps a palette hex to its new color.
	Replacements     map[string]string `json:"replacements"`
	ReplaceTolerance float64           `json:"replaceTolerance"`

	Filters pixel.Filters `json:"filters"`
}

func DefaultEditorSettings() EditorSettings {
	return EditorSettings{
		BackgroundTolerance: DefaultBackgroundTolerance,
		Replacements:        map[string]string{},
		ReplaceTolerance:    DefaultReplaceTolerance,
		Filters:             pixel.DefaultFilters(),
	}
}

func (s EditorSettings) clone() EditorSettings {
	repl := make(map[string]string, len(s.Replacements))
	for k, v := range s.Replacements {
		repl[k] = v
	}
	s.Replacements = repl
	return s
}

// ColorEditor edits an uploaded logo. Every render starts again from the
// original pixels: background removal, then color replacement, then
// filters.
type ColorEditor struct {
	original *image.NRGBA
	palette  []pixel.Swatch
	settings EditorSettings
}

// NewColorEditor decodes img into an original buffer and extracts its
// palette.
func NewColorEditor(img image.Image) *ColorEditor {
	orig := pixel.FromImage(img)
	return &ColorEditor{
		original: orig,
		palette:  pixel.ExtractPalette(orig, pixel.DefaultPaletteSize),
		settings: DefaultEditorSettings(),
	}
}

// Palette returns the most common colors of the original.
func (e *ColorEditor) Palette() []pixel.Swatch {
	return slices.Clone(e.palette)
}

func (e *ColorEditor) Settings() EditorSettings {
	return e.settings.clone()
}

// SetSettings replaces all settings at once. Zero tolerances fall back to
// the defaults.
func (e *ColorEditor) SetSettings(s EditorSettings) {
	s = s.clone()
	if s.BackgroundTolerance <= 0 {
		s.BackgroundTolerance = DefaultBackgroundTolerance
	}
	if s.ReplaceTolerance <= 0 {
		s.ReplaceTolerance = DefaultReplaceTolerance
	}
	if s.Filters == (pixel.Filters{}) {
		s.Filters = pixel.DefaultFilters()
	}
	e.settings = s
}

// ToggleBackground removes hex as background, or turns removal off when hex
// is already the removed color.
func (e *ColorEditor) ToggleBackground(hex string) bool {
	rgb, ok := pixel.ParseHex(hex)
	if !ok {
		return false
	}
	if e.settings.RemoveBackground && e.settings.BackgroundColor == rgb.Hex() {
		e.settings.RemoveBackground = false
		return true
	}
	e.settings.RemoveBackground = true
	e.settings.BackgroundColor = rgb.Hex()
	return true
}

func (e *ColorEditor) SetBackgroundTolerance(t float64) {
	if t >= 0 {
		e.settings.BackgroundTolerance = t
	}
}

func (e *ColorEditor) SetReplaceTolerance(t float64) {
	if t >= 0 {
		e.settings.ReplaceTolerance = t
	}
}

// SetReplacement recolors pixels near from with to.
func (e *ColorEditor) SetReplacement(from, to string) bool {
	f, okF := pixel.ParseHex(from)
	t, okT := pixel.ParseHex(to)
	if !okF || !okT {
		return false
	}
	e.settings.Replacements[f.Hex()] = t.Hex()
	return true
}

func (e *ColorEditor) ClearReplacement(from string) {
	if f, ok := pixel.ParseHex(from); ok {
		delete(e.settings.Replacements, f.Hex())
	}
}

func (e *ColorEditor) SetFilters(f pixel.Filters) {
	e.settings.Filters = f
}

// Reset restores the default settings. The original is kept.
func (e *ColorEditor) Reset() {
	e.settings = DefaultEditorSettings()
}

// replacementOrder visits palette colors first, most common first, then any
// other keys in sorted order.
func (e *ColorEditor) replacementOrder() []string {
	order := make([]string, 0, len(e.settings.Replacements))
	seen := make(map[string]bool, len(e.settings.Replacements))
	for _, sw := range e.palette {
		if _, ok := e.settings.Replacements[sw.Hex]; ok {
			order = append(order, sw.Hex)
			seen[sw.Hex] = true
		}
	}
	var rest []string
	for k := range e.settings.Replacements {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	slices.Sort(rest)
	return append(order, rest...)
}

// Render computes the edited image from the original.
func (e *ColorEditor) Render() *image.NRGBA {
	buf := e.original
	s := e.settings
	if s.RemoveBackground {
		if bg, ok := pixel.ParseHex(s.BackgroundColor); ok {
			buf = pixel.RemoveBackgroundByColor(buf, bg, s.BackgroundTolerance)
		}
	}
	if len(s.Replacements) > 0 {
		buf = pixel.ReplaceColors(buf, e.replacementOrder(), s.Replacements, s.ReplaceTolerance)
	}
	return pixel.ApplyFilters(buf, s.Filters)
}

// Apply returns the edited image as a PNG data URL.
func (e *ColorEditor) Apply() (string, error) {
	return export.DataURL(e.Render())
}
