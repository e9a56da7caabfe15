package engine

import "github.com/hatworks/designer/internal/document"

// Options are the tunables shared by the renderers.
type Options struct {
	// Tolerance is the marker match distance used when a hat type does not
	// set its own.
	Tolerance float64

	HandleRadius float64
	MinImageSize float64
	HitSlop      float64

	// ImportFit is the share of the canvas an imported whiteboard image may
	// cover.
	ImportFit float64

	// LogoFit is the share of the design area a new logo may cover.
	LogoFit float64

	StrokeWidth float64
	FontFamily  string
	FontSize    float64
	Color       string

	// Fonts is shared by every canvas of a renderer. Nil uses the process
	// wide set.
	Fonts *FontSet
}

func DefaultOptions() Options {
	return Options{
		Tolerance:    document.DefaultTolerance,
		HandleRadius: 12,
		MinImageSize: 30,
		HitSlop:      4,
		ImportFit:    0.8,
		LogoFit:      0.5,
		StrokeWidth:  document.DefaultStrokeWidth,
		FontFamily:   document.DefaultFontFamily,
		FontSize:     document.DefaultFontSize,
		Color:        document.DefaultElementColor,
	}
}

func (o Options) fonts() *FontSet {
	if o.Fonts != nil {
		return o.Fonts
	}
	return sharedFonts()
}

func (o Options) layout(anchor Anchor) Layout {
	return Layout{
		Anchor:       anchor,
		Measurer:     o.fonts(),
		HandleRadius: o.HandleRadius,
		HitSlop:      o.HitSlop,
	}
}
