package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/hatworks/designer/internal/bitmap"
	"github.com/hatworks/designer/internal/document"
)

// PreviewRenderer draws designs outside the browser, for quote sheets. Base
// photos are shared through one cache; each render gets its own fonts so
// renders may run concurrently.
type PreviewRenderer struct {
	hats   HatCatalog
	loader bitmap.Loader
	cache  *bitmap.Cache
	opts   Options
}

func NewPreviewRenderer(ctx context.Context, hats HatCatalog, loader bitmap.Loader, opts Options) *PreviewRenderer {
	return &PreviewRenderer{
		hats:   hats,
		loader: loader,
		cache:  bitmap.NewCache(ctx, loader, nil),
		opts:   opts,
	}
}

// RenderDesign waits for the base photo and every overlay, then renders the
// design without selection. Images that fail to load render as placeholders.
func (p *PreviewRenderer) RenderDesign(ctx context.Context, d *document.Design) (image.Image, error) {
	hat, ok := p.hats.Lookup(d.HatStyle)
	if !ok {
		return nil, fmt.Errorf("render design: unknown hat style %q", d.HatStyle)
	}
	view := d.CurrentView
	if view != document.ViewBack {
		view = document.ViewFront
	}
	if src := hat.WithDefaults().Images.For(view); src != "" {
		key := bitmap.Key{HatStyle: d.HatStyle, View: view}
		if _, err := p.cache.Load(ctx, key, src); err != nil && !errors.Is(err, bitmap.ErrStale) {
			slog.Warn("render without hat photo", "hat", d.HatStyle, "view", view, "error", err)
		}
	}

	opts := p.opts
	fonts, err := NewFontSet()
	if err != nil {
		return nil, fmt.Errorf("render design: %w", err)
	}
	opts.Fonts = fonts

	des := NewDesigner(p.hats, p.cache, *d, opts)
	for _, el := range d.Elements {
		if el.Type != document.ElementImage || el.Placement != view {
			continue
		}
		if _, ok := des.logos[el.Src]; ok {
			continue
		}
		img, err := p.loader.Load(ctx, el.Src)
		if err != nil {
			slog.Warn("render without logo", "element", el.ID, "error", err)
			continue
		}
		des.logos[el.Src] = img
	}
	return des.Render(), nil
}
