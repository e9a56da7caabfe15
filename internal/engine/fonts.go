package engine

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// familyAliases maps CSS family names offered by the editors onto the
// embedded Go fonts. Anything unknown renders with Go Regular.
var familyAliases = map[string]string{
	"arial":           "regular",
	"helvetica":       "regular",
	"verdana":         "regular",
	"sans-serif":      "regular",
	"impact":          "bold",
	"arial black":     "bold",
	"georgia":         "medium",
	"times new roman": "medium",
	"serif":           "medium",
	"courier new":     "mono",
	"monospace":       "mono",
}

type faceKey struct {
	name string
	size float64
}

// FontSet resolves CSS font families to font faces cached per (font, size).
// The returned faces keep glyph buffers, so a FontSet must only draw from
// one goroutine at a time; concurrent renders each get their own set.
type FontSet struct {
	mu    sync.Mutex
	fonts map[string]*opentype.Font
	faces map[faceKey]font.Face
}

// NewFontSet parses the embedded Go fonts.
func NewFontSet() (*FontSet, error) {
	sources := map[string][]byte{
		"regular": goregular.TTF,
		"bold":    gobold.TTF,
		"medium":  gomedium.TTF,
		"mono":    gomono.TTF,
	}
	fs := &FontSet{
		fonts: make(map[string]*opentype.Font, len(sources)),
		faces: make(map[faceKey]font.Face),
	}
	for name, ttf := range sources {
		f, err := opentype.Parse(ttf)
		if err != nil {
			return nil, fmt.Errorf("parse font %s: %w", name, err)
		}
		fs.fonts[name] = f
	}
	return fs, nil
}

var sharedFonts = sync.OnceValue(func() *FontSet {
	fs, err := NewFontSet()
	if err != nil {
		panic(err)
	}
	return fs
})

// resolve picks the first family of a CSS font stack that we know.
func resolve(family string) string {
	for _, part := range strings.Split(family, ",") {
		name := strings.ToLower(strings.Trim(strings.TrimSpace(part), `"'`))
		if alias, ok := familyAliases[name]; ok {
			return alias
		}
	}
	return "regular"
}

// Face returns a face for family at size pixels.
func (fs *FontSet) Face(family string, size float64) font.Face {
	if size <= 0 {
		size = 1
	}
	key := faceKey{name: resolve(family), size: math.Round(size*4) / 4}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	if face, ok := fs.faces[key]; ok {
		return face
	}
	face, err := opentype.NewFace(fs.fonts[key.name], &opentype.FaceOptions{
		Size:    key.size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		// Only fails for invalid sizes, which are rounded away above.
		panic(fmt.Errorf("new face %s %v: %w", key.name, key.size, err))
	}
	fs.faces[key] = face
	return face
}

// MeasureText implements TextMeasurer.
func (fs *FontSet) MeasureText(text, family string, size float64) float64 {
	adv := font.MeasureString(fs.Face(family, size), text)
	return float64(adv) / 64
}
