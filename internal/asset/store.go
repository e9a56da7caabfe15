// Package asset is a local stand-in for the image host: uploads are decoded,
// stored as PNG under a typeid name and served with long cache headers.
package asset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/hatworks/designer/internal/bitmap"
	"github.com/hatworks/designer/internal/export"
	"github.com/hatworks/designer/internal/pixel"
	"github.com/hatworks/designer/internal/typeid"
)

const (
	defaultFolder = "uploads"

	// TransformRemoveBackground is the query value that mattes out the
	// corner color of a served image.
	TransformRemoveBackground = "remove-bg"

	RemoveBackgroundTolerance = 30.0
)

var (
	ErrNotFound    = errors.New("asset not found")
	ErrUnsupported = errors.New("unsupported image")
	ErrInvalidID   = errors.New("invalid asset id")
)

// Asset describes a stored image.
type Asset struct {
	PublicID string `json:"publicId"`
	URL      string `json:"url"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Format   string `json:"format"`
}

// Store keeps assets in a directory and builds URLs under baseURL.
type Store struct {
	dir     string
	baseURL string
}

// NewStore creates dir if needed.
func NewStore(dir, baseURL string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create asset dir: %w", err)
	}
	return &Store{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Dir returns the directory assets are stored in.
func (s *Store) Dir() string { return s.dir }

// cleanFolder keeps lower-case letters, digits, '-' and '_' in each segment.
func cleanFolder(folder string) string {
	var segs []string
	for _, seg := range strings.Split(folder, "/") {
		seg = strings.Map(func(r rune) rune {
			if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
				return r
			}
			if r >= 'A' && r <= 'Z' {
				return r + ('a' - 'A')
			}
			return -1
		}, seg)
		if seg != "" {
			segs = append(segs, seg)
		}
	}
	if len(segs) == 0 {
		return defaultFolder
	}
	return strings.Join(segs, "/")
}

// Upload decodes data and stores it as PNG in folder.
func (s *Store) Upload(ctx context.Context, data []byte, folder string) (*Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, _, err := bitmap.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	return s.save(img, cleanFolder(folder))
}

// UploadBase64 accepts a data URL or bare base64.
func (s *Store) UploadBase64(ctx context.Context, encoded, folder string) (*Asset, error) {
	if !export.IsDataURL(encoded) {
		encoded = "data:application/octet-stream;base64," + encoded
	}
	data, _, err := export.DecodeDataURL(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	return s.Upload(ctx, data, folder)
}

func (s *Store) save(img image.Image, folder string) (*Asset, error) {
	publicID := path.Join(folder, typeid.NewAssetID())
	filePath := s.filePath(publicID)
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, fmt.Errorf("create asset folder: %w", err)
	}

	out, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("create asset file: %w", err)
	}
	defer out.Close()

	if err := png.Encode(out, img); err != nil {
		os.Remove(filePath)
		return nil, fmt.Errorf("encode png: %w", err)
	}

	b := img.Bounds()
	return &Asset{
		PublicID: publicID,
		URL:      s.URL(publicID),
		Width:    b.Dx(),
		Height:   b.Dy(),
		Format:   "png",
	}, nil
}

// URL returns the public URL of an asset.
func (s *Store) URL(publicID string) string {
	return s.baseURL + "/" + publicID + ".png"
}

func (s *Store) filePath(publicID string) string {
	return filepath.Join(s.dir, filepath.FromSlash(publicID)+".png")
}

// validate checks that publicID is folder segments followed by an asset id.
func validate(publicID string) error {
	folder, id := path.Split(publicID)
	if err := typeid.Validate(id, typeid.PrefixAsset); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidID, err)
	}
	if folder == "" || cleanFolder(folder) != strings.TrimSuffix(folder, "/") {
		return fmt.Errorf("%w: bad folder in %q", ErrInvalidID, publicID)
	}
	return nil
}

// Delete removes an asset.
func (s *Store) Delete(publicID string) error {
	if err := validate(publicID); err != nil {
		return err
	}
	if err := os.Remove(s.filePath(publicID)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, publicID)
		}
		return fmt.Errorf("delete asset: %w", err)
	}
	return nil
}

// RemoveBackgroundURL returns the URL of an asset with its background
// matted out on delivery.
func RemoveBackgroundURL(assetURL string) string {
	sep := "?"
	if strings.Contains(assetURL, "?") {
		sep = "&"
	}
	return assetURL + sep + "transform=" + TransformRemoveBackground
}

// RemoveBackgroundURL is RemoveBackgroundURL for a stored asset.
func (s *Store) RemoveBackgroundURL(publicID string) string {
	return RemoveBackgroundURL(s.URL(publicID))
}

// Serve returns an http.Handler that serves stored asset files with caching
// headers and applies the remove-background transform on request.
func (s *Store) Serve() http.Handler {
	fs := http.FileServer(http.Dir(s.dir))
	return http.StripPrefix(s.baseURL+"/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Asset IDs are unique, so files are immutable
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		if r.URL.Query().Get("transform") == TransformRemoveBackground {
			s.serveMatted(w, r)
			return
		}
		fs.ServeHTTP(w, r)
	}))
}

func (s *Store) serveMatted(w http.ResponseWriter, r *http.Request) {
	name := path.Clean("/" + r.URL.Path)
	f, err := os.Open(filepath.Join(s.dir, filepath.FromSlash(name)))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	img, _, err := bitmap.Decode(f)
	if err != nil {
		slog.Warn("decode asset for transform", "path", name, "error", err)
		http.Error(w, "unsupported image", http.StatusUnprocessableEntity)
		return
	}
	buf := pixel.FromImage(img)
	matted := pixel.RemoveBackgroundByColor(buf, pixel.CornerColor(buf), RemoveBackgroundTolerance)

	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, matted); err != nil {
		slog.Error("encode transformed asset", "path", name, "error", err)
	}
}
