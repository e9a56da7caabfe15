// Package bitmap loads and caches decoded images. Hat photos are cached as
// original pixel buffers; recoloring always reads from them and never writes.
package bitmap

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/hatworks/designer/internal/export"
)

const maxImageSize = 20 << 20 // 20MB

var ErrEmptySource = errors.New("empty image source")

// Loader decodes the image behind a URL, data URL or path.
type Loader interface {
	Load(ctx context.Context, src string) (image.Image, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, src string) (image.Image, error)

func (f LoaderFunc) Load(ctx context.Context, src string) (image.Image, error) {
	return f(ctx, src)
}

// Decode reads any registered format: png, jpeg, gif, webp, bmp, tiff.
func Decode(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(io.LimitReader(r, maxImageSize))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	return img, format, nil
}

// HTTPLoader loads data URLs, local directories mounted under a URL prefix,
// and anything else over HTTP.
type HTTPLoader struct {
	client *http.Client
	base   *url.URL
	dirs   map[string]string
}

// NewHTTPLoader resolves relative sources against baseURL (may be empty).
func NewHTTPLoader(client *http.Client, baseURL string) (*HTTPLoader, error) {
	if client == nil {
		client = http.DefaultClient
	}
	l := &HTTPLoader{client: client, dirs: make(map[string]string)}
	if baseURL != "" {
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("parse base url: %w", err)
		}
		l.base = u
	}
	return l, nil
}

// Mount serves URL paths under prefix from dir instead of fetching them.
func (l *HTTPLoader) Mount(prefix, dir string) {
	l.dirs[strings.TrimSuffix(prefix, "/")+"/"] = dir
}

func (l *HTTPLoader) Load(ctx context.Context, src string) (image.Image, error) {
	if src == "" {
		return nil, ErrEmptySource
	}
	if export.IsDataURL(src) {
		data, _, err := export.DecodeDataURL(src)
		if err != nil {
			return nil, err
		}
		img, _, err := Decode(bytes.NewReader(data))
		return img, err
	}

	u, err := url.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse image url: %w", err)
	}
	if !u.IsAbs() {
		if f, ok := l.mounted(u.Path); ok {
			return l.loadFile(f)
		}
		if l.base != nil {
			u = l.base.ResolveReference(u)
		}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return l.loadFile(src)
	}
	return l.fetch(ctx, u.String())
}

func (l *HTTPLoader) mounted(p string) (string, bool) {
	clean := path.Clean("/" + p)
	for prefix, dir := range l.dirs {
		if strings.HasPrefix(clean, prefix) {
			return filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(clean, prefix))), true
		}
	}
	return "", false
}

func (l *HTTPLoader) loadFile(name string) (image.Image, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()
	img, _, err := Decode(f)
	return img, err
}

func (l *HTTPLoader) fetch(ctx context.Context, src string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, fmt.Errorf("build image request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch image %s: status %d", src, resp.StatusCode)
	}
	img, _, err := Decode(resp.Body)
	return img, err
}
