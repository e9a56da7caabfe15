package bitmap

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"sync"

	"github.com/hatworks/designer/internal/document"
	"github.com/hatworks/designer/internal/pixel"
)

// ErrStale is returned for a decode that finished after a newer source was
// requested for the same key. Its pixels are discarded.
var ErrStale = errors.New("stale image decode")

// Key identifies one base photo: a hat style seen from one side.
type Key struct {
	HatStyle string
	View     document.View
}

type entry struct {
	src string
	buf *image.NRGBA
}

// Cache holds the original pixel buffer of each (hat style, view) together
// with the source it was decoded from. Only the most recently requested
// source of a key may be stored.
type Cache struct {
	ctx     context.Context
	loader  Loader
	onReady func(Key)

	mu      sync.Mutex
	entries map[Key]entry
	pending map[Key]string
}

// NewCache uses ctx for background loads. onReady, if set, is called after
// a buffer was stored.
func NewCache(ctx context.Context, loader Loader, onReady func(Key)) *Cache {
	return &Cache{
		ctx:     ctx,
		loader:  loader,
		onReady: onReady,
		entries: make(map[Key]entry),
		pending: make(map[Key]string),
	}
}

// Get returns the buffer cached for key if it was decoded from src. The
// buffer is shared and must not be modified.
func (c *Cache) Get(key Key, src string) (*image.NRGBA, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || e.src != src {
		return nil, false
	}
	return e.buf, true
}

// Request starts a background load of src for key unless it is cached or
// already loading. It reports whether a load was started.
func (c *Cache) Request(key Key, src string) bool {
	if !c.begin(key, src) {
		return false
	}
	go c.load(c.ctx, key, src)
	return true
}

// Load decodes src for key and waits for it. A cached buffer for the same
// source is returned as is.
func (c *Cache) Load(ctx context.Context, key Key, src string) (*image.NRGBA, error) {
	if buf, ok := c.Get(key, src); ok {
		return buf, nil
	}
	c.mu.Lock()
	c.pending[key] = src
	c.mu.Unlock()
	return c.load(ctx, key, src)
}

// begin marks src as the latest request for key.
func (c *Cache) begin(key Key, src string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok && e.src == src {
		// Back to the cached source: a load still running for another
		// source is now stale.
		delete(c.pending, key)
		return false
	}
	if c.pending[key] == src {
		return false
	}
	c.pending[key] = src
	return true
}

func (c *Cache) load(ctx context.Context, key Key, src string) (*image.NRGBA, error) {
	img, err := c.loader.Load(ctx, src)
	return c.complete(key, src, img, err)
}

// complete stores a finished decode if src is still the latest request.
func (c *Cache) complete(key Key, src string, img image.Image, err error) (*image.NRGBA, error) {
	c.mu.Lock()
	if c.pending[key] != src {
		c.mu.Unlock()
		slog.Debug("discard stale image", "hat", key.HatStyle, "view", key.View, "src", src)
		return nil, ErrStale
	}
	delete(c.pending, key)

	if err != nil {
		// Drop any buffer of an older source so the placeholder shows.
		delete(c.entries, key)
		c.mu.Unlock()
		slog.Warn("load hat image", "hat", key.HatStyle, "view", key.View, "src", src, "error", err)
		return nil, err
	}
	buf := pixel.FromImage(img)
	c.entries[key] = entry{src: src, buf: buf}
	c.mu.Unlock()

	if c.onReady != nil {
		c.onReady(key)
	}
	return buf, nil
}

// Forget drops a key and ignores any load still running for it.
func (c *Cache) Forget(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	delete(c.pending, key)
}
