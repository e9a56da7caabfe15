// Package catalog holds the hat-type catalog: which photos, marker colors
// and design areas each hat style uses.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/hatworks/designer/internal/document"
)

var ErrUnknownHat = errors.New("unknown hat style")

// Source loads hat types from somewhere.
type Source interface {
	HatTypes(ctx context.Context) ([]document.HatType, error)
}

// Catalog is an in-memory snapshot of a Source with defaults applied.
type Catalog struct {
	source Source

	mu   sync.RWMutex
	hats map[string]document.HatType
}

func New(source Source) *Catalog {
	return &Catalog{source: source, hats: map[string]document.HatType{}}
}

// Load creates a catalog and reads source once.
func Load(ctx context.Context, source Source) (*Catalog, error) {
	c := New(source)
	if err := c.Reload(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload replaces the snapshot. Entries without an id are skipped.
func (c *Catalog) Reload(ctx context.Context) error {
	c.mu.RLock()
	source := c.source
	c.mu.RUnlock()
	return c.ReloadFrom(ctx, source)
}

// ReloadFrom replaces the snapshot with the contents of source, which
// becomes the source of later reloads.
func (c *Catalog) ReloadFrom(ctx context.Context, source Source) error {
	list, err := source.HatTypes(ctx)
	if err != nil {
		return fmt.Errorf("load hat types: %w", err)
	}
	hats := make(map[string]document.HatType, len(list))
	for _, h := range list {
		if h.ID == "" {
			slog.Warn("skip hat type without id", "name", h.Name)
			continue
		}
		hats[h.ID] = h.WithDefaults()
	}

	c.mu.Lock()
	c.source = source
	c.hats = hats
	c.mu.Unlock()
	slog.Info("hat catalog loaded", "count", len(hats))
	return nil
}

// Lookup returns a hat type by id.
func (c *Catalog) Lookup(id string) (document.HatType, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	h, ok := c.hats[id]
	return h, ok
}

// Get is Lookup with ErrUnknownHat.
func (c *Catalog) Get(id string) (document.HatType, error) {
	h, ok := c.Lookup(id)
	if !ok {
		return document.HatType{}, fmt.Errorf("%w: %s", ErrUnknownHat, id)
	}
	return h, nil
}

// List returns every hat type ordered by id.
func (c *Catalog) List() []document.HatType {
	c.mu.RLock()
	list := make([]document.HatType, 0, len(c.hats))
	for _, h := range c.hats {
		list = append(list, h)
	}
	c.mu.RUnlock()

	slices.SortFunc(list, func(a, b document.HatType) int {
		return strings.Compare(a.ID, b.ID)
	})
	return list
}

// Static serves a fixed set, e.g. document.NewSampleCatalog().
type Static map[string]document.HatType

func (s Static) HatTypes(context.Context) ([]document.HatType, error) {
	list := make([]document.HatType, 0, len(s))
	for id, h := range s {
		if h.ID == "" {
			h.ID = id
		}
		list = append(list, h)
	}
	return list, nil
}

// FileSource reads a JSON file holding either an array of hat types or an
// object keyed by hat id.
type FileSource struct {
	Path string
}

func (f FileSource) HatTypes(context.Context) ([]document.HatType, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var list []document.HatType
	if err := json.Unmarshal(data, &list); err == nil {
		return list, nil
	}

	var byID map[string]document.HatType
	if err := json.Unmarshal(data, &byID); err != nil {
		return nil, fmt.Errorf("parse catalog file: %w", err)
	}
	return Static(byID).HatTypes(context.Background())
}

// HTTPSource reads the JSON served by Handler.List.
type HTTPSource struct {
	Client *http.Client
	URL    string
}

func (s HTTPSource) HatTypes(ctx context.Context) ([]document.HatType, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create catalog request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch catalog: status %d", resp.StatusCode)
	}

	var list []document.HatType
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return list, nil
}
