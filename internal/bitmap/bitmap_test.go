package bitmap

import (
	"context"
	"errors"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hatworks/designer/internal/document"
	"github.com/hatworks/designer/internal/export"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

var frontKey = Key{HatStyle: "trucker", View: document.ViewFront}

func TestCacheRejectsStaleDecode(t *testing.T) {
	c := NewCache(context.Background(), nil, nil)
	red := solid(2, 2, color.NRGBA{R: 255, A: 255})
	blue := solid(2, 2, color.NRGBA{B: 255, A: 255})

	c.begin(frontKey, "old.png")
	c.begin(frontKey, "new.png")

	if _, err := c.complete(frontKey, "old.png", red, nil); !errors.Is(err, ErrStale) {
		t.Fatalf("old decode error = %v, want ErrStale", err)
	}
	if _, ok := c.Get(frontKey, "old.png"); ok {
		t.Error("stale decode was stored")
	}

	if _, err := c.complete(frontKey, "new.png", blue, nil); err != nil {
		t.Fatalf("new decode: %v", err)
	}
	buf, ok := c.Get(frontKey, "new.png")
	if !ok {
		t.Fatal("latest decode not stored")
	}
	if got := buf.NRGBAAt(0, 0); got != (color.NRGBA{B: 255, A: 255}) {
		t.Errorf("cached pixel = %v, want blue", got)
	}
}

func TestCacheReturnToCachedSourceWins(t *testing.T) {
	c := NewCache(context.Background(), nil, nil)
	red := solid(2, 2, color.NRGBA{R: 255, A: 255})
	blue := solid(2, 2, color.NRGBA{B: 255, A: 255})

	c.begin(frontKey, "a.png")
	if _, err := c.complete(frontKey, "a.png", red, nil); err != nil {
		t.Fatalf("a decode: %v", err)
	}
	if !c.begin(frontKey, "b.png") {
		t.Fatal("b.png did not start loading")
	}
	if c.begin(frontKey, "a.png") {
		t.Error("a.png is cached but started loading again")
	}

	if _, err := c.complete(frontKey, "b.png", blue, nil); !errors.Is(err, ErrStale) {
		t.Fatalf("late b decode error = %v, want ErrStale", err)
	}
	buf, ok := c.Get(frontKey, "a.png")
	if !ok {
		t.Fatal("a.png was overwritten by the late b.png decode")
	}
	if got := buf.NRGBAAt(0, 0); got != (color.NRGBA{R: 255, A: 255}) {
		t.Errorf("cached pixel = %v, want red", got)
	}
	if _, ok := c.Get(frontKey, "b.png"); ok {
		t.Error("stale b.png was stored")
	}
}

func TestCacheErrorDropsOldBuffer(t *testing.T) {
	failing := LoaderFunc(func(ctx context.Context, src string) (image.Image, error) {
		return nil, errors.New("404")
	})
	c := NewCache(context.Background(), failing, nil)
	c.begin(frontKey, "a.png")
	c.complete(frontKey, "a.png", solid(1, 1, color.NRGBA{A: 255}), nil)

	c.begin(frontKey, "b.png")
	if _, err := c.complete(frontKey, "b.png", nil, errors.New("404")); err == nil {
		t.Fatal("expected error")
	}
	if _, ok := c.Get(frontKey, "a.png"); ok {
		t.Error("buffer of the previous source survived a failed load")
	}
	if !c.Request(frontKey, "b.png") {
		t.Error("failed source cannot be requested again")
	}
}

func TestCacheRequestCallsOnReady(t *testing.T) {
	loads := 0
	loader := LoaderFunc(func(ctx context.Context, src string) (image.Image, error) {
		loads++
		return solid(3, 3, color.NRGBA{G: 255, A: 255}), nil
	})
	ready := make(chan Key, 1)
	c := NewCache(context.Background(), loader, func(k Key) { ready <- k })

	if !c.Request(frontKey, "front.png") {
		t.Fatal("Request did not start a load")
	}
	select {
	case k := <-ready:
		if k != frontKey {
			t.Errorf("onReady key = %v", k)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("onReady not called")
	}

	if c.Request(frontKey, "front.png") {
		t.Error("cached source loaded again")
	}
	if loads != 1 {
		t.Errorf("loader called %d times, want 1", loads)
	}
}

func TestCacheLoadIsSynchronous(t *testing.T) {
	loader := LoaderFunc(func(ctx context.Context, src string) (image.Image, error) {
		return solid(4, 2, color.NRGBA{A: 255}), nil
	})
	c := NewCache(context.Background(), loader, nil)
	buf, err := c.Load(context.Background(), frontKey, "x.png")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if buf.Bounds().Dx() != 4 {
		t.Errorf("width = %d, want 4", buf.Bounds().Dx())
	}

	c.Forget(frontKey)
	if _, ok := c.Get(frontKey, "x.png"); ok {
		t.Error("Forget kept the buffer")
	}
}

func TestHTTPLoaderSources(t *testing.T) {
	img := solid(5, 3, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	data, err := export.PNG(img)
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	os.MkdirAll(filepath.Join(dir, "hats"), 0o755)
	if err := os.WriteFile(filepath.Join(dir, "hats", "cap.png"), data, 0o644); err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/remote.png" {
			http.NotFound(w, r)
			return
		}
		w.Write(data)
	}))
	defer srv.Close()

	l, err := NewHTTPLoader(srv.Client(), srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	l.Mount("/assets", dir)

	url, _ := export.DataURL(img)
	tests := []struct {
		name    string
		src     string
		wantErr bool
	}{
		{"data url", url, false},
		{"mounted dir", "/assets/hats/cap.png", false},
		{"relative to base", "/remote.png", false},
		{"absolute", srv.URL + "/remote.png", false},
		{"missing", "/nothing.png", true},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := l.Load(context.Background(), tt.src)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got.Bounds() != img.Bounds() {
				t.Errorf("bounds = %v, want %v", got.Bounds(), img.Bounds())
			}
		})
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, _, err := Decode(strings.NewReader("not an image")); err == nil {
		t.Error("expected error")
	}
}
