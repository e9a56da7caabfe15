package export

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/hatworks/designer/internal/document"
)

func swatch() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+3] = 200, 255
	}
	return img
}

func TestDataURLRoundTrip(t *testing.T) {
	url, err := DataURL(swatch())
	if err != nil {
		t.Fatalf("DataURL: %v", err)
	}
	data, mediaType, err := DecodeDataURL(url)
	if err != nil {
		t.Fatalf("DecodeDataURL: %v", err)
	}
	if mediaType != "image/png" {
		t.Errorf("media type = %q", mediaType)
	}
	want, _ := PNG(swatch())
	if !bytes.Equal(want, data) {
		t.Error("payload differs from PNG encoding")
	}

	again, _ := DataURL(swatch())
	if again != url {
		t.Error("encoding the same image twice gave different data urls")
	}
}

func TestDecodeDataURLErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want error
	}{
		{"plain url", "https://example.com/a.png", ErrNotDataURL},
		{"not base64", "data:text/plain,hello", ErrNotDataURL},
		{"no comma", "data:image/png;base64", ErrNotDataURL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := DecodeDataURL(tt.in); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
	if _, _, err := DecodeDataURL("data:image/png;base64,***"); err == nil {
		t.Error("invalid base64 accepted")
	}
}

func TestWriteQuoteSheet(t *testing.T) {
	preview, err := PNG(swatch())
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	err = WriteQuoteSheet(&buf, QuoteSheet{
		DesignID: "design_1",
		HatName:  "Trucker",
		Parts:    []document.Part{document.PartFront, document.PartBrim},
		Colors:   map[document.Part]string{document.PartFront: "#ff0000", document.PartBrim: "#00ff00"},
		Preview:  preview,
		Notes:    "Rush order, café logo",
		Created:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("WriteQuoteSheet: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Error("output is not a PDF")
	}
}

func TestWriteSketchPDF(t *testing.T) {
	pic, _ := PNG(swatch())
	var buf bytes.Buffer
	err := WriteSketchPDF(&buf, Sketch{
		Width:  300,
		Height: 200,
		Marks: []Mark{
			Stroke{Points: []document.Point{{X: 10, Y: 10}, {X: 50, Y: 60}}, Color: "#000000", Width: 3},
			Stroke{Points: []document.Point{{X: 80, Y: 80}}, Color: "#ff0000", Width: 6},
			Label{Text: "hi", X: 100, Y: 100, Size: 24, Color: "#0000ff", Family: "bold"},
			Picture{PNG: pic, Rect: document.Rect{X: 150, Y: 20, Width: 40, Height: 40}},
		},
	})
	if err != nil {
		t.Fatalf("WriteSketchPDF: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Error("output is not a PDF")
	}
}

type fakeRenderer struct {
	err error
}

func (f fakeRenderer) RenderDesign(ctx context.Context, d *document.Design) (image.Image, error) {
	if f.err != nil {
		return nil, f.err
	}
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			img.Set(x, y, color.White)
		}
	}
	return img, nil
}

type hats map[string]document.HatType

func (h hats) Lookup(id string) (document.HatType, bool) {
	hat, ok := h[id]
	return hat, ok
}

func TestRenderHandler(t *testing.T) {
	catalog := hats{"trucker": {ID: "trucker", Name: "Trucker", Parts: []document.Part{document.PartFront}}}

	tests := []struct {
		name        string
		renderer    Renderer
		body        string
		wantStatus  int
		wantType    string
		wantPrefix  string
		wantDispose string
	}{
		{
			name:        "png default",
			renderer:    fakeRenderer{},
			body:        `{"design":{"id":"design_1","hatStyle":"trucker"}}`,
			wantStatus:  http.StatusOK,
			wantType:    "image/png",
			wantPrefix:  "\x89PNG",
			wantDispose: `attachment; filename="design_1.png"`,
		},
		{
			name:        "pdf",
			renderer:    fakeRenderer{},
			body:        `{"design":{"id":"a/b","hatStyle":"trucker"},"format":"pdf","notes":"hi"}`,
			wantStatus:  http.StatusOK,
			wantType:    "application/pdf",
			wantPrefix:  "%PDF",
			wantDispose: `attachment; filename="a-b.pdf"`,
		},
		{name: "bad format", renderer: fakeRenderer{}, body: `{"design":{"hatStyle":"trucker"},"format":"gif"}`, wantStatus: http.StatusBadRequest},
		{name: "unknown hat", renderer: fakeRenderer{}, body: `{"design":{"hatStyle":"fedora"}}`, wantStatus: http.StatusNotFound},
		{name: "bad json", renderer: fakeRenderer{}, body: `{`, wantStatus: http.StatusBadRequest},
		{name: "render error", renderer: fakeRenderer{err: errors.New("boom")}, body: `{"design":{"hatStyle":"trucker"}}`, wantStatus: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(tt.renderer, catalog)
			h.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }

			rec := httptest.NewRecorder()
			h.Render(rec, httptest.NewRequest(http.MethodPost, "/api/render", strings.NewReader(tt.body)))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			got := struct{ Type, Dispose string }{rec.Header().Get("Content-Type"), rec.Header().Get("Content-Disposition")}
			want := struct{ Type, Dispose string }{tt.wantType, tt.wantDispose}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("headers mismatch (-want +got):\n%s", diff)
			}
			if !strings.HasPrefix(rec.Body.String(), tt.wantPrefix) {
				t.Errorf("body starts with %q", rec.Body.String()[:min(8, rec.Body.Len())])
			}
		})
	}
}
