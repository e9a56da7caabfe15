package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hatworks/designer/internal/document"
)

const maxRequestSize = 15 << 20 // 15MB, designs may embed logo data URLs

// Renderer composites a design the way the designer displays it.
type Renderer interface {
	RenderDesign(ctx context.Context, d *document.Design) (image.Image, error)
}

// HatLookup resolves hat styles.
type HatLookup interface {
	Lookup(id string) (document.HatType, bool)
}

// RenderRequest is the body of POST /api/render.
type RenderRequest struct {
	Design document.Design `json:"design"`
	Format string          `json:"format"`
	Notes  string          `json:"notes,omitempty"`
}

// Handler renders design previews and quote sheets on the server.
type Handler struct {
	renderer Renderer
	hats     HatLookup
	now      func() time.Time
}

func NewHandler(renderer Renderer, hats HatLookup) *Handler {
	return &Handler{renderer: renderer, hats: hats, now: time.Now}
}

// Render handles POST /api/render. format is png (default) or pdf.
func (h *Handler) Render(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestSize)

	var req RenderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	format := req.Format
	if format == "" {
		format = "png"
	}
	if format != "png" && format != "pdf" {
		http.Error(w, "invalid format: must be png or pdf", http.StatusBadRequest)
		return
	}

	hat, ok := h.hats.Lookup(req.Design.HatStyle)
	if !ok {
		http.Error(w, "unknown hat style", http.StatusNotFound)
		return
	}

	img, err := h.renderer.RenderDesign(r.Context(), &req.Design)
	if err != nil {
		slog.Error("render design", "design", req.Design.ID, "error", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	preview, err := PNG(img)
	if err != nil {
		slog.Error("encode preview", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	body, contentType := preview, "image/png"
	if format == "pdf" {
		var buf bytes.Buffer
		err := WriteQuoteSheet(&buf, QuoteSheet{
			DesignID: req.Design.ID,
			HatName:  hat.Name,
			Parts:    hat.Parts,
			Colors:   req.Design.Colors,
			Preview:  preview,
			Notes:    req.Notes,
			Created:  h.now(),
		})
		if err != nil {
			slog.Error("write quote sheet", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		body, contentType = buf.Bytes(), "application/pdf"
	}

	name := sanitizeName(req.Design.ID)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.%s"`, name, format))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.Write(body)

	slog.Info("render complete", "design", req.Design.ID, "format", format, "size", len(body))
}

func sanitizeName(name string) string {
	if name == "" {
		return "design"
	}
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, name)
}
