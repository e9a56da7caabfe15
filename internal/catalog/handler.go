package catalog

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
)

type Handler struct {
	catalog *Catalog
}

func NewHandler(catalog *Catalog) *Handler {
	return &Handler{catalog: catalog}
}

// List handles GET /api/hats.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.List())
}

// Get handles GET /api/hats/{hatId}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	hat, err := h.catalog.Get(mux.Vars(r)["hatId"])
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hat)
}

// Reload handles POST /api/hats/reload.
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Reload(r.Context()); err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": len(h.catalog.List())})
}

func handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnknownHat):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown hat style"})
	default:
		slog.Error("catalog error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
