package asset

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

const maxUploadSize = 10 << 20 // 10MB

var allowedTypes = []string{
	"image/png", "image/jpeg", "image/gif", "image/webp", "image/bmp", "image/tiff",
}

// UploadHandler handles POST /api/assets (multipart form with "file" and an
// optional "folder" field).
func (s *Store) UploadHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "file too large (max 10MB)", http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !allowed(contentType) {
		http.Error(w, "only PNG, JPEG, GIF, WebP, BMP and TIFF images are supported", http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "failed to read file", http.StatusBadRequest)
		return
	}

	a, err := s.Upload(r.Context(), data, r.FormValue("folder"))
	if err != nil {
		if errors.Is(err, ErrUnsupported) {
			http.Error(w, "invalid image", http.StatusBadRequest)
			return
		}
		slog.Error("store asset", "name", header.Filename, "error", err)
		http.Error(w, "failed to save file", http.StatusInternalServerError)
		return
	}

	slog.Info("asset uploaded", "id", a.PublicID, "name", header.Filename, "width", a.Width, "height", a.Height)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(a)
}

// DeleteHandler handles DELETE /api/assets/{id:.+}.
func (s *Store) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	err := s.Delete(id)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, ErrInvalidID):
		http.Error(w, "invalid asset id", http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "asset not found", http.StatusNotFound)
	default:
		slog.Error("delete asset", "id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func allowed(contentType string) bool {
	for _, t := range allowedTypes {
		if strings.HasPrefix(contentType, t) {
			return true
		}
	}
	return false
}
