package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/mux"

	"github.com/hatworks/designer/internal/document"
)

type failingSource struct{}

func (failingSource) HatTypes(context.Context) ([]document.HatType, error) {
	return nil, errors.New("db down")
}

func TestLoadAppliesDefaults(t *testing.T) {
	c, err := Load(context.Background(), Static{
		"plain": {Name: "Plain"},
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	h, ok := c.Lookup("plain")
	if !ok {
		t.Fatal("plain not found")
	}
	if h.ID != "plain" {
		t.Errorf("ID = %q, want plain", h.ID)
	}
	if diff := cmp.Diff(document.HatType{Name: "Plain", ID: "plain"}.WithDefaults(), h); diff != "" {
		t.Errorf("hat mismatch (-want +got):\n%s", diff)
	}
}

func TestGetUnknown(t *testing.T) {
	c, err := Load(context.Background(), Static(document.NewSampleCatalog()))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := c.Get("fedora"); !errors.Is(err, ErrUnknownHat) {
		t.Errorf("Get(fedora) error = %v, want ErrUnknownHat", err)
	}
	if _, err := c.Get("trucker"); err != nil {
		t.Errorf("Get(trucker): %v", err)
	}
}

func TestListSorted(t *testing.T) {
	c, err := Load(context.Background(), Static{
		"b": {Name: "B"}, "c": {Name: "C"}, "a": {Name: "A"},
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	var ids []string
	for _, h := range c.List() {
		ids = append(ids, h.ID)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, ids); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestReloadFailureKeepsSnapshot(t *testing.T) {
	c, err := Load(context.Background(), Static{"a": {Name: "A"}})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := c.ReloadFrom(context.Background(), failingSource{}); err == nil {
		t.Fatal("expected error")
	}
	if _, ok := c.Lookup("a"); !ok {
		t.Error("snapshot lost after failed reload")
	}
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		body string
	}{
		{"array", `[{"id":"trucker","name":"Trucker"}]`},
		{"object", `{"trucker":{"name":"Trucker"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".json")
			if err := os.WriteFile(path, []byte(tt.body), 0o644); err != nil {
				t.Fatal(err)
			}
			list, err := FileSource{Path: path}.HatTypes(context.Background())
			if err != nil {
				t.Fatalf("HatTypes: %v", err)
			}
			want := []document.HatType{{ID: "trucker", Name: "Trucker"}}
			if diff := cmp.Diff(want, list); diff != "" {
				t.Errorf("hats mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFileSourceInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	os.WriteFile(path, []byte("not json"), 0o644)
	if _, err := (FileSource{Path: path}).HatTypes(context.Background()); err == nil {
		t.Error("expected parse error")
	}
}

func TestHandlerAndHTTPSource(t *testing.T) {
	c, err := Load(context.Background(), Static(document.NewSampleCatalog()))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	h := NewHandler(c)
	r := mux.NewRouter()
	r.HandleFunc("/api/hats", h.List).Methods("GET")
	r.HandleFunc("/api/hats/{hatId}", h.Get).Methods("GET")
	srv := httptest.NewServer(r)
	defer srv.Close()

	list, err := HTTPSource{URL: srv.URL + "/api/hats"}.HatTypes(context.Background())
	if err != nil {
		t.Fatalf("HatTypes: %v", err)
	}
	if diff := cmp.Diff(c.List(), list); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	resp, err := http.Get(srv.URL + "/api/hats/fedora")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	var body map[string]string
	json.NewDecoder(resp.Body).Decode(&body)
	if body["error"] != "unknown hat style" {
		t.Errorf("error body = %v", body)
	}
}

func TestHatRowConfig(t *testing.T) {
	r := hatRow{ID: "dad", Name: "Dad Cap", Config: []byte(`{"parts":["front","brim"],"tolerance":60}`)}
	h, err := r.hatType()
	if err != nil {
		t.Fatalf("hatType: %v", err)
	}
	want := document.HatType{
		ID:        "dad",
		Name:      "Dad Cap",
		Parts:     []document.Part{document.PartFront, document.PartBrim},
		Tolerance: 60,
	}
	if diff := cmp.Diff(want, h); diff != "" {
		t.Errorf("hat mismatch (-want +got):\n%s", diff)
	}
}
