package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hatworks/designer/internal/asset"
	"github.com/hatworks/designer/internal/bitmap"
	"github.com/hatworks/designer/internal/catalog"
	"github.com/hatworks/designer/internal/config"
	"github.com/hatworks/designer/internal/document"
	"github.com/hatworks/designer/internal/engine"
	"github.com/hatworks/designer/internal/export"
	mw "github.com/hatworks/designer/internal/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()})))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source, closeSource, err := catalogSource(ctx, cfg)
	if err != nil {
		slog.Error("open hat catalog", "error", err)
		os.Exit(1)
	}
	defer closeSource()

	hats, err := catalog.Load(ctx, source)
	if err != nil {
		slog.Error("load hat catalog", "error", err)
		os.Exit(1)
	}

	store, err := asset.NewStore(cfg.AssetDir, cfg.AssetBaseURL)
	if err != nil {
		slog.Error("open asset store", "error", err)
		os.Exit(1)
	}

	// The renderer reads assets straight from disk; anything else is fetched.
	loader, err := bitmap.NewHTTPLoader(&http.Client{Timeout: 20 * time.Second}, fmt.Sprintf("http://localhost:%d", cfg.Port))
	if err != nil {
		slog.Error("create image loader", "error", err)
		os.Exit(1)
	}
	loader.Mount(cfg.AssetBaseURL, cfg.AssetDir)

	opts := engine.DefaultOptions()
	opts.Tolerance = cfg.ColorTolerance
	renderer := engine.NewPreviewRenderer(ctx, hats, loader, opts)

	catalogHandler := catalog.NewHandler(hats)
	exportHandler := export.NewHandler(renderer, hats)

	r := mux.NewRouter()

	r.Use(mw.Recovery)
	r.Use(mw.RequestID)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.Origins()))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/hats", catalogHandler.List).Methods("GET")
	api.HandleFunc("/hats/reload", catalogHandler.Reload).Methods("POST")
	api.HandleFunc("/hats/{hatId}", catalogHandler.Get).Methods("GET")
	api.HandleFunc("/assets", store.UploadHandler).Methods("POST", "OPTIONS")
	api.HandleFunc("/assets/{id:.+}", store.DeleteHandler).Methods("DELETE", "OPTIONS")
	api.HandleFunc("/render", exportHandler.Render).Methods("POST", "OPTIONS")

	r.PathPrefix(cfg.AssetBaseURL + "/").Handler(store.Serve()).Methods("GET")
	r.PathPrefix("/").Handler(wasmFileServer(cfg.WebDir)).Methods("GET")

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr, "hats", len(hats.List()), "assets", cfg.AssetDir)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

// catalogSource picks Postgres when DATABASE_URL is set, then CATALOG_PATH,
// then the built-in sample.
func catalogSource(ctx context.Context, cfg *config.Config) (catalog.Source, func(), error) {
	switch {
	case cfg.DatabaseURL != "":
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ping database: %w", err)
		}
		src := catalog.NewPGSource(pool)
		if err := src.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		slog.Info("using postgres hat catalog")
		return src, pool.Close, nil
	case cfg.CatalogPath != "":
		slog.Info("using file hat catalog", "path", cfg.CatalogPath)
		return catalog.FileSource{Path: cfg.CatalogPath}, func() {}, nil
	default:
		slog.Info("using built-in hat catalog")
		return catalog.Static(document.NewSampleCatalog()), func() {}, nil
	}
}

// wasmFileServer serves the web bundle with the wasm MIME type browsers
// require for streaming compilation.
func wasmFileServer(dir string) http.Handler {
	fs := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, ".wasm") {
			w.Header().Set("Content-Type", "application/wasm")
		}
		fs.ServeHTTP(w, r)
	})
}
