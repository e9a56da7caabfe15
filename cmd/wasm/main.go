//go:build js && wasm

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"syscall/js"

	"github.com/hatworks/designer/internal/asset"
	"github.com/hatworks/designer/internal/bitmap"
	"github.com/hatworks/designer/internal/engine"
)

// mu serializes engine access between event callbacks and the goroutines
// that finish image loads and uploads.
var mu sync.Mutex

var (
	ctx      = context.Background()
	opts     = engine.DefaultOptions()
	loader   *bitmap.HTTPLoader
	uploader *asset.Client
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	origin := js.Global().Get("location").Get("origin").String()
	var err error
	loader, err = bitmap.NewHTTPLoader(http.DefaultClient, origin)
	if err != nil {
		slog.Error("create image loader", "error", err)
		return
	}
	uploader = asset.NewClient(http.DefaultClient, origin+"/api/assets")

	js.Global().Set("hatWhiteboard", whiteboardAPI())
	js.Global().Set("hatDesigner", designerAPI())

	// Signal that WASM is ready
	js.Global().Set("hatWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}
