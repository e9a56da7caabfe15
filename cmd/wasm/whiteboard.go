//go:build js && wasm

package main

import (
	"bytes"
	"errors"
	"syscall/js"

	"github.com/hatworks/designer/internal/bitmap"
	"github.com/hatworks/designer/internal/engine"
	"github.com/hatworks/designer/internal/export"
)

var wb *engine.Whiteboard

var errNoWhiteboard = errors.New("whiteboard not initialized")

func whiteboardAPI() js.Value {
	api := js.Global().Get("Object").New()

	// --- Commands (frontend → engine) ---
	api.Set("init", locked(wbInit))
	api.Set("setTool", locked(wbSetTool))
	api.Set("setColor", locked(wbSetColor))
	api.Set("setStrokeWidth", locked(wbSetStrokeWidth))
	api.Set("setFont", locked(wbSetFont))
	api.Set("pointerDown", locked(wbPointer(engineDown)))
	api.Set("pointerMove", locked(wbPointer(engineMove)))
	api.Set("pointerUp", locked(wbPointer(engineUp)))
	api.Set("keyDown", locked(wbKeyDown))
	api.Set("confirmText", locked(wbConfirmText))
	api.Set("cancelText", locked(wbCancelText))
	api.Set("importImage", locked(wbImportImage))
	api.Set("deleteSelected", locked(wbDeleteSelected))
	api.Set("undo", locked(wbUndo))
	api.Set("redo", locked(wbRedo))
	api.Set("clearCanvas", locked(wbClearCanvas))
	api.Set("toggleFullscreen", locked(wbToggleFullscreen))
	api.Set("syncFullscreen", locked(wbSyncFullscreen))

	// --- Queries (frontend ← engine) ---
	api.Set("render", locked(wbRender))
	api.Set("exportCanvas", locked(wbExportCanvas))
	api.Set("exportPDF", locked(wbExportPDF))
	api.Set("getElements", locked(wbGetElements))
	api.Set("getState", locked(wbGetState))
	api.Set("composing", locked(wbComposing))

	return api
}

type pointerKind int

const (
	engineDown pointerKind = iota
	engineMove
	engineUp
)

func wbInit(this js.Value, args []js.Value) interface{} {
	w, h := 800, 600
	if len(args) >= 2 {
		w, h = args[0].Int(), args[1].Int()
	}
	wb = engine.NewWhiteboard(w, h, opts)
	return okResult()
}

func wbSetTool(this js.Value, args []js.Value) interface{} {
	if wb == nil {
		return errorResult(errNoWhiteboard)
	}
	return js.ValueOf(wb.SetTool(engine.Tool(stringArg(args, 0))))
}

func wbSetColor(this js.Value, args []js.Value) interface{} {
	if wb != nil {
		wb.SetColor(stringArg(args, 0))
	}
	return nil
}

func wbSetStrokeWidth(this js.Value, args []js.Value) interface{} {
	if wb != nil && len(args) > 0 {
		wb.SetStrokeWidth(number(args[0]))
	}
	return nil
}

func wbSetFont(this js.Value, args []js.Value) interface{} {
	if wb != nil && len(args) > 1 {
		wb.SetFont(stringArg(args, 0), number(args[1]))
	}
	return nil
}

// wbPointer takes (event, canvasElement) and reports whether to redraw.
func wbPointer(kind pointerKind) func(js.Value, []js.Value) interface{} {
	return func(this js.Value, args []js.Value) interface{} {
		if wb == nil || len(args) < 2 {
			return js.ValueOf(false)
		}
		w, h := wb.Size()
		p := pointerFrom(args[0], args[1], w, h)
		switch kind {
		case engineDown:
			return js.ValueOf(wb.PointerDown(p))
		case engineMove:
			return js.ValueOf(wb.PointerMove(p))
		default:
			return js.ValueOf(wb.PointerUp(p))
		}
	}
}

// wbKeyDown takes a KeyboardEvent and reports whether it was handled, so the
// page can call preventDefault.
func wbKeyDown(this js.Value, args []js.Value) interface{} {
	if wb == nil || len(args) < 1 {
		return js.ValueOf(false)
	}
	ev := args[0]
	return js.ValueOf(wb.KeyDown(engine.Key{
		Key:   ev.Get("key").String(),
		Ctrl:  ev.Get("ctrlKey").Truthy(),
		Meta:  ev.Get("metaKey").Truthy(),
		Shift: ev.Get("shiftKey").Truthy(),
	}))
}

func wbConfirmText(this js.Value, args []js.Value) interface{} {
	if wb == nil {
		return js.ValueOf(false)
	}
	return js.ValueOf(wb.ConfirmText(stringArg(args, 0)))
}

func wbCancelText(this js.Value, args []js.Value) interface{} {
	if wb == nil {
		return js.ValueOf(false)
	}
	return js.ValueOf(wb.CancelText())
}

// wbImportImage takes the file bytes as a Uint8Array.
func wbImportImage(this js.Value, args []js.Value) interface{} {
	if wb == nil {
		return errorResult(errNoWhiteboard)
	}
	if len(args) < 1 {
		return errorResult(errors.New("missing image bytes"))
	}
	img, _, err := bitmap.Decode(bytes.NewReader(bytesFrom(args[0])))
	if err != nil {
		return errorResult(err)
	}
	src, err := export.DataURL(img)
	if err != nil {
		return errorResult(err)
	}
	return js.ValueOf(wb.ImportImage(src, img))
}

func wbDeleteSelected(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(wb != nil && wb.DeleteSelected())
}

func wbUndo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(wb != nil && wb.Undo())
}

func wbRedo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(wb != nil && wb.Redo())
}

func wbClearCanvas(this js.Value, args []js.Value) interface{} {
	if wb != nil {
		wb.ClearCanvas()
	}
	return nil
}

func wbToggleFullscreen(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(wb != nil && wb.ToggleFullscreen())
}

// wbSyncFullscreen follows fullscreenchange, e.g. Escape pressed by the
// browser.
func wbSyncFullscreen(this js.Value, args []js.Value) interface{} {
	if wb == nil || len(args) < 1 {
		return js.ValueOf(false)
	}
	return js.ValueOf(wb.SyncFullscreen(args[0].Truthy()))
}

// wbRender draws into the CanvasRenderingContext2D given as first argument.
func wbRender(this js.Value, args []js.Value) interface{} {
	if wb == nil || len(args) < 1 {
		return nil
	}
	putImage(args[0], wb.Render())
	return nil
}

func wbExportCanvas(this js.Value, args []js.Value) interface{} {
	if wb == nil {
		return errorResult(errNoWhiteboard)
	}
	url, err := wb.ExportCanvas()
	if err != nil {
		return errorResult(err)
	}
	return js.ValueOf(url)
}

func wbExportPDF(this js.Value, args []js.Value) interface{} {
	if wb == nil {
		return errorResult(errNoWhiteboard)
	}
	var buf bytes.Buffer
	if err := wb.ExportPDF(&buf); err != nil {
		return errorResult(err)
	}
	return bytesTo(buf.Bytes())
}

func wbGetElements(this js.Value, args []js.Value) interface{} {
	if wb == nil {
		return js.ValueOf("[]")
	}
	return jsonResult(wb.Elements())
}

func wbGetState(this js.Value, args []js.Value) interface{} {
	if wb == nil {
		return errorResult(errNoWhiteboard)
	}
	return js.ValueOf(map[string]interface{}{
		"tool":       string(wb.Tool()),
		"selected":   wb.Selected(),
		"canUndo":    wb.Scene().CanUndo(),
		"canRedo":    wb.Scene().CanRedo(),
		"fullscreen": wb.Fullscreen(),
	})
}

// wbComposing returns the point of the open text input, or null.
func wbComposing(this js.Value, args []js.Value) interface{} {
	if wb == nil {
		return js.Null()
	}
	p, ok := wb.Composing()
	if !ok {
		return js.Null()
	}
	return js.ValueOf(map[string]interface{}{"x": p.X, "y": p.Y})
}
