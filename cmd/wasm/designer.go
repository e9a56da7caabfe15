//go:build js && wasm

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"syscall/js"

	"github.com/hatworks/designer/internal/asset"
	"github.com/hatworks/designer/internal/bitmap"
	"github.com/hatworks/designer/internal/catalog"
	"github.com/hatworks/designer/internal/document"
	"github.com/hatworks/designer/internal/engine"
	"github.com/hatworks/designer/internal/export"
)

var (
	hats     = catalog.New(catalog.Static{})
	cache    *bitmap.Cache
	des      *engine.Designer
	onChange js.Value

	editor       *engine.ColorEditor
	editorTarget string
)

var (
	errNoDesigner = errors.New("designer not initialized")
	errNoEditor   = errors.New("color editor not open")
)

func designerAPI() js.Value {
	cache = bitmap.NewCache(ctx, loader, func(bitmap.Key) { notifyChange() })

	api := js.Global().Get("Object").New()

	// --- Commands (frontend → engine) ---
	api.Set("loadCatalog", js.FuncOf(desLoadCatalog))
	api.Set("onChange", js.FuncOf(desOnChange))
	api.Set("init", locked(desInit))
	api.Set("setHatStyle", locked(desSetHatStyle))
	api.Set("setView", locked(desSetView))
	api.Set("setColor", locked(desSetColor))
	api.Set("addText", locked(desAddText))
	api.Set("updateElement", locked(desUpdateElement))
	api.Set("importLogos", js.FuncOf(desImportLogos))
	api.Set("removeBackground", js.FuncOf(desRemoveBackground))
	api.Set("pointerDown", locked(desPointer(engineDown)))
	api.Set("pointerMove", locked(desPointer(engineMove)))
	api.Set("pointerUp", locked(desPointer(engineUp)))
	api.Set("deleteSelected", locked(desDeleteSelected))
	api.Set("undo", locked(desUndo))
	api.Set("redo", locked(desRedo))

	// --- Color editor ---
	api.Set("openEditor", locked(edOpen))
	api.Set("editorSettings", locked(edSettings))
	api.Set("editorSetSettings", locked(edSetSettings))
	api.Set("editorToggleBackground", locked(edToggleBackground))
	api.Set("editorSetReplacement", locked(edSetReplacement))
	api.Set("editorClearReplacement", locked(edClearReplacement))
	api.Set("editorReset", locked(edReset))
	api.Set("editorPreview", locked(edPreview))
	api.Set("editorApply", locked(edApply))
	api.Set("closeEditor", locked(edClose))

	// --- Queries (frontend ← engine) ---
	api.Set("getHats", locked(desGetHats))
	api.Set("render", locked(desRender))
	api.Set("exportCanvas", locked(desExportCanvas))
	api.Set("getDesign", locked(desGetDesign))
	api.Set("getState", locked(desGetState))

	return api
}

// notifyChange asks the page to redraw. It may run on any goroutine.
func notifyChange() {
	if onChange.Type() == js.TypeFunction {
		onChange.Invoke()
	}
}

func desOnChange(this js.Value, args []js.Value) interface{} {
	if len(args) > 0 {
		onChange = args[0]
	}
	return nil
}

// desLoadCatalog takes an optional JSON array of hat types; without it the
// catalog is fetched from the server. Returns a promise.
func desLoadCatalog(this js.Value, args []js.Value) interface{} {
	var src catalog.Source = catalog.HTTPSource{URL: js.Global().Get("location").Get("origin").String() + "/api/hats"}
	if raw := stringArg(args, 0); raw != "" {
		var list []document.HatType
		if err := json.Unmarshal([]byte(raw), &list); err != nil {
			return errorResult(fmt.Errorf("parse catalog: %w", err))
		}
		static := make(catalog.Static, len(list))
		for _, h := range list {
			static[h.ID] = h
		}
		src = static
	}
	return promise(func() (interface{}, error) {
		if err := hats.ReloadFrom(ctx, src); err != nil {
			return nil, err
		}
		mu.Lock()
		if des != nil {
			des.Refresh()
		}
		n := len(hats.List())
		mu.Unlock()
		notifyChange()
		return js.ValueOf(n), nil
	})
}

// desInit takes an optional design JSON and an optional hat style.
func desInit(this js.Value, args []js.Value) interface{} {
	var d document.Design
	if raw := stringArg(args, 0); raw != "" {
		if err := json.Unmarshal([]byte(raw), &d); err != nil {
			return errorResult(fmt.Errorf("parse design: %w", err))
		}
	}
	if style := stringArg(args, 1); style != "" {
		d.HatStyle = style
	}
	if d.HatStyle == "" {
		if list := hats.List(); len(list) > 0 {
			d.HatStyle = list[0].ID
		}
	}
	des = engine.NewDesigner(hats, cache, d, opts)
	editor, editorTarget = nil, ""
	return okResult()
}

func desSetHatStyle(this js.Value, args []js.Value) interface{} {
	if des == nil {
		return errorResult(errNoDesigner)
	}
	return js.ValueOf(des.SetHatStyle(stringArg(args, 0)))
}

func desSetView(this js.Value, args []js.Value) interface{} {
	if des == nil {
		return errorResult(errNoDesigner)
	}
	return js.ValueOf(des.SetView(document.View(stringArg(args, 0))))
}

func desSetColor(this js.Value, args []js.Value) interface{} {
	if des == nil {
		return errorResult(errNoDesigner)
	}
	return js.ValueOf(des.SetColor(document.Part(stringArg(args, 0)), stringArg(args, 1)))
}

func desAddText(this js.Value, args []js.Value) interface{} {
	if des == nil {
		return errorResult(errNoDesigner)
	}
	return js.ValueOf(des.AddText(stringArg(args, 0)))
}

// desUpdateElement takes an element id and a JSON patch.
func desUpdateElement(this js.Value, args []js.Value) interface{} {
	if des == nil {
		return errorResult(errNoDesigner)
	}
	var p engine.ElementPatch
	if err := json.Unmarshal([]byte(stringArg(args, 1)), &p); err != nil {
		return errorResult(fmt.Errorf("parse patch: %w", err))
	}
	return js.ValueOf(des.PatchElement(stringArg(args, 0), p))
}

// unlockedUploader drops mu for the duration of the network call so event
// callbacks keep running while a logo uploads.
type unlockedUploader struct {
	up engine.Uploader
}

func (u unlockedUploader) Upload(ctx context.Context, data []byte, folder string) (*asset.Asset, error) {
	mu.Unlock()
	defer mu.Lock()
	return u.up.Upload(ctx, data, folder)
}

// desImportLogos takes an array of {name, data: Uint8Array} and resolves to
// the JSON import results.
func desImportLogos(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult(errors.New("missing files"))
	}
	list := args[0]
	files := make([]engine.LogoFile, 0, list.Length())
	for i := 0; i < list.Length(); i++ {
		f := list.Index(i)
		files = append(files, engine.LogoFile{Name: f.Get("name").String(), Data: bytesFrom(f.Get("data"))})
	}

	return promise(func() (interface{}, error) {
		mu.Lock()
		if des == nil {
			mu.Unlock()
			return nil, errNoDesigner
		}
		results := des.ImportLogos(ctx, unlockedUploader{uploader}, files)
		mu.Unlock()
		notifyChange()

		data, err := json.Marshal(results)
		if err != nil {
			return nil, err
		}
		return js.ValueOf(string(data)), nil
	})
}

// desRemoveBackground swaps an uploaded logo for the asset host's
// background-removed rendition.
func desRemoveBackground(this js.Value, args []js.Value) interface{} {
	id := stringArg(args, 0)
	return promise(func() (interface{}, error) {
		mu.Lock()
		if des == nil {
			mu.Unlock()
			return nil, errNoDesigner
		}
		el, ok := des.Scene().Find(id)
		mu.Unlock()
		if !ok || el.Type != document.ElementImage {
			return js.ValueOf(false), nil
		}

		src := asset.RemoveBackgroundURL(el.Src)
		img, err := loader.Load(ctx, src)
		if err != nil {
			return nil, fmt.Errorf("load matted logo: %w", err)
		}

		mu.Lock()
		changed := des.ReplaceImage(id, src, img)
		mu.Unlock()
		notifyChange()
		return js.ValueOf(changed), nil
	})
}

func desPointer(kind pointerKind) func(js.Value, []js.Value) interface{} {
	return func(this js.Value, args []js.Value) interface{} {
		if des == nil || len(args) < 2 {
			return js.ValueOf(false)
		}
		w, h := des.Size()
		p := pointerFrom(args[0], args[1], w, h)
		switch kind {
		case engineDown:
			return js.ValueOf(des.PointerDown(p))
		case engineMove:
			return js.ValueOf(des.PointerMove(p))
		default:
			return js.ValueOf(des.PointerUp(p))
		}
	}
}

func desDeleteSelected(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(des != nil && des.DeleteSelected())
}

func desUndo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(des != nil && des.Undo())
}

func desRedo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(des != nil && des.Redo())
}

func desGetHats(this js.Value, args []js.Value) interface{} {
	return jsonResult(hats.List())
}

func desRender(this js.Value, args []js.Value) interface{} {
	if des == nil || len(args) < 1 {
		return nil
	}
	putImage(args[0], des.Render())
	return nil
}

func desExportCanvas(this js.Value, args []js.Value) interface{} {
	if des == nil {
		return errorResult(errNoDesigner)
	}
	url, err := des.ExportCanvas()
	if err != nil {
		return errorResult(err)
	}
	return js.ValueOf(url)
}

func desGetDesign(this js.Value, args []js.Value) interface{} {
	if des == nil {
		return errorResult(errNoDesigner)
	}
	return jsonResult(des.Design())
}

func desGetState(this js.Value, args []js.Value) interface{} {
	if des == nil {
		return errorResult(errNoDesigner)
	}
	d := des.Design()
	return js.ValueOf(map[string]interface{}{
		"hatStyle": d.HatStyle,
		"view":     string(d.CurrentView),
		"selected": des.Selected(),
		"loaded":   des.Loaded(),
		"canUndo":  des.Scene().CanUndo(),
		"canRedo":  des.Scene().CanRedo(),
	})
}

// --- Color editor ---

// edOpen starts editing an image overlay and returns its palette JSON.
func edOpen(this js.Value, args []js.Value) interface{} {
	if des == nil {
		return errorResult(errNoDesigner)
	}
	id := stringArg(args, 0)
	el, ok := des.Scene().Find(id)
	if !ok || el.Type != document.ElementImage {
		return errorResult(fmt.Errorf("no image element %q", id))
	}
	img, ok := des.Bitmap(el.Src)
	if !ok {
		return errorResult(errors.New("logo is still loading"))
	}
	editor, editorTarget = engine.NewColorEditor(img), id
	return jsonResult(editor.Palette())
}

func edSettings(this js.Value, args []js.Value) interface{} {
	if editor == nil {
		return errorResult(errNoEditor)
	}
	return jsonResult(editor.Settings())
}

func edSetSettings(this js.Value, args []js.Value) interface{} {
	if editor == nil {
		return errorResult(errNoEditor)
	}
	var s engine.EditorSettings
	if err := json.Unmarshal([]byte(stringArg(args, 0)), &s); err != nil {
		return errorResult(fmt.Errorf("parse editor settings: %w", err))
	}
	editor.SetSettings(s)
	return okResult()
}

func edToggleBackground(this js.Value, args []js.Value) interface{} {
	if editor == nil {
		return errorResult(errNoEditor)
	}
	return js.ValueOf(editor.ToggleBackground(stringArg(args, 0)))
}

func edSetReplacement(this js.Value, args []js.Value) interface{} {
	if editor == nil {
		return errorResult(errNoEditor)
	}
	return js.ValueOf(editor.SetReplacement(stringArg(args, 0), stringArg(args, 1)))
}

func edClearReplacement(this js.Value, args []js.Value) interface{} {
	if editor != nil {
		editor.ClearReplacement(stringArg(args, 0))
	}
	return nil
}

func edReset(this js.Value, args []js.Value) interface{} {
	if editor != nil {
		editor.Reset()
	}
	return nil
}

func edPreview(this js.Value, args []js.Value) interface{} {
	if editor == nil || len(args) < 1 {
		return nil
	}
	img := editor.Render()
	putPixels(args[0], img.Pix, img.Bounds().Dx(), img.Bounds().Dy())
	return nil
}

// edApply puts the edited logo on its element and closes the editor.
func edApply(this js.Value, args []js.Value) interface{} {
	if editor == nil || des == nil {
		return errorResult(errNoEditor)
	}
	img := editor.Render()
	url, err := export.DataURL(img)
	if err != nil {
		return errorResult(err)
	}
	ok := des.ReplaceImage(editorTarget, url, img)
	editor, editorTarget = nil, ""
	return js.ValueOf(ok)
}

func edClose(this js.Value, args []js.Value) interface{} {
	editor, editorTarget = nil, ""
	return nil
}
